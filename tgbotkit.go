// Package tgbotkit wraps a Telegram Bot API client with command
// registration, per-chat persisted variables, group membership management,
// and convenience senders. The Wrapper is the composition root: it owns the
// command registry, runs every inbound command through a fixed sequence of
// access-control gates, and dispatches outbound messages with HTML
// sanitization and automatic splitting of oversized messages.
package tgbotkit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tgbotkit/tgbotkit/group"
	"github.com/tgbotkit/tgbotkit/internal/sanitize"
	"github.com/tgbotkit/tgbotkit/storage"
	"github.com/tgbotkit/tgbotkit/variable"
)

// Default denial replies, overridable through Options.
const (
	DefaultAccessDeniedMessage = "You do not have access to this command."
	DefaultDeactivatedMessage  = "This command has been deactivated."
	DefaultPrivateOnlyMessage  = "The command can only be used in a private chat."
)

// Options configures a Wrapper. Transport, Storage, Username, and SudoGroup
// are required.
type Options struct {
	// Transport is the Bot API client; *bot.Bot satisfies it.
	Transport Transport
	// Storage persists groups and variables.
	Storage storage.Storage
	// Username is the bot's own username without the @, used to match the
	// /cmd@botname form.
	Username string
	// SudoGroup holds the operator chats. Operators bypass command
	// deactivation and receive error reports.
	SudoGroup *group.Group
	// Groups are registered at construction; groups carrying request or
	// toggle descriptors get the matching commands registered too.
	Groups []*group.Group
	// Variables are exposed through the /var default command.
	Variables []variable.Var
	// Defaults selects which built-in commands to register.
	Defaults DefaultCommands

	// Logger receives bot lifecycle and dispatch logs. Defaults to slog's
	// default logger.
	Logger *slog.Logger
	// CommandLogger receives the per-command evaluation log lines. Defaults
	// to Logger.
	CommandLogger *slog.Logger

	AccessDeniedMessage string
	DeactivatedMessage  string
	PrivateOnlyMessage  string

	// SignRune substitutes for the minus sign in command-embedded chat ids.
	// Defaults to DefaultSignRune.
	SignRune rune
}

// Wrapper ties the command registry, access gates, and dispatcher together
// around one bot identity and one storage backend. Construct it with New;
// the zero value is not usable.
type Wrapper struct {
	transport Transport
	st        storage.Storage
	username  string

	logger    *slog.Logger
	cmdLogger *slog.Logger

	registry *Registry
	groups   []*group.Group
	byName   map[string]*group.Group
	vars     []variable.Var

	sudo        *group.Group
	banned      *group.Group
	deactivated *group.Group

	sudoEcho *variable.Bool
	sudoLog  *variable.Bool

	sanitizer *sanitize.Policy
	startTime time.Time
	sign      rune

	msgs struct {
		AccessDenied string
		Deactivated  string
		PrivateOnly  string
	}
}

// New builds a Wrapper, registering the configured groups, their request
// and toggle commands, and the selected default commands. Duplicate group,
// variable, or command names are configuration errors.
func New(o Options) (*Wrapper, error) {
	if o.Transport == nil {
		return nil, fmt.Errorf("transport cannot be nil")
	}
	if o.Storage == nil {
		return nil, fmt.Errorf("storage cannot be nil")
	}
	if o.Username == "" {
		return nil, fmt.Errorf("bot username cannot be empty")
	}
	if o.SudoGroup == nil {
		return nil, fmt.Errorf("sudo group cannot be nil")
	}

	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cmdLogger := o.CommandLogger
	if cmdLogger == nil {
		cmdLogger = logger
	}

	w := &Wrapper{
		transport: o.Transport,
		st:        o.Storage,
		username:  o.Username,
		logger:    logger.With("component", "tgbotkit"),
		cmdLogger: cmdLogger.With("component", "commands"),
		registry:  NewRegistry(o.Username),
		byName:    make(map[string]*group.Group),
		sudo:      o.SudoGroup,
		sanitizer: sanitize.NewTelegramPolicy(),
		startTime: time.Now(),
		sign:      o.SignRune,
	}
	if w.sign == 0 {
		w.sign = DefaultSignRune
	}

	w.msgs.AccessDenied = orDefault(o.AccessDeniedMessage, DefaultAccessDeniedMessage)
	w.msgs.Deactivated = orDefault(o.DeactivatedMessage, DefaultDeactivatedMessage)
	w.msgs.PrivateOnly = orDefault(o.PrivateOnlyMessage, DefaultPrivateOnlyMessage)

	w.deactivated = group.New("deactivatedCommands", o.Storage)
	w.sudoEcho = variable.NewBool("sudoEcho", false, o.Storage)
	w.sudoLog = variable.NewBool("sudoLog", false, o.Storage)

	bannedOpts := []group.Option{}
	if o.Defaults.BanToggle != "" {
		bannedOpts = append(bannedOpts, group.WithToggleCommand(group.ToggleCommand{
			Command:     o.Defaults.BanToggle,
			Description: "Ban or unban a chat.",
		}))
	}
	w.banned = group.New("banned", o.Storage, bannedOpts...)

	for _, g := range append(append([]*group.Group{}, o.Groups...), w.banned) {
		if err := w.addGroup(g); err != nil {
			return nil, err
		}
	}

	if err := w.registerDefaults(o.Defaults); err != nil {
		return nil, err
	}

	for _, v := range append([]variable.Var{w.sudoEcho, w.sudoLog}, o.Variables...) {
		if err := w.addVariable(v); err != nil {
			return nil, err
		}
	}

	return w, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// addGroup registers a group plus its request/toggle commands.
func (w *Wrapper) addGroup(g *group.Group) error {
	if _, exists := w.byName[g.Name()]; exists {
		return fmt.Errorf("duplicate group %q", g.Name())
	}
	w.byName[g.Name()] = g
	w.groups = append(w.groups, g)

	r, t := g.Request, g.Toggle

	if r != nil {
		action := models.ChatAction("")
		if r.Response != "" {
			action = models.ChatActionTyping
		}
		if err := w.Register(&Command{
			Name:        r.Command,
			PrivateOnly: r.PrivateOnly,
			Description: r.Description,
			ChatAction:  action,
			Handler:     w.requestHandler(g, r.SendTo, r.Response, t),
		}); err != nil {
			return err
		}
	}

	if t != nil {
		allowed := w.sudo
		if r != nil && r.SendTo != nil {
			allowed = r.SendTo
		}
		if err := w.Register(&Command{
			Name:               t.Command,
			Groups:             []*group.Group{allowed},
			MatchBeginningOnly: true,
			Description:        t.Description,
			ChatAction:         models.ChatActionTyping,
			Handler:            w.toggleHandler(t.Command, g, t.ResponseWhenAdded),
		}); err != nil {
			return err
		}
	}

	return nil
}

func (w *Wrapper) addVariable(v variable.Var) error {
	for _, existing := range w.vars {
		if existing.Name() == v.Name() {
			return fmt.Errorf("duplicate variable %q", v.Name())
		}
	}
	w.vars = append(w.vars, v)
	return nil
}

// Register adds a custom command. Returns a configuration error on a
// duplicate token.
func (w *Wrapper) Register(c *Command) error {
	return w.registry.Register(c)
}

// RegisterAll registers a batch of custom commands, stopping at the first
// failure.
func (w *Wrapper) RegisterAll(commands ...*Command) error {
	for _, c := range commands {
		if err := w.Register(c); err != nil {
			return err
		}
	}
	w.logger.Info("Registered custom commands", "count", len(commands))
	return nil
}

// Registry exposes the command registry, e.g. for building help output.
func (w *Wrapper) Registry() *Registry { return w.registry }

// Groups returns the registered groups in registration order.
func (w *Wrapper) Groups() []*group.Group { return w.groups }

// GroupByName looks up a registered group.
func (w *Wrapper) GroupByName(name string) (*group.Group, bool) {
	g, ok := w.byName[name]
	return g, ok
}

// Variables returns the registered variables in registration order.
func (w *Wrapper) Variables() []variable.Var { return w.vars }

// SudoGroup returns the operator group.
func (w *Wrapper) SudoGroup() *group.Group { return w.sudo }

// BannedGroup returns the banned-chats group.
func (w *Wrapper) BannedGroup() *group.Group { return w.banned }

// DeactivatedCommands returns the group of deactivated command tokens
// (members are stored with their leading slash, e.g. "/help").
func (w *Wrapper) DeactivatedCommands() *group.Group { return w.deactivated }

// StartTime reports when the wrapper was constructed.
func (w *Wrapper) StartTime() time.Time { return w.startTime }

// Commandify renders a chat id as a command-suffix token using the
// configured sign rune.
func (w *Wrapper) Commandify(id int64) string { return Commandify(id, w.sign) }

// Decommandify parses a chat id out of a command suffix.
func (w *Wrapper) Decommandify(s string) (int64, bool) { return Decommandify(s, w.sign) }

// Handler adapts the wrapper to the bot library's handler signature, for
// use with bot.WithDefaultHandler.
func (w *Wrapper) Handler() bot.HandlerFunc {
	return func(ctx context.Context, _ *bot.Bot, update *models.Update) {
		w.HandleUpdate(ctx, update)
	}
}

// HandleUpdate processes one inbound update: the sudo debug taps run
// first, then the message is matched against the registry and the matched
// command (if any) goes through the access gates.
func (w *Wrapper) HandleUpdate(ctx context.Context, update *models.Update) {
	if update == nil || update.Message == nil {
		return
	}
	msg := update.Message

	if msg.From != nil && w.sudo.IsMemberID(ctx, msg.From.ID) {
		if w.sudoLog.Get(ctx, "") {
			if encoded, err := json.MarshalIndent(msg, "", "  "); err == nil {
				w.logger.InfoContext(ctx, "Sudo message tap", "message", string(encoded))
			}
		}
		if w.sudoEcho.Get(ctx, "") {
			if encoded, err := json.MarshalIndent(msg, "", "  "); err == nil {
				w.SendTo(ctx, msg.Chat.ID, string(encoded), Plain())
			}
		}
	}

	if msg.Text == "" {
		return
	}

	c := w.registry.Match(msg.Text)
	if c == nil {
		return
	}

	w.runCommand(ctx, msg, c)
}

// Announce reports the bot's configuration summary to the operators and
// the log. Call it once the transport is live.
func (w *Wrapper) Announce(ctx context.Context) {
	msg := fmt.Sprintf("%s initialized with %d commands, %d groups and %d variables.",
		w.username, len(w.registry.Commands()), len(w.groups), len(w.vars))
	w.logger.InfoContext(ctx, msg)
	w.SendToGroup(ctx, w.sudo, msg, nil)
}

// senderLabel renders the message sender for the command log.
func (w *Wrapper) senderLabel(msg *models.Message) string {
	if msg.From != nil {
		return DisplayUser(msg.From, false, false)
	}
	return DisplayChat(msg.Chat, false, false)
}
