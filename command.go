package tgbotkit

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/tgbotkit/tgbotkit/group"
)

// HandlerFunc is a command callback invoked after the message passed every
// access-control gate.
type HandlerFunc func(ctx context.Context, msg *models.Message)

// Command describes one registered chat command.
type Command struct {
	// Name is the command token without the leading slash.
	Name string
	// Groups restricts the command to members of at least one of the listed
	// groups (logical OR). Empty means everyone.
	Groups []*group.Group
	// PrivateOnly restricts the command to private chats.
	PrivateOnly bool
	// MatchBeginningOnly lets the token carry a suffix of word characters,
	// enabling commands like /toggle_12345.
	MatchBeginningOnly bool
	// Hide keeps the command out of listings and suppresses denial replies,
	// preserving the pretense that the command does not exist.
	Hide bool
	// Description shows up in /help and command listings.
	Description string
	// ChatAction, when set, is sent before the handler runs (e.g. "typing").
	ChatAction models.ChatAction
	// AccessDeniedMessage overrides the default group-gate denial reply.
	AccessDeniedMessage string
	// Handler runs the command.
	Handler HandlerFunc

	pattern *regexp.Regexp
}

// CommandPattern builds the pattern matching a command at the start of a
// message: the token, optionally suffixed with @botName, followed by
// end-of-input, whitespace, or any non-word character. The terminator check
// keeps /cmdextra from matching /cmd. With beginningOnly the token may
// carry extra word characters first, so /cmd_12345 still matches /cmd.
func CommandPattern(command, botName string, beginningOnly bool) *regexp.Regexp {
	suffix := ""
	if beginningOnly {
		suffix = "[a-zA-Z0-9_]*"
	}
	return regexp.MustCompile(
		`^/` + regexp.QuoteMeta(command) + suffix +
			`(?:$|@` + regexp.QuoteMeta(botName) + `\b|[^a-zA-Z0-9_@])`)
}

// Registry holds the commands registered on a bot instance and matches
// inbound message text against them.
type Registry struct {
	botName  string
	commands []*Command
	byName   map[string]*Command
}

// NewRegistry creates an empty registry for a bot known by botName (used
// for the @botName mention form of commands).
func NewRegistry(botName string) *Registry {
	return &Registry{botName: botName, byName: make(map[string]*Command)}
}

// Register adds a command. Duplicate tokens are a configuration error and
// are rejected outright rather than silently overwritten.
func (r *Registry) Register(c *Command) error {
	if c.Name == "" {
		return fmt.Errorf("command token cannot be empty")
	}
	if _, exists := r.byName[c.Name]; exists {
		return fmt.Errorf("duplicate command %q", c.Name)
	}
	if c.Handler == nil {
		return fmt.Errorf("command %q has no handler", c.Name)
	}

	c.pattern = CommandPattern(c.Name, r.botName, c.MatchBeginningOnly)
	r.byName[c.Name] = c
	r.commands = append(r.commands, c)
	return nil
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []*Command {
	return r.commands
}

// Match returns the first registered command whose pattern matches text, or
// nil when no command matches.
func (r *Registry) Match(text string) *Command {
	for _, c := range r.commands {
		if c.pattern.MatchString(text) {
			return c
		}
	}
	return nil
}

// ByGroup indexes commands by the group allowed to invoke them. A command
// listing several groups appears under each of them; ungated commands
// appear under the nil key.
func (r *Registry) ByGroup() map[*group.Group][]*Command {
	m := make(map[*group.Group][]*Command)
	for _, c := range r.commands {
		if len(c.Groups) == 0 {
			m[nil] = append(m[nil], c)
			continue
		}
		for _, g := range c.Groups {
			m[g] = append(m[g], c)
		}
	}
	return m
}

// MessageInfo is the decomposition of an inbound command message.
type MessageInfo struct {
	// Command is the full leading token including the slash, e.g.
	// "/toggle_m123@somebot".
	Command string
	// Base is the token up to the first underscore, without the slash.
	Base string
	// Suffix is the segment after the first underscore, with any trailing
	// @botname stripped.
	Suffix string
	// BotName is the @-mention target, if any.
	BotName string
	// Text is the full trimmed remainder after the command token.
	Text string
	// Args is the first line of the remainder split on spaces, with empty
	// tokens dropped.
	Args []string
}

// ParseMessage decomposes a message into its command token, suffix, bot
// mention, free-form text, and argument list. A command is only recognized
// when the message carries a bot_command entity at offset zero, matching
// how the Bot API annotates commands.
func ParseMessage(text string, entities []models.MessageEntity) MessageInfo {
	var info MessageInfo
	if text == "" {
		return info
	}

	commandLength := 0
	if len(entities) > 0 {
		e := entities[0]
		if e.Type == models.MessageEntityTypeBotCommand && e.Offset == 0 {
			commandLength = e.Length
		}
	}
	if commandLength > len(text) {
		commandLength = len(text)
	}

	if command := strings.TrimSpace(text[:commandLength]); command != "" {
		info.Command = command
		parts := strings.Split(command, "_")
		info.Base = strings.TrimPrefix(parts[0], "/")

		if len(parts) > 1 {
			info.Suffix, _, _ = strings.Cut(parts[1], "@")
		}
		if _, botName, ok := strings.Cut(command, "@"); ok && botName != "" {
			info.BotName = botName
		}

		rest := text[commandLength:]
		firstLine, _, _ := strings.Cut(rest, "\n")
		for _, arg := range strings.Split(firstLine, " ") {
			if arg != "" {
				info.Args = append(info.Args, arg)
			}
		}
	}

	info.Text = strings.TrimSpace(text[commandLength:])
	return info
}

// DefaultSignRune substitutes for the minus sign in command-embedded chat
// ids, since command tokens cannot contain hyphens.
const DefaultSignRune = 'm'

// Commandify renders a chat id as a command-suffix-safe token, substituting
// sign for a leading minus.
func Commandify(id int64, sign rune) string {
	return strings.Replace(strconv.FormatInt(id, 10), "-", string(sign), 1)
}

// Decommandify reverses Commandify. It reports false for anything that does
// not decode to a valid id.
func Decommandify(s string, sign rune) (int64, bool) {
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.Replace(s, string(sign), "-", 1), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
