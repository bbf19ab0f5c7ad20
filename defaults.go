package tgbotkit

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tgbotkit/tgbotkit/group"
	"github.com/tgbotkit/tgbotkit/internal/tail"
)

// StartCommand configures the /start default command.
type StartCommand struct {
	// Greeting is sent to every chat that uses /start.
	Greeting string
	// AddTo, when set, collects chats that used /start at least once.
	// First-time additions are alerted to the sudo group.
	AddTo       *group.Group
	Description string
}

// CommandsCommand configures the command-listing default command.
type CommandsCommand struct {
	Command string
	// AvailableFor gates the command; nil leaves it open to everyone.
	AvailableFor *group.Group
	Description  string
}

// LogsCommand configures the log-browsing default command.
type LogsCommand struct {
	Command string
	// Dirs are scanned for log files; dotfiles are skipped.
	Dirs []string
}

// DefaultCommands selects the built-in commands a Wrapper registers. The
// zero value registers none; each field holds the command token (or
// descriptor) to register it under.
type DefaultCommands struct {
	Start      *StartCommand
	Init       string
	Help       string
	Commands   *CommandsCommand
	Var        string
	Groups     string
	Deactivate string
	ChatInfo   string
	Uptime     string
	IP         string
	Logs       *LogsCommand
	BanToggle  string
}

// registerDefaults wires the selected built-in commands into the registry
// with their canonical gating: operator commands go behind the sudo group,
// inspection commands are additionally private-only.
func (w *Wrapper) registerDefaults(d DefaultCommands) error {
	type entry struct {
		enabled bool
		command *Command
	}

	entries := []entry{
		{d.Deactivate != "", &Command{
			Name:        d.Deactivate,
			Groups:      []*group.Group{w.sudo},
			ChatAction:  models.ChatActionTyping,
			Description: "Deactivates or reactivates a given command.",
			Handler:     w.deactivateHandler(),
		}},
		{d.Help != "", &Command{
			Name:       d.Help,
			ChatAction: models.ChatActionTyping,
			Handler:    w.helpHandler(),
		}},
		{d.Init != "", &Command{
			Name:        d.Init,
			ChatAction:  models.ChatActionTyping,
			PrivateOnly: true,
			Hide:        true,
			Handler:     w.initHandler(w.sudo),
		}},
		{d.Uptime != "", &Command{
			Name:        d.Uptime,
			Groups:      []*group.Group{w.sudo},
			ChatAction:  models.ChatActionTyping,
			Description: "Get the bot and system uptime.",
			Handler:     w.uptimeHandler(),
		}},
		{d.IP != "", &Command{
			Name:        d.IP,
			Groups:      []*group.Group{w.sudo},
			ChatAction:  models.ChatActionTyping,
			Description: "Get the IP of the system.",
			Handler:     w.ipHandler(),
		}},
		{d.Var != "", &Command{
			Name:        d.Var,
			Groups:      []*group.Group{w.sudo},
			PrivateOnly: true,
			ChatAction:  models.ChatActionTyping,
			Description: `See all available variables. Set variables with "/var &lt;number&gt; &lt;value&gt;".`,
			Handler:     w.varHandler(),
		}},
		{d.Groups != "", &Command{
			Name:        d.Groups,
			Groups:      []*group.Group{w.sudo},
			PrivateOnly: true,
			ChatAction:  models.ChatActionTyping,
			Description: "Gives the members of a specific group.",
			Handler:     w.groupsHandler(),
		}},
		{d.ChatInfo != "", &Command{
			Name:               d.ChatInfo,
			Groups:             []*group.Group{w.sudo},
			PrivateOnly:        true,
			MatchBeginningOnly: true,
			ChatAction:         models.ChatActionTyping,
			Description:        "Gives info about a certain chat that uses the bot.",
			Handler:            w.chatInfoHandler(),
		}},
	}

	if d.Start != nil {
		entries = append(entries, entry{true, &Command{
			Name:        "start",
			ChatAction:  models.ChatActionTyping,
			Description: d.Start.Description,
			Handler:     w.startHandler(d.Start.Greeting, d.Start.AddTo, w.sudo),
		}})
	}
	if d.Commands != nil {
		var gates []*group.Group
		if d.Commands.AvailableFor != nil {
			gates = []*group.Group{d.Commands.AvailableFor}
		}
		entries = append(entries, entry{true, &Command{
			Name:        d.Commands.Command,
			Groups:      gates,
			ChatAction:  models.ChatActionTyping,
			Description: d.Commands.Description,
			Handler:     w.commandsHandler(),
		}})
	}
	if d.Logs != nil {
		entries = append(entries, entry{true, &Command{
			Name:        d.Logs.Command,
			Groups:      []*group.Group{w.sudo},
			PrivateOnly: true,
			ChatAction:  models.ChatActionTyping,
			Handler:     w.LogsHandler(d.Logs.Dirs),
		}})
	}

	for _, e := range entries {
		if !e.enabled {
			continue
		}
		if err := w.Register(e.command); err != nil {
			return err
		}
	}
	return nil
}

func (w *Wrapper) parse(msg *models.Message) MessageInfo {
	return ParseMessage(msg.Text, msg.Entities)
}

// groupChatLines resolves each member of g through GetChat and renders one
// display line per member. Members the bot cannot look up fall back to
// their raw id.
func (w *Wrapper) groupChatLines(ctx context.Context, g *group.Group) []string {
	members := g.Members(ctx)
	lines := make([]string, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			lines = append(lines, member)
			continue
		}
		chat, err := w.transport.GetChat(ctx, &bot.GetChatParams{ChatID: id})
		if err != nil {
			w.logger.DebugContext(ctx, "Chat lookup failed", "chat_id", id, "error", err)
			lines = append(lines, member)
			continue
		}
		lines = append(lines, DisplayChatFull(chat, true, true))
	}
	return lines
}

func (w *Wrapper) startHandler(greeting string, addTo, alert *group.Group) HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		id := msg.Chat.ID
		w.SendTo(ctx, id, greeting, nil)

		if addTo == nil {
			return
		}
		added, err := addTo.AddID(ctx, id)
		if err != nil {
			w.SendError(ctx, fmt.Errorf("recording /start chat %d: %w", id, err))
			return
		}
		if !added || alert == nil {
			return
		}

		rows := []string{
			fmt.Sprintf("<b>A new user have used the /%s command</b>", w.parse(msg).Base),
			" - User: " + DisplayUser(msg.From, true, true),
			" - Chat: " + displayChatPlace(msg.Chat, true),
		}
		rows = append(rows, w.groupToggleLines(id)...)
		w.SendToGroup(ctx, alert, strings.Join(rows, "\n"), nil)
	}
}

// groupToggleLines lists "/toggle_<id>" shortcuts for every group carrying
// a toggle command.
func (w *Wrapper) groupToggleLines(id int64) []string {
	var rows []string
	for _, g := range w.groups {
		if g.Toggle == nil || g.Toggle.Command == "" {
			continue
		}
		if rows == nil {
			rows = []string{"", "Group toggles:"}
		}
		rows = append(rows, fmt.Sprintf(" - <i>%s</i>: /%s_%s", g.Name(), g.Toggle.Command, w.Commandify(id)))
	}
	return rows
}

func (w *Wrapper) initHandler(target *group.Group) HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		if len(target.Members(ctx)) > 0 {
			w.SendTo(ctx, msg.Chat.ID, "No, I don't think so.", nil)
			return
		}
		added, err := target.AddID(ctx, msg.Chat.ID)
		if err != nil {
			w.SendError(ctx, fmt.Errorf("bootstrapping group %s: %w", target.Name(), err))
			return
		}
		if added {
			w.SendTo(ctx, msg.Chat.ID, fmt.Sprintf("You have been added to group <i>%s</i>!", target.Name()), nil)
		}
	}
}

func (w *Wrapper) helpHandler() HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		chatKey := group.Key(msg.Chat.ID)

		var lines []string
		for _, c := range w.registry.Commands() {
			if len(c.Groups) > 0 {
				if !group.AnyMember(ctx, c.Groups, chatKey) {
					continue
				}
			} else if c.Hide {
				continue
			}

			line := "/" + c.Name
			if c.PrivateOnly {
				line += "*"
			}
			if c.Description != "" {
				line += ":  " + c.Description
			}
			lines = append(lines, line)
		}
		sort.Strings(lines)
		w.SendTo(ctx, msg.Chat.ID, strings.Join(lines, "\n\n"), nil)
	}
}

func (w *Wrapper) commandsHandler() HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		chatKey := group.Key(msg.Chat.ID)

		for g, cmds := range w.registry.ByGroup() {
			if g != nil && !g.IsMember(ctx, chatKey) {
				continue
			}

			header := "everybody"
			if g != nil {
				header = fmt.Sprintf("group <i>%s</i>", g.Name())
			}

			lines := make([]string, 0, len(cmds))
			for _, c := range cmds {
				line := "/" + c.Name
				if c.PrivateOnly {
					line += "*"
				}
				if c.Hide {
					line = "(" + line + ")"
				}
				lines = append(lines, line)
			}
			sort.Strings(lines)

			w.SendTo(ctx, msg.Chat.ID,
				fmt.Sprintf("<b>Commands accessible to %s:</b>\n%s", header, strings.Join(lines, "\n")), nil)
		}
	}
}

func (w *Wrapper) varHandler() HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		info := w.parse(msg)

		if len(info.Args) == 0 {
			lines := make([]string, len(w.vars))
			for i, v := range w.vars {
				lines[i] = fmt.Sprintf("%d %s", i, v.Describe(ctx))
			}
			w.SendTo(ctx, msg.Chat.ID,
				"<b>Available variables:</b>\n<code>"+strings.Join(lines, "\n")+"</code>", nil)
			return
		}

		n, err := strconv.Atoi(info.Args[0])
		if err != nil || n < 0 || n >= len(w.vars) {
			w.SendTo(ctx, msg.Chat.ID, fmt.Sprintf("Variable %s does not exist.", info.Args[0]), nil)
			return
		}
		v := w.vars[n]

		if len(info.Args) > 1 {
			raw := strings.TrimSpace(strings.TrimPrefix(info.Text, info.Args[0]))
			if value := info.Args[1]; value == "#" || strings.EqualFold(value, "default") {
				if err := v.Reset(ctx, ""); err != nil {
					w.SendError(ctx, fmt.Errorf("resetting variable %s: %w", v.Name(), err))
					return
				}
			} else if raw != "" {
				if err := v.SetString(ctx, "", raw); err != nil {
					w.SendTo(ctx, msg.Chat.ID, fmt.Sprintf("Cannot set variable %s: %v", v.Name(), err), nil)
					return
				}
			}
		}

		w.SendTo(ctx, msg.Chat.ID, fmt.Sprintf("Variable %d: <code>%s</code>", n, v.Describe(ctx)), nil)
	}
}

func (w *Wrapper) groupsHandler() HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		info := w.parse(msg)

		if len(info.Args) > 0 {
			if n, err := strconv.Atoi(info.Args[0]); err == nil && n >= 0 && n < len(w.groups) {
				g := w.groups[n]
				lines := w.groupChatLines(ctx, g)
				if len(lines) == 0 {
					w.SendTo(ctx, msg.Chat.ID, fmt.Sprintf("No chats in group <i>%s</i>.", g.Name()), nil)
					return
				}
				for i, line := range lines {
					lines[i] = " - " + line
				}
				w.SendTo(ctx, msg.Chat.ID,
					fmt.Sprintf("<b>Chats in group <i>%s</i></b>:\n%s", g.Name(), strings.Join(lines, "\n")), nil)
				return
			}
		}

		if len(w.groups) == 0 {
			w.SendTo(ctx, msg.Chat.ID, "No groups available...", nil)
			return
		}
		lines := make([]string, len(w.groups))
		for i, g := range w.groups {
			lines[i] = fmt.Sprintf("%d <i>%s</i> (%d)", i, g.Name(), len(g.Members(ctx)))
		}
		w.SendTo(ctx, msg.Chat.ID, "<b>Available groups</b>:\n"+strings.Join(lines, "\n"), nil)
	}
}

func (w *Wrapper) deactivateHandler() HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		info := w.parse(msg)
		deactivated := w.deactivated.Members(ctx)

		if len(info.Args) == 0 {
			listing := "No deactivated commands found."
			if len(deactivated) > 0 {
				lines := make([]string, len(deactivated))
				for i, c := range deactivated {
					lines[i] = fmt.Sprintf("%d %s", i, c)
				}
				listing = "<b>Deactivated commands:</b>\n" + strings.Join(lines, "\n")
			}
			w.SendTo(ctx, msg.Chat.ID,
				fmt.Sprintf("Use \"/%s &lt;command&gt;\" to deactivate/activate certain commands.\n\n%s",
					info.Base, listing), nil)
			return
		}

		arg := info.Args[0]
		if n, err := strconv.Atoi(arg); err == nil && n >= 0 && n < len(deactivated) {
			c := deactivated[n]
			if _, err := w.deactivated.ToggleMember(ctx, c); err != nil {
				w.SendError(ctx, fmt.Errorf("reactivating command %s: %w", c, err))
				return
			}
			w.SendTo(ctx, msg.Chat.ID, fmt.Sprintf("Command %s has been reactivated!", c), nil)
			return
		}

		if strings.HasPrefix(arg, "/") {
			added, err := w.deactivated.ToggleMember(ctx, arg)
			if err != nil {
				w.SendError(ctx, fmt.Errorf("toggling command %s: %w", arg, err))
				return
			}
			state := "reactivated"
			if added {
				state = "deactivated"
			}
			w.SendTo(ctx, msg.Chat.ID, fmt.Sprintf("Command %s has been %s!", arg, state), nil)
			return
		}

		w.SendTo(ctx, msg.Chat.ID, "Number not correct, or command not starting with '/'.", nil)
	}
}

func (w *Wrapper) chatInfoHandler() HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		info := w.parse(msg)
		id, ok := w.Decommandify(info.Suffix)
		if !ok {
			w.SendTo(ctx, msg.Chat.ID,
				fmt.Sprintf("Use %s_CHATID to see info about a user.", info.Base), nil)
			return
		}

		chat, err := w.transport.GetChat(ctx, &bot.GetChatParams{ChatID: id})
		if err != nil {
			w.SendTo(ctx, msg.Chat.ID,
				fmt.Sprintf("No chat with ID %d is available to the bot...", id), nil)
			return
		}

		rows := []string{"<b>User/chat info</b>", DisplayChatFull(chat, true, true)}
		rows = append(rows, w.groupToggleLines(id)...)
		w.SendTo(ctx, msg.Chat.ID, strings.Join(rows, "\n"), nil)
	}
}

// formatDuration renders a duration as "d days, h hours, m minutes and s
// seconds".
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	seconds := d - minutes*time.Minute

	return fmt.Sprintf("%d days, %d hours, %d minutes and %d seconds",
		days, hours, minutes, int(seconds/time.Second))
}

// osUptime reads the system uptime. Linux only; other platforms report an
// error and the uptime command falls back to bot uptime alone.
func osUptime() (time.Duration, error) {
	data, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return 0, fmt.Errorf("failed to read system uptime: %w", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, fmt.Errorf("unexpected /proc/uptime content")
	}
	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected /proc/uptime content: %w", err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (w *Wrapper) uptimeHandler() HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		rows := []string{
			fmt.Sprintf("<b>Bot uptime</b>: <i>%s</i>", formatDuration(time.Since(w.startTime))),
		}
		if sys, err := osUptime(); err == nil {
			rows = append(rows, fmt.Sprintf("<b>OS uptime</b>: <i>%s</i>", formatDuration(sys)))
		}
		w.SendTo(ctx, msg.Chat.ID, strings.Join(rows, "\n"), nil)
	}
}

func (w *Wrapper) ipHandler() HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		ifaces, err := net.Interfaces()
		if err != nil {
			w.SendError(ctx, fmt.Errorf("listing network interfaces: %w", err))
			return
		}

		var ips []string
		for _, iface := range ifaces {
			addrs, err := iface.Addrs()
			if err != nil {
				continue
			}
			alias := 0
			for _, addr := range addrs {
				ipNet, ok := addr.(*net.IPNet)
				if !ok {
					continue
				}
				ip4 := ipNet.IP.To4()
				if ip4 == nil || ip4.IsLoopback() {
					continue
				}
				name := iface.Name
				if alias > 0 {
					name = fmt.Sprintf("%s:%d", name, alias)
				}
				ips = append(ips, name+" "+ip4.String())
				alias++
			}
		}

		if len(ips) == 0 {
			w.SendTo(ctx, msg.Chat.ID, "No IP addresses found.", nil)
			return
		}
		w.SendTo(ctx, msg.Chat.ID, strings.Join(ips, "\n"), nil)
	}
}

// LogsHandler builds a handler that lists the log files under dirs and
// tails a chosen one ("/logs <index> [lines]").
func (w *Wrapper) LogsHandler(dirs []string) HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		var files []string
		for _, dir := range dirs {
			entries, err := os.ReadDir(dir)
			if err != nil {
				w.logger.WarnContext(ctx, "Failed to read log directory", "dir", dir, "error", err)
				continue
			}
			for _, e := range entries {
				if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
					continue
				}
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}

		if len(files) == 0 {
			w.SendTo(ctx, msg.Chat.ID, "No log files found.", nil)
			return
		}

		info := w.parse(msg)
		if len(info.Args) > 0 {
			if n, err := strconv.Atoi(info.Args[0]); err == nil && n >= 1 && n <= len(files) {
				name := files[n-1]

				count := 10
				if len(info.Args) > 1 {
					if c, err := strconv.Atoi(info.Args[1]); err == nil && c > 0 {
						count = c
					}
				}

				content, err := tail.LastLines(name, count)
				if err != nil {
					w.SendError(ctx, err)
					return
				}
				if content == "" {
					w.SendTo(ctx, msg.Chat.ID, fmt.Sprintf("File %s is empty.", name), nil)
					return
				}
				w.SendTo(ctx, msg.Chat.ID, fmt.Sprintf("<b>%s</b>\n%s", name, content), nil)
				return
			}
		}

		lines := make([]string, len(files))
		for i, f := range files {
			lines[i] = fmt.Sprintf("  %d <i>%s</i>", i+1, f)
		}
		w.SendTo(ctx, msg.Chat.ID, "<b>Available logs</b>\n"+strings.Join(lines, "\n"), nil)
	}
}

// LogFileHandler builds a handler that tails one fixed file, with the line
// count as an optional first argument (default 10).
func (w *Wrapper) LogFileHandler(path string) HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		count := 10
		if args := w.parse(msg).Args; len(args) > 0 {
			if c, err := strconv.Atoi(args[0]); err == nil && c > 0 {
				count = c
			}
		}

		content, err := tail.LastLines(path, count)
		if err != nil {
			w.SendError(ctx, err)
			return
		}
		if content == "" {
			w.SendTo(ctx, msg.Chat.ID, fmt.Sprintf("File %s is empty.", path), nil)
			return
		}
		w.SendTo(ctx, msg.Chat.ID, fmt.Sprintf("<b>%s</b>\n%s", path, content), nil)
	}
}

// MessageFormatter rewrites a relayed message before it is forwarded; the
// empty string falls back to the message's parsed free-form text.
type MessageFormatter func(msg *models.Message) string

// RelayHandler builds a handler that forwards the message text to the chat
// addressed in the command suffix ("/cmd_<CHATID> <text>").
func (w *Wrapper) RelayHandler(format MessageFormatter) HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		info := w.parse(msg)

		if info.Text == "" {
			w.SendTo(ctx, msg.Chat.ID, "No text provided...", nil)
			return
		}

		id, ok := w.Decommandify(info.Suffix)
		if !ok {
			w.SendTo(ctx, msg.Chat.ID, "No chat ID found within the command...", nil)
			return
		}

		chat, err := w.transport.GetChat(ctx, &bot.GetChatParams{ChatID: id})
		if err != nil {
			w.SendTo(ctx, msg.Chat.ID,
				fmt.Sprintf("No chat with ID %d is available to the bot...", id), nil)
			return
		}

		text := info.Text
		if format != nil {
			if formatted := format(msg); formatted != "" {
				text = formatted
			}
		}

		w.SendTo(ctx, msg.Chat.ID, fmt.Sprintf("Message sent to chat %d!", id), nil)
		w.SendTo(ctx, chat.ID, text, nil)
	}
}

// BroadcastHandler builds a handler that forwards the message text to every
// member of g ("/cmd <text>").
func (w *Wrapper) BroadcastHandler(g *group.Group, format MessageFormatter) HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		info := w.parse(msg)
		if info.Text == "" {
			w.SendTo(ctx, msg.Chat.ID, "No text provided...", nil)
			return
		}

		text := info.Text
		if format != nil {
			if formatted := format(msg); formatted != "" {
				text = formatted
			}
		}

		w.SendToGroup(ctx, g, text, nil)
		w.SendTo(ctx, msg.Chat.ID, fmt.Sprintf("Message sent to group <i>%s</i>!", g.Name()), nil)
	}
}

// requestHandler builds the handler for a group's request command: the
// requester gets the configured response, and unless they are already a
// member, the reviewing group receives the request with a toggle shortcut.
func (w *Wrapper) requestHandler(requestFor, sendTo *group.Group, response string, toggle *group.ToggleCommand) HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		id := msg.Chat.ID
		if response != "" {
			w.SendTo(ctx, id, response, nil)
		}
		if requestFor.IsMemberID(ctx, id) {
			return
		}

		rows := []string{
			fmt.Sprintf("<b>Request for group <i>%s</i>:</b>", requestFor.Name()),
			" - User: " + DisplayUser(msg.From, true, true),
			" - Chat: " + displayChatPlace(msg.Chat, true),
			fmt.Sprintf(" - Is in group: <code>%t</code>", requestFor.IsMemberID(ctx, id)),
		}
		if toggle != nil && toggle.Command != "" {
			rows = append(rows, fmt.Sprintf("Toggle: /%s_%s", toggle.Command, w.Commandify(id)))
		}

		target := sendTo
		if target == nil {
			target = w.sudo
		}
		w.SendToGroup(ctx, target, strings.Join(rows, "\n"), nil)
	}
}

// toggleHandler builds the handler for a group's toggle command
// ("/cmd_<CHATID>"). Without a suffix it lists the current members with
// ready-made toggle shortcuts.
func (w *Wrapper) toggleHandler(command string, g *group.Group, responseWhenAdded string) HandlerFunc {
	return func(ctx context.Context, msg *models.Message) {
		info := w.parse(msg)

		id, ok := w.Decommandify(info.Suffix)
		if !ok {
			members := g.Members(ctx)
			lines := w.groupChatLines(ctx, g)
			for i, line := range lines {
				lines[i] = fmt.Sprintf(" - %s /%s_%s", line, command,
					strings.Replace(members[i], "-", string(w.sign), 1))
			}
			w.SendTo(ctx, msg.Chat.ID,
				fmt.Sprintf("Use %s_CHATID to toggle CHATID for group <i>%s</i>. Current users in group:\n%s",
					info.Base, g.Name(), strings.Join(lines, "\n")), nil)
			return
		}

		added, err := g.ToggleMemberID(ctx, id)
		if err != nil {
			w.SendError(ctx, fmt.Errorf("toggling chat %d in group %s: %w", id, g.Name(), err))
			return
		}

		if added {
			w.SendTo(ctx, msg.Chat.ID,
				fmt.Sprintf("Chat %d has been added to group <i>%s</i>.", id, g.Name()), nil)
			if responseWhenAdded != "" {
				w.SendTo(ctx, id, responseWhenAdded, nil)
			}
			return
		}
		w.SendTo(ctx, msg.Chat.ID,
			fmt.Sprintf("Chat %d has been removed from group <i>%s</i>.", id, g.Name()), nil)
	}
}
