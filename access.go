package tgbotkit

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tgbotkit/tgbotkit/group"
)

// Verdict is the outcome of running a command message through the
// access-control gates.
type Verdict string

const (
	// VerdictOK allows the command to run.
	VerdictOK Verdict = "ok"
	// VerdictDenied means the sender is outside every required group.
	VerdictDenied Verdict = "denied"
	// VerdictDeactivated means the command is currently deactivated.
	VerdictDeactivated Verdict = "deactivated"
	// VerdictPrivate means a private-only command was used elsewhere.
	VerdictPrivate Verdict = "private"
	// VerdictBanned means the sender is banned. Always silent.
	VerdictBanned Verdict = "banned"
)

// evaluate runs the gates in their fixed precedence order and returns the
// verdict plus the reply owed to the user (empty for silence). The first
// gate that denies wins; later gates are not evaluated.
func (w *Wrapper) evaluate(ctx context.Context, msg *models.Message, c *Command) (Verdict, string) {
	chatKey := group.Key(msg.Chat.ID)

	// Group gate. Hidden commands deny without a reply so their existence
	// is not given away.
	if len(c.Groups) > 0 && !group.AnyMember(ctx, c.Groups, chatKey) {
		if c.Hide {
			return VerdictDenied, ""
		}
		if c.AccessDeniedMessage != "" {
			return VerdictDenied, c.AccessDeniedMessage
		}
		return VerdictDenied, w.msgs.AccessDenied
	}

	// Deactivation gate. Sudo members bypass deactivation entirely.
	if !w.sudo.IsMember(ctx, chatKey) && w.deactivated.IsMember(ctx, "/"+c.Name) {
		if c.Hide {
			return VerdictDeactivated, ""
		}
		return VerdictDeactivated, w.msgs.Deactivated
	}

	// Private-chat gate.
	if c.PrivateOnly && msg.Chat.Type != models.ChatTypePrivate {
		if c.Hide {
			return VerdictPrivate, ""
		}
		return VerdictPrivate, w.msgs.PrivateOnly
	}

	// Ban gate. Never replies.
	if w.banned.IsMember(ctx, chatKey) {
		return VerdictBanned, ""
	}

	return VerdictOK, ""
}

// runCommand gates, logs, and executes a matched command message.
func (w *Wrapper) runCommand(ctx context.Context, msg *models.Message, c *Command) {
	verdict, reply := w.evaluate(ctx, msg, c)

	w.cmdLogger.InfoContext(ctx, fmt.Sprintf("%s : /%s [%s]", w.senderLabel(msg), c.Name, verdict),
		"chat_id", msg.Chat.ID,
		"command", c.Name,
		"verdict", string(verdict))

	if reply != "" {
		w.SendTo(ctx, msg.Chat.ID, reply, nil)
	}
	if verdict != VerdictOK {
		return
	}

	if c.ChatAction != "" {
		if _, err := w.transport.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: msg.Chat.ID,
			Action: c.ChatAction,
		}); err != nil {
			w.logger.DebugContext(ctx, "Failed to send chat action", "error", err, "chat_id", msg.Chat.ID)
		}
	}

	c.Handler(ctx, msg)
}
