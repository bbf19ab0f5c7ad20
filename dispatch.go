package tgbotkit

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"golang.org/x/sync/errgroup"

	"github.com/tgbotkit/tgbotkit/group"
)

// Transport is the slice of the Bot API client the wrapper depends on.
// *bot.Bot satisfies it directly.
type Transport interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
	GetChat(ctx context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error)
}

// SendOptions configures an outbound message. The zero value means
// HTML parse mode with notifications and link previews enabled.
type SendOptions struct {
	ParseMode models.ParseMode
	// Silent suppresses the receiver's notification.
	Silent bool
	// NoPreview disables the web page preview.
	NoPreview bool
}

// Plain returns options for an unformatted message, bypassing HTML
// sanitization.
func Plain() *SendOptions {
	return &SendOptions{ParseMode: ""}
}

// normalize resolves nil options and the parse-mode default so that every
// send path works from the same structure.
func (o *SendOptions) normalize() SendOptions {
	if o == nil {
		return SendOptions{ParseMode: models.ParseModeHTML}
	}
	return *o
}

func (o SendOptions) params(chatID int64, text string) *bot.SendMessageParams {
	p := &bot.SendMessageParams{
		ChatID:              chatID,
		Text:                text,
		ParseMode:           o.ParseMode,
		DisableNotification: o.Silent,
	}
	if o.NoPreview {
		disabled := true
		p.LinkPreviewOptions = &models.LinkPreviewOptions{IsDisabled: &disabled}
	}
	return p
}

// tooLongMarker is the Bot API description for an oversized message.
const tooLongMarker = "message is too long"

func isMessageTooLong(err error) bool {
	return err != nil && strings.Contains(err.Error(), tooLongMarker)
}

// SendTo sends text to a chat. HTML-mode text is sanitized to the b/i/code
// allow-list first. A "message is too long" rejection splits the text in
// half by lines and resends each half; other transport errors are logged
// and swallowed.
func (w *Wrapper) SendTo(ctx context.Context, chatID int64, text string, opts *SendOptions) {
	o := opts.normalize()

	toSend := text
	if o.ParseMode == models.ParseModeHTML {
		toSend = w.sanitizer.SanitizeText(text)
	}

	_, err := w.transport.SendMessage(ctx, o.params(chatID, toSend))
	if err == nil {
		return
	}

	if !isMessageTooLong(err) {
		w.logger.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
		return
	}

	lines := strings.Split(text, "\n")
	if len(lines) <= 1 {
		w.SendError(ctx, fmt.Errorf("message to chat %d too long (%d characters)", chatID, len(text)))
		return
	}

	mid := (len(lines) + 1) / 2
	w.SendTo(ctx, chatID, strings.TrimSpace(strings.Join(lines[:mid], "\n")), &o)
	w.SendTo(ctx, chatID, strings.TrimSpace(strings.Join(lines[mid:], "\n")), &o)
}

// SendToGroup sends text to every current member of g. Sends run
// concurrently; the call returns after every send settled, and individual
// failures do not abort the rest.
func (w *Wrapper) SendToGroup(ctx context.Context, g *group.Group, text string, opts *SendOptions) {
	var eg errgroup.Group
	for _, member := range g.Members(ctx) {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			w.logger.WarnContext(ctx, "Skipping non-numeric group member", "group", g.Name(), "member", member)
			continue
		}
		eg.Go(func() error {
			w.SendTo(ctx, id, text, opts)
			return nil
		})
	}
	_ = eg.Wait()
}

// maxErrorReportLength caps the operator-facing rendering of an error.
const maxErrorReportLength = 3000

// SendError logs err and reports its truncated string form to the sudo
// group. Failures of the report itself are swallowed.
func (w *Wrapper) SendError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	w.logger.ErrorContext(ctx, "Reporting error to operators", "error", err)

	text := err.Error()
	if len(text) > maxErrorReportLength {
		text = text[:maxErrorReportLength]
	}
	w.SendToGroup(ctx, w.sudo, text, nil)
}
