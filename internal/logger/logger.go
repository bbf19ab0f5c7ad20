// Package logger builds the application's slog loggers and the bot
// middleware that traces inbound updates.
package logger

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// New creates a slog Logger with the given level ("debug", "info", "warn",
// "error"; anything else falls back to info). With jsonOutput the logs are
// emitted as JSON, otherwise as text.
func New(levelStr string, jsonOutput bool) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// Middleware traces every inbound message update at debug level with a
// short text preview, plus the handling duration.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if update.Message == nil {
				next(ctx, b, update)
				return
			}

			start := time.Now()
			entry := log.With(
				"update_id", update.ID,
				"message_id", update.Message.ID,
				"chat_id", update.Message.Chat.ID,
				"text_preview", truncate(update.Message.Text, 50),
			)
			if update.Message.From != nil {
				entry = entry.With("user_id", update.Message.From.ID)
			}

			entry.DebugContext(ctx, "Handling update")
			next(ctx, b, update)
			entry.DebugContext(ctx, "Handled update", "duration", time.Since(start))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
