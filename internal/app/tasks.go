package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tgbotkit/tgbotkit"
	"github.com/tgbotkit/tgbotkit/storage"
)

// TaskDeps carries the dependencies the scheduled tasks need.
type TaskDeps struct {
	Logger  *slog.Logger
	Store   *storage.SQLite
	Wrapper *tgbotkit.Wrapper
}

// Tasks builds the named task registry the scheduler runs from.
func Tasks(deps TaskDeps) map[string]TaskFunc {
	return map[string]TaskFunc{
		"storage_maintenance": storageMaintenanceTask(deps),
		"daily_status":        dailyStatusTask(deps),
	}
}

// storageMaintenanceTask compacts the SQLite database.
func storageMaintenanceTask(deps TaskDeps) TaskFunc {
	return func(ctx context.Context) error {
		timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()

		if err := deps.Store.Maintain(timeoutCtx); err != nil {
			return fmt.Errorf("storage maintenance failed: %w", err)
		}
		return nil
	}
}

// dailyStatusTask reports uptime and group sizes to the operators.
func dailyStatusTask(deps TaskDeps) TaskFunc {
	return func(ctx context.Context) error {
		w := deps.Wrapper

		rows := []string{
			fmt.Sprintf("<b>Daily status</b>: up since %s", w.StartTime().Format(time.RFC1123)),
		}
		for _, g := range w.Groups() {
			rows = append(rows, fmt.Sprintf(" - <i>%s</i>: %d members", g.Name(), len(g.Members(ctx))))
		}

		w.SendToGroup(ctx, w.SudoGroup(), strings.Join(rows, "\n"), nil)
		return nil
	}
}
