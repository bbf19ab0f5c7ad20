// Package app orchestrates the reference bot's components: the Telegram
// listener, the scheduler, and graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/tgbotkit/tgbotkit"
)

// App wires the Telegram listener, the wrapper, and the scheduler into one
// run loop.
type App struct {
	logger    *slog.Logger
	tgBot     *tgbot.Bot
	wrapper   *tgbotkit.Wrapper
	scheduler *Scheduler
}

// New creates the orchestrator.
func New(logger *slog.Logger, tgBot *tgbot.Bot, wrapper *tgbotkit.Wrapper, scheduler *Scheduler) *App {
	return &App{
		logger:    logger.With("component", "orchestrator"),
		tgBot:     tgBot,
		wrapper:   wrapper,
		scheduler: scheduler,
	}
}

// Run starts the listener and the scheduler and blocks until the context
// is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("Starting Telegram listener...")
		a.tgBot.Start(gCtx)
		a.logger.Info("Telegram listener stopped.")

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		if err := a.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		a.logger.Info("Shutdown signal received, stopping scheduler...")
		if err := a.scheduler.Stop(); err != nil {
			a.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	a.wrapper.Announce(ctx)

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("Orchestrator stopped due to error", "error", err)
		return err
	}

	a.logger.Info("Orchestrator stopped gracefully.")
	return nil
}
