// Package main contains the entrypoint for the reference bot built on the
// tgbotkit wrapper.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tgbotkit/tgbotkit"
	"github.com/tgbotkit/tgbotkit/group"
	"github.com/tgbotkit/tgbotkit/internal/app"
	"github.com/tgbotkit/tgbotkit/internal/config"
	"github.com/tgbotkit/tgbotkit/internal/logger"
	"github.com/tgbotkit/tgbotkit/storage"
	"github.com/tgbotkit/tgbotkit/variable"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components (config, logger, storage, wrapper, bot,
// scheduler), blocks until shutdown, and returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	store, err := storage.OpenSQLite(cfg.Database.Path, log)
	if err != nil {
		log.Error("Failed to open storage", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer store.Close()

	sudo := group.New("sudo", store)
	users := group.New("users", store,
		group.WithRequestCommand(group.RequestCommand{
			Command:     "request",
			Response:    cfg.Bot.UsersRequestResponse,
			Description: "Request access to the bot.",
		}),
		group.WithToggleCommand(group.ToggleCommand{
			Command:           "useradd",
			Description:       "Toggle a chat's membership in the users group.",
			ResponseWhenAdded: cfg.Bot.UsersWelcome,
		}),
	)

	greetingVar := variable.New("greeting", cfg.Bot.Greeting, store)

	var wrapper *tgbotkit.Wrapper
	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(func(hctx context.Context, b *tgbot.Bot, update *models.Update) {
			wrapper.HandleUpdate(hctx, update)
		}),
	}

	tg, err := tgbot.New(cfg.Telegram.Token, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", me.ID, "bot_username", me.Username)

	sign := rune(tgbotkit.DefaultSignRune)
	if cfg.Bot.SignRune != "" {
		sign = rune(cfg.Bot.SignRune[0])
	}

	wrapper, err = tgbotkit.New(tgbotkit.Options{
		Transport: tg,
		Storage:   store,
		Username:  me.Username,
		SudoGroup: sudo,
		Groups:    []*group.Group{users},
		Variables: []variable.Var{greetingVar},
		Logger:    log,
		SignRune:  sign,
		Defaults: tgbotkit.DefaultCommands{
			Start: &tgbotkit.StartCommand{
				Greeting:    cfg.Bot.Greeting,
				AddTo:       users,
				Description: "Start using the bot.",
			},
			Init:       "init",
			Help:       "help",
			Commands:   &tgbotkit.CommandsCommand{Command: "commands", AvailableFor: sudo, Description: "List commands per group."},
			Var:        "var",
			Groups:     "groups",
			Deactivate: "deactivate",
			ChatInfo:   "chatinfo",
			Uptime:     "uptime",
			IP:         "ip",
			BanToggle:  "ban",
		},
	})
	if err != nil {
		log.Error("Failed to build bot wrapper", "error", err)
		return 1
	}

	if cfg.Log.Dir != "" {
		if err := wrapper.Register(&tgbotkit.Command{
			Name:        "logs",
			Groups:      []*group.Group{sudo},
			PrivateOnly: true,
			ChatAction:  models.ChatActionTyping,
			Handler:     wrapper.LogsHandler([]string{cfg.Log.Dir}),
		}); err != nil {
			log.Error("Failed to register logs command", "error", err)
			return 1
		}
	}

	if err := wrapper.RegisterAll(
		&tgbotkit.Command{
			Name:               "sendto",
			Groups:             []*group.Group{sudo},
			MatchBeginningOnly: true,
			ChatAction:         models.ChatActionTyping,
			Description:        "Relay a message to a chat: /sendto_CHATID <text>.",
			Handler:            wrapper.RelayHandler(nil),
		},
		&tgbotkit.Command{
			Name:        "broadcast",
			Groups:      []*group.Group{sudo},
			ChatAction:  models.ChatActionTyping,
			Description: "Send a message to every user of the bot.",
			Handler: wrapper.BroadcastHandler(users, func(msg *models.Message) string {
				return fmt.Sprintf("<b>Announcement</b>\n%s", tgbotkit.ParseMessage(msg.Text, msg.Entities).Text)
			}),
		},
	); err != nil {
		log.Error("Failed to register custom commands", "error", err)
		return 1
	}

	if cfg.Telegram.AdminID != 0 {
		if _, err := sudo.AddID(ctx, cfg.Telegram.AdminID); err != nil {
			log.Error("Failed to seed sudo group", "error", err)
			return 1
		}
	}

	sched, err := app.NewScheduler(log, &cfg.Scheduler, app.Tasks(app.TaskDeps{
		Logger:  log,
		Store:   store,
		Wrapper: wrapper,
	}))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	orchestrator := app.New(log, tg, wrapper, sched)

	log.Info("Starting bot...")
	runErr := orchestrator.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
