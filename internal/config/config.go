// Package config loads and validates the reference bot's configuration
// from defaults, an optional YAML file, and BOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds every setting the reference bot needs.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Bot       BotConfig       `mapstructure:"bot"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
	// Dir is exposed through the /logs command when set.
	Dir string `mapstructure:"dir"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
	// AdminID seeds the sudo group so the bot is reachable before the
	// first /init.
	AdminID int64 `mapstructure:"admin_id"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type BotConfig struct {
	Greeting string `mapstructure:"greeting" validate:"required"`
	// UsersRequestResponse is sent back when a chat asks to join the users
	// group.
	UsersRequestResponse string `mapstructure:"users_request_response"`
	// UsersWelcome is sent to a chat when its join request is granted.
	UsersWelcome string `mapstructure:"users_welcome"`
	// SignRune substitutes for the minus sign in command-embedded ids.
	SignRune string `mapstructure:"sign_rune" validate:"max=1"`
}

type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// Load reads the configuration from path (optional; defaults apply when
// the file is absent), layers BOT_* environment variables on top, and
// validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.dir", "")

	v.SetDefault("database.path", "storage.db")

	v.SetDefault("bot.greeting", "Hello! Use /request to ask for access.")
	v.SetDefault("bot.users_request_response", "Your request has been sent to the operators.")
	v.SetDefault("bot.users_welcome", "You now have access to the bot!")
	v.SetDefault("bot.sign_rune", "m")

	v.SetDefault("scheduler.tasks", map[string]TaskConfig{
		"storage_maintenance": {Enabled: true, Schedule: "0 0 4 * * *"},
		"daily_status":        {Enabled: false, Schedule: "0 0 9 * * *"},
	})
}
