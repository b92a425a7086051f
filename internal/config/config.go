package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

const (
	DefaultConfigDir  = ".slack-digest"
	DefaultConfigName = "configuration"
	DefaultConfigFile = "configuration.yaml"

	// EnvConfiguration may hold the whole YAML document, for environments
	// where mounting a file is awkward (cron containers, CI).
	EnvConfiguration = "CONFIGURATION"

	DefaultScheduleExpr = "5 0 * * *"
)

// Load reads and validates the configuration. configPath overrides the
// lookup; otherwise $CONFIGURATION is used, then configuration.yaml in the
// working directory, then ~/.slack-digest/configuration.yaml.
//
// A .env file in the working directory, if present, is loaded into the
// process environment first so secrets can be kept out of the YAML.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	switch {
	case configPath != "":
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configPath, err)
		}
	case os.Getenv(EnvConfiguration) != "":
		if err := v.ReadConfig(strings.NewReader(os.Getenv(EnvConfiguration))); err != nil {
			return nil, fmt.Errorf("reading $%s: %w", EnvConfiguration, err)
		}
	default:
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, DefaultConfigDir))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil, &Error{Field: "config", Reason: "not found (create " + DefaultConfigFile + " or run 'slack-digest init')"}
			}
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := validate(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Schedule.DaysBack < 1 {
		return nil, &Error{Field: "schedule.daysback", Reason: "must be at least 1"}
	}
	return &cfg, nil
}

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigFile
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("serialising config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// ConfigPath returns the file Load would read when no override is given.
// It reports EnvConfiguration when the YAML comes from the environment.
func ConfigPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if os.Getenv(EnvConfiguration) != "" {
		return "$" + EnvConfiguration, nil
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return filepath.Abs(DefaultConfigFile)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// envBindings lists the keys that may come from the environment. Only
// these are bound: binding whole sections would let an unrelated variable
// such as MAIL=/var/mail/user shadow the mail section.
var envBindings = map[string]string{
	"slack.token":              "SLACK_TOKEN",
	"mail.username":            "MAIL_USERNAME",
	"mail.password":            "MAIL_PASSWORD",
	"notify.slack.webhook_url": "NOTIFY_SLACK_WEBHOOK_URL",
	"notify.webhook.url":       "NOTIFY_WEBHOOK_URL",
	"notify.webhook.secret":    "NOTIFY_WEBHOOK_SECRET",
}

func bindEnv(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("binding %s to $%s: %w", key, env, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("slack.token", "")
	v.SetDefault("slack.reactions", false)
	v.SetDefault("slack.joins_leaves", false)
	v.SetDefault("slack.permalinks", false)

	v.SetDefault("mail.fromaddress", "")
	v.SetDefault("mail.smtp", "")
	v.SetDefault("mail.usetls", false)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")

	v.SetDefault("schedule.expr", DefaultScheduleExpr)
	v.SetDefault("schedule.daysback", 1)

	v.SetDefault("notify.slack.webhook_url", "")
	v.SetDefault("notify.webhook.url", "")
	v.SetDefault("notify.webhook.secret", "")
}
