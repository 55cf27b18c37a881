// /internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken    string  `env:"DISCORD_TOKEN,required,notEmpty"`
	CommandPrefix   string  `env:"COMMAND_PREFIX" envDefault:"!"`
	MentionPrefix   bool    `env:"MENTION_PREFIX" envDefault:"true"`
	RejectExtraArgs bool    `env:"REJECT_EXTRA_ARGS" envDefault:"false"`
	LogLevel        string  `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string  `env:"LOG_FORMAT" envDefault:"console"`
	LogFile         string  `env:"LOG_FILE"`
	StoragePath     string  `env:"STORAGE_PATH" envDefault:"datastore.json"`
	ResolverRPS     float64 `env:"RESOLVER_RPS" envDefault:"5"`
	ResolverMaxRPS  float64 `env:"RESOLVER_MAX_RPS" envDefault:"20"`
}

// Load reads an optional .env file from the working directory, then the
// process environment. It reports whether a .env file was found.
func Load() (*Config, bool, error) {
	found := godotenv.Load() == nil
	cfg, err := Parse()
	return cfg, found, err
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.CommandPrefix) == "" {
		return fmt.Errorf("COMMAND_PREFIX must not be blank")
	}
	if strings.ContainsAny(c.CommandPrefix, " \t\n") {
		return fmt.Errorf("COMMAND_PREFIX must not contain whitespace")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	if c.ResolverRPS <= 0 {
		return fmt.Errorf("RESOLVER_RPS must be positive")
	}
	if c.ResolverMaxRPS < c.ResolverRPS {
		return fmt.Errorf("RESOLVER_MAX_RPS must be at least RESOLVER_RPS")
	}
	return nil
}
