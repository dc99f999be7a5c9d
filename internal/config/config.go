// /internal/config/config.go
package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	BotName        string        `env:"BOT_NAME" envDefault:"wabot"`
	Prefixes       []string      `env:"PREFIX" envSeparator:"," envDefault:"."`
	Owners         []string      `env:"OWNERS" envSeparator:","`
	StoragePath    string        `env:"STORAGE_PATH" envDefault:"datastore.json"`
	SessionPath    string        `env:"SESSION_PATH" envDefault:"session.db"`
	PairPhone      string        `env:"PAIR_PHONE"`
	LogFile        string        `env:"LOG_FILE"`
	HandlerTimeout time.Duration `env:"HANDLER_TIMEOUT"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatal("Failed to parse environment: ", err)
	}

	if len(cfg.Owners) == 0 {
		log.Println("[WARN] OWNERS is not set, owner commands will be unavailable")
	}

	return cfg
}
