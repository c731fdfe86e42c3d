package config

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port            string  `env:"PORT" envDefault:"8080"`
	StoreDriver     string  `env:"STORE_DRIVER" envDefault:"memory"`
	DatabaseURL     string  `env:"DATABASE_URL"`
	SQLitePath      string  `env:"SQLITE_PATH" envDefault:"roguelike.db"`
	ContentPath     string  `env:"CONTENT_PATH"`
	BustMultiplier  int     `env:"BUST_MULTIPLIER" envDefault:"2"`
	MaxPhaseActions int     `env:"MAX_PHASE_ACTIONS" envDefault:"64"`
	MaxBattleRounds int     `env:"MAX_BATTLE_ROUNDS" envDefault:"50"`
	DeckSeed        int64   `env:"DECK_SEED" envDefault:"0"`
	LogLevel        string  `env:"LOG_LEVEL" envDefault:"info"`
	AutoMigrate     bool    `env:"AUTO_MIGRATE" envDefault:"false"`
	EloK            float64 `env:"ELO_K" envDefault:"24"`
	DuelEnemy       string  `env:"DUEL_ENEMY" envDefault:"house"`
	DuelBattles     int     `env:"DUEL_BATTLES" envDefault:"200"`
	ProfileID       string  `env:"PROFILE_ID" envDefault:"local"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case "memory", "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE_DRIVER=postgres needs DATABASE_URL")
		}
	default:
		return fmt.Errorf("STORE_DRIVER %q: want memory, sqlite or postgres", c.StoreDriver)
	}
	if c.BustMultiplier < 1 {
		return fmt.Errorf("BUST_MULTIPLIER must be at least 1")
	}
	if c.MaxPhaseActions < 0 || c.MaxBattleRounds < 0 {
		return fmt.Errorf("MAX_PHASE_ACTIONS and MAX_BATTLE_ROUNDS cannot be negative")
	}
	return nil
}

// Seed returns DeckSeed, or a crypto-random seed when it is zero.
func (c Config) Seed() (int64, error) {
	if c.DeckSeed != 0 {
		return c.DeckSeed, nil
	}
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
