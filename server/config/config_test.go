package config

import (
	"strings"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreDriver != "memory" || cfg.BustMultiplier != 2 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxPhaseActions != 64 || cfg.MaxBattleRounds != 50 || cfg.SQLitePath != "roguelike.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("BUST_MULTIPLIER", "3")
	t.Setenv("DECK_SEED", "99")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.StoreDriver != "sqlite" || cfg.BustMultiplier != 3 {
		t.Fatalf("overrides ignored: %+v", cfg)
	}
	if seed, _ := cfg.Seed(); seed != 99 {
		t.Fatalf("seed = %d", seed)
	}
}

func TestParseError(t *testing.T) {
	t.Setenv("BUST_MULTIPLIER", "lots")
	_, err := Parse()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	bad := []Config{
		{StoreDriver: "redis", BustMultiplier: 2},
		{StoreDriver: "postgres", BustMultiplier: 2},
		{StoreDriver: "memory", BustMultiplier: 0},
		{StoreDriver: "memory", BustMultiplier: 2, MaxPhaseActions: -1},
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestSeedRandomWhenZero(t *testing.T) {
	a, err := Config{}.Seed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	b, _ := Config{}.Seed()
	if a == b {
		t.Fatalf("two crypto seeds collided: %d", a)
	}
}
