package main

import (
	"context"
	"fmt"
	"math/rand"

	"blackjack-roguelike/server/battlelog"
	"blackjack-roguelike/server/combat"
	"blackjack-roguelike/server/config"
	"blackjack-roguelike/server/content"
	"blackjack-roguelike/server/meta"
	"blackjack-roguelike/server/survival"

	"go.uber.org/zap"
)

// App holds everything a request or CLI mode needs.
type App struct {
	Cfg     config.Config
	Catalog *content.Catalog
	Meta    *meta.Service
	Log     *zap.Logger
}

// seed resolves a caller seed; zero asks config for one.
func (a *App) seed(s int64) (int64, error) {
	if s != 0 {
		return s, nil
	}
	return a.Cfg.Seed()
}

func (a *App) system(seed int64) *combat.System {
	sys := combat.NewSystem(combat.Config{
		BustMultiplier:  a.Cfg.BustMultiplier,
		MaxPhaseActions: a.Cfg.MaxPhaseActions,
	}, rand.New(rand.NewSource(seed)))
	sys.Subscribe(battlelog.Listener(a.Log))
	return sys
}

// Battle pits the content player, boosted by profileID's upgrades when
// given, against one enemy.
func (a *App) Battle(ctx context.Context, profileID, enemyID string, seed int64) (survival.BattleResult, int64, error) {
	seed, err := a.seed(seed)
	if err != nil {
		return survival.BattleResult{}, 0, err
	}
	def := a.Catalog.Player()
	if profileID != "" {
		p, err := a.Meta.Load(ctx, profileID)
		if err != nil {
			return survival.BattleResult{}, seed, err
		}
		def = meta.ApplyUpgrades(a.Catalog, p)
	}
	player, err := a.Catalog.NewPlayer(def)
	if err != nil {
		return survival.BattleResult{}, seed, err
	}
	enemy, err := a.Catalog.NewEnemy(enemyID)
	if err != nil {
		return survival.BattleResult{}, seed, err
	}
	res, err := survival.RunBattle(a.system(seed), player, enemy, survival.BattleOptions{MaxRounds: a.Cfg.MaxBattleRounds})
	return res, seed, err
}

type SurvivalOutcome struct {
	Run     survival.RunResult `json:"run"`
	Record  meta.RunRecord     `json:"record"`
	Profile *meta.Profile      `json:"profile"`
}

// Survival plays a full run for profileID and records it.
func (a *App) Survival(ctx context.Context, profileID string, seed int64) (SurvivalOutcome, error) {
	seed, err := a.seed(seed)
	if err != nil {
		return SurvivalOutcome{}, err
	}
	p, err := a.Meta.Load(ctx, profileID)
	if err != nil {
		return SurvivalOutcome{}, err
	}
	player, err := a.Catalog.NewPlayer(meta.ApplyUpgrades(a.Catalog, p))
	if err != nil {
		return SurvivalOutcome{}, err
	}
	ctrl := &survival.Controller{
		Catalog:    a.Catalog,
		System:     a.system(seed),
		RewardPool: p.RewardPool(a.Catalog),
		Rand:       rand.New(rand.NewSource(seed ^ 0x5eed)),
		Battle:     survival.BattleOptions{MaxRounds: a.Cfg.MaxBattleRounds},
		Log:        a.Log,
	}
	run, err := ctrl.Run(ctx, player, a.Catalog.Waves())
	if err != nil {
		return SurvivalOutcome{}, fmt.Errorf("survival run: %w", err)
	}
	prof, rec, err := a.Meta.RecordRun(ctx, meta.RunRecord{
		ProfileID:    profileID,
		WavesCleared: run.WavesCleared,
		Victory:      run.Victory,
		Currency:     run.Currency,
		Seed:         seed,
	})
	if err != nil {
		return SurvivalOutcome{}, err
	}
	return SurvivalOutcome{Run: run, Record: rec, Profile: prof}, nil
}
