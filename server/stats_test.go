package main

import (
	"math/rand"
	"testing"

	"blackjack-roguelike/server/engine"
	"blackjack-roguelike/server/survival"

	"github.com/stretchr/testify/assert"
)

func TestEloRewardsHPMargin(t *testing.T) {
	e := NewElo(1500, 24)
	dp, de := e.UpdateBattle(0.5, 6)
	assert.Greater(t, dp, 0.0)
	assert.InDelta(t, -dp, de, 1e-9)
	assert.Equal(t, 1, e.Games)

	even := NewElo(1500, 24)
	dp, _ = even.UpdateBattle(0, 6)
	assert.InDelta(t, 0, dp, 1e-9)

	e2 := NewElo(1500, 24)
	small, _ := e2.UpdateBattle(0.1, 6)
	e3 := NewElo(1500, 24)
	big, _ := e3.UpdateBattle(0.9, 6)
	assert.Greater(t, big, small)
}

func TestEloShortBattlesCountLess(t *testing.T) {
	a, b := NewElo(1500, 24), NewElo(1500, 24)
	short, _ := a.UpdateBattle(0.5, 1)
	long, _ := b.UpdateBattle(0.5, 6)
	assert.Less(t, short, long)
}

func TestDuelStats(t *testing.T) {
	var s DuelStats
	m := s.Add(survival.BattleResult{Winner: engine.Player, PlayerHP: 20, EnemyHP: 0, BustWins: 1}, 40, 30)
	assert.InDelta(t, 0.5, m, 1e-9)
	s.Add(survival.BattleResult{Winner: engine.Enemy, PlayerHP: 0, EnemyHP: 15}, 40, 30)
	s.Add(survival.BattleResult{Capped: true, PlayerHP: 20, EnemyHP: 15}, 40, 30)

	assert.Equal(t, 3, s.Battles)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 1, s.Draws)
	assert.Equal(t, 1, s.Capped)
	assert.Equal(t, 1, s.BustWins)
	assert.InDelta(t, 0.5, s.WinRate(), 1e-9)
	assert.InDelta(t, 0, s.MeanMargin(), 1e-9)
}

func TestWilsonCI95(t *testing.T) {
	lo, hi := WilsonCI95(0, 0, 0)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)

	lo, hi = WilsonCI95(50, 0, 100)
	assert.Less(t, lo, 0.5)
	assert.Greater(t, hi, 0.5)
	assert.InDelta(t, 1.0, lo+hi, 1e-9)
}

func TestBootstrapCI95(t *testing.T) {
	vals := []float64{0.2, 0.2, 0.2, 0.2}
	lo, hi := BootstrapCI95(vals, 200, rand.New(rand.NewSource(1)))
	assert.InDelta(t, 0.2, lo, 1e-9)
	assert.InDelta(t, 0.2, hi, 1e-9)

	lo, hi = BootstrapCI95(nil, 200, rand.New(rand.NewSource(1)))
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}
