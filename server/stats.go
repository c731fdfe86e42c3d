package main

import (
	"math"
	"math/rand"
	"sort"

	"blackjack-roguelike/server/engine"
	"blackjack-roguelike/server/survival"
)

// DuelStats aggregates repeated battles against one enemy.
type DuelStats struct {
	Battles  int
	Wins     int
	Losses   int
	Draws    int
	Capped   int
	Rounds   int
	BustWins int
	Margins  []float64 // player HP fraction minus enemy HP fraction
}

func (s *DuelStats) Add(res survival.BattleResult, playerMax, enemyMax int) float64 {
	s.Battles++
	switch res.Winner {
	case engine.Player:
		s.Wins++
	case engine.Enemy:
		s.Losses++
	default:
		s.Draws++
	}
	if res.Capped {
		s.Capped++
	}
	s.Rounds += len(res.Rounds)
	s.BustWins += res.BustWins
	m := hpFraction(res.PlayerHP, playerMax) - hpFraction(res.EnemyHP, enemyMax)
	s.Margins = append(s.Margins, m)
	return m
}

func (s *DuelStats) WinRate() float64 {
	if s.Battles == 0 {
		return 0
	}
	return (float64(s.Wins) + 0.5*float64(s.Draws)) / float64(s.Battles)
}

func (s *DuelStats) RoundsPerBattle() float64 {
	if s.Battles == 0 {
		return 0
	}
	return float64(s.Rounds) / float64(s.Battles)
}

func (s *DuelStats) MeanMargin() float64 {
	if len(s.Margins) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range s.Margins {
		sum += m
	}
	return sum / float64(len(s.Margins))
}

func hpFraction(hp, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(hp) / float64(max)
}

// WilsonCI95 for the win rate, counting draws as half a win.
func WilsonCI95(wins, ties, total int) (low, hi float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := (float64(wins) + 0.5*float64(ties)) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}

// BootstrapCI95 for the mean of vals, resampled B times from rng.
func BootstrapCI95(vals []float64, B int, rng *rand.Rand) (low, hi float64) {
	n := len(vals)
	if n == 0 || B <= 1 {
		return 0, 0
	}
	res := make([]float64, B)
	for b := 0; b < B; b++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += vals[rng.Intn(n)]
		}
		res[b] = sum / float64(n)
	}
	sort.Float64s(res)
	l := int(0.025 * float64(B-1))
	h := int(0.975 * float64(B-1))
	return res[l], res[h]
}
