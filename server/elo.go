package main

import "math"

// Elo rates the run's player against one enemy across repeated battles.
type Elo struct {
	Player, Enemy float64
	K             float64 // base K
	Games         int
}

func NewElo(start, k float64) Elo { return Elo{Player: start, Enemy: start, K: k} }

func (e Elo) expect() (ep, ee float64) {
	ep = 1.0 / (1.0 + math.Pow(10, (e.Enemy-e.Player)/400.0))
	return ep, 1.0 - ep
}

// UpdateBattle applies one battle and returns the deltas.
// margin is playerHP/maxHP minus enemyHP/maxHP, in [-1, 1]; rounds is the
// battle length.
func (e *Elo) UpdateBattle(margin float64, rounds int) (dp, de float64) {
	ep, ee := e.expect()

	sp := 0.5 + 0.5*math.Tanh(3*clamp(margin, -1, 1))
	se := 1.0 - sp

	k := e.K * lengthScale(rounds) * marginScale(margin) * decay(e.Games)
	dp = k * (sp - ep)
	de = k * (se - ee)

	e.Player += dp
	e.Enemy += de
	e.Games++
	return dp, de
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// lengthScale discounts very short battles, which are mostly luck.
func lengthScale(rounds int) float64 {
	if rounds <= 0 {
		return 1.0
	}
	return clamp(float64(rounds)/6.0, 0.5, 1.5)
}

func marginScale(margin float64) float64 {
	return 1.0 + 0.35*math.Tanh(2*math.Abs(margin)) // ≤ ~1.35
}

func decay(games int) float64 {
	return 1.0 / (1.0 + 0.01*float64(games))
}
