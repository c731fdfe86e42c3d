package judge

import (
	"blackjack-roguelike/server/engine"
)

// Unseen returns the standard 52 minus every card in known. Duplicates in
// known only remove one copy each.
func Unseen(known ...[]engine.Card) []engine.Card {
	used := map[engine.Card]int{}
	for _, set := range known {
		for _, c := range set {
			used[c]++
		}
	}
	all := engine.StandardDeck().Peek(52)
	out := make([]engine.Card, 0, len(all))
	for _, c := range all {
		if used[c] > 0 {
			used[c]--
			continue
		}
		out = append(out, c)
	}
	return out
}

// BustChance enumerates every unseen card as the next draw and returns the
// fraction that busts hand under targetLimit. known should include hand.
func BustChance(hand, known []engine.Card, targetLimit int) float64 {
	pool := Unseen(known)
	if len(pool) == 0 {
		return 0
	}
	next := make([]engine.Card, len(hand)+1)
	copy(next, hand)
	busts := 0
	for _, c := range pool {
		next[len(hand)] = c
		if engine.CalculateScore(next, targetLimit).Busted {
			busts++
		}
	}
	return float64(busts) / float64(len(pool))
}

// Outs counts unseen cards that land the hand exactly on targetLimit.
func Outs(hand, known []engine.Card, targetLimit int) int {
	next := make([]engine.Card, len(hand)+1)
	copy(next, hand)
	n := 0
	for _, c := range Unseen(known) {
		next[len(hand)] = c
		if s := engine.CalculateScore(next, targetLimit); !s.Busted && s.Total == targetLimit {
			n++
		}
	}
	return n
}
