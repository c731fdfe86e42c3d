package engine

import (
	poker "github.com/paulhankin/poker"
)

// Convert our engine.Card -> library card.
func toPH(c Card) (poker.Card, bool) {
	var none poker.Card
	var s poker.Suit
	switch c.Suit {
	case Clubs:
		s = poker.Club
	case Diamonds:
		s = poker.Diamond
	case Hearts:
		s = poker.Heart
	case Spades:
		s = poker.Spade
	default:
		return none, false
	}
	// Library ranks: 1..13 with Ace=1.
	var r poker.Rank
	switch c.Rank {
	case Ace:
		r = poker.Rank(1)
	case Jack:
		r = poker.Rank(11)
	case Queen:
		r = poker.Rank(12)
	case King:
		r = poker.Rank(13)
	default:
		r = poker.Rank(c.Rank.Value())
	}
	card, err := poker.MakeCard(s, r)
	if err != nil {
		return none, false
	}
	return card, true
}

// DescribeHand gives a poker reading of a blackjack hand ("pair of kings",
// "flush" ...) for battle logs. Hands the library cannot describe return "".
func DescribeHand(cards []Card) string {
	pcs := make([]poker.Card, 0, len(cards))
	for _, c := range cards {
		pc, ok := toPH(c)
		if !ok {
			return ""
		}
		pcs = append(pcs, pc)
	}
	switch len(pcs) {
	case 3, 5, 7:
	default:
		return ""
	}
	d, err := poker.Describe(pcs)
	if err != nil {
		return ""
	}
	return d
}
