package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// Round owns one deck, both hands, the stood flags and the modifier overlay.
// It knows nothing about hit points; combat correlates by Participant.
type Round struct {
	deck      *Deck
	hands     map[Participant]*Hand
	stood     map[Participant]bool
	Modifiers *RoundModifiers
	rng       *rand.Rand
}

// NewRound uses rng to shuffle the standard deck when Start has no override.
// A nil rng is seeded from the clock.
func NewRound(rng *rand.Rand) *Round {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Round{
		hands:     map[Participant]*Hand{Player: {}, Enemy: {}},
		stood:     map[Participant]bool{},
		Modifiers: NewRoundModifiers(),
		rng:       rng,
	}
}

// Start replaces the deck, clears hands, flags and modifiers, then deals two
// cards each: player, enemy, player, enemy.
func (r *Round) Start(deck *Deck) error {
	if deck == nil {
		deck = StandardDeck()
		deck.Shuffle(r.rng)
	}
	r.deck = deck
	for _, h := range r.hands {
		h.Clear()
	}
	r.stood = map[Participant]bool{}
	r.Modifiers.Reset()
	for i := 0; i < 2; i++ {
		for _, p := range []Participant{Player, Enemy} {
			if _, err := r.Hit(p); err != nil {
				return fmt.Errorf("deal opening hand: %w", err)
			}
		}
	}
	return nil
}

func (r *Round) Hit(p Participant) (Card, error) {
	if r.deck == nil {
		return Card{}, ErrDeckNotInitialized
	}
	c, err := r.deck.Draw()
	if err != nil {
		return Card{}, fmt.Errorf("%s draw: %w", p, err)
	}
	r.hands[p].Add(c)
	return c, nil
}

func (r *Round) Stand(p Participant)      { r.stood[p] = true }
func (r *Round) Stood(p Participant) bool { return r.stood[p] }

func (r *Round) Cards(p Participant) []Card { return r.hands[p].Cards() }

// HandScore scores the hand under the current limit and applies the overlay.
func (r *Round) HandScore(p Participant) HandScore {
	base := CalculateScore(r.hands[p].cards, r.Modifiers.TargetLimit())
	return r.Modifiers.ApplyToScore(p, base)
}

func (r *Round) Busted(p Participant) bool { return r.HandScore(p).Busted }

func (r *Round) DeckRemaining() int {
	if r.deck == nil {
		return 0
	}
	return r.deck.Len()
}

// ConvertHighestCardToAce turns the first highest-valued non-ace into an ace.
func (r *Round) ConvertHighestCardToAce(p Participant) bool {
	h := r.hands[p]
	best := -1
	for i, c := range h.cards {
		if c.Rank == Ace {
			continue
		}
		if best < 0 || c.Rank.Value() > h.cards[best].Rank.Value() {
			best = i
		}
	}
	if best < 0 {
		return false
	}
	h.cards[best].Rank = Ace
	return true
}

// DowngradeHighestCard turns the highest raw-valued card (ace as 11) into a 2.
func (r *Round) DowngradeHighestCard(p Participant) bool {
	h := r.hands[p]
	if len(h.cards) == 0 {
		return false
	}
	best := 0
	for i, c := range h.cards {
		if c.Rank.Value() > h.cards[best].Rank.Value() {
			best = i
		}
	}
	h.cards[best].Rank = Two
	return true
}

func (r *Round) PeekUpcomingCards(n int) []Card {
	if r.deck == nil {
		return nil
	}
	return r.deck.Peek(n)
}

// ForceDraw re-opens a finished turn: the stood flag is cleared before drawing.
func (r *Round) ForceDraw(p Participant) (Card, error) {
	r.stood[p] = false
	return r.Hit(p)
}

func (r *Round) SwapFirstCards() bool {
	ph, eh := r.hands[Player], r.hands[Enemy]
	if len(ph.cards) == 0 || len(eh.cards) == 0 {
		return false
	}
	ph.cards[0], eh.cards[0] = eh.cards[0], ph.cards[0]
	return true
}
