package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

var (
	ErrDeckEmpty          = errors.New("deck is empty")
	ErrDeckNotInitialized = errors.New("deck not initialized")
)

type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

var ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// Value is the blackjack value before soft-ace reduction.
func (r Rank) Value() int {
	switch r {
	case Ace:
		return 11
	case Jack, Queen, King, Ten:
		return 10
	case Two, Three, Four, Five, Six, Seven, Eight, Nine:
		return int(r[0] - '0')
	}
	return 0
}

type Suit string

const (
	Clubs    Suit = "clubs"
	Diamonds Suit = "diamonds"
	Hearts   Suit = "hearts"
	Spades   Suit = "spades"
)

var suits = []Suit{Clubs, Diamonds, Hearts, Spades}

func (s Suit) symbol() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	}
	return "?"
}

type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
} // e.g. "10♥" => rank "10", suit hearts

func (c Card) String() string { return string(c.Rank) + c.Suit.symbol() }

// ParseCard accepts "10h", "Qs", "A♠" and similar shorthands.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Card{}, fmt.Errorf("parse card %q: too short", s)
	}
	var suit Suit
	var rank string
	switch {
	case strings.HasSuffix(s, "♣"):
		suit, rank = Clubs, strings.TrimSuffix(s, "♣")
	case strings.HasSuffix(s, "♦"):
		suit, rank = Diamonds, strings.TrimSuffix(s, "♦")
	case strings.HasSuffix(s, "♥"):
		suit, rank = Hearts, strings.TrimSuffix(s, "♥")
	case strings.HasSuffix(s, "♠"):
		suit, rank = Spades, strings.TrimSuffix(s, "♠")
	default:
		rank = s[:len(s)-1]
		switch s[len(s)-1] {
		case 'c', 'C':
			suit = Clubs
		case 'd', 'D':
			suit = Diamonds
		case 'h', 'H':
			suit = Hearts
		case 's', 'S':
			suit = Spades
		default:
			return Card{}, fmt.Errorf("parse card %q: unknown suit", s)
		}
	}
	rank = strings.ToUpper(rank)
	if rank == "T" {
		rank = "10"
	}
	r := Rank(rank)
	if r.Value() == 0 {
		return Card{}, fmt.Errorf("parse card %q: unknown rank", s)
	}
	return Card{Rank: r, Suit: suit}, nil
}

func ParseCards(in []string) ([]Card, error) {
	out := make([]Card, 0, len(in))
	for _, s := range in {
		c, err := ParseCard(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Deck is an ordered pile; index 0 is the next draw.
type Deck struct {
	cards []Card
}

func NewDeck(cards ...Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

// StandardDeck returns the 52 cards in suit-major order, unshuffled.
func StandardDeck() *Deck {
	d := &Deck{cards: make([]Card, 0, 52)}
	for _, s := range suits {
		for _, r := range ranks {
			d.cards = append(d.cards, Card{Rank: r, Suit: s})
		}
	}
	return d
}

// NewShuffledDeck seeds its own source; seed 0 uses the clock.
func NewShuffledDeck(seed int64) *Deck {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	d := StandardDeck()
	d.Shuffle(rand.New(rand.NewSource(seed)))
	return d
}

// Shuffle is a Fisher-Yates pass driven by r.
func (d *Deck) Shuffle(r *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckEmpty
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, nil
}

// Peek returns up to n upcoming cards without drawing them.
func (d *Deck) Peek(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	if n <= 0 {
		return nil
	}
	return append([]Card(nil), d.cards[:n]...)
}

func (d *Deck) Len() int { return len(d.cards) }

type Hand struct {
	cards []Card
}

func (h *Hand) Add(c Card)    { h.cards = append(h.cards, c) }
func (h *Hand) Clear()        { h.cards = h.cards[:0] }
func (h *Hand) Len() int      { return len(h.cards) }
func (h *Hand) Cards() []Card { return append([]Card(nil), h.cards...) }
