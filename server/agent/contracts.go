package agent

import (
	"fmt"

	"blackjack-roguelike/server/engine"
)

type CardObs struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Tags    []string `json:"tags"`
	Blocked bool     `json:"blocked"`
}

// Observation is the flattened view handed to scripted agents.
type Observation struct {
	Seat          string    `json:"seat"`
	Hand          []string  `json:"hand"`
	Total         int       `json:"total"`
	Soft          bool      `json:"soft"`
	OpponentHand  []string  `json:"opponent_hand"`
	OpponentTotal int       `json:"opponent_total"`
	OpponentStood bool      `json:"opponent_stood"`
	DeckRemaining int       `json:"deck_remaining"`
	TargetLimit   int       `json:"target_limit"`
	BustChance    float64   `json:"bust_chance"` // next draw, over unseen cards
	Outs          int       `json:"outs"`        // unseen cards landing exactly on the limit
	Cards         []CardObs `json:"cards"`
	Legal         []string  `json:"legal_actions"` // subset of hit/stand/playCard
}

type ActionOut struct {
	Action string `json:"action"`
	CardID string `json:"card_id,omitempty"` // required for playCard
}

// BuildObservation converts a round context into the JSON-shaped observation.
func BuildObservation(p engine.Participant, ctx engine.RoundContext) Observation {
	o := Observation{
		Seat:          string(p),
		Hand:          cardsToStr(ctx.Self.Cards),
		Total:         ctx.Self.Score.Total,
		Soft:          ctx.Self.Score.Soft,
		OpponentHand:  cardsToStr(ctx.Opponent.Cards),
		OpponentTotal: ctx.Opponent.Score.Total,
		OpponentStood: ctx.Opponent.Stood,
		DeckRemaining: ctx.DeckRemaining,
		TargetLimit:   ctx.Rules.TargetLimit,
		Cards:         make([]CardObs, 0, len(ctx.Abilities)),
		Legal:         []string{string(engine.Hit), string(engine.Stand)},
	}
	o.BustChance, o.Outs = odds(ctx)
	playable := false
	for _, c := range ctx.Abilities {
		o.Cards = append(o.Cards, CardObs{ID: c.InstanceID, Name: c.Name, Type: string(c.Type), Tags: c.Tags, Blocked: c.Blocked})
		playable = playable || !c.Blocked
	}
	if playable {
		o.Legal = append(o.Legal, string(engine.PlayCard))
	}
	return o
}

func cardsToStr(cs []engine.Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

// Validate checks a scripted action against the observation and converts it.
func Validate(o Observation, a ActionOut) (engine.Decision, error) {
	ok := false
	for _, la := range o.Legal {
		if la == a.Action {
			ok = true
			break
		}
	}
	if !ok {
		return engine.Decision{}, fmt.Errorf("illegal action %q (legals: %v)", a.Action, o.Legal)
	}
	switch engine.DecisionKind(a.Action) {
	case engine.Hit:
		return engine.HitDecision(), nil
	case engine.Stand:
		return engine.StandDecision(), nil
	}
	if a.CardID == "" {
		return engine.Decision{}, fmt.Errorf("playCard requires card_id")
	}
	for _, c := range o.Cards {
		if c.ID == a.CardID {
			if c.Blocked {
				return engine.Decision{}, fmt.Errorf("card %s is restricted this round", a.CardID)
			}
			return engine.PlayDecision(a.CardID), nil
		}
	}
	return engine.Decision{}, fmt.Errorf("card %s not in hand", a.CardID)
}
