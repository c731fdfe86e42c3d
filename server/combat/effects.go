package combat

import (
	"errors"
	"fmt"
	"strings"

	"blackjack-roguelike/server/ability"
	"blackjack-roguelike/server/engine"
)

var ErrInvalidEffect = errors.New("invalid effect")

// EffectContext binds a card play to the round and both fighters.
type EffectContext struct {
	Round    *engine.Round
	User     *Combatant
	Opponent *Combatant
}

func (ctx EffectContext) fighter(p engine.Participant) *Combatant {
	if ctx.User != nil && ctx.User.ID == p {
		return ctx.User
	}
	return ctx.Opponent
}

type EffectResult struct {
	Success  bool     `json:"success"`
	Messages []string `json:"messages"`
}

// Execute applies def's effects in order and stops at the first failure.
// Effects applied before the failure stay applied.
func Execute(def *ability.Definition, ctx EffectContext) (EffectResult, error) {
	var res EffectResult
	if def == nil || ctx.Round == nil || ctx.User == nil || ctx.Opponent == nil {
		return res, fmt.Errorf("execute: incomplete context: %w", ErrInvalidEffect)
	}
	for i, e := range def.Effects {
		ok, msg, err := apply(e, ctx)
		if msg != "" {
			res.Messages = append(res.Messages, msg)
		}
		if err != nil {
			return res, fmt.Errorf("%s effect %d (%s): %w", def.ID, i, e.Kind, err)
		}
		if !ok {
			return res, nil
		}
	}
	res.Success = true
	return res, nil
}

func apply(e ability.Effect, ctx EffectContext) (bool, string, error) {
	r := ctx.Round
	actor := ctx.User.ID
	targets := e.Targets(actor)
	if e.Target == ability.Both && e.Kind != ability.RestrictCardType {
		return false, "", ErrInvalidEffect
	}
	t := targets[0]

	switch e.Kind {
	case ability.AdjustTotal:
		r.Modifiers.AdjustTotal(t, e.Amount)
		return true, fmt.Sprintf("%s total %+d", t, e.Amount), nil
	case ability.SetTotal:
		r.Modifiers.SetTotal(t, e.Amount)
		return true, fmt.Sprintf("%s total set to %d", t, e.Amount), nil
	case ability.ConvertToAce:
		if r.ConvertHighestCardToAce(t) {
			return true, fmt.Sprintf("%s highest card became an ace", t), nil
		}
		return true, fmt.Sprintf("%s has nothing to convert", t), nil
	case ability.PeekNext:
		n := max(e.Amount, 1)
		cards := r.PeekUpcomingCards(n)
		names := make([]string, len(cards))
		for i, c := range cards {
			names[i] = c.String()
		}
		return true, "next: " + strings.Join(names, " "), nil
	case ability.ForceDraw:
		c, err := r.ForceDraw(t)
		if err != nil {
			return false, "", err
		}
		return true, fmt.Sprintf("%s forced to draw %s", t, c), nil
	case ability.SwapFirstCard:
		if !r.SwapFirstCards() {
			return false, "no first cards to swap", nil
		}
		return true, "first cards swapped", nil
	case ability.DirectDamage:
		f := ctx.fighter(t)
		dealt := f.ApplyDamage(e.Amount)
		return true, fmt.Sprintf("%s takes %d damage", f.Name, dealt), nil
	case ability.AddShield:
		ctx.User.AddShield(e.Amount)
		return true, fmt.Sprintf("%s gains %d shield", ctx.User.Name, e.Amount), nil
	case ability.SetTargetLimit:
		r.Modifiers.SetTargetLimit(e.Amount)
		return true, fmt.Sprintf("target limit is now %d", r.Modifiers.TargetLimit()), nil
	case ability.RestrictCardType:
		for _, p := range targets {
			r.Modifiers.Block(p, e.CardType)
		}
		return true, fmt.Sprintf("%s cards restricted", e.CardType), nil
	}
	return false, "", fmt.Errorf("kind %q: %w", e.Kind, ErrInvalidEffect)
}
