package combat

import (
	"blackjack-roguelike/server/engine"
)

// PlayRecord is one attempted card play within a round.
type PlayRecord struct {
	Actor    engine.Participant `json:"actor"`
	CardID   string             `json:"card_id"`
	Name     string             `json:"name,omitempty"`
	Success  bool               `json:"success"`
	Messages []string           `json:"messages,omitempty"`
}

// Abilities implements engine.AbilityEngine over two combatants' hands.
type Abilities struct {
	round    *engine.Round
	fighters map[engine.Participant]*Combatant
	plays    []PlayRecord
}

func NewAbilities(r *engine.Round, player, enemy *Combatant) *Abilities {
	return &Abilities{
		round: r,
		fighters: map[engine.Participant]*Combatant{
			engine.Player: player,
			engine.Enemy:  enemy,
		},
	}
}

func (a *Abilities) Hand(p engine.Participant) []engine.CardView {
	f := a.fighters[p]
	if f == nil {
		return nil
	}
	out := make([]engine.CardView, 0, len(f.cards))
	for _, inst := range f.cards {
		out = append(out, inst.View(a.round.Modifiers.IsBlocked(p, inst.Def.Type)))
	}
	return out
}

// PlayCard removes the card from p's hand and executes it. A blocked type,
// an unknown id or a failed effect returns the card to its slot.
func (a *Abilities) PlayCard(p engine.Participant, instanceID string) (bool, error) {
	user, foe := a.fighters[p], a.fighters[p.Opponent()]
	if user == nil || foe == nil {
		return false, nil
	}
	inst, at, ok := user.take(instanceID)
	if !ok {
		a.plays = append(a.plays, PlayRecord{Actor: p, CardID: instanceID})
		return false, nil
	}
	rec := PlayRecord{Actor: p, CardID: instanceID, Name: inst.Def.Name}
	if a.round.Modifiers.IsBlocked(p, inst.Def.Type) {
		user.putBack(inst, at)
		rec.Messages = []string{string(inst.Def.Type) + " cards are restricted"}
		a.plays = append(a.plays, rec)
		return false, nil
	}

	res, err := Execute(inst.Def, EffectContext{Round: a.round, User: user, Opponent: foe})
	rec.Success, rec.Messages = res.Success, res.Messages
	a.plays = append(a.plays, rec)
	if err != nil || !res.Success {
		user.putBack(inst, at)
	}
	return res.Success, err
}

func (a *Abilities) RuleSnapshot() engine.RuleSnapshot { return a.round.Modifiers.Snapshot() }

func (a *Abilities) Plays() []PlayRecord { return append([]PlayRecord(nil), a.plays...) }
