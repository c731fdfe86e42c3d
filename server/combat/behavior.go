package combat

import (
	"fmt"

	"blackjack-roguelike/server/engine"
)

type BehaviorKind string

const (
	BehaviorNone       BehaviorKind = "none"
	BehaviorSwapFirst  BehaviorKind = "swap_first_card"
	BehaviorBulwark    BehaviorKind = "bulwark"
	BehaviorLowerLimit BehaviorKind = "lower_limit"
)

// Behavior is an enemy quirk applied after the opening deal of every round.
type Behavior struct {
	Kind   BehaviorKind `yaml:"kind" json:"kind"`
	Amount int          `yaml:"amount,omitempty" json:"amount,omitempty"`
}

func (b Behavior) Validate() error {
	switch b.Kind {
	case "", BehaviorNone, BehaviorSwapFirst:
		return nil
	case BehaviorBulwark, BehaviorLowerLimit:
		if b.Amount <= 0 {
			return fmt.Errorf("behavior %s needs a positive amount", b.Kind)
		}
		return nil
	}
	return fmt.Errorf("unknown behavior %q", b.Kind)
}

func (b Behavior) OnRoundStart(r *engine.Round, self *Combatant) {
	switch b.Kind {
	case BehaviorSwapFirst:
		mine, theirs := r.Cards(self.ID), r.Cards(self.ID.Opponent())
		if len(mine) > 0 && len(theirs) > 0 && mine[0].Rank.Value() < theirs[0].Rank.Value() {
			r.SwapFirstCards()
		}
	case BehaviorBulwark:
		self.AddShield(b.Amount)
	case BehaviorLowerLimit:
		r.Modifiers.SetTargetLimit(b.Amount)
	}
}
