package engine

import "slices"

// CardView is what a strategy sees of one ability card in hand.
type CardView struct {
	InstanceID   string   `json:"instance_id"`
	DefinitionID string   `json:"definition_id"`
	Name         string   `json:"name"`
	Type         CardType `json:"type"`
	Tags         []string `json:"tags,omitempty"`
	Blocked      bool     `json:"blocked"`
}

func (c CardView) HasTag(tag string) bool { return slices.Contains(c.Tags, tag) }

// AbilityEngine is how the turn controller reaches ability cards. PlayCard
// reports gameplay failures as false; the error is reserved for fatal
// conditions such as an exhausted deck.
type AbilityEngine interface {
	Hand(p Participant) []CardView
	PlayCard(p Participant, instanceID string) (bool, error)
	RuleSnapshot() RuleSnapshot
}

// NoAbilities holds no cards and fails every play. It lets the blackjack rules
// run without a combat layer.
type NoAbilities struct {
	Round *Round
}

func (NoAbilities) Hand(Participant) []CardView                { return nil }
func (NoAbilities) PlayCard(Participant, string) (bool, error) { return false, nil }

func (n NoAbilities) RuleSnapshot() RuleSnapshot {
	if n.Round == nil {
		return RuleSnapshot{TargetLimit: DefaultTargetLimit}
	}
	return n.Round.Modifiers.Snapshot()
}
