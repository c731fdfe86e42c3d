// Package ability holds the static ability card catalogue types and the
// per-grant card instances combatants carry.
package ability

import (
	"fmt"

	"blackjack-roguelike/server/engine"

	"github.com/google/uuid"
)

type Rarity string

const (
	Common    Rarity = "common"
	Uncommon  Rarity = "uncommon"
	Rare      Rarity = "rare"
	Legendary Rarity = "legendary"
)

type EffectKind string

const (
	AdjustTotal      EffectKind = "adjustTotal"
	SetTotal         EffectKind = "setTotal"
	ConvertToAce     EffectKind = "convertToAce"
	PeekNext         EffectKind = "peekNext"
	ForceDraw        EffectKind = "forceDraw"
	SwapFirstCard    EffectKind = "swapFirstCard"
	DirectDamage     EffectKind = "directDamage"
	AddShield        EffectKind = "addShield"
	SetTargetLimit   EffectKind = "setTargetLimit"
	RestrictCardType EffectKind = "restrictCardType"
)

var effectKinds = map[EffectKind]bool{
	AdjustTotal: true, SetTotal: true, ConvertToAce: true, PeekNext: true, ForceDraw: true,
	SwapFirstCard: true, DirectDamage: true, AddShield: true, SetTargetLimit: true, RestrictCardType: true,
}

type Target string

const (
	Self     Target = "self"
	Opponent Target = "opponent"
	Both     Target = "both"
)

// Effect is one step of a card. Amount doubles as the peek count.
type Effect struct {
	Kind     EffectKind      `yaml:"kind" json:"kind"`
	Target   Target          `yaml:"target,omitempty" json:"target,omitempty"`
	Amount   int             `yaml:"amount,omitempty" json:"amount,omitempty"`
	CardType engine.CardType `yaml:"card_type,omitempty" json:"card_type,omitempty"`
}

// Targets resolves the effect target relative to the acting seat. An empty
// target means self.
func (e Effect) Targets(actor engine.Participant) []engine.Participant {
	switch e.Target {
	case Opponent:
		return []engine.Participant{actor.Opponent()}
	case Both:
		return []engine.Participant{actor, actor.Opponent()}
	default:
		return []engine.Participant{actor}
	}
}

func (e Effect) Validate() error {
	if !effectKinds[e.Kind] {
		return fmt.Errorf("unknown effect kind %q", e.Kind)
	}
	switch e.Target {
	case "", Self, Opponent:
	case Both:
		if e.Kind != RestrictCardType {
			return fmt.Errorf("effect %s cannot target both", e.Kind)
		}
	default:
		return fmt.Errorf("unknown target %q", e.Target)
	}
	if e.Kind == RestrictCardType && !e.CardType.Valid() {
		return fmt.Errorf("restrictCardType needs a card type, got %q", e.CardType)
	}
	return nil
}

// Definition is content data shared by every instance of a card.
type Definition struct {
	ID          string          `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	Type        engine.CardType `yaml:"type" json:"type"`
	Rarity      Rarity          `yaml:"rarity" json:"rarity"`
	Description string          `yaml:"description" json:"description"`
	Effects     []Effect        `yaml:"effects" json:"effects"`
	Tags        []string        `yaml:"tags,omitempty" json:"tags,omitempty"`
}

func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("card without id")
	}
	if !d.Type.Valid() {
		return fmt.Errorf("card %s: unknown type %q", d.ID, d.Type)
	}
	if len(d.Effects) == 0 {
		return fmt.Errorf("card %s: no effects", d.ID)
	}
	for i, e := range d.Effects {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("card %s effect %d: %w", d.ID, i, err)
		}
	}
	return nil
}

// Instance is one granted copy of a card.
type Instance struct {
	ID  string
	Def *Definition
}

func NewInstance(def *Definition) *Instance {
	return &Instance{ID: uuid.NewString(), Def: def}
}

func (i *Instance) View(blocked bool) engine.CardView {
	return engine.CardView{
		InstanceID:   i.ID,
		DefinitionID: i.Def.ID,
		Name:         i.Def.Name,
		Type:         i.Def.Type,
		Tags:         i.Def.Tags,
		Blocked:      blocked,
	}
}
