package combat

import (
	"blackjack-roguelike/server/ability"
	"blackjack-roguelike/server/engine"
)

// Combatant carries hit points, shield and ability cards for one seat.
type Combatant struct {
	ID         engine.Participant
	Name       string
	MaxHP      int
	BaseAttack int
	HP         int
	Shield     int
	Strategy   engine.Strategy
	Behavior   Behavior

	loadout []*ability.Definition
	cards   []*ability.Instance
}

func NewCombatant(id engine.Participant, name string, maxHP, attack int, strategy engine.Strategy, loadout ...*ability.Definition) *Combatant {
	c := &Combatant{
		ID:         id,
		Name:       name,
		MaxHP:      maxHP,
		BaseAttack: attack,
		Strategy:   strategy,
		loadout:    append([]*ability.Definition(nil), loadout...),
	}
	c.Reset()
	return c
}

// ApplyDamage spends shield first and returns the HP actually lost.
func (c *Combatant) ApplyDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if c.Shield > 0 {
		absorbed := min(c.Shield, amount)
		c.Shield -= absorbed
		amount -= absorbed
	}
	dealt := min(c.HP, amount)
	c.HP -= dealt
	return dealt
}

func (c *Combatant) AddShield(amount int) {
	if amount > 0 {
		c.Shield += amount
	}
}

func (c *Combatant) Alive() bool { return c.HP > 0 }

// Reset restores HP, drops shield and rebuilds the hand from the loadout.
func (c *Combatant) Reset() {
	c.HP = c.MaxHP
	c.RefreshHand()
}

// RefreshHand rebuilds the hand from the loadout and drops shield, keeping HP.
func (c *Combatant) RefreshHand() {
	c.Shield = 0
	c.cards = make([]*ability.Instance, 0, len(c.loadout))
	for _, def := range c.loadout {
		c.cards = append(c.cards, ability.NewInstance(def))
	}
}

// Learn adds def to the loadout and grants a copy right away.
func (c *Combatant) Learn(def *ability.Definition) *ability.Instance {
	c.loadout = append(c.loadout, def)
	return c.Grant(def)
}

// Grant adds a copy to the current hand only.
func (c *Combatant) Grant(def *ability.Definition) *ability.Instance {
	inst := ability.NewInstance(def)
	c.cards = append(c.cards, inst)
	return inst
}

func (c *Combatant) Cards() []*ability.Instance { return append([]*ability.Instance(nil), c.cards...) }

func (c *Combatant) Loadout() []*ability.Definition {
	return append([]*ability.Definition(nil), c.loadout...)
}

func (c *Combatant) take(instanceID string) (*ability.Instance, int, bool) {
	for i, inst := range c.cards {
		if inst.ID == instanceID {
			c.cards = append(c.cards[:i], c.cards[i+1:]...)
			return inst, i, true
		}
	}
	return nil, -1, false
}

func (c *Combatant) putBack(inst *ability.Instance, at int) {
	if at < 0 || at > len(c.cards) {
		at = len(c.cards)
	}
	c.cards = append(c.cards, nil)
	copy(c.cards[at+1:], c.cards[at:])
	c.cards[at] = inst
}
