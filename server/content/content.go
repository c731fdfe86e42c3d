// Package content loads the YAML tables of ability cards, enemies, waves,
// unlock rules and meta upgrades.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"blackjack-roguelike/server/ability"
	"blackjack-roguelike/server/agent"
	"blackjack-roguelike/server/combat"
	"blackjack-roguelike/server/engine"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	ErrUnknownEnemy = errors.New("unknown enemy")
	ErrUnknownCard  = errors.New("unknown card")
)

type Document struct {
	Version  string               `yaml:"version" json:"version"`
	Player   PlayerDef            `yaml:"player" json:"player"`
	Cards    []ability.Definition `yaml:"cards" json:"cards"`
	Enemies  []EnemyDef           `yaml:"enemies" json:"enemies"`
	Waves    []Wave               `yaml:"waves" json:"waves"`
	Unlocks  []UnlockRule         `yaml:"unlocks" json:"unlocks"`
	Upgrades []UpgradeDef         `yaml:"upgrades" json:"upgrades"`
}

type PlayerDef struct {
	Name       string   `yaml:"name" json:"name"`
	MaxHP      int      `yaml:"max_hp" json:"max_hp"`
	BaseAttack int      `yaml:"base_attack" json:"base_attack"`
	Strategy   string   `yaml:"strategy" json:"strategy"`
	Loadout    []string `yaml:"loadout" json:"loadout"`
	RewardPool []string `yaml:"reward_pool" json:"reward_pool"` // always unlocked
}

type EnemyDef struct {
	ID         string          `yaml:"id" json:"id"`
	Name       string          `yaml:"name" json:"name"`
	MaxHP      int             `yaml:"max_hp" json:"max_hp"`
	BaseAttack int             `yaml:"base_attack" json:"base_attack"`
	Strategy   string          `yaml:"strategy" json:"strategy"`
	Behavior   combat.Behavior `yaml:"behavior" json:"behavior"`
	Loadout    []string        `yaml:"loadout" json:"loadout"`
}

// Wave is a list of enemies fought back to back.
type Wave struct {
	Enemies []string `yaml:"enemies" json:"enemies"`
}

// UnlockRule adds Card to the reward pool once a run reaches MinWave.
type UnlockRule struct {
	Card    string `yaml:"card" json:"card"`
	MinWave int    `yaml:"min_wave" json:"min_wave"`
}

type UpgradeKind string

const (
	UpgradeMaxHP        UpgradeKind = "max_hp"
	UpgradeBaseAttack   UpgradeKind = "base_attack"
	UpgradeStartingCard UpgradeKind = "starting_card"
)

type UpgradeDef struct {
	ID       string      `yaml:"id" json:"id"`
	Name     string      `yaml:"name" json:"name"`
	Kind     UpgradeKind `yaml:"kind" json:"kind"`
	Amount   int         `yaml:"amount,omitempty" json:"amount,omitempty"`
	Card     string      `yaml:"card,omitempty" json:"card,omitempty"`
	Cost     int         `yaml:"cost" json:"cost"` // per level: cost * next level
	MaxLevel int         `yaml:"max_level" json:"max_level"`
	Requires []string    `yaml:"requires,omitempty" json:"requires,omitempty"`
}

// Price is the cost of buying level `level` (1-based).
func (u UpgradeDef) Price(level int) int { return u.Cost * level }

// Catalog is a validated Document with id lookups.
type Catalog struct {
	doc      Document
	cards    map[string]*ability.Definition
	enemies  map[string]EnemyDef
	upgrades map[string]UpgradeDef
}

func Default() (*Catalog, error) { return Parse(defaultYAML) }

// Load reads path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Parse(b []byte) (*Catalog, error) {
	var doc Document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	return New(doc)
}

func New(doc Document) (*Catalog, error) {
	c := &Catalog{
		doc:      doc,
		cards:    map[string]*ability.Definition{},
		enemies:  map[string]EnemyDef{},
		upgrades: map[string]UpgradeDef{},
	}
	for i := range c.doc.Cards {
		d := &c.doc.Cards[i]
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.cards[d.ID]; dup {
			return nil, fmt.Errorf("duplicate card %s", d.ID)
		}
		c.cards[d.ID] = d
	}
	if err := c.validatePlayer(); err != nil {
		return nil, err
	}
	for _, e := range doc.Enemies {
		if err := c.validateEnemy(e); err != nil {
			return nil, err
		}
		if _, dup := c.enemies[e.ID]; dup {
			return nil, fmt.Errorf("duplicate enemy %s", e.ID)
		}
		c.enemies[e.ID] = e
	}
	for i, w := range doc.Waves {
		if len(w.Enemies) == 0 {
			return nil, fmt.Errorf("wave %d has no enemies", i+1)
		}
		for _, id := range w.Enemies {
			if _, ok := c.enemies[id]; !ok {
				return nil, fmt.Errorf("wave %d: %s: %w", i+1, id, ErrUnknownEnemy)
			}
		}
	}
	for _, u := range doc.Unlocks {
		if err := c.known(u.Card); err != nil {
			return nil, fmt.Errorf("unlock: %w", err)
		}
	}
	for _, u := range doc.Upgrades {
		if u.ID == "" || u.MaxLevel < 1 || u.Cost < 0 {
			return nil, fmt.Errorf("upgrade %q: needs id, max_level >= 1 and cost >= 0", u.ID)
		}
		switch u.Kind {
		case UpgradeMaxHP, UpgradeBaseAttack:
		case UpgradeStartingCard:
			if err := c.known(u.Card); err != nil {
				return nil, fmt.Errorf("upgrade %s: %w", u.ID, err)
			}
		default:
			return nil, fmt.Errorf("upgrade %s: unknown kind %q", u.ID, u.Kind)
		}
		c.upgrades[u.ID] = u
	}
	for _, u := range doc.Upgrades {
		for _, req := range u.Requires {
			if _, ok := c.upgrades[req]; !ok {
				return nil, fmt.Errorf("upgrade %s requires unknown upgrade %s", u.ID, req)
			}
		}
	}
	return c, nil
}

func (c *Catalog) known(id string) error {
	if _, ok := c.cards[id]; !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownCard)
	}
	return nil
}

func (c *Catalog) validatePlayer() error {
	p := c.doc.Player
	if p.MaxHP <= 0 {
		return fmt.Errorf("player: max_hp must be positive")
	}
	if _, err := agent.Parse(p.Strategy); err != nil {
		return fmt.Errorf("player: %w", err)
	}
	for _, id := range append(append([]string(nil), p.Loadout...), p.RewardPool...) {
		if err := c.known(id); err != nil {
			return fmt.Errorf("player: %w", err)
		}
	}
	return nil
}

func (c *Catalog) validateEnemy(e EnemyDef) error {
	if e.ID == "" || e.MaxHP <= 0 {
		return fmt.Errorf("enemy %q: needs id and positive max_hp", e.ID)
	}
	if err := e.Behavior.Validate(); err != nil {
		return fmt.Errorf("enemy %s: %w", e.ID, err)
	}
	if _, err := agent.Parse(e.Strategy); err != nil {
		return fmt.Errorf("enemy %s: %w", e.ID, err)
	}
	for _, id := range e.Loadout {
		if err := c.known(id); err != nil {
			return fmt.Errorf("enemy %s: %w", e.ID, err)
		}
	}
	return nil
}

func (c *Catalog) Document() Document { return c.doc }

func (c *Catalog) Player() PlayerDef { return c.doc.Player }

func (c *Catalog) Waves() []Wave { return c.doc.Waves }

func (c *Catalog) Unlocks() []UnlockRule { return c.doc.Unlocks }

func (c *Catalog) Upgrades() []UpgradeDef { return c.doc.Upgrades }

func (c *Catalog) Upgrade(id string) (UpgradeDef, bool) {
	u, ok := c.upgrades[id]
	return u, ok
}

func (c *Catalog) Card(id string) (*ability.Definition, error) {
	d, ok := c.cards[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownCard)
	}
	return d, nil
}

func (c *Catalog) Cards(ids []string) ([]*ability.Definition, error) {
	out := make([]*ability.Definition, 0, len(ids))
	for _, id := range ids {
		d, err := c.Card(id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (c *Catalog) Enemy(id string) (EnemyDef, error) {
	e, ok := c.enemies[id]
	if !ok {
		return EnemyDef{}, fmt.Errorf("%s: %w", id, ErrUnknownEnemy)
	}
	return e, nil
}

// NewEnemy builds a fresh enemy combatant.
func (c *Catalog) NewEnemy(id string) (*combat.Combatant, error) {
	e, err := c.Enemy(id)
	if err != nil {
		return nil, err
	}
	strategy, err := agent.Parse(e.Strategy)
	if err != nil {
		return nil, err
	}
	loadout, err := c.Cards(e.Loadout)
	if err != nil {
		return nil, err
	}
	name := e.Name
	if name == "" {
		name = e.ID
	}
	f := combat.NewCombatant(engine.Enemy, name, e.MaxHP, e.BaseAttack, strategy, loadout...)
	f.Behavior = e.Behavior
	return f, nil
}

// NewPlayer builds the player combatant from def, normally Player() with
// meta upgrades applied.
func (c *Catalog) NewPlayer(def PlayerDef) (*combat.Combatant, error) {
	strategy, err := agent.Parse(def.Strategy)
	if err != nil {
		return nil, err
	}
	loadout, err := c.Cards(def.Loadout)
	if err != nil {
		return nil, err
	}
	return combat.NewCombatant(engine.Player, def.Name, def.MaxHP, def.BaseAttack, strategy, loadout...), nil
}
