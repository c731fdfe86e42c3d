package combat

import (
	"fmt"
	"math/rand"

	"blackjack-roguelike/server/engine"
)

const DefaultBustMultiplier = 2

type DamageReason string

const (
	ReasonStandard DamageReason = "standard"
	ReasonBust     DamageReason = "bust"
	ReasonPush     DamageReason = "push"
)

type Config struct {
	BustMultiplier  int // zero means DefaultBustMultiplier
	MaxPhaseActions int
}

// RoundSummary is everything callers learn about a resolved round.
type RoundSummary struct {
	Outcome      engine.Outcome     `json:"outcome"`
	PlayerScore  engine.HandScore   `json:"player_score"`
	EnemyScore   engine.HandScore   `json:"enemy_score"`
	PlayerCards  []engine.Card      `json:"player_cards"`
	EnemyCards   []engine.Card      `json:"enemy_cards"`
	Target       engine.Participant `json:"target,omitempty"`
	Reason       DamageReason       `json:"reason"`
	RawDamage    int                `json:"raw_damage"`
	Damage       int                `json:"damage"`
	PlayerHP     int                `json:"player_hp"`
	EnemyHP      int                `json:"enemy_hp"`
	PlayerShield int                `json:"player_shield"`
	EnemyShield  int                `json:"enemy_shield"`
	Plays        []PlayRecord       `json:"plays,omitempty"`
}

// System runs rounds between two combatants on one reusable Round.
type System struct {
	cfg Config
	tc  *engine.TurnController
}

func NewSystem(cfg Config, rng *rand.Rand) *System {
	if cfg.BustMultiplier <= 0 {
		cfg.BustMultiplier = DefaultBustMultiplier
	}
	return &System{cfg: cfg, tc: engine.NewTurnController(engine.NewRound(rng))}
}

func (s *System) Subscribe(l engine.Listener) { s.tc.Subscribe(l) }

func (s *System) Round() *engine.Round { return s.tc.Round() }

// ExecuteRound plays one round and applies damage to the loser. deck may be
// nil for a freshly shuffled standard deck.
func (s *System) ExecuteRound(player, enemy *Combatant, deck *engine.Deck) (RoundSummary, error) {
	if player == nil || enemy == nil || player.ID != engine.Player || enemy.ID != engine.Enemy {
		return RoundSummary{}, fmt.Errorf("execute round: combatants must sit player then enemy")
	}
	abilities := NewAbilities(s.tc.Round(), player, enemy)
	res, err := s.tc.Run(player.Strategy, enemy.Strategy, engine.RunOptions{
		Deck:      deck,
		Abilities: abilities,
		OnRoundStart: func(r *engine.Round) error {
			player.Behavior.OnRoundStart(r, player)
			enemy.Behavior.OnRoundStart(r, enemy)
			return nil
		},
		MaxPhaseActions: s.cfg.MaxPhaseActions,
	})
	if err != nil {
		return RoundSummary{}, err
	}

	sum := RoundSummary{
		Outcome:     res.Outcome,
		PlayerScore: res.PlayerScore,
		EnemyScore:  res.EnemyScore,
		PlayerCards: res.PlayerCards,
		EnemyCards:  res.EnemyCards,
		Reason:      ReasonPush,
		Plays:       abilities.Plays(),
	}
	if winner := res.Outcome.Winner(); winner != "" {
		atk, def := player, enemy
		if winner == engine.Enemy {
			atk, def = enemy, player
		}
		mult := 1
		sum.Reason = ReasonStandard
		if s.tc.Round().Busted(def.ID) {
			mult = s.cfg.BustMultiplier
			sum.Reason = ReasonBust
		}
		sum.Target = def.ID
		sum.RawDamage = atk.BaseAttack * mult
		sum.Damage = def.ApplyDamage(sum.RawDamage)
	}
	sum.PlayerHP, sum.EnemyHP = player.HP, enemy.HP
	sum.PlayerShield, sum.EnemyShield = player.Shield, enemy.Shield
	return sum, nil
}
