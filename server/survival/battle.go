package survival

import (
	"fmt"

	"blackjack-roguelike/server/combat"
	"blackjack-roguelike/server/engine"
)

const DefaultMaxRounds = 50

type BattleOptions struct {
	MaxRounds int // zero means DefaultMaxRounds

	// Deck supplies the deck for round n (0-based); nil or a nil return
	// shuffles a standard deck.
	Deck func(n int) *engine.Deck
}

type BattleResult struct {
	Enemy    string                `json:"enemy"`
	Winner   engine.Participant    `json:"winner,omitempty"`
	Capped   bool                  `json:"capped"`
	Rounds   []combat.RoundSummary `json:"rounds"`
	BustWins int                   `json:"bust_wins"` // player wins where the enemy busted
	PlayerHP int                   `json:"player_hp"`
	EnemyHP  int                   `json:"enemy_hp"`
}

// RunBattle resets both combatants and fights to the end.
func RunBattle(sys *combat.System, player, enemy *combat.Combatant, opts BattleOptions) (BattleResult, error) {
	player.Reset()
	enemy.Reset()
	return fight(sys, player, enemy, opts)
}

// fight plays rounds until one side falls or the cap is hit. On the cap the
// higher HP fraction wins; equal fractions leave no winner.
func fight(sys *combat.System, player, enemy *combat.Combatant, opts BattleOptions) (BattleResult, error) {
	limit := opts.MaxRounds
	if limit <= 0 {
		limit = DefaultMaxRounds
	}
	res := BattleResult{Enemy: enemy.Name}
	for n := 0; n < limit && player.Alive() && enemy.Alive(); n++ {
		var deck *engine.Deck
		if opts.Deck != nil {
			deck = opts.Deck(n)
		}
		sum, err := sys.ExecuteRound(player, enemy, deck)
		if err != nil {
			return res, fmt.Errorf("round %d: %w", n+1, err)
		}
		if sum.Outcome == engine.PlayerWin && sum.Reason == combat.ReasonBust {
			res.BustWins++
		}
		res.Rounds = append(res.Rounds, sum)
	}
	res.PlayerHP, res.EnemyHP = player.HP, enemy.HP
	switch {
	case !enemy.Alive():
		res.Winner = engine.Player
	case !player.Alive():
		res.Winner = engine.Enemy
	default:
		res.Capped = true
		lhs, rhs := player.HP*enemy.MaxHP, enemy.HP*player.MaxHP
		if lhs > rhs {
			res.Winner = engine.Player
		} else if rhs > lhs {
			res.Winner = engine.Enemy
		}
	}
	return res, nil
}
