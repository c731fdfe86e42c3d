// Package survival chains battles into waves and waves into runs.
package survival

import (
	"context"
	"fmt"
	"math/rand"

	"blackjack-roguelike/server/combat"
	"blackjack-roguelike/server/content"
	"blackjack-roguelike/server/engine"

	"go.uber.org/zap"
)

const (
	CurrencyPerWave    = 10
	CurrencyPerBustWin = 5
)

type Controller struct {
	Catalog    *content.Catalog
	System     *combat.System
	RewardPool []string
	Rand       *rand.Rand // reward picks; nil seeds from 1
	Battle     BattleOptions
	Log        *zap.Logger
}

type WaveResult struct {
	Wave     int            `json:"wave"`
	Battles  []BattleResult `json:"battles"`
	Cleared  bool           `json:"cleared"`
	Reward   string         `json:"reward,omitempty"`
	PlayerHP int            `json:"player_hp"`
}

type RunResult struct {
	WavesCleared int          `json:"waves_cleared"`
	Victory      bool         `json:"victory"`
	Currency     int          `json:"currency"`
	BustWins     int          `json:"bust_wins"`
	FinalHP      int          `json:"final_hp"`
	Waves        []WaveResult `json:"waves"`
}

// Run plays waves in order with one player whose HP carries across battles.
// A wave is cleared when the player wins every battle in it; the first
// uncleared wave ends the run.
func (c *Controller) Run(ctx context.Context, player *combat.Combatant, waves []content.Wave) (RunResult, error) {
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}
	rng := c.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	var res RunResult
	player.Reset()

	for i, w := range waves {
		if i > 0 {
			player.RefreshHand()
		}
		wave := WaveResult{Wave: i + 1, Cleared: true}
		for _, id := range w.Enemies {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			enemy, err := c.Catalog.NewEnemy(id)
			if err != nil {
				return res, fmt.Errorf("wave %d: %w", i+1, err)
			}
			b, err := fight(c.System, player, enemy, c.Battle)
			if err != nil {
				return res, fmt.Errorf("wave %d vs %s: %w", i+1, id, err)
			}
			wave.Battles = append(wave.Battles, b)
			res.BustWins += b.BustWins
			log.Debug("battle finished",
				zap.Int("wave", i+1),
				zap.String("enemy", id),
				zap.String("winner", string(b.Winner)),
				zap.Int("rounds", len(b.Rounds)),
				zap.Int("player_hp", b.PlayerHP),
			)
			if b.Winner != engine.Player {
				wave.Cleared = false
				break
			}
		}
		wave.PlayerHP = player.HP
		if !wave.Cleared {
			res.Waves = append(res.Waves, wave)
			break
		}
		res.WavesCleared++
		res.Currency += CurrencyPerWave * (i + 1)
		reward, err := c.reward(rng, player)
		if err != nil {
			return res, err
		}
		wave.Reward = reward
		res.Waves = append(res.Waves, wave)
		log.Info("wave cleared", zap.Int("wave", i+1), zap.Int("player_hp", player.HP), zap.String("reward", wave.Reward))
	}

	res.Currency += CurrencyPerBustWin * res.BustWins
	res.Victory = len(waves) > 0 && res.WavesCleared == len(waves)
	res.FinalHP = player.HP
	return res, nil
}

func (c *Controller) reward(rng *rand.Rand, player *combat.Combatant) (string, error) {
	if len(c.RewardPool) == 0 {
		return "", nil
	}
	id := c.RewardPool[rng.Intn(len(c.RewardPool))]
	def, err := c.Catalog.Card(id)
	if err != nil {
		return "", fmt.Errorf("reward: %w", err)
	}
	player.Learn(def)
	return id, nil
}
