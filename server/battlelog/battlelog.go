// Package battlelog writes round events to a zap logger.
package battlelog

import (
	"blackjack-roguelike/server/engine"

	"go.uber.org/zap"
)

// Listener returns an engine listener logging bust and round end events.
func Listener(log *zap.Logger) engine.Listener {
	if log == nil {
		log = zap.NewNop()
	}
	return func(e engine.Event) {
		switch e.Kind {
		case engine.EventBust:
			log.Debug("bust",
				zap.String("actor", string(e.Actor)),
				zap.Int("total", e.Score.Total),
			)
		case engine.EventRoundEnd:
			fields := []zap.Field{
				zap.String("outcome", string(e.Outcome)),
				zap.Int("player_total", e.PlayerScore.Total),
				zap.Int("enemy_total", e.EnemyScore.Total),
				zap.Stringer("player_cards", cards(e.PlayerCards)),
				zap.Stringer("enemy_cards", cards(e.EnemyCards)),
			}
			if d := engine.DescribeHand(e.PlayerCards); d != "" {
				fields = append(fields, zap.String("player_poker", d))
			}
			if d := engine.DescribeHand(e.EnemyCards); d != "" {
				fields = append(fields, zap.String("enemy_poker", d))
			}
			log.Debug("round_end", fields...)
		}
	}
}

type cards []engine.Card

func (cs cards) String() string {
	out := ""
	for i, c := range cs {
		if i > 0 {
			out += " "
		}
		out += c.String()
	}
	return out
}
