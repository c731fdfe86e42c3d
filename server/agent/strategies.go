package agent

import (
	"blackjack-roguelike/server/engine"
	"blackjack-roguelike/server/judge"
)

const (
	DefaultStandAt = 17
	TagOpener      = "opener"
	TagFinisher    = "finisher"
)

// Threshold hits below StandAt, shifted by however far the round limit moved
// from 21.
type Threshold struct {
	StandAt int
}

func (t Threshold) Decide(p engine.Participant, ctx engine.RoundContext) engine.Decision {
	standAt := t.StandAt
	if standAt <= 0 {
		standAt = DefaultStandAt
	}
	if ctx.Rules.TargetLimit > 0 {
		standAt += ctx.Rules.TargetLimit - engine.DefaultTargetLimit
	}
	if ctx.Self.Score.Total < standAt {
		return engine.HitDecision()
	}
	return engine.StandDecision()
}

// Tactician plays opener cards on the opening two cards and finisher cards
// where Base would stand. Everything else goes to Base.
type Tactician struct {
	Base engine.Strategy
}

func (t Tactician) Decide(p engine.Participant, ctx engine.RoundContext) engine.Decision {
	base := t.Base
	if base == nil {
		base = Threshold{}
	}
	if len(ctx.Self.Cards) == 2 {
		if id, ok := firstTagged(ctx.Abilities, TagOpener); ok {
			return engine.PlayDecision(id)
		}
	}
	d := base.Decide(p, ctx)
	if d.Kind == engine.Stand && ctx.Self.Score.Total < ctx.Rules.TargetLimit {
		if id, ok := firstTagged(ctx.Abilities, TagFinisher); ok {
			return engine.PlayDecision(id)
		}
	}
	return d
}

func firstTagged(cards []engine.CardView, tag string) (string, bool) {
	for _, c := range cards {
		if !c.Blocked && c.HasTag(tag) {
			return c.InstanceID, true
		}
	}
	return "", false
}

// Cautious hits while the exact chance of busting on the next card stays at
// or below MaxRisk.
type Cautious struct {
	MaxRisk float64
}

func (c Cautious) Decide(p engine.Participant, ctx engine.RoundContext) engine.Decision {
	limit := ctx.Rules.TargetLimit
	if limit <= 0 {
		limit = engine.DefaultTargetLimit
	}
	self := ctx.Self
	if self.Score.Total >= limit {
		return engine.StandDecision()
	}
	opp := ctx.Opponent
	if opp.Stood && !opp.Score.Busted && self.Score.Total > opp.Score.Total {
		return engine.StandDecision()
	}
	if bust, _ := odds(ctx); bust <= c.MaxRisk {
		return engine.HitDecision()
	}
	return engine.StandDecision()
}

// odds returns the next-card bust chance and the count of exact outs for the
// acting hand, counting both visible hands as seen.
func odds(ctx engine.RoundContext) (bust float64, outs int) {
	limit := ctx.Rules.TargetLimit
	if limit <= 0 {
		limit = engine.DefaultTargetLimit
	}
	self := ctx.Self
	// fold any total offset into the limit so the raw cards can be scored
	limit -= self.Score.Total - engine.CalculateScore(self.Cards, limit).Total
	known := append(append([]engine.Card(nil), self.Cards...), ctx.Opponent.Cards...)
	return judge.BustChance(self.Cards, known, limit), judge.Outs(self.Cards, known, limit)
}
