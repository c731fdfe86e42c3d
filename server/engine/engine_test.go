package engine

import (
	"errors"
	"testing"
)

func standAt(n int) Strategy {
	return StrategyFunc(func(p Participant, ctx RoundContext) Decision {
		if ctx.Self.Score.Total < n {
			return HitDecision()
		}
		return StandDecision()
	})
}

func runFixed(t *testing.T, player, enemy Strategy, deck ...string) (RoundResult, *EventLog) {
	t.Helper()
	tc := NewTurnController(NewRound(nil))
	log := &EventLog{}
	tc.Subscribe(log.Record)
	res, err := tc.Run(player, enemy, RunOptions{Deck: fixedDeck(t, deck...)})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res, log
}

func TestRunEnemyHitsPastPlayer(t *testing.T) {
	res, log := runFixed(t, standAt(17), standAt(17), "10h", "9s", "7c", "6d", "5h")
	if res.Outcome != EnemyWin {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if res.PlayerScore.Total != 17 || res.EnemyScore.Total != 20 {
		t.Fatalf("scores = %d / %d", res.PlayerScore.Total, res.EnemyScore.Total)
	}
	if n := len(log.OfKind(EventRoundEnd)); n != 1 {
		t.Fatalf("roundEnd events = %d", n)
	}
	if n := len(log.OfKind(EventBust)); n != 0 {
		t.Fatalf("bust events = %d", n)
	}
}

func TestRunPlayerBustSkipsEnemy(t *testing.T) {
	calls := 0
	enemy := StrategyFunc(func(p Participant, ctx RoundContext) Decision {
		calls++
		return HitDecision()
	})
	// player 10+4 then hits a king: 24
	res, log := runFixed(t, standAt(17), enemy, "10h", "9s", "4c", "6d", "Kh", "2c")
	if calls != 0 || res.EnemyActed {
		t.Fatalf("enemy acted after player bust")
	}
	if len(log.Events) != 2 {
		t.Fatalf("events = %+v", log.Events)
	}
	bust, end := log.Events[0], log.Events[1]
	if bust.Kind != EventBust || bust.Actor != Player || bust.Score.Total != 24 {
		t.Fatalf("bust event = %+v", bust)
	}
	if end.Kind != EventRoundEnd || end.Outcome != EnemyWin {
		t.Fatalf("round end = %+v", end)
	}
	if res.EnemyScore.Total != 15 || len(res.EnemyCards) != 2 {
		t.Fatalf("enemy score should reflect opening hand only: %+v", res.EnemyScore)
	}
}

func TestRunEnemyBust(t *testing.T) {
	res, log := runFixed(t, standAt(17), standAt(17), "10h", "9s", "8c", "6d", "Kh")
	if res.Outcome != PlayerWin {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	busts := log.OfKind(EventBust)
	if len(busts) != 1 || busts[0].Actor != Enemy {
		t.Fatalf("bust events = %+v", busts)
	}
}

// cardEngine plays cards from a scripted list; unknown ids fail.
type cardEngine struct {
	round   *Round
	hand    []CardView
	effects map[string]func(r *Round)
	played  []string
}

func (c *cardEngine) Hand(Participant) []CardView { return c.hand }

func (c *cardEngine) PlayCard(p Participant, id string) (bool, error) {
	c.played = append(c.played, id)
	fn, ok := c.effects[id]
	if !ok {
		return false, nil
	}
	fn(c.round)
	return true, nil
}

func (c *cardEngine) RuleSnapshot() RuleSnapshot { return c.round.Modifiers.Snapshot() }

func TestRunCardPlayKeepsActing(t *testing.T) {
	tc := NewTurnController(NewRound(nil))
	eng := &cardEngine{
		round: tc.Round(),
		hand:  []CardView{{InstanceID: "c1"}},
		effects: map[string]func(r *Round){
			"c1": func(r *Round) { r.Modifiers.AdjustTotal(Player, 4) },
		},
	}
	played := false
	player := StrategyFunc(func(p Participant, ctx RoundContext) Decision {
		if !played {
			played = true
			return PlayDecision("c1")
		}
		return StandDecision()
	})
	res, err := tc.Run(player, standAt(17), RunOptions{Deck: fixedDeck(t, "10h", "9s", "7c", "9d"), Abilities: eng})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.PlayerScore.Total != 21 || res.Outcome != PlayerWin {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunFailedCardPlayForfeitsPhase(t *testing.T) {
	tc := NewTurnController(NewRound(nil))
	eng := &cardEngine{round: tc.Round()}
	decisions := 0
	player := StrategyFunc(func(p Participant, ctx RoundContext) Decision {
		decisions++
		return PlayDecision("missing")
	})
	res, err := tc.Run(player, standAt(17), RunOptions{Deck: fixedDeck(t, "2h", "9s", "3c", "9d"), Abilities: eng})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if decisions != 1 {
		t.Fatalf("player decided %d times after a failed play", decisions)
	}
	if res.PlayerScore.Total != 5 || res.Outcome != EnemyWin {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunNoAbilitiesFailsPlays(t *testing.T) {
	player := StrategyFunc(func(p Participant, ctx RoundContext) Decision {
		if len(ctx.Abilities) != 0 {
			t.Fatalf("no-op engine exposed cards: %+v", ctx.Abilities)
		}
		if ctx.Rules.TargetLimit != DefaultTargetLimit {
			t.Fatalf("rules = %+v", ctx.Rules)
		}
		return PlayDecision("anything")
	})
	res, _ := runFixed(t, player, standAt(17), "10h", "9s", "8c", "8d")
	if res.PlayerScore.Total != 18 || res.Outcome != PlayerWin {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunUnknownDecision(t *testing.T) {
	tc := NewTurnController(NewRound(nil))
	bad := StrategyFunc(func(Participant, RoundContext) Decision { return Decision{Kind: "double"} })
	_, err := tc.Run(bad, standAt(17), RunOptions{Deck: fixedDeck(t, "2h", "9s", "3c", "9d")})
	if !errors.Is(err, ErrUnknownDecision) {
		t.Fatalf("expected ErrUnknownDecision, got %v", err)
	}
}

func TestRunDeckExhaustionIsFatal(t *testing.T) {
	tc := NewTurnController(NewRound(nil))
	always := StrategyFunc(func(Participant, RoundContext) Decision { return HitDecision() })
	_, err := tc.Run(always, always, RunOptions{Deck: fixedDeck(t, "2h", "2s", "2c", "2d", "3h")})
	if !errors.Is(err, ErrDeckEmpty) {
		t.Fatalf("expected ErrDeckEmpty, got %v", err)
	}
}

func TestRunPhaseActionCap(t *testing.T) {
	tc := NewTurnController(NewRound(nil))
	n := 0
	stubborn := StrategyFunc(func(Participant, RoundContext) Decision {
		n++
		return Decision{Kind: PlayCard, CardID: "c1"}
	})
	eng := &cardEngine{
		round:   tc.Round(),
		effects: map[string]func(r *Round){"c1": func(*Round) {}},
	}
	_, err := tc.Run(stubborn, standAt(17), RunOptions{
		Deck:            fixedDeck(t, "2h", "9s", "3c", "9d"),
		Abilities:       eng,
		MaxPhaseActions: 5,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 5 {
		t.Fatalf("decisions = %d, want 5", n)
	}
}

func TestRunOnRoundStartHook(t *testing.T) {
	tc := NewTurnController(NewRound(nil))
	res, err := tc.Run(standAt(17), standAt(17), RunOptions{
		Deck: fixedDeck(t, "10h", "9s", "7c", "6d", "5h"),
		OnRoundStart: func(r *Round) error {
			r.Modifiers.SetTargetLimit(16)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.PlayerScore.Busted || res.Outcome != EnemyWin || res.EnemyActed {
		t.Fatalf("result = %+v", res)
	}
}
