package engine

import (
	"errors"
	"fmt"
)

var ErrUnknownDecision = errors.New("unknown decision")

// Strategy decides one action at a time. It must only observe the context.
type Strategy interface {
	Decide(p Participant, ctx RoundContext) Decision
}

type StrategyFunc func(p Participant, ctx RoundContext) Decision

func (f StrategyFunc) Decide(p Participant, ctx RoundContext) Decision { return f(p, ctx) }

type HandView struct {
	Cards []Card    `json:"cards"`
	Score HandScore `json:"score"`
	Stood bool      `json:"stood"`
}

// RoundContext is rebuilt before every decision.
type RoundContext struct {
	Self          HandView     `json:"self"`
	Opponent      HandView     `json:"opponent"`
	DeckRemaining int          `json:"deck_remaining"`
	Abilities     []CardView   `json:"abilities"`
	Rules         RuleSnapshot `json:"rules"`
}

type RunOptions struct {
	Deck      *Deck         // nil deals from a shuffled standard deck
	Abilities AbilityEngine // nil uses NoAbilities

	// OnRoundStart runs after the opening deal, before the player acts.
	OnRoundStart func(r *Round) error

	// MaxPhaseActions caps decisions per phase; the participant is stood when
	// the cap is reached. Zero leaves the loop unbounded.
	MaxPhaseActions int
}

type RoundResult struct {
	Outcome     Outcome   `json:"outcome"`
	PlayerScore HandScore `json:"player_score"`
	EnemyScore  HandScore `json:"enemy_score"`
	PlayerCards []Card    `json:"player_cards"`
	EnemyCards  []Card    `json:"enemy_cards"`
	EnemyActed  bool      `json:"enemy_acted"`
}

// TurnController drives one round: player phase, enemy phase unless the
// player busted, then resolution.
type TurnController struct {
	round     *Round
	listeners []Listener
}

func NewTurnController(r *Round) *TurnController { return &TurnController{round: r} }

func (tc *TurnController) Round() *Round { return tc.round }

func (tc *TurnController) Subscribe(l Listener) { tc.listeners = append(tc.listeners, l) }

func (tc *TurnController) emit(e Event) {
	for _, l := range tc.listeners {
		l(e)
	}
}

func (tc *TurnController) Run(player, enemy Strategy, opts RunOptions) (RoundResult, error) {
	r := tc.round
	abilities := opts.Abilities
	if abilities == nil {
		abilities = NoAbilities{Round: r}
	}
	if err := r.Start(opts.Deck); err != nil {
		return RoundResult{}, err
	}
	if opts.OnRoundStart != nil {
		if err := opts.OnRoundStart(r); err != nil {
			return RoundResult{}, fmt.Errorf("round start hook: %w", err)
		}
	}

	if err := tc.phase(Player, player, abilities, opts.MaxPhaseActions); err != nil {
		return RoundResult{}, err
	}
	enemyActed := false
	if r.Busted(Player) {
		tc.emit(Event{Kind: EventBust, Actor: Player, Score: r.HandScore(Player)})
	} else {
		enemyActed = true
		if err := tc.phase(Enemy, enemy, abilities, opts.MaxPhaseActions); err != nil {
			return RoundResult{}, err
		}
		if r.Busted(Enemy) {
			tc.emit(Event{Kind: EventBust, Actor: Enemy, Score: r.HandScore(Enemy)})
		}
	}

	res := RoundResult{
		PlayerScore: r.HandScore(Player),
		EnemyScore:  r.HandScore(Enemy),
		PlayerCards: r.Cards(Player),
		EnemyCards:  r.Cards(Enemy),
		EnemyActed:  enemyActed,
	}
	res.Outcome = DetermineOutcome(res.PlayerScore, res.EnemyScore)
	tc.emit(Event{
		Kind:        EventRoundEnd,
		Outcome:     res.Outcome,
		PlayerScore: res.PlayerScore,
		EnemyScore:  res.EnemyScore,
		PlayerCards: res.PlayerCards,
		EnemyCards:  res.EnemyCards,
	})
	return res, nil
}

// phase loops until p busts or stands. A failed card play forfeits the rest
// of the phase.
func (tc *TurnController) phase(p Participant, s Strategy, abilities AbilityEngine, limit int) error {
	r := tc.round
	actions := 0
	for !r.Busted(p) && !r.Stood(p) {
		if limit > 0 && actions >= limit {
			r.Stand(p)
			break
		}
		actions++

		d := s.Decide(p, tc.context(p, abilities))
		switch d.Kind {
		case Hit:
			if _, err := r.Hit(p); err != nil {
				return err
			}
		case Stand:
			r.Stand(p)
		case PlayCard:
			ok, err := abilities.PlayCard(p, d.CardID)
			if err != nil {
				return fmt.Errorf("%s play %s: %w", p, d.CardID, err)
			}
			if !ok {
				r.Stand(p)
			}
		default:
			return fmt.Errorf("%s decided %q: %w", p, d.Kind, ErrUnknownDecision)
		}
	}
	return nil
}

func (tc *TurnController) context(p Participant, abilities AbilityEngine) RoundContext {
	r := tc.round
	o := p.Opponent()
	return RoundContext{
		Self:          HandView{Cards: r.Cards(p), Score: r.HandScore(p), Stood: r.Stood(p)},
		Opponent:      HandView{Cards: r.Cards(o), Score: r.HandScore(o), Stood: r.Stood(o)},
		DeckRemaining: r.DeckRemaining(),
		Abilities:     abilities.Hand(p),
		Rules:         abilities.RuleSnapshot(),
	}
}
