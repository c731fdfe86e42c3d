package engine

type Participant string

const (
	Player Participant = "player"
	Enemy  Participant = "enemy"
)

// Opponent returns the other seat at the table.
func (p Participant) Opponent() Participant {
	if p == Player {
		return Enemy
	}
	return Player
}

func (p Participant) Valid() bool { return p == Player || p == Enemy }

type Outcome string

const (
	PlayerWin Outcome = "playerWin"
	EnemyWin  Outcome = "enemyWin"
	Push      Outcome = "push"
)

// Winner returns the winning seat, or "" on a push.
func (o Outcome) Winner() Participant {
	switch o {
	case PlayerWin:
		return Player
	case EnemyWin:
		return Enemy
	}
	return ""
}

// CardType is the ability card category an effect can ban for a round.
type CardType string

const (
	Skill CardType = "skill"
	Item  CardType = "item"
	Rule  CardType = "rule"
)

func (t CardType) Valid() bool { return t == Skill || t == Item || t == Rule }

type DecisionKind string

const (
	Hit      DecisionKind = "hit"
	Stand    DecisionKind = "stand"
	PlayCard DecisionKind = "playCard"
)

type Decision struct {
	Kind   DecisionKind `json:"action"`
	CardID string       `json:"card_id,omitempty"`
}

func HitDecision() Decision           { return Decision{Kind: Hit} }
func StandDecision() Decision         { return Decision{Kind: Stand} }
func PlayDecision(id string) Decision { return Decision{Kind: PlayCard, CardID: id} }

// HandScore is derived from a hand and the current modifiers; it is never stored.
type HandScore struct {
	Total  int  `json:"total"`
	Soft   bool `json:"soft"`
	Busted bool `json:"busted"`
}
