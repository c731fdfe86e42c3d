package engine

type EventKind string

const (
	EventBust     EventKind = "bust"
	EventRoundEnd EventKind = "roundEnd"
)

// Event is delivered synchronously to listeners in registration order.
type Event struct {
	Kind        EventKind   `json:"kind"`
	Actor       Participant `json:"actor,omitempty"`
	Score       HandScore   `json:"score"`
	Outcome     Outcome     `json:"outcome,omitempty"`
	PlayerScore HandScore   `json:"player_score"`
	EnemyScore  HandScore   `json:"enemy_score"`
	PlayerCards []Card      `json:"player_cards,omitempty"`
	EnemyCards  []Card      `json:"enemy_cards,omitempty"`
}

type Listener func(Event)

// EventLog collects events; handy for tests and API responses.
type EventLog struct {
	Events []Event
}

func (l *EventLog) Record(e Event) { l.Events = append(l.Events, e) }

func (l *EventLog) OfKind(kind EventKind) []Event {
	var out []Event
	for _, e := range l.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
