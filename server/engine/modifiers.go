package engine

import "sort"

// RoundModifiers is the per-round rule overlay mutated by ability cards. One
// instance belongs to a Round and is shared by pointer with everything that
// reads or writes the current rules.
type RoundModifiers struct {
	targetLimit int
	offsets     map[Participant]int
	overrides   map[Participant]int
	blocked     map[Participant]map[CardType]bool
}

func NewRoundModifiers() *RoundModifiers {
	m := &RoundModifiers{}
	m.Reset()
	return m
}

func (m *RoundModifiers) Reset() {
	m.targetLimit = DefaultTargetLimit
	m.offsets = map[Participant]int{}
	m.overrides = map[Participant]int{}
	m.blocked = map[Participant]map[CardType]bool{}
}

func (m *RoundModifiers) TargetLimit() int { return m.targetLimit }

// SetTargetLimit floors the limit at 1.
func (m *RoundModifiers) SetTargetLimit(limit int) {
	if limit < 1 {
		limit = 1
	}
	m.targetLimit = limit
}

func (m *RoundModifiers) AdjustTotal(p Participant, delta int) { m.offsets[p] += delta }
func (m *RoundModifiers) SetTotal(p Participant, total int)   { m.overrides[p] = total }
func (m *RoundModifiers) Offset(p Participant) int            { return m.offsets[p] }

func (m *RoundModifiers) Override(p Participant) (int, bool) {
	v, ok := m.overrides[p]
	return v, ok
}

func (m *RoundModifiers) Block(p Participant, t CardType) {
	set, ok := m.blocked[p]
	if !ok {
		set = map[CardType]bool{}
		m.blocked[p] = set
	}
	set[t] = true
}

func (m *RoundModifiers) IsBlocked(p Participant, t CardType) bool { return m.blocked[p][t] }

// ApplyToScore is the only read path for gameplay scores. An override replaces
// the total outright; otherwise the offset is added. Bust is re-derived against
// the current limit.
func (m *RoundModifiers) ApplyToScore(p Participant, base HandScore) HandScore {
	total := base.Total + m.offsets[p]
	if v, ok := m.overrides[p]; ok {
		total = v
	}
	busted := total > m.targetLimit
	return HandScore{Total: total, Soft: base.Soft && !busted, Busted: busted}
}

type RuleSnapshot struct {
	TargetLimit int                        `json:"target_limit"`
	Blocked     map[Participant][]CardType `json:"blocked_card_types"`
}

func (m *RoundModifiers) Snapshot() RuleSnapshot {
	s := RuleSnapshot{TargetLimit: m.targetLimit, Blocked: map[Participant][]CardType{}}
	for p, set := range m.blocked {
		var types []CardType
		for t, on := range set {
			if on {
				types = append(types, t)
			}
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		s.Blocked[p] = types
	}
	return s
}
