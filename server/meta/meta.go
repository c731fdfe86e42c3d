// Package meta keeps the progression that survives between runs: currency,
// upgrade levels and unlocked reward cards.
package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"blackjack-roguelike/server/content"
	"blackjack-roguelike/server/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const SchemaVersion = 1

var (
	ErrUnknownUpgrade = errors.New("unknown upgrade")
	ErrSchemaVersion  = errors.New("profile schema version mismatch")
)

type Profile struct {
	ID            string         `json:"id"`
	SchemaVersion int            `json:"schema_version"`
	Currency      int            `json:"currency"`
	Upgrades      map[string]int `json:"upgrades"`
	Unlocks       []string       `json:"unlocks"`
	BestWave      int            `json:"best_wave"`
	Runs          int            `json:"runs"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func NewProfile(id string) *Profile {
	return &Profile{ID: id, SchemaVersion: SchemaVersion, Upgrades: map[string]int{}}
}

func (p *Profile) Unlocked(card string) bool { return slices.Contains(p.Unlocks, card) }

// RewardPool is the base pool plus every unlocked card, without duplicates.
func (p *Profile) RewardPool(cat *content.Catalog) []string {
	pool := append([]string(nil), cat.Player().RewardPool...)
	for _, id := range p.Unlocks {
		if !slices.Contains(pool, id) {
			pool = append(pool, id)
		}
	}
	return pool
}

// ApplyUpgrades returns the content player boosted by p's upgrade levels.
func ApplyUpgrades(cat *content.Catalog, p *Profile) content.PlayerDef {
	def := cat.Player()
	def.Loadout = append([]string(nil), def.Loadout...)
	for _, u := range cat.Upgrades() {
		lvl := min(p.Upgrades[u.ID], u.MaxLevel)
		if lvl <= 0 {
			continue
		}
		switch u.Kind {
		case content.UpgradeMaxHP:
			def.MaxHP += u.Amount * lvl
		case content.UpgradeBaseAttack:
			def.BaseAttack += u.Amount * lvl
		case content.UpgradeStartingCard:
			for i := 0; i < lvl; i++ {
				def.Loadout = append(def.Loadout, u.Card)
			}
		}
	}
	return def
}

type PurchaseResult struct {
	OK       bool   `json:"ok"`
	Reason   string `json:"reason,omitempty"`
	Upgrade  string `json:"upgrade"`
	Level    int    `json:"level"`
	Cost     int    `json:"cost"`
	Currency int    `json:"currency"`
}

// RunRecord is what a finished survival run contributes.
type RunRecord struct {
	ID           string    `json:"id"`
	ProfileID    string    `json:"profile_id"`
	WavesCleared int       `json:"waves_cleared"`
	Victory      bool      `json:"victory"`
	Currency     int       `json:"currency"`
	Seed         int64     `json:"seed"`
	Unlocked     []string  `json:"unlocked,omitempty"`
	FinishedAt   time.Time `json:"finished_at"`
}

type Service struct {
	kv  store.KV
	cat *content.Catalog
	log *zap.Logger
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per profile, held across load, change, save
}

func NewService(kv store.KV, cat *content.Catalog, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{kv: kv, cat: cat, log: log, now: time.Now, locks: map[string]*sync.Mutex{}}
}

// lock serialises read-modify-write sequences on one profile.
func (s *Service) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func profileKey(id string) string { return "profile/" + id }

func runKey(profile, run string) string { return "run/" + profile + "/" + run }

// Load returns the stored profile, or a fresh one when none exists.
func (s *Service) Load(ctx context.Context, id string) (*Profile, error) {
	raw, err := s.kv.Get(ctx, profileKey(id))
	if errors.Is(err, store.ErrNotFound) {
		return NewProfile(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", id, err)
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", id, err)
	}
	if p.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("profile %s has version %d, want %d: %w", id, p.SchemaVersion, SchemaVersion, ErrSchemaVersion)
	}
	if p.Upgrades == nil {
		p.Upgrades = map[string]int{}
	}
	p.ID = id
	return &p, nil
}

func (s *Service) Save(ctx context.Context, p *Profile) error {
	p.SchemaVersion = SchemaVersion
	p.UpdatedAt = s.now().UTC()
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, profileKey(p.ID), raw)
}

// Purchase buys the next level of upgradeID. Unknown ids are an error;
// max level, missing prerequisites and low funds come back as OK=false.
func (s *Service) Purchase(ctx context.Context, profileID, upgradeID string) (PurchaseResult, error) {
	u, ok := s.cat.Upgrade(upgradeID)
	if !ok {
		return PurchaseResult{}, fmt.Errorf("%s: %w", upgradeID, ErrUnknownUpgrade)
	}
	defer s.lock(profileID)()
	p, err := s.Load(ctx, profileID)
	if err != nil {
		return PurchaseResult{}, err
	}
	cur := p.Upgrades[u.ID]
	res := PurchaseResult{Upgrade: u.ID, Level: cur, Currency: p.Currency}
	if cur >= u.MaxLevel {
		res.Reason = "max level reached"
		return res, nil
	}
	for _, req := range u.Requires {
		if p.Upgrades[req] < 1 {
			res.Reason = "requires " + req
			return res, nil
		}
	}
	res.Cost = u.Price(cur + 1)
	if p.Currency < res.Cost {
		res.Reason = "insufficient funds"
		return res, nil
	}
	p.Currency -= res.Cost
	p.Upgrades[u.ID] = cur + 1
	if err := s.Save(ctx, p); err != nil {
		return PurchaseResult{}, err
	}
	s.log.Info("upgrade purchased",
		zap.String("profile", p.ID),
		zap.String("upgrade", u.ID),
		zap.Int("level", cur+1),
		zap.Int("cost", res.Cost),
	)
	res.OK, res.Level, res.Currency = true, cur+1, p.Currency
	return res, nil
}

// RecordRun credits a finished run, raises the best wave, applies unlock
// rules and stores the run under its own key.
func (s *Service) RecordRun(ctx context.Context, rec RunRecord) (*Profile, RunRecord, error) {
	defer s.lock(rec.ProfileID)()
	p, err := s.Load(ctx, rec.ProfileID)
	if err != nil {
		return nil, rec, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.FinishedAt = s.now().UTC()
	p.Runs++
	p.Currency += max(rec.Currency, 0)
	p.BestWave = max(p.BestWave, rec.WavesCleared)
	rec.Unlocked = nil
	for _, rule := range s.cat.Unlocks() {
		if p.BestWave >= rule.MinWave && !p.Unlocked(rule.Card) {
			p.Unlocks = append(p.Unlocks, rule.Card)
			rec.Unlocked = append(rec.Unlocked, rule.Card)
		}
	}
	if err := s.Save(ctx, p); err != nil {
		return nil, rec, err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, rec, err
	}
	if err := s.kv.Put(ctx, runKey(p.ID, rec.ID), raw); err != nil {
		return nil, rec, err
	}
	s.log.Info("run recorded",
		zap.String("profile", p.ID),
		zap.String("run", rec.ID),
		zap.Int("waves", rec.WavesCleared),
		zap.Int("currency", rec.Currency),
		zap.Strings("unlocked", rec.Unlocked),
	)
	return p, rec, nil
}

// Runs lists stored runs for a profile in key order.
func (s *Service) Runs(ctx context.Context, profileID string) ([]RunRecord, error) {
	keys, err := s.kv.List(ctx, runKey(profileID, ""))
	if err != nil {
		return nil, err
	}
	out := make([]RunRecord, 0, len(keys))
	for _, k := range keys {
		raw, err := s.kv.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		var r RunRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode %s: %w", k, err)
		}
		out = append(out, r)
	}
	return out, nil
}
