package meta

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"blackjack-roguelike/server/content"
	"blackjack-roguelike/server/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func service(t *testing.T) (*Service, store.KV, *content.Catalog) {
	t.Helper()
	cat, err := content.Default()
	require.NoError(t, err)
	kv := store.NewMemory()
	return NewService(kv, cat, nil), kv, cat
}

func fund(t *testing.T, s *Service, id string, amount int) {
	t.Helper()
	p, err := s.Load(context.Background(), id)
	require.NoError(t, err)
	p.Currency = amount
	require.NoError(t, s.Save(context.Background(), p))
}

func TestLoadFreshProfile(t *testing.T) {
	s, _, _ := service(t)
	p, err := s.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.ID)
	assert.Equal(t, SchemaVersion, p.SchemaVersion)
	assert.Zero(t, p.Currency)
}

func TestLoadRejectsOtherSchema(t *testing.T) {
	s, kv, _ := service(t)
	require.NoError(t, kv.Put(context.Background(), "profile/old", []byte(`{"schema_version":0,"currency":5}`)))
	_, err := s.Load(context.Background(), "old")
	assert.True(t, errors.Is(err, ErrSchemaVersion))
}

func TestPurchase(t *testing.T) {
	ctx := context.Background()
	s, _, _ := service(t)

	_, err := s.Purchase(ctx, "bob", "wings")
	assert.ErrorIs(t, err, ErrUnknownUpgrade)

	res, err := s.Purchase(ctx, "bob", "vitality")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "insufficient funds", res.Reason)

	res, err = s.Purchase(ctx, "bob", "sharpness")
	require.NoError(t, err)
	assert.Equal(t, "requires vitality", res.Reason)

	fund(t, s, "bob", 70)
	res, err = s.Purchase(ctx, "bob", "vitality")
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, 1, res.Level)
	assert.Equal(t, 20, res.Cost)
	assert.Equal(t, 50, res.Currency)

	// second level costs twice the base
	res, err = s.Purchase(ctx, "bob", "vitality")
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, 40, res.Cost)
	assert.Equal(t, 10, res.Currency)

	p, err := s.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Upgrades["vitality"])
	assert.Equal(t, 10, p.Currency)
}

func TestPurchaseMaxLevel(t *testing.T) {
	ctx := context.Background()
	s, _, _ := service(t)
	fund(t, s, "cat", 100)
	res, err := s.Purchase(ctx, "cat", "kit_guard")
	require.NoError(t, err)
	require.True(t, res.OK)
	res, err = s.Purchase(ctx, "cat", "kit_guard")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "max level reached", res.Reason)
	assert.Equal(t, 75, res.Currency)
}

func TestApplyUpgrades(t *testing.T) {
	_, _, cat := service(t)
	p := NewProfile("x")
	p.Upgrades = map[string]int{"vitality": 2, "sharpness": 1, "kit_guard": 1}
	def := ApplyUpgrades(cat, p)
	base := cat.Player()
	assert.Equal(t, base.MaxHP+10, def.MaxHP)
	assert.Equal(t, base.BaseAttack+1, def.BaseAttack)
	assert.Len(t, def.Loadout, len(base.Loadout)+1)
	assert.Len(t, cat.Player().Loadout, len(base.Loadout), "content must not be mutated")
}

func TestRecordRunUnlocks(t *testing.T) {
	ctx := context.Background()
	s, _, cat := service(t)
	p, rec, err := s.RecordRun(ctx, RunRecord{ProfileID: "dee", WavesCleared: 3, Currency: 45})
	require.NoError(t, err)
	assert.Equal(t, 45, p.Currency)
	assert.Equal(t, 3, p.BestWave)
	assert.Equal(t, 1, p.Runs)
	assert.Equal(t, []string{"switcheroo", "perfect_draw"}, rec.Unlocked)
	assert.NotEmpty(t, rec.ID)

	p, rec, err = s.RecordRun(ctx, RunRecord{ProfileID: "dee", WavesCleared: 1, Currency: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, p.BestWave, "best wave never drops")
	assert.Empty(t, rec.Unlocked)
	assert.Equal(t, 55, p.Currency)

	pool := p.RewardPool(cat)
	assert.Contains(t, pool, "switcheroo")
	assert.Contains(t, pool, "perfect_draw")
	assert.NotContains(t, pool, "lockdown")

	runs, err := s.Runs(ctx, "dee")
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

// slowKV delays writes so interleaved read-modify-write sequences overlap.
type slowKV struct {
	store.KV
}

func (k slowKV) Put(ctx context.Context, key string, value []byte) error {
	time.Sleep(5 * time.Millisecond)
	return k.KV.Put(ctx, key, value)
}

func TestConcurrentRecordRun(t *testing.T) {
	cat, err := content.Default()
	require.NoError(t, err)
	s := NewService(slowKV{store.NewMemory()}, cat, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.RecordRun(context.Background(), RunRecord{ProfileID: "p", Currency: 10})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := s.Load(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, 20, p.Runs)
	assert.Equal(t, 200, p.Currency)
}

func TestConcurrentPurchaseSpendsOnce(t *testing.T) {
	cat, err := content.Default()
	require.NoError(t, err)
	s := NewService(slowKV{store.NewMemory()}, cat, nil)
	fund(t, s, "q", 20)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.Purchase(context.Background(), "q", "vitality")
			assert.NoError(t, err)
			if res.OK {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	p, err := s.Load(context.Background(), "q")
	require.NoError(t, err)
	assert.Zero(t, p.Currency)
	assert.Equal(t, 1, p.Upgrades["vitality"])
}
