package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"blackjack-roguelike/server/config"
	"blackjack-roguelike/server/content"
	"blackjack-roguelike/server/meta"
	"blackjack-roguelike/server/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testApp(t *testing.T) *App {
	t.Helper()
	cat, err := content.Default()
	require.NoError(t, err)
	cfg := config.Config{StoreDriver: "memory", BustMultiplier: 2, MaxPhaseActions: 64, MaxBattleRounds: 50, DeckSeed: 7, EloK: 24}
	log := zap.NewNop()
	return &App{Cfg: cfg, Catalog: cat, Meta: meta.NewService(store.NewMemory(), cat, log), Log: log}
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out := map[string]any{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHealthAndContent(t *testing.T) {
	h := Router(testApp(t))
	rec, body := do(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])

	rec, body = do(t, h, http.MethodGet, "/api/content", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "enemies")
}

func TestRoundFixedDeck(t *testing.T) {
	h := Router(testApp(t))

	rec, body := do(t, h, http.MethodPost, "/api/rounds", roundRequest{Deck: []string{"10h", "9s", "7c", "8d"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := body["result"].(map[string]any)
	assert.Equal(t, "push", res["outcome"])

	rec, body = do(t, h, http.MethodPost, "/api/rounds", roundRequest{Deck: []string{"10h", "9s", "6c", "8d", "Kh"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = body["result"].(map[string]any)
	assert.Equal(t, "enemyWin", res["outcome"])
	assert.Equal(t, false, res["enemy_acted"])
	events := body["events"].([]any)
	require.Len(t, events, 2)
	assert.Equal(t, "bust", events[0].(map[string]any)["kind"])
	assert.Equal(t, "roundEnd", events[1].(map[string]any)["kind"])
}

func TestRoundErrors(t *testing.T) {
	h := Router(testApp(t))
	cases := []struct {
		name string
		req  roundRequest
		code int
	}{
		{"bad strategy", roundRequest{Player: "gambler"}, http.StatusBadRequest},
		{"bad card", roundRequest{Deck: []string{"1x"}}, http.StatusBadRequest},
		{"short deck", roundRequest{Deck: []string{"10h", "9s"}}, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := do(t, h, http.MethodPost, "/api/rounds", tc.req)
			assert.Equal(t, tc.code, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestSeededRoundIsRepeatable(t *testing.T) {
	h := Router(testApp(t))
	_, a := do(t, h, http.MethodPost, "/api/rounds", roundRequest{Seed: 42})
	_, b := do(t, h, http.MethodPost, "/api/rounds", roundRequest{Seed: 42})
	assert.Equal(t, a["result"], b["result"])
	assert.EqualValues(t, 42, a["seed"])
}

func TestBattleUnknownEnemy(t *testing.T) {
	h := Router(testApp(t))
	rec, _ := do(t, h, http.MethodPost, "/api/battles", battleRequest{Enemy: "dragon"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body := do(t, h, http.MethodPost, "/api/battles", battleRequest{Enemy: "grunt", Seed: 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 3, body["seed"])
}

func TestPurchaseAndSurvival(t *testing.T) {
	h := Router(testApp(t))

	rec, _ := do(t, h, http.MethodPost, "/api/profiles/ana/purchases", map[string]string{"upgrade": "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body := do(t, h, http.MethodPost, "/api/profiles/ana/purchases", map[string]string{"upgrade": "vitality"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "insufficient funds", body["reason"])

	rec, _ = do(t, h, http.MethodPost, "/api/survival", survivalRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = do(t, h, http.MethodPost, "/api/survival", survivalRequest{Profile: "ana", Seed: 11})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	prof := body["profile"].(map[string]any)
	assert.EqualValues(t, 1, prof["runs"])

	rec, body = do(t, h, http.MethodGet, "/api/profiles/ana", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["runs"])

	rec, _ = do(t, h, http.MethodGet, "/api/profiles/ana/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []meta.RunRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, int64(11), runs[0].Seed)
}
