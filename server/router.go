package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"blackjack-roguelike/server/agent"
	"blackjack-roguelike/server/content"
	"blackjack-roguelike/server/engine"
	"blackjack-roguelike/server/meta"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func Router(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(app.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		r.Get("/content", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, app.Catalog.Document())
		})
		r.Post("/rounds", app.handleRound)
		r.Post("/battles", app.handleBattle)
		r.Post("/survival", app.handleSurvival)
		r.Get("/profiles/{id}", app.handleProfile)
		r.Get("/profiles/{id}/runs", app.handleRuns)
		r.Post("/profiles/{id}/purchases", app.handlePurchase)
	})
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			t0 := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(t0)),
			)
		})
	}
}

type roundRequest struct {
	Player      string   `json:"player"`
	Enemy       string   `json:"enemy"`
	Deck        []string `json:"deck"`
	Seed        int64    `json:"seed"`
	TargetLimit int      `json:"target_limit"`
}

type roundResponse struct {
	Result engine.RoundResult `json:"result"`
	Events []engine.Event     `json:"events"`
	Seed   int64              `json:"seed,omitempty"`
}

// handleRound plays one pure blackjack round with no ability cards.
func (a *App) handleRound(w http.ResponseWriter, r *http.Request) {
	var req roundRequest
	if !decode(w, r, &req) {
		return
	}
	player, err := agent.Parse(req.Player)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	enemy, err := agent.Parse(req.Enemy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp := roundResponse{}
	var deck *engine.Deck
	if len(req.Deck) > 0 {
		cards, err := engine.ParseCards(req.Deck)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		deck = engine.NewDeck(cards...)
	} else {
		seed, err := a.seed(req.Seed)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		resp.Seed = seed
		deck = engine.NewShuffledDeck(seed)
	}

	tc := engine.NewTurnController(engine.NewRound(nil))
	events := &engine.EventLog{}
	tc.Subscribe(events.Record)
	opts := engine.RunOptions{Deck: deck, MaxPhaseActions: a.Cfg.MaxPhaseActions}
	if req.TargetLimit > 0 {
		opts.OnRoundStart = func(r *engine.Round) error {
			r.Modifiers.SetTargetLimit(req.TargetLimit)
			return nil
		}
	}
	res, err := tc.Run(player, enemy, opts)
	if errors.Is(err, engine.ErrDeckEmpty) {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	resp.Result, resp.Events = res, events.Events
	writeJSON(w, http.StatusOK, resp)
}

type battleRequest struct {
	Enemy   string `json:"enemy"`
	Profile string `json:"profile"`
	Seed    int64  `json:"seed"`
}

func (a *App) handleBattle(w http.ResponseWriter, r *http.Request) {
	var req battleRequest
	if !decode(w, r, &req) {
		return
	}
	res, seed, err := a.Battle(r.Context(), req.Profile, req.Enemy, req.Seed)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"battle": res, "seed": seed})
}

type survivalRequest struct {
	Profile string `json:"profile"`
	Seed    int64  `json:"seed"`
}

func (a *App) handleSurvival(w http.ResponseWriter, r *http.Request) {
	var req survivalRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Profile == "" {
		writeError(w, http.StatusBadRequest, errors.New("profile is required"))
		return
	}
	out, err := a.Survival(r.Context(), req.Profile, req.Seed)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) handleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := a.Meta.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := a.Meta.Runs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (a *App) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Upgrade string `json:"upgrade"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := a.Meta.Purchase(r.Context(), chi.URLParam(r, "id"), req.Upgrade)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, content.ErrUnknownEnemy), errors.Is(err, content.ErrUnknownCard), errors.Is(err, meta.ErrUnknownUpgrade):
		return http.StatusNotFound
	case errors.Is(err, meta.ErrSchemaVersion):
		return http.StatusConflict
	case errors.Is(err, agent.ErrUnknownStrategy):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
