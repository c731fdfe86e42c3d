package agent

import (
	"errors"
	"fmt"
	"time"

	"blackjack-roguelike/server/engine"

	"github.com/dop251/goja"
)

const (
	scriptInitTimeout = 2 * time.Second
	scriptCallTimeout = 250 * time.Millisecond
)

var ErrScriptTimeout = errors.New("script timed out")

// Script runs a JavaScript decide(obs) function. It returns "hit", "stand",
// {play: "<card id>"} or {action, card_id}. Any script error or illegal
// answer stands, and the error is kept for Err.
type Script struct {
	rt      *goja.Runtime
	decide  goja.Callable
	timeout time.Duration
	lastErr error
}

func NewScript(source string) (*Script, error) {
	rt := goja.New()
	rt.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	for _, name := range []string{"require", "fetch", "XMLHttpRequest", "eval", "Function"} {
		rt.Set(name, goja.Undefined())
	}
	s := &Script{rt: rt, timeout: scriptCallTimeout}
	err := s.runWithTimeout(scriptInitTimeout, func() error {
		if _, err := rt.RunString(source); err != nil {
			return fmt.Errorf("script execution error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fn := rt.Get("decide")
	if fn == nil || goja.IsUndefined(fn) || goja.IsNull(fn) {
		return nil, fmt.Errorf("decide() function is not defined")
	}
	callable, ok := goja.AssertFunction(fn)
	if !ok {
		return nil, fmt.Errorf("decide is not a function")
	}
	s.decide = callable
	return s, nil
}

func (s *Script) Err() error { return s.lastErr }

func (s *Script) Decide(p engine.Participant, ctx engine.RoundContext) engine.Decision {
	obs := BuildObservation(p, ctx)
	var out goja.Value
	err := s.runWithTimeout(s.timeout, func() error {
		v, err := s.decide(goja.Undefined(), s.rt.ToValue(obs))
		if err != nil {
			return fmt.Errorf("decide() error: %w", err)
		}
		out = v
		return nil
	})
	if err == nil {
		var d engine.Decision
		if d, err = Validate(obs, toAction(out)); err == nil {
			return d
		}
	}
	s.lastErr = err
	return engine.StandDecision()
}

func toAction(v goja.Value) ActionOut {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ActionOut{}
	}
	switch x := v.Export().(type) {
	case string:
		return ActionOut{Action: x}
	case map[string]interface{}:
		if id, ok := x["play"].(string); ok {
			return ActionOut{Action: string(engine.PlayCard), CardID: id}
		}
		a := ActionOut{}
		a.Action, _ = x["action"].(string)
		a.CardID, _ = x["card_id"].(string)
		return a
	}
	return ActionOut{}
}

func (s *Script) runWithTimeout(timeout time.Duration, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		s.rt.Interrupt("script execution timeout")
		err := <-done
		s.rt.ClearInterrupt()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrScriptTimeout, err)
		}
		return ErrScriptTimeout
	}
}
