package agent

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"blackjack-roguelike/server/engine"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Parse builds a strategy from a content tag such as "threshold:17",
// "cautious:0.35" or "tactician:threshold:16". An empty tag is the dealer
// rule.
func Parse(tag string) (engine.Strategy, error) {
	kind, arg, _ := strings.Cut(strings.TrimSpace(tag), ":")
	switch strings.ToLower(kind) {
	case "", "dealer":
		return Threshold{StandAt: DefaultStandAt}, nil
	case "threshold":
		if arg == "" {
			return Threshold{StandAt: DefaultStandAt}, nil
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("threshold %q: want a positive integer", arg)
		}
		return Threshold{StandAt: n}, nil
	case "cautious":
		risk := 0.35
		if arg != "" {
			f, err := strconv.ParseFloat(arg, 64)
			if err != nil || f < 0 || f > 1 {
				return nil, fmt.Errorf("cautious %q: want a risk in [0,1]", arg)
			}
			risk = f
		}
		return Cautious{MaxRisk: risk}, nil
	case "tactician":
		base, err := Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("tactician base: %w", err)
		}
		return Tactician{Base: base}, nil
	}
	return nil, fmt.Errorf("%q: %w", tag, ErrUnknownStrategy)
}
