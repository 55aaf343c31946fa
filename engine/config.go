package engine

import (
	"errors"
	"time"
)

var ErrInvalidPosition = errors.New("invalid position")

const (
	MinDepth = 1
	MaxDepth = 5

	DefaultDepth           = 3
	DefaultMaxTime         = 5 * time.Second
	DefaultSafetyThreshold = Score(-200)

	// Quiescence never looks more than this many plies past the horizon.
	MaxQuiescenceDepth = 4

	// The thematic fallback is used only this early in the game.
	ThematicPlyLimit = 12
)

// Config controls a single move selection.
type Config struct {
	MaxDepth        int
	MaxTime         time.Duration
	SafetyThreshold Score
}

func DefaultConfig() Config {
	return Config{
		MaxDepth:        DefaultDepth,
		MaxTime:         DefaultMaxTime,
		SafetyThreshold: DefaultSafetyThreshold,
	}
}

// normalize clamps the depth into range and replaces a non-positive time
// budget with the default.
func (c Config) normalize() Config {
	c.MaxDepth = Clamp(c.MaxDepth, MinDepth, MaxDepth)
	if c.MaxTime <= 0 {
		c.MaxTime = DefaultMaxTime
	}
	return c
}
