package config

import (
	"math"
	"time"
)

// Tier is a contiguous difficulty bucket (Lo, Hi] used to bound problem
// assignment.
type Tier struct {
	Lo float64
	Hi float64
}

// GameConfig holds the tuning knobs of the order economy. Services take it
// as a constructor argument so tests can tighten or loosen the rules
// without touching globals.
type GameConfig struct {
	// RateWeight is the decay applied per position in the terminal-order
	// history when computing a user's rating.
	RateWeight float64
	// MinRate is both the floor of the rating and the fallback for users
	// with no terminal orders.
	MinRate int
	// DifficultyStdDev is the std-dev of the underlying normal used when
	// drawing a target difficulty around the user's rating.
	DifficultyStdDev float64
	// RevenueStdDev is the std-dev of the underlying normal used when
	// drawing order revenues around the problem's difficulty.
	RevenueStdDev float64
	// TimeLimit is how long a user has to clear an order after receiving it.
	TimeLimit time.Duration
	// ProblemUpdateInterval is the minimum spacing between catalog syncs.
	ProblemUpdateInterval time.Duration
	// InitialCapital is the virtual balance a user starts with.
	InitialCapital float64
	// Tiers must be ordered and cover (0, +Inf); assignment picks the first
	// tier containing the drawn difficulty.
	Tiers []Tier
}

// Game is the configuration used by the running server. Tests build their
// own GameConfig instead of touching this.
var Game = DefaultGameConfig()

func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		RateWeight:            0.9,
		MinRate:               100,
		DifficultyStdDev:      100,
		RevenueStdDev:         10000,
		TimeLimit:             30 * time.Minute,
		ProblemUpdateInterval: 7 * 24 * time.Hour,
		InitialCapital:        100000,
		Tiers: []Tier{
			{0, 100}, {100, 200}, {200, 300}, {300, 400}, {400, 500},
			{500, 600}, {600, 700}, {700, 800}, {800, 900}, {900, 1000},
			{1000, 1200}, {1200, 1500}, {1500, 1800}, {1800, math.Inf(1)},
		},
	}
}
