// Package game implements the crash round: the crash-point generator, the
// round history window and the state machine that drives one round at a time.
package game

import (
	"math"
	"math/rand"
	"sync"
)

const (
	instantCrashChance = 0.03
	maxCrashPoint      = 100.0
	minCrashPoint      = 1.0
)

// Generator draws one crash point per round.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a Generator backed by the provided random source.
// Passing a seeded source makes the draw sequence reproducible in tests.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate returns the crash point for one round.
//
// With 3% probability the round crashes instantly at 1.00. Otherwise the point
// is 0.99/(1-r) for r uniform in [0,1), clamped to [1.00, 100.00] and rounded
// to two decimals half-away-from-zero. The low clamp matters: the raw formula
// dips below 1.00 for r < 1/99.
func (g *Generator) Generate() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rng.Float64() < instantCrashChance {
		return minCrashPoint
	}

	point := 0.99 / (1 - g.rng.Float64())
	if point > maxCrashPoint {
		point = maxCrashPoint
	}
	if point < minCrashPoint {
		point = minCrashPoint
	}

	return Round2(point)
}

// Round2 rounds v to two decimal places, half away from zero. Every multiplier
// that leaves this package goes through it so clients always see 2dp values.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
