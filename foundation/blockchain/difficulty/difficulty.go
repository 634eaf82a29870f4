// Package difficulty predicts the next proof-of-work target from a window
// of historical block timestamps, following the periodic retarget rule:
// scale the current difficulty by expected/actual block interval, clamped
// so a single retarget can never jump by more than the configured factor.
package difficulty

import (
	"errors"
	"math"
	"time"
)

// ErrInsufficientHistory is returned when fewer than two timestamps are
// supplied, since no interval can be measured from a single block.
var ErrInsufficientHistory = errors.New("need at least two timestamps to measure an interval")

// Defaults from the reference period analysis: 2016 block epochs, a ten
// minute expected interval, and a 0.25x to 4x adjustment clamp.
const (
	DefaultWindow           = 2016
	DefaultExpectedInterval = 600 * time.Second
	DefaultMinAdjust        = 0.25
	DefaultMaxAdjust        = 4.0
)

// Config carries the retarget parameters.
type Config struct {
	ExpectedInterval time.Duration // Target time between blocks.
	MinAdjust        float64       // Lower clamp on the adjustment ratio.
	MaxAdjust        float64       // Upper clamp on the adjustment ratio.
}

// DefaultConfig returns the reference retarget parameters.
func DefaultConfig() Config {
	return Config{
		ExpectedInterval: DefaultExpectedInterval,
		MinAdjust:        DefaultMinAdjust,
		MaxAdjust:        DefaultMaxAdjust,
	}
}

// Prediction is the outcome of one retarget computation.
type Prediction struct {
	ActualInterval    time.Duration `json:"actual_interval"`
	ExpectedInterval  time.Duration `json:"expected_interval"`
	Ratio             float64       `json:"ratio"`
	Clamped           bool          `json:"clamped"`
	CurrentDifficulty float64       `json:"current_difficulty"`
	NewDifficulty     float64       `json:"new_difficulty"`
	AdjustmentPercent float64       `json:"adjustment_percent"`
}

// Retarget computes the next difficulty from the ordered timestamps of the
// last retarget window. The function is pure: the same inputs always
// produce the same prediction.
func Retarget(timestamps []uint64, currentDifficulty float64, cfg Config) (Prediction, error) {
	if len(timestamps) < 2 {
		return Prediction{}, ErrInsufficientHistory
	}

	if cfg.ExpectedInterval <= 0 {
		cfg.ExpectedInterval = DefaultExpectedInterval
	}
	if cfg.MinAdjust <= 0 {
		cfg.MinAdjust = DefaultMinAdjust
	}
	if cfg.MaxAdjust <= 0 {
		cfg.MaxAdjust = DefaultMaxAdjust
	}

	first := timestamps[0]
	last := timestamps[len(timestamps)-1]
	intervals := float64(len(timestamps) - 1)

	var actualSeconds float64
	if last > first {
		actualSeconds = float64(last-first) / intervals
	}

	// A window mined faster than expected raises difficulty, one mined
	// slower lowers it. A degenerate window with no elapsed time clamps
	// straight to the maximum adjustment.
	ratio, clamped := cfg.MaxAdjust, true
	if actualSeconds > 0 {
		ratio, clamped = cfg.ExpectedInterval.Seconds()/actualSeconds, false
	}

	switch {
	case ratio > cfg.MaxAdjust:
		ratio = cfg.MaxAdjust
		clamped = true
	case ratio < cfg.MinAdjust:
		ratio = cfg.MinAdjust
		clamped = true
	}

	return Prediction{
		ActualInterval:    time.Duration(actualSeconds * float64(time.Second)),
		ExpectedInterval:  cfg.ExpectedInterval,
		Ratio:             ratio,
		Clamped:           clamped,
		CurrentDifficulty: currentDifficulty,
		NewDifficulty:     currentDifficulty * ratio,
		AdjustmentPercent: (ratio - 1) * 100,
	}, nil
}

// NextBits maps a clamped adjustment ratio onto a leading-zero-bit target.
// Each doubling of difficulty is one more required zero bit, so the bit
// change is log2 of the ratio rounded to the nearest integer. The result
// never drops below one bit.
func NextBits(currentBits uint, ratio float64) uint {
	if ratio <= 0 {
		return currentBits
	}

	delta := int(math.Round(math.Log2(ratio)))
	next := int(currentBits) + delta
	if next < 1 {
		next = 1
	}

	return uint(next)
}
