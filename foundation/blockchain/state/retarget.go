package state

import (
	"math"
	"time"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/difficulty"
)

// Retarget computes the next difficulty prediction from the active chain's
// most recent retarget window and the bit target it maps to. The chain is
// not modified; ApplyRetarget commits the new target.
func (s *State) Retarget() (difficulty.Prediction, uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retarget()
}

// ApplyRetarget commits the predicted bit target so the next mining run
// searches against it.
func (s *State) ApplyRetarget() (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, bits, err := s.retarget()
	if err != nil {
		return 0, err
	}

	s.evHandler("state: ApplyRetarget: bits[%d->%d]", s.difficulty, bits)
	s.difficulty = bits

	return bits, nil
}

// retarget must be called with the mutex held.
func (s *State) retarget() (difficulty.Prediction, uint, error) {
	stamps := s.activeChain().Timestamps()
	if window := s.genesis.RetargetWindow; window > 1 && len(stamps) > window {
		stamps = stamps[len(stamps)-window:]
	}

	cfg := difficulty.Config{
		ExpectedInterval: time.Duration(s.genesis.ExpectedBlockSeconds) * time.Second,
		MinAdjust:        s.genesis.MinAdjust,
		MaxAdjust:        s.genesis.MaxAdjust,
	}

	// The numeric difficulty scale is the expected work per block, which
	// for a leading-zero-bit target is 2^bits.
	current := math.Exp2(float64(s.difficulty))

	pred, err := difficulty.Retarget(stamps, current, cfg)
	if err != nil {
		return difficulty.Prediction{}, 0, err
	}

	return pred, difficulty.NextBits(s.difficulty, pred.Ratio), nil
}
