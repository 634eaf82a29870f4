package state

import (
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
)

// Validate walks the active chain from genesis and reports the first
// invariant violation, if any.
func (s *State) Validate() chain.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := s.activeChain().Validate()
	s.evHandler("state: Validate: valid[%t] first_invalid[%d] violation[%s]",
		report.Valid, report.FirstInvalid, report.Violation)

	return report
}

// Tamper mutates a sealed block on the active chain without resealing it.
// This is the demonstration bypass, kept out of the normal append path so
// Validate has something real to detect.
func (s *State) Tamper(index int, mutate func(b *chain.Block)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.activeChain().Tamper(index, mutate); err != nil {
		return err
	}

	s.evHandler("state: Tamper: blk[%d] mutated out of band", index)

	return nil
}

// Length returns the number of blocks on the active chain.
func (s *State) Length() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activeChain().Length()
}

// Tip returns the latest block on the active chain.
func (s *State) Tip() (chain.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activeChain().Tip()
}

// Blocks returns a copy of the active chain's block sequence.
func (s *State) Blocks() []chain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activeChain().Blocks()
}

// BlockAt returns the block at the specified index on the active chain.
func (s *State) BlockAt(index int) (chain.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activeChain().BlockAt(index)
}

// Timestamps returns the active chain's header timestamps in order.
func (s *State) Timestamps() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activeChain().Timestamps()
}
