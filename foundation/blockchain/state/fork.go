package state

import (
	"fmt"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/fork"
)

// Resolution reports the outcome of a fork resolution.
type Resolution struct {
	Winner     int    `json:"winner"`      // Candidate id of the canonical chain.
	Reorged    bool   `json:"reorged"`     // True when the active chain was replaced.
	Divergence int    `json:"divergence"`  // Highest index shared with the previous active chain.
	TotalWork  string `json:"total_work"`  // Cumulative work of the winner.
	Retired    int    `json:"retired"`     // Total losing chains retained for inspection.
}

// ForkCandidate registers a competing tip that shares the active chain up
// to and including the specified index. It returns the candidate id used
// by MineCandidateBlock and ResolveFork.
func (s *State) ForkCandidate(sharedIndex int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix, err := s.activeChain().Prefix(sharedIndex + 1)
	if err != nil {
		return 0, err
	}

	s.candidates = append(s.candidates, prefix)
	id := len(s.candidates) - 1

	s.evHandler("state: ForkCandidate: candidate[%d] diverges after blk[%d]", id, sharedIndex)

	return id, nil
}

// Candidates returns the number of chains currently competing, the active
// chain included.
func (s *State) Candidates() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.candidates)
}

// CandidateBlocks returns a copy of the specified candidate's blocks.
func (s *State) CandidateBlocks(candidateID int) ([]chain.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate, err := s.candidate(candidateID)
	if err != nil {
		return nil, err
	}

	return candidate.Blocks(), nil
}

// ResolveFork selects the canonical chain among the competing tips by
// cumulative work, first-seen winning ties. The losing chains are retired,
// not deleted, so the demo can still walk them afterwards.
func (s *State) ResolveFork() (Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	winner, err := fork.Canonical(s.candidates)
	if err != nil {
		return Resolution{}, err
	}

	previous := s.activeChain()
	canonical := s.candidates[winner]

	for i, candidate := range s.candidates {
		if i != winner {
			s.retired = append(s.retired, candidate)
		}
	}
	s.candidates = []*chain.Chain{canonical}

	res := Resolution{
		Winner:     winner,
		Reorged:    winner != 0,
		Divergence: fork.DivergencePoint(previous, canonical),
		TotalWork:  canonical.CumulativeWork().String(),
		Retired:    len(s.retired),
	}

	s.evHandler("state: ResolveFork: winner[%d] reorged[%t] work[%s]", res.Winner, res.Reorged, res.TotalWork)

	return res, nil
}

// RetiredChains returns the chains that lost a fork resolution during this
// session.
func (s *State) RetiredChains() []*chain.Chain {
	s.mu.Lock()
	defer s.mu.Unlock()

	retired := make([]*chain.Chain, len(s.retired))
	copy(retired, s.retired)

	return retired
}

// Confirmations returns the confirmation depth for the block at the
// specified index on the active chain.
func (s *State) Confirmations(index int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fork.Confirmations(s.activeChain(), index)
}

// Safe reports whether a confirmation count meets the session's safety
// threshold.
func (s *State) Safe(confirmations int) bool {
	return fork.Safe(confirmations, s.genesis.SafeDepth)
}

// candidate must be called with the mutex held.
func (s *State) candidate(candidateID int) (*chain.Chain, error) {
	if candidateID < 0 || candidateID >= len(s.candidates) {
		return nil, fmt.Errorf("no candidate with id %d", candidateID)
	}

	return s.candidates[candidateID], nil
}
