// Package state is the core API for one chain simulation session and
// implements all the business rules and processing. A State owns its chain
// exclusively: concurrent simulations are isolated by constructing
// independent State values, never by sharing one across mutators.
package state

import (
	"sync"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/genesis"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/mempool"
)

// EventHandler defines a function that is called when events occur in the
// processing of mining and validating blocks.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start a session.
type Config struct {
	Genesis        genesis.Genesis
	SelectStrategy string
	EvHandler      EventHandler
}

// State manages one simulated blockchain: the active chain, any competing
// fork candidates, and the pool of pending transactions.
type State struct {
	mu sync.Mutex

	genesis    genesis.Genesis
	evHandler  EventHandler
	mempool    *mempool.Mempool
	difficulty uint

	// candidates[0] is always the active chain. Later entries are
	// competing tips in first-seen order, which is the canonical
	// tie-break ordering.
	candidates []*chain.Chain

	// Chains that lost a fork resolution, retained for inspection.
	retired []*chain.Chain
}

// New constructs a new session state for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	strategy := cfg.SelectStrategy
	if strategy == "" {
		strategy = "tip"
	}

	// Construct a mempool with the specified sort strategy.
	mpool, err := mempool.NewWithStrategy(strategy)
	if err != nil {
		return nil, err
	}

	state := State{
		genesis:    cfg.Genesis,
		evHandler:  ev,
		mempool:    mpool,
		difficulty: cfg.Genesis.Difficulty,
		candidates: []*chain.Chain{chain.NewChain()},
	}

	return &state, nil
}

// Genesis returns a copy of the session parameters.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// Difficulty returns the leading-zero-bit target the next block will be
// mined against.
func (s *State) Difficulty() uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.difficulty
}

// activeChain must be called with the mutex held.
func (s *State) activeChain() *chain.Chain {
	return s.candidates[0]
}
