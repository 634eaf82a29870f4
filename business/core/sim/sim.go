// Package sim provides business access to the chain simulation sessions.
// Each session owns an independent engine state, so concurrent users never
// share a chain.
package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/genesis"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/state"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("session not found")

// Core manages the set of simulation sessions.
type Core struct {
	genesis   genesis.Genesis
	evHandler state.EventHandler

	mu       sync.RWMutex
	sessions map[string]*state.State
}

// NewCore constructs a core for session management.
func NewCore(gen genesis.Genesis, evHandler state.EventHandler) *Core {
	return &Core{
		genesis:   gen,
		evHandler: evHandler,
		sessions:  make(map[string]*state.State),
	}
}

// Create constructs a new session with its own chain and returns its id.
func (c *Core) Create(selectStrategy string) (string, error) {
	st, err := state.New(state.Config{
		Genesis:        c.genesis,
		SelectStrategy: selectStrategy,
		EvHandler:      c.evHandler,
	})
	if err != nil {
		return "", fmt.Errorf("creating session state: %w", err)
	}

	id := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[id] = st

	return id, nil
}

// Session returns the engine state for the specified session id.
func (c *Core) Session(id string) (*state.State, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st, exists := c.sessions[id]
	if !exists {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}

	return st, nil
}

// Delete removes the specified session.
func (c *Core) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.sessions, id)
}

// Count returns the number of live sessions.
func (c *Core) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.sessions)
}
