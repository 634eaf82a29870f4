// Package mempool maintains the pool of transactions waiting to be mined
// into a block, organized by sender:nonce.
package mempool

import (
	"strings"
	"sync"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/mempool/selector"
)

// Mempool represents a cache of transactions organized by sender:nonce.
type Mempool struct {
	pool     map[string]chain.Tx
	mu       sync.RWMutex
	selectFn selector.Func
}

// New constructs a new mempool using the default sort strategy.
func New() (*Mempool, error) {
	return NewWithStrategy(selector.StrategyTip)
}

// NewWithStrategy constructs a new mempool with specified sort strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		pool:     make(map[string]chain.Tx),
		selectFn: selectFn,
	}

	return &mp, nil
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool.
func (mp *Mempool) Upsert(tx chain.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[tx.UniqueKey()] = tx

	return len(mp.pool)
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(tx chain.Tx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, tx.UniqueKey())
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]chain.Tx)
}

// PickBest uses the configured sort strategy to return the next set of
// transactions for the next block. Passing -1 returns the whole pool.
func (mp *Mempool) PickBest(howMany int) []chain.Tx {

	// Group the transactions by sender.
	m := make(map[string][]chain.Tx)
	mp.mu.RLock()
	{
		for key, tx := range mp.pool {
			sender := strings.Split(key, ":")[0]
			m[sender] = append(m[sender], tx)
		}
	}
	mp.mu.RUnlock()

	return mp.selectFn(m, howMany)
}
