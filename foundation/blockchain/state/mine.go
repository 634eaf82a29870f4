package state

import (
	"context"
	"errors"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/mine"
)

// ErrNoTransactions is returned when a mining run is requested with an
// empty pending pool.
var ErrNoTransactions = errors.New("no transactions in the pending pool")

// SubmitTransaction adds a new transaction to the pending pool. It returns
// the number of transactions now waiting.
func (s *State) SubmitTransaction(tx chain.Tx) int {
	n := s.mempool.Upsert(tx)
	s.evHandler("state: SubmitTransaction: tx[%s] pool[%d]", tx, n)

	return n
}

// MempoolLength returns the current number of pending transactions.
func (s *State) MempoolLength() int {
	return s.mempool.Count()
}

// Mempool returns the pending transactions in the configured strategy
// order.
func (s *State) Mempool() []chain.Tx {
	return s.mempool.PickBest(-1)
}

// MineNextBlock pulls the best pending transactions, performs the
// proof-of-work search, and appends the sealed block to the active chain.
// A zero budget falls back to the session's configured attempt budget. The
// mined transactions leave the pool only after the append succeeds.
func (s *State) MineNextBlock(ctx context.Context, budget uint64) (chain.Block, mine.Stats, error) {
	trans := s.mempool.PickBest(int(s.genesis.TransPerBlock))
	if len(trans) == 0 {
		return chain.Block{}, mine.Stats{}, ErrNoTransactions
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	block, stats, err := s.mineOn(ctx, s.activeChain(), trans, budget)
	if err != nil {
		return chain.Block{}, stats, err
	}

	for _, tx := range trans {
		s.mempool.Delete(tx)
	}

	return block, stats, nil
}

// MineCandidateBlock mines the next block for the fork candidate with the
// specified id using the caller's transactions. The pending pool is left
// untouched: a fork block's transactions are only spoken for once its
// chain wins resolution.
func (s *State) MineCandidateBlock(ctx context.Context, candidateID int, trans []chain.Tx, budget uint64) (chain.Block, mine.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate, err := s.candidate(candidateID)
	if err != nil {
		return chain.Block{}, mine.Stats{}, err
	}

	return s.mineOn(ctx, candidate, trans, budget)
}

// mineOn runs the search and append for one chain. Callers hold the mutex.
func (s *State) mineOn(ctx context.Context, c *chain.Chain, trans []chain.Tx, budget uint64) (chain.Block, mine.Stats, error) {
	if budget == 0 {
		budget = s.genesis.MineBudget
	}

	var parent *chain.Block
	if tip, ok := c.Tip(); ok {
		parent = &tip
	}

	block, stats, err := mine.Mine(ctx, mine.Config{
		Parent:      parent,
		Trans:       trans,
		Difficulty:  s.difficulty,
		MaxAttempts: budget,
		EvHandler:   s.evHandler,
	})
	if err != nil {
		return chain.Block{}, stats, err
	}

	if err := c.Append(block); err != nil {
		return chain.Block{}, stats, err
	}

	s.evHandler("state: block sealed: blk[%d] nonce[%d] attempts[%d] hash[%s]",
		block.Header.Number, stats.Nonce, stats.Attempts, stats.Hash)

	return block, stats, nil
}
