// Package mine performs the proof-of-work search that seals a block. The
// search iterates the nonce from zero, so for fixed header fields and
// difficulty the winning nonce is reproducible. The expected number of
// attempts grows as 2^difficulty, which is why interactive demos keep the
// difficulty small.
package mine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/digest"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/merkle"
)

// ErrBudgetExceeded is returned when the nonce search runs through the
// caller's attempt budget without finding a solved hash. No block escapes
// the search in that case.
var ErrBudgetExceeded = errors.New("mining attempt budget exceeded")

// Number of attempts between progress events.
const progressEvery = 100_000

// Config holds the inputs for one mining run.
type Config struct {
	Parent      *chain.Block // Parent block, nil when mining a genesis block.
	Trans       []chain.Tx   // Transactions to commit into the block.
	Difficulty  uint         // Required leading zero bits.
	TimeStamp   uint64       // Header timestamp, zero means now.
	MaxAttempts uint64       // Attempt budget, zero means unbounded.
	EvHandler   func(v string, args ...any)
}

// Stats reports what the nonce search did.
type Stats struct {
	Nonce      uint64        `json:"nonce"`
	Hash       digest.Digest `json:"hash"`
	Attempts   uint64        `json:"attempts"`
	Elapsed    time.Duration `json:"elapsed"`
	Difficulty uint          `json:"difficulty"`
}

// Mine constructs the next block for the specified parent and performs the
// work to find a nonce that solves the cryptographic POW puzzle. The search
// stops when the context is cancelled or the attempt budget runs out.
func Mine(ctx context.Context, cfg Config) (chain.Block, Stats, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Construct a merkle tree from the transactions for this block. The
	// root of this tree is part of the header to be mined.
	tree, err := merkle.NewTree(cfg.Trans)
	if err != nil {
		return chain.Block{}, Stats{}, err
	}

	prevBlockHash := digest.Zero
	var number uint64
	if cfg.Parent != nil {
		prevBlockHash = cfg.Parent.Hash()
		number = cfg.Parent.Header.Number + 1
	}

	timeStamp := cfg.TimeStamp
	if timeStamp == 0 {
		timeStamp = uint64(time.Now().UTC().Unix())
	}

	block := chain.Block{
		Header: chain.BlockHeader{
			Number:        number,
			PrevBlockHash: prevBlockHash,
			TransRoot:     tree.MerkleRoot,
			TimeStamp:     timeStamp,
			Nonce:         0, // Identified by the search below.
			Difficulty:    cfg.Difficulty,
		},
		Trans: tree,
	}

	stats, err := performPOW(ctx, &block, cfg.MaxAttempts, ev)
	if err != nil {
		return chain.Block{}, stats, err
	}

	return block, stats, nil
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
func performPOW(ctx context.Context, b *chain.Block, maxAttempts uint64, ev func(v string, args ...any)) (Stats, error) {
	ev("mine: performPOW: MINING: started: blk[%d] difficulty[%d]", b.Header.Number, b.Header.Difficulty)
	defer ev("mine: performPOW: MINING: completed")

	t := time.Now()

	var attempts uint64
	for {
		attempts++
		if attempts%progressEvery == 0 {
			ev("mine: performPOW: MINING: attempts[%d]", attempts)
		}

		// Did the caller timeout or cancel the search.
		if ctx.Err() != nil {
			ev("mine: performPOW: MINING: CANCELLED")
			return stats(b, attempts, t), ctx.Err()
		}

		// Hash the block and check if we have solved the puzzle.
		hash := b.Hash()
		if chain.IsHashSolved(b.Header.Difficulty, hash) {
			ev("mine: performPOW: MINING: SOLVED: nonce[%d] attempts[%d] hash[%s]", b.Header.Nonce, attempts, hash)
			return stats(b, attempts, t), nil
		}

		if maxAttempts > 0 && attempts >= maxAttempts {
			ev("mine: performPOW: MINING: BUDGET EXCEEDED: attempts[%d]", attempts)
			return stats(b, attempts, t), fmt.Errorf("no solution in %d attempts: %w", attempts, ErrBudgetExceeded)
		}

		b.Header.Nonce++
	}
}

func stats(b *chain.Block, attempts uint64, start time.Time) Stats {
	return Stats{
		Nonce:      b.Header.Nonce,
		Hash:       b.Hash(),
		Attempts:   attempts,
		Elapsed:    time.Since(start),
		Difficulty: b.Header.Difficulty,
	}
}
