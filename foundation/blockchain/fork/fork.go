// Package fork resolves competing chain tips and scores confirmation
// depth. The canonical chain is the one with the greatest cumulative
// proof-of-work, not the most blocks; on equal work the earliest seen
// candidate wins.
package fork

import (
	"errors"
	"fmt"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
)

// ErrNoCandidates is returned when canonical selection is asked to choose
// from an empty candidate set.
var ErrNoCandidates = errors.New("no candidate chains")

// DefaultSafeDepth is the confirmation count at which a block is treated
// as settled, the six block rule from the reference domain.
const DefaultSafeDepth = 6

// Canonical selects the canonical chain among the candidates and returns
// its index in the candidate ordering. Candidates are expected in the
// order they were first seen, which is the tie-break: on equal cumulative
// work the lower index wins.
func Canonical(candidates []*chain.Chain) (int, error) {
	if len(candidates) == 0 {
		return 0, ErrNoCandidates
	}

	best := 0
	bestWork := candidates[0].CumulativeWork()

	for i := 1; i < len(candidates); i++ {
		work := candidates[i].CumulativeWork()
		if work.Cmp(bestWork) > 0 {
			best = i
			bestWork = work
		}
	}

	return best, nil
}

// Confirmations returns the number of blocks mined on top of the block at
// the specified index, the distance from the tip.
func Confirmations(c *chain.Chain, blockIndex int) (int, error) {
	if blockIndex < 0 || blockIndex >= c.Length() {
		return 0, fmt.Errorf("no block at index %d", blockIndex)
	}

	return c.Length() - 1 - blockIndex, nil
}

// Safe reports whether the confirmation count meets the safety threshold.
func Safe(confirmations int, safeDepth int) bool {
	return confirmations >= safeDepth
}

// DivergencePoint returns the highest index at which both chains carry a
// block with the same accepted digest, or -1 when the chains share no
// common prefix at all.
func DivergencePoint(a *chain.Chain, b *chain.Chain) int {
	length := a.Length()
	if b.Length() < length {
		length = b.Length()
	}

	shared := -1
	for i := 0; i < length; i++ {
		hashA, _ := a.HashAt(i)
		hashB, _ := b.HashAt(i)
		if !hashA.Equal(hashB) {
			break
		}
		shared = i
	}

	return shared
}
