package selector

import (
	"sort"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
)

// advancedTipSelect returns transactions with the best total tip while
// respecting the nonce order for each sender. Unlike the plain tip
// strategy it searches across row boundaries, so a high-value transaction
// stuck behind a low-tip low-nonce one from the same sender can still pull
// its whole prefix into the block.
var advancedTipSelect = func(m map[string][]chain.Tx, howMany int) []chain.Tx {
	if howMany == -1 {
		howMany = poolSize(m)
	}

	for key := range m {
		if len(m[key]) > 1 {
			sort.Sort(byNonce(m[key]))
		}
	}

	final := []chain.Tx{}
	at := newAdvancedTips(m, howMany)
	for from, num := range at.findBest() {
		for i := 0; i < num; i++ {
			final = append(final, m[from][i])
		}
	}

	return final
}

// =============================================================================

// advancedTips searches for the per-sender prefix lengths whose combined
// tip total is the best fit for the block.
type advancedTips struct {
	howMany   int
	bestTip   uint64
	bestPos   map[string]int
	groupTips map[string][]uint64
	groups    []string
}

func newAdvancedTips(m map[string][]chain.Tx, howMany int) *advancedTips {
	groupTips := map[string][]uint64{}
	groups := []string{}

	for from := range m {
		groupTips[from] = []uint64{0}
		groups = append(groups, from)
	}

	// Running tip totals per sender prefix: groupTips[from][n] is the tip
	// income from taking the sender's first n transactions.
	for from, group := range m {
		for i, tx := range group {
			if i > howMany {
				break
			}
			groupTips[from] = append(groupTips[from], tx.Tip+groupTips[from][i])
		}
	}

	return &advancedTips{
		howMany:   howMany,
		groupTips: groupTips,
		groups:    groups,
	}
}

func (at *advancedTips) findBest() map[string]int {
	at.findBestTransactions(0, at.howMany, at.bestPos, 0)
	return at.bestPos
}

func (at *advancedTips) findBestTransactions(groupID int, left int, currPos map[string]int, prevTip uint64) {
	if prevTip > at.bestTip {
		at.bestTip = prevTip
		at.bestPos = currPos
	}

	if groupID >= len(at.groups) {
		return
	}
	from := at.groups[groupID]

	for pos, tip := range at.groupTips[from] {
		if left-pos < 0 {
			break
		}

		newCurrPos := copyMap(currPos)
		newCurrPos[from] = pos
		at.findBestTransactions(groupID+1, left-pos, newCurrPos, prevTip+tip)
	}
}

func copyMap(m map[string]int) map[string]int {
	newCurrPos := map[string]int{}
	for from, pos := range m {
		newCurrPos[from] = pos
	}

	return newCurrPos
}
