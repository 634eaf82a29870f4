// Package selector provides different transaction selecting algorithms
// for building the next block out of the pending pool.
package selector

import (
	"fmt"
	"sort"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
)

// List of different select strategies.
const (
	StrategyTip         = "tip"
	StrategyTipAdvanced = "tip_advanced"
	StrategyNonce       = "nonce"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyTip:         tipSelect,
	StrategyTipAdvanced: advancedTipSelect,
	StrategyNonce:       nonceSelect,
}

// Func defines a function that takes a mempool of transactions grouped by
// sender and selects howMany of them in an order based on the function's
// strategy. All selector functions MUST respect nonce ordering per sender.
// Receiving -1 for howMany must return all the transactions in the
// strategy's ordering.
type Func func(transactions map[string][]chain.Tx, howMany int) []chain.Tx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// byNonce provides sorting support by the transaction nonce value.
type byNonce []chain.Tx

// Len returns the number of transactions in the list.
func (bn byNonce) Len() int {
	return len(bn)
}

// Less helps to sort the list by nonce in ascending order to keep the
// transactions in the right order of processing.
func (bn byNonce) Less(i, j int) bool {
	return bn[i].Nonce < bn[j].Nonce
}

// Swap moves transactions in the order of the nonce value.
func (bn byNonce) Swap(i, j int) {
	bn[i], bn[j] = bn[j], bn[i]
}

// =============================================================================

// byTip provides sorting support by the transaction tip value.
type byTip []chain.Tx

// Len returns the number of transactions in the list.
func (bt byTip) Len() int {
	return len(bt)
}

// Less helps to sort the list by tip in descending order to pick the
// transactions that provide the best reward.
func (bt byTip) Less(i, j int) bool {
	return bt[i].Tip > bt[j].Tip
}

// Swap moves transactions in the order of the tip value.
func (bt byTip) Swap(i, j int) {
	bt[i], bt[j] = bt[j], bt[i]
}

// =============================================================================

// rows flattens the per-sender groups into selection rows: one transaction
// per sender per row, preserving each sender's nonce order.
func rows(m map[string][]chain.Tx) [][]chain.Tx {
	for key := range m {
		if len(m[key]) > 1 {
			sort.Sort(byNonce(m[key]))
		}
	}

	var out [][]chain.Tx
	for {
		var row []chain.Tx
		for key := range m {
			if len(m[key]) > 0 {
				row = append(row, m[key][0])
				m[key] = m[key][1:]
			}
		}
		if row == nil {
			break
		}
		out = append(out, row)
	}

	return out
}
