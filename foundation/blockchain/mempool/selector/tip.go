package selector

import (
	"sort"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
)

// tipSelect returns transactions with the best tip while respecting the
// nonce order for each sender. Rows of one-transaction-per-sender are
// built first so a high tip can never pull a later nonce ahead of an
// earlier one from the same sender.
var tipSelect = func(m map[string][]chain.Tx, howMany int) []chain.Tx {
	if howMany == -1 {
		howMany = poolSize(m)
	}

	var final []chain.Tx
	for _, row := range rows(m) {
		sort.Sort(byTip(row))

		need := howMany - len(final)
		if len(row) > need {
			final = append(final, row[:need]...)
			break
		}

		final = append(final, row...)
	}

	return final
}

// nonceSelect returns transactions in plain arrival order: row by row with
// each sender's lowest nonce first and no tip preference.
var nonceSelect = func(m map[string][]chain.Tx, howMany int) []chain.Tx {
	if howMany == -1 {
		howMany = poolSize(m)
	}

	var final []chain.Tx
	for _, row := range rows(m) {
		sort.Sort(byNonce(row))

		need := howMany - len(final)
		if len(row) > need {
			final = append(final, row[:need]...)
			break
		}

		final = append(final, row...)
	}

	return final
}

func poolSize(m map[string][]chain.Tx) int {
	var n int
	for _, group := range m {
		n += len(group)
	}

	return n
}
