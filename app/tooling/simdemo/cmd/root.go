// Package cmd contains the simdemo commands. Every command runs the
// simulation in process, no engine service required.
package cmd

import (
	"fmt"
	"os"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
	"github.com/spf13/cobra"
)

var (
	bits    uint
	txCount int
	verbose bool
)

func init() {
	rootCmd.PersistentFlags().UintVarP(&bits, "bits", "b", 8, "Difficulty as required leading zero bits.")
	rootCmd.PersistentFlags().IntVarP(&txCount, "txs", "t", 4, "Transactions per block.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print per-block details.")
}

var rootCmd = &cobra.Command{
	Use:   "simdemo",
	Short: "Walk the chain simulation from the command line",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// sampleTxs fabricates a deterministic batch of transactions. The nonce
// offset keeps batches distinct across blocks.
func sampleTxs(count int, nonceOffset uint64) []chain.Tx {
	names := []string{"aimee", "bill", "cindy", "dan", "ed", "frank", "gina", "harry"}

	txs := make([]chain.Tx, count)
	for i := range txs {
		txs[i] = chain.Tx{
			Nonce:  nonceOffset + uint64(i),
			FromID: names[i%len(names)],
			ToID:   names[(i+1)%len(names)],
			Value:  uint64(100 + i*25),
			Tip:    uint64(i),
			Memo:   fmt.Sprintf("payment %d", nonceOffset+uint64(i)),
		}
	}

	return txs
}
