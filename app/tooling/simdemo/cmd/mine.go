package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/mine"
	"github.com/spf13/cobra"
)

var budget uint64

// mineCmd runs a single proof-of-work search and prints the numbers.
var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine a single genesis block and report the search stats",
	Run: func(cmd *cobra.Command, args []string) {
		block, stats, err := mine.Mine(context.Background(), mine.Config{
			Trans:       sampleTxs(txCount, 0),
			Difficulty:  bits,
			MaxAttempts: budget,
		})
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("difficulty: %d leading zero bits\n", bits)
		fmt.Printf("nonce:      %d\n", stats.Nonce)
		fmt.Printf("attempts:   %d\n", stats.Attempts)
		fmt.Printf("elapsed:    %s\n", stats.Elapsed)
		fmt.Printf("hash:       %s\n", block.Hash())
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().Uint64VarP(&budget, "budget", "m", 0, "Maximum attempts, 0 for unbounded.")
}
