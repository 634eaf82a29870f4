package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/mine"
	"github.com/spf13/cobra"
)

var blockCount int

// chainCmd mines a small chain, validates it, then tampers with a sealed
// block to show the validation catching it.
var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Mine a chain, validate it, tamper with it, validate again",
	Run: func(cmd *cobra.Command, args []string) {
		c := buildChain(blockCount)

		report := c.Validate()
		fmt.Printf("chain of %d blocks valid[%t] work[%s]\n", c.Length(), report.Valid, c.CumulativeWork())

		if verbose {
			for _, b := range c.Blocks() {
				fmt.Printf("  blk[%d] nonce[%d] hash[%s]\n", b.Header.Number, b.Header.Nonce, b.Hash())
			}
		}

		target := c.Length() / 2
		if err := c.Tamper(target, func(b *chain.Block) {
			b.Header.TimeStamp++
		}); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("tampered with the timestamp of blk[%d]\n", target)

		report = c.Validate()
		fmt.Printf("valid[%t] first_invalid[%d] violation[%s]\n", report.Valid, report.FirstInvalid, report.Violation)
	},
}

func init() {
	rootCmd.AddCommand(chainCmd)
	chainCmd.Flags().IntVarP(&blockCount, "blocks", "n", 4, "Number of blocks to mine.")
}

// buildChain mines a fresh chain of the specified length using the shared
// bits and txs flags.
func buildChain(blocks int) *chain.Chain {
	c := chain.NewChain()

	for i := 0; i < blocks; i++ {
		var parent *chain.Block
		if tip, ok := c.Tip(); ok {
			parent = &tip
		}

		block, stats, err := mine.Mine(context.Background(), mine.Config{
			Parent:     parent,
			Trans:      sampleTxs(txCount, uint64(i*txCount)),
			Difficulty: bits,
		})
		if err != nil {
			log.Fatal(err)
		}

		if err := c.Append(block); err != nil {
			log.Fatal(err)
		}

		if verbose {
			fmt.Printf("mined blk[%d] in %d attempts (%s)\n", block.Header.Number, stats.Attempts, stats.Elapsed)
		}
	}

	return c
}
