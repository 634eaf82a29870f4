package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/fork"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/mine"
	"github.com/spf13/cobra"
)

// forkCmd stages two competing extensions of a shared prefix and resolves
// the fork by cumulative work.
var forkCmd = &cobra.Command{
	Use:   "fork",
	Short: "Race two chain tips and resolve the fork by cumulative work",
	Run: func(cmd *cobra.Command, args []string) {
		shared := buildChain(3)
		fmt.Printf("shared prefix: %d blocks, work %s\n", shared.Length(), shared.CumulativeWork())

		chainA := shared.Clone()
		extend(chainA, 2, bits)
		fmt.Printf("candidate A: +2 blocks at %d bits, work %s\n", bits, chainA.CumulativeWork())

		chainB := shared.Clone()
		extend(chainB, 1, bits+2)
		fmt.Printf("candidate B: +1 block at %d bits, work %s\n", bits+2, chainB.CumulativeWork())

		candidates := []*chain.Chain{chainA, chainB}
		winner, err := fork.Canonical(candidates)
		if err != nil {
			log.Fatal(err)
		}

		name := string(rune('A' + winner))
		canonical := candidates[winner]
		fmt.Printf("winner: candidate %s, divergence after blk[%d]\n", name, fork.DivergencePoint(chainA, chainB))

		for index := 0; index < canonical.Length(); index++ {
			conf, err := fork.Confirmations(canonical, index)
			if err != nil {
				log.Fatal(err)
			}
			level := fork.Safety(conf)
			fmt.Printf("blk[%d] confirmations[%d] grade[%s] safe[%t]\n", index, conf, level.Grade, fork.Safe(conf, fork.DefaultSafeDepth))
		}
	},
}

func init() {
	rootCmd.AddCommand(forkCmd)
}

// extend mines count blocks onto the chain at the specified difficulty.
func extend(c *chain.Chain, count int, difficulty uint) {
	for i := 0; i < count; i++ {
		tip, _ := c.Tip()

		block, _, err := mine.Mine(context.Background(), mine.Config{
			Parent:     &tip,
			Trans:      sampleTxs(txCount, uint64(c.Length()*txCount)),
			Difficulty: difficulty,
		})
		if err != nil {
			log.Fatal(err)
		}

		if err := c.Append(block); err != nil {
			log.Fatal(err)
		}
	}
}
