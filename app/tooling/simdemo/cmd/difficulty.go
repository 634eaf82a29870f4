package cmd

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/difficulty"
	"github.com/spf13/cobra"
)

var (
	intervalSeconds uint64
	windowBlocks    int
)

// difficultyCmd feeds a synthetic timestamp series to the retarget function
// and prints the prediction.
var difficultyCmd = &cobra.Command{
	Use:   "difficulty",
	Short: "Predict the next difficulty from a synthetic block cadence",
	Run: func(cmd *cobra.Command, args []string) {
		timestamps := make([]uint64, windowBlocks)
		base := uint64(time.Now().Unix()) - uint64(windowBlocks)*intervalSeconds
		for i := range timestamps {
			timestamps[i] = base + uint64(i)*intervalSeconds
		}

		cfg := difficulty.DefaultConfig()
		current := math.Exp2(float64(bits))

		pred, err := difficulty.Retarget(timestamps, current, cfg)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("observed interval:  %s\n", pred.ActualInterval)
		fmt.Printf("expected interval:  %s\n", pred.ExpectedInterval)
		fmt.Printf("adjustment ratio:   %.4f (clamped %t)\n", pred.Ratio, pred.Clamped)
		fmt.Printf("difficulty change:  %+.1f%%\n", pred.AdjustmentPercent)
		fmt.Printf("next zero bits:     %d (was %d)\n", difficulty.NextBits(bits, pred.Ratio), bits)
	},
}

func init() {
	rootCmd.AddCommand(difficultyCmd)
	difficultyCmd.Flags().Uint64VarP(&intervalSeconds, "interval", "s", 300, "Seconds between synthetic blocks.")
	difficultyCmd.Flags().IntVarP(&windowBlocks, "window", "w", 16, "Number of synthetic blocks to observe.")
}
