package chain

import "math/big"

// BlockWork returns the amount of work a block at the specified difficulty
// represents. With difficulty expressed as required leading zero bits, a
// solved block stands for an expected 2^difficulty hash attempts.
func BlockWork(difficulty uint) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), difficulty)
}

// CumulativeWork returns the total work represented by the chain, the sum
// of the per-block work values. This is the quantity fork resolution
// compares, not the raw block count.
func (c *Chain) CumulativeWork() *big.Int {
	total := big.NewInt(0)
	for _, block := range c.blocks {
		total.Add(total, BlockWork(block.Header.Difficulty))
	}

	return total
}
