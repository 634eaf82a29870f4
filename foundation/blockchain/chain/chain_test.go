package chain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/digest"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/mine"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// Low difficulty keeps the proof-of-work searches fast.
const testBits = 4

func sampleTxs(count int, nonceOffset uint64) []chain.Tx {
	txs := make([]chain.Tx, count)
	for i := range txs {
		txs[i] = chain.Tx{
			Nonce:  nonceOffset + uint64(i),
			FromID: "aimee",
			ToID:   "bill",
			Value:  uint64(100 + i),
		}
	}

	return txs
}

// buildChain mines blocks blocks of solved work into a fresh chain.
func buildChain(t *testing.T, blocks int) *chain.Chain {
	t.Helper()

	c := chain.NewChain()
	for i := 0; i < blocks; i++ {
		var parent *chain.Block
		if tip, ok := c.Tip(); ok {
			parent = &tip
		}

		block, _, err := mine.Mine(context.Background(), mine.Config{
			Parent:     parent,
			Trans:      sampleTxs(3, uint64(i*3)),
			Difficulty: testBits,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould mine block %d: %v.", failed, i, err)
		}

		if err := c.Append(block); err != nil {
			t.Fatalf("\t%s\tShould append block %d: %v.", failed, i, err)
		}
	}

	return c
}

// =============================================================================

func TestAppendAndValidate(t *testing.T) {
	t.Log("Given the need to grow a chain of solved blocks.")
	{
		c := buildChain(t, 4)

		if c.Length() != 4 {
			t.Fatalf("\t%s\tShould hold 4 blocks, got %d.", failed, c.Length())
		}
		t.Logf("\t%s\tShould hold 4 blocks.", success)

		report := c.Validate()
		if !report.Valid || report.FirstInvalid != -1 {
			t.Fatalf("\t%s\tShould validate end to end: %+v.", failed, report)
		}
		t.Logf("\t%s\tShould validate end to end.", success)

		for i := 1; i < c.Length(); i++ {
			block, _ := c.BlockAt(i)
			parent, _ := c.BlockAt(i - 1)
			if !block.Header.PrevBlockHash.Equal(parent.Hash()) {
				t.Fatalf("\t%s\tShould link block %d to its parent.", failed, i)
			}
		}
		t.Logf("\t%s\tShould link every block to its parent.", success)
	}
}

func TestAppendRejections(t *testing.T) {
	t.Log("Given blocks that break the append contract.")
	{
		c := buildChain(t, 2)
		tip, _ := c.Tip()

		// Mine a legitimate next block, then break one header field at a
		// time before trying to append it.
		txs := sampleTxs(2, 100)
		unsolved, _, err := mine.Mine(context.Background(), mine.Config{
			Parent:     &tip,
			Trans:      txs,
			Difficulty: testBits,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould mine the base block: %v.", failed, err)
		}

		broken := unsolved
		broken.Header.Number = tip.Header.Number + 5
		if err := c.Append(broken); !errors.Is(err, chain.ErrLinkage) {
			t.Fatalf("\t%s\tShould reject a block with the wrong number: %v.", failed, err)
		}
		t.Logf("\t%s\tShould reject a block with the wrong number.", success)

		broken = unsolved
		broken.Header.PrevBlockHash = digest.Sum([]byte("not the tip"))
		if err := c.Append(broken); !errors.Is(err, chain.ErrLinkage) {
			t.Fatalf("\t%s\tShould reject a block with a broken hash pointer: %v.", failed, err)
		}
		t.Logf("\t%s\tShould reject a block with a broken hash pointer.", success)

		if c.Length() != 2 {
			t.Fatalf("\t%s\tShould leave the chain unchanged after failures, got %d blocks.", failed, c.Length())
		}
		t.Logf("\t%s\tShould leave the chain unchanged after failures.", success)
	}

	t.Log("Given a genesis block that does not start at number 0.")
	{
		block, _, err := mine.Mine(context.Background(), mine.Config{
			Trans:      sampleTxs(1, 0),
			Difficulty: testBits,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould mine the genesis block: %v.", failed, err)
		}
		block.Header.Number = 1

		c := chain.NewChain()
		if err := c.Append(block); !errors.Is(err, chain.ErrLinkage) {
			t.Fatalf("\t%s\tShould reject the misnumbered genesis: %v.", failed, err)
		}
		t.Logf("\t%s\tShould reject the misnumbered genesis.", success)
	}
}

func TestTamperDetection(t *testing.T) {
	t.Log("Given a sealed chain and a tampered middle block timestamp.")
	{
		c := buildChain(t, 4)

		if err := c.Tamper(2, func(b *chain.Block) {
			b.Header.TimeStamp++
		}); err != nil {
			t.Fatalf("\t%s\tShould be able to tamper: %v.", failed, err)
		}

		report := c.Validate()
		if report.Valid {
			t.Fatalf("\t%s\tShould detect the mutation.", failed)
		}
		t.Logf("\t%s\tShould detect the mutation.", success)

		if report.FirstInvalid != 2 || report.Violation != chain.ViolationLinkage {
			t.Fatalf("\t%s\tShould name blk[2] and the linkage violation: %+v.", failed, report)
		}
		t.Logf("\t%s\tShould name blk[2] and the linkage violation.", success)
	}

	t.Log("Given a tampered transaction inside a sealed block.")
	{
		c := buildChain(t, 3)

		if err := c.Tamper(1, func(b *chain.Block) {
			b.Trans.Leafs[0].Value.Value += 1_000_000
		}); err != nil {
			t.Fatalf("\t%s\tShould be able to tamper: %v.", failed, err)
		}

		report := c.Validate()
		if report.Valid || report.FirstInvalid != 1 || report.Violation != chain.ViolationMerkle {
			t.Fatalf("\t%s\tShould report a merkle mismatch at blk[1]: %+v.", failed, report)
		}
		t.Logf("\t%s\tShould report a merkle mismatch at blk[1].", success)
	}

	t.Log("Given a chain holding only a tampered genesis block.")
	{
		c := buildChain(t, 1)

		if err := c.Tamper(0, func(b *chain.Block) {
			b.Header.TimeStamp++
		}); err != nil {
			t.Fatalf("\t%s\tShould be able to tamper: %v.", failed, err)
		}

		report := c.Validate()
		if report.Valid || report.FirstInvalid != 0 || report.Violation != chain.ViolationLinkage {
			t.Fatalf("\t%s\tShould detect the sole-block mutation at blk[0]: %+v.", failed, report)
		}
		t.Logf("\t%s\tShould detect the sole-block mutation at blk[0].", success)
	}
}

func TestCloneAndPrefix(t *testing.T) {
	t.Log("Given the need to branch a chain for a fork.")
	{
		c := buildChain(t, 4)

		clone := c.Clone()
		if err := clone.Tamper(3, func(b *chain.Block) { b.Header.TimeStamp++ }); err != nil {
			t.Fatalf("\t%s\tShould be able to tamper the clone: %v.", failed, err)
		}

		if report := c.Validate(); !report.Valid {
			t.Fatalf("\t%s\tShould leave the original untouched: %+v.", failed, report)
		}
		t.Logf("\t%s\tShould leave the original untouched.", success)

		prefix, err := c.Prefix(2)
		if err != nil {
			t.Fatalf("\t%s\tShould take a prefix: %v.", failed, err)
		}
		if prefix.Length() != 2 {
			t.Fatalf("\t%s\tShould hold 2 blocks, got %d.", failed, prefix.Length())
		}
		t.Logf("\t%s\tShould hold the first 2 blocks.", success)

		if _, err := c.Prefix(9); err == nil {
			t.Fatalf("\t%s\tShould reject a prefix longer than the chain.", failed)
		}
		t.Logf("\t%s\tShould reject a prefix longer than the chain.", success)
	}
}

func TestCumulativeWork(t *testing.T) {
	t.Log("Given chains of differing difficulty.")
	{
		low := buildChain(t, 2)

		if got, want := low.CumulativeWork().Int64(), int64(2<<testBits); got != want {
			t.Fatalf("\t%s\tShould sum to %d, got %d.", failed, want, got)
		}
		t.Logf("\t%s\tShould sum 2 blocks at %d bits.", success, testBits)

		if chain.BlockWork(10).Int64() != 1024 {
			t.Fatalf("\t%s\tShould weigh a 10 bit block as 1024.", failed)
		}
		t.Logf("\t%s\tShould weigh a 10 bit block as 1024.", success)
	}
}
