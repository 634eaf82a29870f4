package mine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/mine"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// Low difficulty keeps the searches fast; fixed timestamps make the runs
// reproducible.
const (
	testBits      = 6
	testTimeStamp = 1_700_000_000
)

func testTxs() []chain.Tx {
	return []chain.Tx{
		{Nonce: 1, FromID: "aimee", ToID: "bill", Value: 100},
		{Nonce: 2, FromID: "bill", ToID: "cindy", Value: 75, Tip: 5},
	}
}

func TestMineSolves(t *testing.T) {
	t.Log("Given the need to seal a genesis block with proof of work.")
	{
		block, stats, err := mine.Mine(context.Background(), mine.Config{
			Trans:      testTxs(),
			Difficulty: testBits,
			TimeStamp:  testTimeStamp,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould mine the block: %v.", failed, err)
		}
		t.Logf("\t%s\tShould mine the block.", success)

		if got := block.Hash().LeadingZeroBits(); got < testBits {
			t.Fatalf("\t%s\tShould carry at least %d leading zero bits, got %d.", failed, testBits, got)
		}
		t.Logf("\t%s\tShould carry at least %d leading zero bits.", success, testBits)

		if !block.Solved() {
			t.Fatalf("\t%s\tShould satisfy its own difficulty.", failed)
		}
		t.Logf("\t%s\tShould satisfy its own difficulty.", success)

		if stats.Attempts != stats.Nonce+1 {
			t.Fatalf("\t%s\tShould count one attempt per nonce from zero: nonce[%d] attempts[%d].",
				failed, stats.Nonce, stats.Attempts)
		}
		t.Logf("\t%s\tShould count one attempt per nonce from zero.", success)
	}
}

func TestMineDeterministic(t *testing.T) {
	t.Log("Given two searches over identical inputs.")
	{
		cfg := mine.Config{
			Trans:      testTxs(),
			Difficulty: testBits,
			TimeStamp:  testTimeStamp,
		}

		a, aStats, err := mine.Mine(context.Background(), cfg)
		if err != nil {
			t.Fatalf("\t%s\tShould mine the first block: %v.", failed, err)
		}
		b, bStats, err := mine.Mine(context.Background(), cfg)
		if err != nil {
			t.Fatalf("\t%s\tShould mine the second block: %v.", failed, err)
		}

		if aStats.Nonce != bStats.Nonce {
			t.Fatalf("\t%s\tShould find the same nonce: %d vs %d.", failed, aStats.Nonce, bStats.Nonce)
		}
		t.Logf("\t%s\tShould find the same nonce.", success)

		if !a.Hash().Equal(b.Hash()) {
			t.Fatalf("\t%s\tShould produce the same block hash.", failed)
		}
		t.Logf("\t%s\tShould produce the same block hash.", success)
	}
}

func TestMineBudget(t *testing.T) {
	t.Log("Given an attempt budget too small to find a solution.")
	{
		_, stats, err := mine.Mine(context.Background(), mine.Config{
			Trans:       testTxs(),
			Difficulty:  24,
			TimeStamp:   testTimeStamp,
			MaxAttempts: 50,
		})
		if !errors.Is(err, mine.ErrBudgetExceeded) {
			t.Fatalf("\t%s\tShould run out of budget: %v.", failed, err)
		}
		t.Logf("\t%s\tShould run out of budget.", success)

		if stats.Attempts != 50 {
			t.Fatalf("\t%s\tShould stop at exactly 50 attempts, got %d.", failed, stats.Attempts)
		}
		t.Logf("\t%s\tShould stop at exactly 50 attempts.", success)
	}
}

func TestMineCancel(t *testing.T) {
	t.Log("Given a context cancelled before the search starts.")
	{
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := mine.Mine(ctx, mine.Config{
			Trans:      testTxs(),
			Difficulty: 24,
			TimeStamp:  testTimeStamp,
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("\t%s\tShould stop with the context error: %v.", failed, err)
		}
		t.Logf("\t%s\tShould stop with the context error.", success)
	}
}

func TestMineLinksToParent(t *testing.T) {
	t.Log("Given a parent block to extend.")
	{
		parent, _, err := mine.Mine(context.Background(), mine.Config{
			Trans:      testTxs(),
			Difficulty: testBits,
			TimeStamp:  testTimeStamp,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould mine the parent: %v.", failed, err)
		}

		child, _, err := mine.Mine(context.Background(), mine.Config{
			Parent:     &parent,
			Trans:      testTxs(),
			Difficulty: testBits,
			TimeStamp:  testTimeStamp + 600,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould mine the child: %v.", failed, err)
		}

		if child.Header.Number != parent.Header.Number+1 {
			t.Fatalf("\t%s\tShould carry the next block number.", failed)
		}
		t.Logf("\t%s\tShould carry the next block number.", success)

		if !child.Header.PrevBlockHash.Equal(parent.Hash()) {
			t.Fatalf("\t%s\tShould point at the parent digest.", failed)
		}
		t.Logf("\t%s\tShould point at the parent digest.", success)

		if err := child.ValidateAgainst(parent); err != nil {
			t.Fatalf("\t%s\tShould validate against the parent: %v.", failed, err)
		}
		t.Logf("\t%s\tShould validate against the parent.", success)
	}
}

func TestMineRejectsEmptyBatch(t *testing.T) {
	t.Log("Given no transactions to commit.")
	{
		if _, _, err := mine.Mine(context.Background(), mine.Config{Difficulty: testBits}); err == nil {
			t.Fatalf("\t%s\tShould refuse to mine an empty block.", failed)
		}
		t.Logf("\t%s\tShould refuse to mine an empty block.", success)
	}
}
