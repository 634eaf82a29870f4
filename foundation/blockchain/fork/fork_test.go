package fork_test

import (
	"context"
	"errors"
	"testing"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/fork"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/mine"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const testBits = 4

func sampleTxs(nonceOffset uint64) []chain.Tx {
	return []chain.Tx{
		{Nonce: nonceOffset, FromID: "aimee", ToID: "bill", Value: 100},
		{Nonce: nonceOffset + 1, FromID: "bill", ToID: "cindy", Value: 50},
	}
}

// buildChain mines a chain of the specified length at testBits.
func buildChain(t *testing.T, blocks int) *chain.Chain {
	t.Helper()

	c := chain.NewChain()
	extend(t, c, blocks, testBits)

	return c
}

// extend mines count blocks at the specified difficulty onto the chain.
func extend(t *testing.T, c *chain.Chain, count int, bits uint) {
	t.Helper()

	for i := 0; i < count; i++ {
		var parent *chain.Block
		if tip, ok := c.Tip(); ok {
			parent = &tip
		}

		block, _, err := mine.Mine(context.Background(), mine.Config{
			Parent:     parent,
			Trans:      sampleTxs(uint64(c.Length() * 10)),
			Difficulty: bits,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould mine block: %v.", failed, err)
		}
		if err := c.Append(block); err != nil {
			t.Fatalf("\t%s\tShould append block: %v.", failed, err)
		}
	}
}

// =============================================================================

func TestCanonicalByWork(t *testing.T) {
	t.Log("Given a longer low-work chain racing a shorter high-work chain.")
	{
		shared := buildChain(t, 3)

		// Candidate A extends the shared prefix with two blocks at 4 bits,
		// candidate B with a single block at 6 bits. B carries more work
		// with fewer blocks: 2^6 beats 2^4 + 2^4.
		chainA := shared.Clone()
		extend(t, chainA, 2, 4)

		chainB := shared.Clone()
		extend(t, chainB, 1, 6)

		winner, err := fork.Canonical([]*chain.Chain{chainA, chainB})
		if err != nil {
			t.Fatalf("\t%s\tShould select a winner: %v.", failed, err)
		}

		if winner != 1 {
			t.Fatalf("\t%s\tShould pick the heavier chain over the longer one, got %d.", failed, winner)
		}
		t.Logf("\t%s\tShould pick the heavier chain over the longer one.", success)

		if chainA.Length() <= chainB.Length() {
			t.Fatalf("\t%s\tShould have made the losing chain the longer one.", failed)
		}
		t.Logf("\t%s\tShould have made the losing chain the longer one.", success)
	}
}

func TestCanonicalTieBreak(t *testing.T) {
	t.Log("Given two candidates carrying equal cumulative work.")
	{
		shared := buildChain(t, 2)

		chainA := shared.Clone()
		extend(t, chainA, 1, testBits)

		chainB := shared.Clone()
		extend(t, chainB, 1, testBits)

		winner, err := fork.Canonical([]*chain.Chain{chainA, chainB})
		if err != nil {
			t.Fatalf("\t%s\tShould select a winner: %v.", failed, err)
		}

		if winner != 0 {
			t.Fatalf("\t%s\tShould keep the first seen candidate, got %d.", failed, winner)
		}
		t.Logf("\t%s\tShould keep the first seen candidate.", success)
	}

	t.Log("Given no candidates at all.")
	{
		if _, err := fork.Canonical(nil); !errors.Is(err, fork.ErrNoCandidates) {
			t.Fatalf("\t%s\tShould refuse an empty candidate set: %v.", failed, err)
		}
		t.Logf("\t%s\tShould refuse an empty candidate set.", success)
	}
}

func TestDivergencePoint(t *testing.T) {
	t.Log("Given two chains branching from a shared prefix.")
	{
		shared := buildChain(t, 3)

		chainA := shared.Clone()
		extend(t, chainA, 1, 4)

		chainB := shared.Clone()
		extend(t, chainB, 1, 5)

		if got := fork.DivergencePoint(chainA, chainB); got != 2 {
			t.Fatalf("\t%s\tShould agree through blk[2], got %d.", failed, got)
		}
		t.Logf("\t%s\tShould agree through blk[2].", success)

		if got := fork.DivergencePoint(chainA, chainA.Clone()); got != chainA.Length()-1 {
			t.Fatalf("\t%s\tShould agree through the tip for identical chains, got %d.", failed, got)
		}
		t.Logf("\t%s\tShould agree through the tip for identical chains.", success)
	}

	t.Log("Given two chains sharing nothing.")
	{
		a := buildChain(t, 1)

		b := chain.NewChain()
		block, _, err := mine.Mine(context.Background(), mine.Config{
			Trans:      sampleTxs(99),
			Difficulty: testBits,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould mine the rival genesis: %v.", failed, err)
		}
		if err := b.Append(block); err != nil {
			t.Fatalf("\t%s\tShould append the rival genesis: %v.", failed, err)
		}

		if got := fork.DivergencePoint(a, b); got != -1 {
			t.Fatalf("\t%s\tShould share no prefix, got %d.", failed, got)
		}
		t.Logf("\t%s\tShould share no prefix.", success)
	}
}

func TestConfirmations(t *testing.T) {
	t.Log("Given a chain of five blocks.")
	{
		c := buildChain(t, 5)

		type table struct {
			index int
			want  int
		}
		tt := []table{{0, 4}, {2, 2}, {4, 0}}

		for _, tst := range tt {
			conf, err := fork.Confirmations(c, tst.index)
			if err != nil {
				t.Fatalf("\t%s\tShould count confirmations for blk[%d]: %v.", failed, tst.index, err)
			}
			if conf != tst.want {
				t.Fatalf("\t%s\tShould count %d confirmations for blk[%d], got %d.", failed, tst.want, tst.index, conf)
			}
		}
		t.Logf("\t%s\tShould count the distance from the tip.", success)

		if _, err := fork.Confirmations(c, 5); err == nil {
			t.Fatalf("\t%s\tShould reject an index past the tip.", failed)
		}
		t.Logf("\t%s\tShould reject an index past the tip.", success)

		if fork.Safe(5, fork.DefaultSafeDepth) || !fork.Safe(6, fork.DefaultSafeDepth) {
			t.Fatalf("\t%s\tShould settle at exactly %d confirmations.", failed, fork.DefaultSafeDepth)
		}
		t.Logf("\t%s\tShould settle at exactly %d confirmations.", success, fork.DefaultSafeDepth)
	}
}

func TestSafety(t *testing.T) {
	type table struct {
		confirmations int
		grade         string
	}

	tt := []table{
		{0, "none"},
		{1, "minimal"},
		{2, "low"},
		{3, "medium"},
		{4, "medium"},
		{5, "medium"},
		{6, "high"},
		{11, "high"},
		{12, "very high"},
		{100, "very high"},
	}

	t.Log("Given the need to grade confirmation counts.")
	{
		for testID, tst := range tt {
			level := fork.Safety(tst.confirmations)
			if level.Grade != tst.grade {
				t.Fatalf("\t%s\tTest %d:\tShould grade %d confirmations %q, got %q.", failed, testID, tst.confirmations, tst.grade, level.Grade)
			}
			t.Logf("\t%s\tTest %d:\tShould grade %d confirmations %q.", success, testID, tst.confirmations, tst.grade)
		}
	}
}
