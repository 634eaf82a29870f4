package simgrp

import (
	"context"
	"testing"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/mine"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func testBlock(t *testing.T) chain.Block {
	t.Helper()

	trans := []chain.Tx{
		{Nonce: 1, FromID: "aimee", ToID: "bill", Value: 100, Tip: 10},
		{Nonce: 1, FromID: "cindy", ToID: "dan", Value: 50, Tip: 5},
	}

	blk, _, err := mine.Mine(context.Background(), mine.Config{
		Trans:       trans,
		Difficulty:  2,
		MaxAttempts: 1_000_000,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
	}

	return blk
}

func TestCheckTamperTx(t *testing.T) {
	blk := testBlock(t)
	memo := "oops"

	t.Log("Given the need to validate a tamper request before mutating.")
	{
		tr := tamperRequest{Index: 0, Tx: &tamperTx{Index: 1, Memo: &memo}}
		if err := checkTamperTx(tr, blk); err != nil {
			t.Fatalf("\t%s\tShould accept an in-range transaction index: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept an in-range transaction index.", success)

		tr = tamperRequest{Index: 0, Tx: &tamperTx{Index: len(blk.Trans.Leafs), Memo: &memo}}
		if err := checkTamperTx(tr, blk); err == nil {
			t.Fatalf("\t%s\tShould reject a transaction index past the block.", failed)
		}
		t.Logf("\t%s\tShould reject a transaction index past the block.", success)

		tr = tamperRequest{Index: 0, Tx: &tamperTx{Index: -1, Memo: &memo}}
		if err := checkTamperTx(tr, blk); err == nil {
			t.Fatalf("\t%s\tShould reject a negative transaction index.", failed)
		}
		t.Logf("\t%s\tShould reject a negative transaction index.", success)

		tr = tamperRequest{Index: 0, Timestamp: new(uint64)}
		if err := checkTamperTx(tr, blk); err != nil {
			t.Fatalf("\t%s\tShould pass a request with no transaction target: %v", failed, err)
		}
		t.Logf("\t%s\tShould pass a request with no transaction target.", success)
	}
}
