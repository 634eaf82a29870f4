package selector_test

import (
	"testing"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/mempool/selector"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func group(txs ...chain.Tx) map[string][]chain.Tx {
	m := make(map[string][]chain.Tx)
	for _, tx := range txs {
		m[tx.FromID] = append(m[tx.FromID], tx)
	}

	return m
}

func TestTipSelect(t *testing.T) {
	t.Log("Given the need to pick the best paying transactions.")
	{
		fn, err := selector.Retrieve(selector.StrategyTip)
		if err != nil {
			t.Fatalf("\t%s\tShould retrieve the tip strategy: %v.", failed, err)
		}
		t.Logf("\t%s\tShould retrieve the tip strategy.", success)

		m := group(
			chain.Tx{Nonce: 1, FromID: "aimee", Tip: 10},
			chain.Tx{Nonce: 2, FromID: "aimee", Tip: 200},
			chain.Tx{Nonce: 1, FromID: "bill", Tip: 100},
			chain.Tx{Nonce: 1, FromID: "cindy", Tip: 50},
		)

		picked := fn(m, 2)
		if len(picked) != 2 {
			t.Fatalf("\t%s\tShould pick 2 transactions, got %d.", failed, len(picked))
		}

		// Aimee's nonce 2 has the biggest tip in the pool but her nonce 1
		// must go first, so the first row is 10/100/50 and the best two of
		// that row win.
		if picked[0].FromID != "bill" || picked[1].FromID != "cindy" {
			t.Fatalf("\t%s\tShould pick bill then cindy, got %s then %s.", failed, picked[0].FromID, picked[1].FromID)
		}
		t.Logf("\t%s\tShould never pull a later nonce ahead of an earlier one.", success)
	}
}

func TestAdvancedTipSelect(t *testing.T) {
	t.Log("Given a big tip stuck behind a cheap low-nonce transaction.")
	{
		fn, err := selector.Retrieve(selector.StrategyTipAdvanced)
		if err != nil {
			t.Fatalf("\t%s\tShould retrieve the advanced tip strategy: %v.", failed, err)
		}
		t.Logf("\t%s\tShould retrieve the advanced tip strategy.", success)

		// Taking aimee's pair earns 201 in tips, better than any other two
		// transactions, but only if her nonce 1 comes along.
		m := group(
			chain.Tx{Nonce: 1, FromID: "aimee", Tip: 1},
			chain.Tx{Nonce: 2, FromID: "aimee", Tip: 200},
			chain.Tx{Nonce: 1, FromID: "bill", Tip: 100},
			chain.Tx{Nonce: 1, FromID: "cindy", Tip: 50},
		)

		picked := fn(m, 2)
		if len(picked) != 2 {
			t.Fatalf("\t%s\tShould pick 2 transactions, got %d.", failed, len(picked))
		}

		var total uint64
		for _, tx := range picked {
			if tx.FromID != "aimee" {
				t.Fatalf("\t%s\tShould take both of aimee's transactions, got one from %s.", failed, tx.FromID)
			}
			total += tx.Tip
		}
		if total != 201 {
			t.Fatalf("\t%s\tShould collect 201 in tips, got %d.", failed, total)
		}
		t.Logf("\t%s\tShould pull the stuck pair for the best total tip.", success)

		if picked[0].Nonce != 1 || picked[1].Nonce != 2 {
			t.Fatalf("\t%s\tShould keep aimee's nonce order: %d then %d.", failed, picked[0].Nonce, picked[1].Nonce)
		}
		t.Logf("\t%s\tShould keep aimee's nonce order.", success)
	}
}

func TestNonceSelect(t *testing.T) {
	t.Log("Given the need to pick transactions in plain nonce order.")
	{
		fn, err := selector.Retrieve(selector.StrategyNonce)
		if err != nil {
			t.Fatalf("\t%s\tShould retrieve the nonce strategy: %v.", failed, err)
		}
		t.Logf("\t%s\tShould retrieve the nonce strategy.", success)

		m := group(
			chain.Tx{Nonce: 5, FromID: "aimee", Tip: 10},
			chain.Tx{Nonce: 3, FromID: "aimee", Tip: 200},
		)

		picked := fn(m, -1)
		if len(picked) != 2 {
			t.Fatalf("\t%s\tShould pick every transaction with -1, got %d.", failed, len(picked))
		}
		t.Logf("\t%s\tShould pick every transaction with -1.", success)

		if picked[0].Nonce != 3 || picked[1].Nonce != 5 {
			t.Fatalf("\t%s\tShould order by nonce: got %d then %d.", failed, picked[0].Nonce, picked[1].Nonce)
		}
		t.Logf("\t%s\tShould order by nonce.", success)
	}
}
