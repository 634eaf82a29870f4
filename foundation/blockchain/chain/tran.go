package chain

import (
	"fmt"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/digest"
)

// Tx is the transaction record carried inside a block. The engine treats
// it as an opaque payload; the fields exist so the demos have something
// recognizable to show.
type Tx struct {
	Nonce  uint64 `json:"nonce"`
	FromID string `json:"from"`
	ToID   string `json:"to"`
	Value  uint64 `json:"value"`
	Tip    uint64 `json:"tip"`
	Memo   string `json:"memo,omitempty"`
}

// Hash implements the merkle Hashable interface for providing a digest of
// the transaction.
func (tx Tx) Hash() (digest.Digest, error) {
	return digest.Hash(tx), nil
}

// Equals implements the merkle Hashable interface for providing equality
// support between two transactions.
func (tx Tx) Equals(otherTx Tx) bool {
	txSig := tx.UniqueKey()
	otherTxSig := otherTx.UniqueKey()

	return txSig == otherTxSig
}

// UniqueKey returns the from:nonce pairing that identifies a transaction
// inside the pending pool.
func (tx Tx) UniqueKey() string {
	return fmt.Sprintf("%s:%d", tx.FromID, tx.Nonce)
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%d sends %d to %s (tip %d)", tx.FromID, tx.Nonce, tx.Value, tx.ToID, tx.Tip)
}
