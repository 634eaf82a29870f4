package chain

import "errors"

// Set of errors the chain operations can return. Every failure leaves the
// chain exactly as it was before the call.
var (
	// ErrMerkleMismatch is returned when a block's TransRoot does not match
	// the merkle root computed over its transactions.
	ErrMerkleMismatch = errors.New("merkle root does not match transactions")

	// ErrLinkage is returned when a block does not extend the current tip,
	// either by number or by previous hash pointer.
	ErrLinkage = errors.New("block does not link to the chain")

	// ErrProofOfWork is returned when a block's digest does not satisfy its
	// declared difficulty.
	ErrProofOfWork = errors.New("block hash does not satisfy the difficulty")
)
