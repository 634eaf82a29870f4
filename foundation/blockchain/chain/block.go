// Package chain implements the block and chain data structures for the
// simulation engine. Blocks are linked by hash pointers, any out-of-band
// mutation of a sealed block is detectable by Validate, and the only
// sanctioned way to mutate a sealed block is the labeled Tamper bypass.
package chain

import (
	"fmt"
	"time"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/digest"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/merkle"
)

// BlockHeader represents common information required for each block. The
// JSON field order below is the documented serialization order the block
// digest is computed over.
type BlockHeader struct {
	Number        uint64        `json:"number"`          // Block number in the chain, genesis is 0.
	PrevBlockHash digest.Digest `json:"prev_block_hash"` // Digest of the previous block header, zero sentinel for genesis.
	TransRoot     digest.Digest `json:"trans_root"`      // Merkle tree root hash for the transactions in this block.
	TimeStamp     uint64        `json:"timestamp"`       // Time the block was mined, seconds since the epoch.
	Nonce         uint64        `json:"nonce"`           // Value identified to solve the hash solution.
	Difficulty    uint          `json:"difficulty"`      // Number of leading zero bits needed to solve the hash solution.
}

// Block represents a group of transactions batched together under a header.
type Block struct {
	Header BlockHeader
	Trans  *merkle.Tree[Tx]
}

// New constructs a sealed block from a header and its transactions. The
// header's TransRoot must already match the merkle root of the specified
// transactions or construction fails with ErrMerkleMismatch.
func New(header BlockHeader, trans []Tx) (Block, error) {
	tree, err := merkle.NewTree(trans)
	if err != nil {
		return Block{}, err
	}

	if !header.TransRoot.Equal(tree.MerkleRoot) {
		return Block{}, fmt.Errorf("trans root %s does not match transactions root %s: %w",
			header.TransRoot, tree.MerkleRoot, ErrMerkleMismatch)
	}

	return Block{Header: header, Trans: tree}, nil
}

// Hash returns the unique digest for the block, recomputed on demand from
// the header so tampered fields always surface.
//
// CORE NOTE: Hashing the block header and not the whole block so the chain
// can be cryptographically checked by only needing block headers. The
// transaction data is pinned by the TransRoot field inside the header.
func (b Block) Hash() digest.Digest {
	return digest.Hash(b.Header)
}

// Time returns the block timestamp as a time value.
func (b Block) Time() time.Time {
	return time.Unix(int64(b.Header.TimeStamp), 0).UTC()
}

// Solved reports whether the block's digest satisfies its own difficulty.
func (b Block) Solved() bool {
	return IsHashSolved(b.Header.Difficulty, b.Hash())
}

// ValidateAgainst checks the block follows the specified previous block:
// the number must be the next number and the previous hash pointer must
// match the previous block's recomputed digest.
func (b Block) ValidateAgainst(prevBlock Block) error {
	if b.Header.Number != prevBlock.Header.Number+1 {
		return fmt.Errorf("block number %d is not the next number after %d: %w",
			b.Header.Number, prevBlock.Header.Number, ErrLinkage)
	}

	if prevHash := prevBlock.Hash(); !b.Header.PrevBlockHash.Equal(prevHash) {
		return fmt.Errorf("prev hash %s does not match parent %s: %w",
			b.Header.PrevBlockHash, prevHash, ErrLinkage)
	}

	return nil
}

// IsHashSolved checks the digest complies with the POW rules: at least
// difficulty leading zero bits. Each extra bit doubles the expected number
// of attempts, roughly 2^difficulty for a fresh search.
func IsHashSolved(difficulty uint, hash digest.Digest) bool {
	return uint(hash.LeadingZeroBits()) >= difficulty
}
