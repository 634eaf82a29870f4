package chain

import (
	"fmt"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/digest"
)

// Kinds of invariant violations Validate can report.
const (
	ViolationNone        = ""
	ViolationMerkle      = "merkle mismatch"
	ViolationLinkage     = "digest/linkage mismatch"
	ViolationProofOfWork = "insufficient work"
)

// Report is the result of walking the full chain from genesis. When the
// chain is invalid, FirstInvalid names the first block that breaks an
// invariant and Violation names which invariant it breaks.
type Report struct {
	Valid        bool   `json:"valid"`
	Checked      int    `json:"checked_blocks"`
	FirstInvalid int    `json:"first_invalid_index"`
	Violation    string `json:"violation,omitempty"`
}

// Chain is an append-only ordered sequence of blocks linked by hash
// pointers. The digest of every block is recorded at append time, which is
// what makes an out-of-band mutation of a sealed block detectable even on
// the last block of the chain.
//
// A chain is owned by a single simulation session. Callers must not share
// one chain across concurrent mutators; independent simulations construct
// independent chains.
type Chain struct {
	blocks []Block
	hashes []digest.Digest
}

// NewChain constructs an empty chain ready to accept a genesis block.
func NewChain() *Chain {
	return &Chain{}
}

// Append adds the block to the end of the chain. The block must link to
// the current tip, carry a solved hash, and carry a merkle root matching
// its transactions. On any failure the chain is left unchanged.
func (c *Chain) Append(block Block) error {
	if !block.Header.TransRoot.Equal(block.Trans.MerkleRoot) {
		return fmt.Errorf("block %d: %w", block.Header.Number, ErrMerkleMismatch)
	}

	if len(c.blocks) == 0 {
		if block.Header.Number != 0 {
			return fmt.Errorf("genesis block must be number 0, got %d: %w", block.Header.Number, ErrLinkage)
		}
		if !block.Header.PrevBlockHash.IsZero() {
			return fmt.Errorf("genesis block must carry the zero prev hash: %w", ErrLinkage)
		}
	} else {
		if err := block.ValidateAgainst(c.tipBlock()); err != nil {
			return err
		}
	}

	hash := block.Hash()
	if !IsHashSolved(block.Header.Difficulty, hash) {
		return fmt.Errorf("block %d hash %s needs %d leading zero bits: %w",
			block.Header.Number, hash, block.Header.Difficulty, ErrProofOfWork)
	}

	c.blocks = append(c.blocks, block)
	c.hashes = append(c.hashes, hash)

	return nil
}

// Validate walks the full chain from genesis, recomputing every block's
// digest and checking the merkle, linkage, and proof-of-work invariants.
// The checks run in that order per block so the report names the invariant
// closest to the tampered data.
func (c *Chain) Validate() Report {
	for i, block := range c.blocks {

		// The transactions must still produce the merkle root sealed in
		// the header. Verify recomputes the tree from the leaves without
		// disturbing the stored hashes.
		if err := block.Trans.Verify(); err != nil {
			return invalidAt(i, ViolationMerkle, len(c.blocks))
		}
		if !block.Header.TransRoot.Equal(block.Trans.MerkleRoot) {
			return invalidAt(i, ViolationMerkle, len(c.blocks))
		}

		// The header must still hash to the digest recorded when the block
		// was accepted. This self-check is what catches a tampered genesis
		// or tip block that no later block depends on yet.
		hash := block.Hash()
		if !hash.Equal(c.hashes[i]) {
			return invalidAt(i, ViolationLinkage, len(c.blocks))
		}

		// The hash pointer must match the recomputed digest of the parent.
		if i > 0 {
			if !block.Header.PrevBlockHash.Equal(c.blocks[i-1].Hash()) {
				return invalidAt(i, ViolationLinkage, len(c.blocks))
			}
		}

		if !IsHashSolved(block.Header.Difficulty, hash) {
			return invalidAt(i, ViolationProofOfWork, len(c.blocks))
		}
	}

	return Report{Valid: true, Checked: len(c.blocks), FirstInvalid: -1}
}

// Tamper mutates an already sealed block in place without updating any
// recorded digest. This bypasses the append-only contract on purpose: it
// exists so the tamper-detection demo has something for Validate to catch.
// It must never be used outside that demonstration path.
func (c *Chain) Tamper(index int, mutate func(b *Block)) error {
	if index < 0 || index >= len(c.blocks) {
		return fmt.Errorf("no block at index %d", index)
	}

	mutate(&c.blocks[index])

	return nil
}

// Length returns the number of blocks in the chain.
func (c *Chain) Length() int {
	return len(c.blocks)
}

// Tip returns the latest block in the chain. The bool is false when the
// chain is still empty.
func (c *Chain) Tip() (Block, bool) {
	if len(c.blocks) == 0 {
		return Block{}, false
	}

	return c.tipBlock(), true
}

// BlockAt returns the block at the specified index.
func (c *Chain) BlockAt(index int) (Block, error) {
	if index < 0 || index >= len(c.blocks) {
		return Block{}, fmt.Errorf("no block at index %d", index)
	}

	return c.blocks[index], nil
}

// HashAt returns the digest recorded when the block at the specified index
// was accepted into the chain.
func (c *Chain) HashAt(index int) (digest.Digest, error) {
	if index < 0 || index >= len(c.hashes) {
		return digest.Zero, fmt.Errorf("no block at index %d", index)
	}

	return c.hashes[index], nil
}

// Blocks returns a copy of the block sequence for inspection.
func (c *Chain) Blocks() []Block {
	blocks := make([]Block, len(c.blocks))
	copy(blocks, c.blocks)

	return blocks
}

// Timestamps returns the header timestamps in chain order, the input the
// difficulty predictor works from.
func (c *Chain) Timestamps() []uint64 {
	stamps := make([]uint64, len(c.blocks))
	for i, block := range c.blocks {
		stamps[i] = block.Header.TimeStamp
	}

	return stamps
}

// Clone returns an independent chain carrying the same accepted blocks.
// Competing tips are modeled by cloning at the divergence point and
// appending different blocks to each copy.
func (c *Chain) Clone() *Chain {
	clone := Chain{
		blocks: make([]Block, len(c.blocks)),
		hashes: make([]digest.Digest, len(c.hashes)),
	}
	copy(clone.blocks, c.blocks)
	copy(clone.hashes, c.hashes)

	return &clone
}

// Prefix returns an independent chain carrying only the first length
// accepted blocks. A fork candidate starts as the prefix of the active
// chain up to the divergence point.
func (c *Chain) Prefix(length int) (*Chain, error) {
	if length < 0 || length > len(c.blocks) {
		return nil, fmt.Errorf("chain has %d blocks, cannot take prefix of %d", len(c.blocks), length)
	}

	prefix := Chain{
		blocks: make([]Block, length),
		hashes: make([]digest.Digest, length),
	}
	copy(prefix.blocks, c.blocks[:length])
	copy(prefix.hashes, c.hashes[:length])

	return &prefix, nil
}

func (c *Chain) tipBlock() Block {
	return c.blocks[len(c.blocks)-1]
}

func invalidAt(index int, violation string, checked int) Report {
	return Report{Valid: false, Checked: checked, FirstInvalid: index, Violation: violation}
}
