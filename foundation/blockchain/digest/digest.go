// Package digest provides the hashing support used across the blockchain
// simulation. Every block, transaction, and merkle node is identified by
// a Digest produced here.
package digest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/bits"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/minio/sha256-simd"
)

// Size is the width of a digest in bytes.
const Size = sha256.Size

// Digest represents a fixed-width sha256 hash value.
type Digest [Size]byte

// Zero is the sentinel previous-block digest carried by a genesis block.
var Zero Digest

// Sum returns the digest of the specified raw bytes.
func Sum(data []byte) Digest {
	return sha256.Sum256(data)
}

// Hash returns the digest for the specified value. The value is serialized
// with the standard JSON encoding so field order is fixed by the struct
// declaration and digests are reproducible across runs. A value that
// cannot be serialized panics rather than producing a bogus digest.
func Hash(value any) Digest {
	data, err := json.Marshal(value)
	if err != nil {

		// Returning any in-band value here would alias a real digest,
		// Zero in particular doubles as the genesis previous pointer.
		panic(fmt.Sprintf("digest: value cannot be serialized: %v", err))
	}

	return Sum(data)
}

// LeadingZeroBits reports the number of leading zero bits in the digest.
// This is the measure a proof-of-work target is expressed in.
func (d Digest) LeadingZeroBits() int {
	var zeros int
	for _, b := range d {
		if b == 0 {
			zeros += 8
			continue
		}
		zeros += bits.LeadingZeros8(b)
		break
	}

	return zeros
}

// Equal reports whether two digests carry the same bytes.
func (d Digest) Equal(other Digest) bool {
	return bytes.Equal(d[:], other[:])
}

// IsZero reports whether the digest is the zero sentinel.
func (d Digest) IsZero() bool {
	return d == Zero
}

// String returns a 0x prefixed hex encoding of the digest.
func (d Digest) String() string {
	return hexutil.Encode(d[:])
}

// Parse converts a 0x prefixed hex string back into a Digest.
func Parse(s string) (Digest, error) {
	data, err := hexutil.Decode(s)
	if err != nil {
		return Zero, fmt.Errorf("decoding digest: %w", err)
	}

	if len(data) != Size {
		return Zero, fmt.Errorf("digest must be %d bytes, got %d", Size, len(data))
	}

	var d Digest
	copy(d[:], data)

	return d, nil
}

// MarshalText implements the TextMarshaler interface so digests render as
// hex strings inside JSON payloads.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements the TextUnmarshaler interface.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}
