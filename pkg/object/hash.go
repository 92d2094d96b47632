package object

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

// HashSize is the length in bytes of a Hash.
const HashSize = 32

// Hash is a BLAKE3-256 digest identifying a byte sequence. It is
// comparable and can be used directly as a map key.
type Hash [HashSize]byte

// ZeroHash is the Hash with every byte unset. No stored object has it.
var ZeroHash Hash

// HashBytes computes the BLAKE3-256 digest of data.
func HashBytes(data []byte) Hash {
	return Hash(blake3.Sum256(data))
}

// ParseHash parses a 64-character lowercase or uppercase hex string.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != HashSize*2 {
		return h, fmt.Errorf("parse hash %q: want %d hex characters, got %d", s, HashSize*2, len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("parse hash %q: %w", s, err)
	}
	return h, nil
}

// String returns the lowercase hex encoding of h.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 8 hex characters of h, for display.
func (h Hash) Short() string {
	return h.String()[:8]
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// Compare orders hashes lexicographically by their raw bytes. It returns
// -1, 0 or +1.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// MarshalBinary returns the raw digest bytes.
func (h Hash) MarshalBinary() ([]byte, error) {
	out := make([]byte, HashSize)
	copy(out, h[:])
	return out, nil
}

// UnmarshalBinary sets h from exactly HashSize raw bytes.
func (h *Hash) UnmarshalBinary(data []byte) error {
	if len(data) != HashSize {
		return fmt.Errorf("hash: want %d bytes, got %d", HashSize, len(data))
	}
	copy(h[:], data)
	return nil
}
