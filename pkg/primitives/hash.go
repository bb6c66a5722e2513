// Package primitives holds the small fixed-size value types shared across
// the chainstate, mempool and sync packages: block/transaction ids and
// chain heights.
package primitives

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// HashSize is the length in bytes of a Hash.
const HashSize = 32

// ErrInvalidHashLength is returned when decoding a hash of the wrong size.
var ErrInvalidHashLength = errors.New("primitives: invalid hash length")

// Hash is a fixed-width identifier used for block ids, header ids and
// transaction ids. Equality and ordering are defined byte-wise.
type Hash [HashSize]byte

// HashDecodeBytes decodes a Hash from a big-endian byte slice.
func HashDecodeBytes(b []byte) (h Hash, err error) {
	if len(b) != HashSize {
		return h, ErrInvalidHashLength
	}
	copy(h[:], b)
	return h, nil
}

// HashDecodeString decodes a Hash from its hex representation, tolerating
// an optional "0x" prefix.
func HashDecodeString(s string) (Hash, error) {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, err
	}
	return HashDecodeBytes(b)
}

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// String returns the lower-case hex encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is the all-zero value, used to represent
// "no block"/genesis' non-existent parent.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Equals reports byte-wise equality.
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Less orders two hashes byte-wise; used only to give deterministic
// ordering in locators and sets, it carries no protocol meaning.
func (h Hash) Less(other Hash) bool {
	return bytes.Compare(h[:], other[:]) < 0
}

// MarshalJSON encodes the hash as a hex string.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes a hash from a hex string, tolerating "0x" prefix.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := HashDecodeString(s)
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}

// GoString supports "%#v" and debugger-friendly printing.
func (h Hash) GoString() string {
	return fmt.Sprintf("primitives.Hash(%s)", h.String())
}
