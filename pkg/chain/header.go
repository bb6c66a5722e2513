package chain

import (
	"crypto/sha256"

	"github.com/nspcc-dev/glasschain/pkg/io"
	"github.com/nspcc-dev/glasschain/pkg/primitives"
)

// Header is a block header: a derivable id plus just enough fields for the
// sync core to validate ordering and connectivity. The consensus-data and
// merkle-root surface are placeholders for the crypto/consensus collaborator
// this spec treats as external; they still take part in the hash so a
// tampered field is detectable.
type Header struct {
	Version       uint32
	PrevID        primitives.Hash
	Timestamp     uint64
	ConsensusData uint64
	MerkleRoot    primitives.Hash

	// id caches the derived block id; zero means "not yet computed".
	id primitives.Hash
}

// ID returns the header's derived id, computed (and cached) on first call
// as a double SHA-256 of the hashable fields, mirroring how the teacher
// lineage hashes its block header.
func (h *Header) ID() primitives.Hash {
	if h.id.IsZero() {
		h.id = h.computeID()
	}
	return h.id
}

func (h *Header) computeID() primitives.Hash {
	bw := io.NewBufBinWriter()
	h.encodeHashableFields(bw)
	first := sha256.Sum256(bw.Bytes())
	second := sha256.Sum256(first[:])
	return primitives.Hash(second)
}

func (h *Header) encodeHashableFields(w *io.BinWriter) {
	w.WriteU32LE(h.Version)
	w.WriteBE(h.PrevID)
	w.WriteU64LE(h.Timestamp)
	w.WriteU64LE(h.ConsensusData)
	w.WriteBE(h.MerkleRoot)
}

// EncodeBinary implements io.Serializable.
func (h *Header) EncodeBinary(w *io.BinWriter) {
	h.encodeHashableFields(w)
}

// DecodeBinary implements io.Serializable.
func (h *Header) DecodeBinary(r *io.BinReader) {
	h.Version = r.ReadU32LE()
	r.ReadBE(&h.PrevID)
	h.Timestamp = r.ReadU64LE()
	h.ConsensusData = r.ReadU64LE()
	r.ReadBE(&h.MerkleRoot)
	h.id = primitives.Hash{}
}

// IsGenesisParent reports whether id is the sentinel "no parent" value used
// for the genesis header.
func IsGenesisParent(id primitives.Hash) bool {
	return id.IsZero()
}
