package chain

import (
	"github.com/nspcc-dev/glasschain/pkg/io"
	"github.com/nspcc-dev/glasschain/pkg/primitives"
)

// Block is a header plus the ids of the transactions it carries. Full
// transaction bodies live in the mempool/chainstate boundary, which is out
// of scope for the sync core; the sync core only ever needs ids to decide
// what to request and headers to validate connectivity.
type Block struct {
	Header
	TxIDs []primitives.Hash
}

// EncodeBinary implements io.Serializable.
func (b *Block) EncodeBinary(w *io.BinWriter) {
	b.Header.EncodeBinary(w)
	w.WriteVarUint(uint64(len(b.TxIDs)))
	for _, id := range b.TxIDs {
		w.WriteBE(id)
	}
}

// DecodeBinary implements io.Serializable.
func (b *Block) DecodeBinary(r *io.BinReader) {
	b.Header.DecodeBinary(r)
	n := r.ReadVarUint()
	b.TxIDs = make([]primitives.Hash, 0, n)
	for i := uint64(0); i < n; i++ {
		var id primitives.Hash
		r.ReadBE(&id)
		b.TxIDs = append(b.TxIDs, id)
	}
}
