package chain

import (
	"encoding/binary"

	"github.com/nspcc-dev/glasschain/pkg/io"
)

func encodeHeader(h *Header) []byte {
	bw := io.NewBufBinWriter()
	h.EncodeBinary(bw)
	return bw.Bytes()
}

func decodeHeader(b []byte) *Header {
	h := &Header{}
	br := io.NewBinReaderFromBuf(b)
	h.DecodeBinary(br)
	return h
}

func encodeBlock(b *Block) []byte {
	bw := io.NewBufBinWriter()
	b.EncodeBinary(bw)
	return bw.Bytes()
}

func decodeBlock(b []byte) *Block {
	blk := &Block{}
	br := io.NewBinReaderFromBuf(b)
	blk.DecodeBinary(br)
	return blk
}

func uint32ToBytes(x uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, x)
	return b
}

func bytesToUint32(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}
