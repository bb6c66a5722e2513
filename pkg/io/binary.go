// Package io provides small binary (de)serialization helpers used by the
// chain package's header and block encoding, modeled as a BinWriter/BinReader pair that
// accumulate the first error encountered instead of returning one from
// every call site.
package io

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

var (
	errDrained      = errors.New("io: buffer already drained by Bytes")
	errVarBytesSize = errors.New("io: variable-length byte slice exceeds max size")
)

// BinWriter accumulates writes to an underlying io.Writer, sticking to the
// first error seen so callers can chain writes and check it once at the end.
type BinWriter struct {
	W   io.Writer
	Err error
}

// NewBinWriterFromIO creates a BinWriter writing to w.
func NewBinWriterFromIO(w io.Writer) *BinWriter {
	return &BinWriter{W: w}
}

// NewBufBinWriter creates a BinWriter backed by an in-memory buffer.
func NewBufBinWriter() *BinWriter {
	return &BinWriter{W: new(bytes.Buffer)}
}

// Bytes returns the accumulated buffer and marks the writer as drained:
// Error reports a non-nil error and further writes are ignored until Reset.
// It returns nil if an error was already recorded or the writer was not
// constructed with NewBufBinWriter.
func (w *BinWriter) Bytes() []byte {
	if w.Err != nil {
		return nil
	}
	buf, ok := w.W.(*bytes.Buffer)
	if !ok {
		return nil
	}
	w.Err = errDrained
	return buf.Bytes()
}

// Len returns the number of bytes written so far.
func (w *BinWriter) Len() int {
	if buf, ok := w.W.(*bytes.Buffer); ok {
		return buf.Len()
	}
	return 0
}

// Reset clears an in-memory BinWriter's buffer and error.
func (w *BinWriter) Reset() {
	if buf, ok := w.W.(*bytes.Buffer); ok {
		buf.Reset()
	}
	w.Err = nil
}

// Error returns the first error encountered, if any.
func (w *BinWriter) Error() error {
	return w.Err
}

// SetError forces the writer into an error state; further writes no-op.
func (w *BinWriter) SetError(err error) {
	if w.Err == nil {
		w.Err = err
	}
}

func (w *BinWriter) write(p []byte) {
	if w.Err != nil {
		return
	}
	_, w.Err = w.W.Write(p)
}

// WriteU64LE writes val as 8 little-endian bytes.
func (w *BinWriter) WriteU64LE(val uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], val)
	w.write(b[:])
}

// WriteU32LE writes val as 4 little-endian bytes.
func (w *BinWriter) WriteU32LE(val uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], val)
	w.write(b[:])
}

// WriteU16LE writes val as 2 little-endian bytes.
func (w *BinWriter) WriteU16LE(val uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], val)
	w.write(b[:])
}

// WriteU16BE writes val as 2 big-endian bytes.
func (w *BinWriter) WriteU16BE(val uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], val)
	w.write(b[:])
}

// WriteB writes a single byte.
func (w *BinWriter) WriteB(val byte) {
	w.write([]byte{val})
}

// WriteBool writes a single boolean byte.
func (w *BinWriter) WriteBool(val bool) {
	if val {
		w.WriteB(1)
	} else {
		w.WriteB(0)
	}
}

// WriteBE writes val, a fixed-size array or struct of fixed-size fields, in
// big-endian byte order via encoding/binary.
func (w *BinWriter) WriteBE(val any) {
	if w.Err != nil {
		return
	}
	w.Err = binary.Write(w.W, binary.BigEndian, val)
}

// WriteBytes writes the raw bytes with no length prefix.
func (w *BinWriter) WriteBytes(b []byte) {
	w.write(b)
}

// WriteVarUint writes val using Bitcoin/NEO-style variable-length encoding.
func (w *BinWriter) WriteVarUint(val uint64) {
	switch {
	case val < 0xfd:
		w.WriteB(byte(val))
	case val <= 0xffff:
		w.WriteB(0xfd)
		w.WriteU16LE(uint16(val))
	case val <= 0xffffffff:
		w.WriteB(0xfe)
		w.WriteU32LE(uint32(val))
	default:
		w.WriteB(0xff)
		w.WriteU64LE(val)
	}
}

// WriteVarBytes writes b prefixed with its variable-length encoded size.
func (w *BinWriter) WriteVarBytes(b []byte) {
	w.WriteVarUint(uint64(len(b)))
	w.WriteBytes(b)
}

// WriteString writes s as length-prefixed bytes.
func (w *BinWriter) WriteString(s string) {
	w.WriteVarBytes([]byte(s))
}

// BinReader reads values written by BinWriter, sticking to the first error
// encountered.
type BinReader struct {
	R   io.Reader
	Err error
}

// NewBinReaderFromIO creates a BinReader reading from r.
func NewBinReaderFromIO(r io.Reader) *BinReader {
	return &BinReader{R: r}
}

// NewBinReaderFromBuf creates a BinReader over an in-memory byte slice.
func NewBinReaderFromBuf(b []byte) *BinReader {
	return &BinReader{R: bytes.NewReader(b)}
}

func (r *BinReader) read(p []byte) {
	if r.Err != nil {
		return
	}
	_, r.Err = io.ReadFull(r.R, p)
}

// ReadU64LE reads 8 little-endian bytes into a uint64.
func (r *BinReader) ReadU64LE() uint64 {
	var b [8]byte
	r.read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// ReadU32LE reads 4 little-endian bytes into a uint32.
func (r *BinReader) ReadU32LE() uint32 {
	var b [4]byte
	r.read(b[:])
	return binary.LittleEndian.Uint32(b[:])
}

// ReadU16LE reads 2 little-endian bytes into a uint16.
func (r *BinReader) ReadU16LE() uint16 {
	var b [2]byte
	r.read(b[:])
	return binary.LittleEndian.Uint16(b[:])
}

// ReadU16BE reads 2 big-endian bytes into a uint16.
func (r *BinReader) ReadU16BE() uint16 {
	var b [2]byte
	r.read(b[:])
	return binary.BigEndian.Uint16(b[:])
}

// ReadB reads a single byte.
func (r *BinReader) ReadB() byte {
	var b [1]byte
	r.read(b[:])
	return b[0]
}

// ReadBool reads a single boolean byte.
func (r *BinReader) ReadBool() bool {
	return r.ReadB() != 0
}

// ReadBE reads into val, a pointer to a fixed-size array or struct of
// fixed-size fields, in big-endian byte order.
func (r *BinReader) ReadBE(val any) {
	if r.Err != nil {
		return
	}
	r.Err = binary.Read(r.R, binary.BigEndian, val)
}

// ReadVarUint reads a variable-length encoded unsigned integer.
func (r *BinReader) ReadVarUint() uint64 {
	b := r.ReadB()
	switch b {
	case 0xfd:
		return uint64(r.ReadU16LE())
	case 0xfe:
		return uint64(r.ReadU32LE())
	case 0xff:
		return r.ReadU64LE()
	default:
		return uint64(b)
	}
}

// ReadVarBytes reads a variable-length-prefixed byte slice. If maxSize is
// given and the encoded length exceeds it, the reader enters an error
// state. On error or zero length it returns an empty, non-nil slice.
func (r *BinReader) ReadVarBytes(maxSize ...int) []byte {
	n := r.ReadVarUint()
	if r.Err != nil || n == 0 {
		return []byte{}
	}
	if len(maxSize) > 0 && n > uint64(maxSize[0]) {
		r.Err = errVarBytesSize
		return []byte{}
	}
	b := make([]byte, n)
	r.read(b)
	return b
}

// ReadString reads a length-prefixed string.
func (r *BinReader) ReadString() string {
	return string(r.ReadVarBytes())
}

// Serializable is implemented by types with a manual wire encoding.
type Serializable interface {
	EncodeBinary(w *BinWriter)
	DecodeBinary(r *BinReader)
}

// GetVarSize returns the number of bytes val would occupy when written with
// WriteVarUint, given val fits an int (used for length-prefixed counts).
func GetVarSize(val int) int {
	switch {
	case val < 0xfd:
		return 1
	case val <= 0xffff:
		return 3
	case val <= 0xffffffff:
		return 5
	default:
		return 9
	}
}
