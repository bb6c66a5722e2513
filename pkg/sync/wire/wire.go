// Package wire defines the design-level message payloads exchanged between
// peers to drive synchronization (spec §6.1). Encoding is left to the
// transport's serialization layer (out of scope, §1); these are the plain
// Go structs a transport would marshal, and what the sync core's dispatcher
// consumes and produces.
package wire

import (
	"github.com/nspcc-dev/glasschain/pkg/chain"
	"github.com/nspcc-dev/glasschain/pkg/mempool"
	"github.com/nspcc-dev/glasschain/pkg/primitives"
)

// Type tags a Message so a dispatcher that only has an any can switch on
// it without a type assertion chain; it is informational, the Go type
// itself is what callers actually switch on.
type Type int

const (
	TypeHeaderListRequest Type = iota
	TypeHeaderList
	TypeBlockListRequest
	TypeBlockResponse
	TypeNewTransaction
	TypeTransactionRequest
	TypeTransactionResponse
	TypeTestSentinel
)

// Message is implemented by every wire payload; it exists purely so a
// dispatcher can hold heterogeneous inbound messages in one channel.
type Message interface {
	Type() Type
}

// HeaderListRequest asks the peer for headers following the highest entry
// of Locator present on its chain.
type HeaderListRequest struct {
	Locator []primitives.Hash
}

func (HeaderListRequest) Type() Type { return TypeHeaderListRequest }

// HeaderList is both the response to a HeaderListRequest and an
// unsolicited tip announcement.
type HeaderList struct {
	Headers []*chain.Header
}

func (HeaderList) Type() Type { return TypeHeaderList }

// BlockListRequest asks the peer to send full blocks for Ids, in order.
type BlockListRequest struct {
	IDs []primitives.Hash
}

func (BlockListRequest) Type() Type { return TypeBlockListRequest }

// BlockResponse carries a single requested block.
type BlockResponse struct {
	Block *chain.Block
}

func (BlockResponse) Type() Type { return TypeBlockResponse }

// NewTransaction announces that the sender has admitted TxID to its
// mempool and is willing to relay it.
type NewTransaction struct {
	TxID primitives.Hash
}

func (NewTransaction) Type() Type { return TypeNewTransaction }

// TransactionRequest asks the peer for the full transaction behind a
// previously announced TxID.
type TransactionRequest struct {
	TxID primitives.Hash
}

func (TransactionRequest) Type() Type { return TypeTransactionRequest }

// TransactionResponse carries a requested transaction.
type TransactionResponse struct {
	Tx *mempool.Tx
}

func (TransactionResponse) Type() Type { return TypeTransactionResponse }

// TestSentinel carries no data; it exists only to exercise the dispatch
// path in tests and to wake an idling peer task during shutdown.
type TestSentinel struct{}

func (TestSentinel) Type() Type { return TypeTestSentinel }
