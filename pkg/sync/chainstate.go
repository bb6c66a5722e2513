package sync

import (
	"github.com/nspcc-dev/glasschain/pkg/chain"
	"github.com/nspcc-dev/glasschain/pkg/mempool"
	"github.com/nspcc-dev/glasschain/pkg/primitives"
	"github.com/nspcc-dev/glasschain/pkg/sync/inflight"
)

// ChainState is the subset of the chainstate collaborator (spec §6.2) the
// sync core depends on. *chain.Store satisfies it; tests may supply a
// fake.
type ChainState interface {
	PreliminaryHeaderCheck(h *chain.Header) error
	ProcessBlock(b *chain.Block) (chain.Result, error)
	GetBestBlockID() primitives.Hash
	GetBestBlockHeight() primitives.Height
	GetBlockHeight(id primitives.Hash) (primitives.Height, bool)
	IsBlockInMainChain(id primitives.Hash) bool
	GetBlock(id primitives.Hash) (*chain.Block, bool)
	GetHeaders(startAfter primitives.Hash, max int) []*chain.Header
	IDAtHeight(height primitives.Height) (primitives.Hash, bool)
	HeightOf(id primitives.Hash) (primitives.Height, bool)
	Subscribe() (<-chan chain.NewTipEvent, func())
}

// MempoolState is the subset of the mempool collaborator (spec §6.3) the
// Transaction Relay depends on. *mempool.Pool satisfies it.
type MempoolState interface {
	GetTransaction(id primitives.Hash) (*mempool.Tx, bool)
	AddTransaction(tx *mempool.Tx, hasKnownInputs bool) (mempool.Result, error)
	Subscribe() (<-chan primitives.Hash, func())
}

// PeerManager is the subset of the peer manager collaborator (spec §6.4)
// the dispatcher depends on. *peermgr.Manager satisfies it.
type PeerManager interface {
	AdjustScore(peer inflight.PeerID, delta int)
	GetPeerCount() int
	Connected(peer inflight.PeerID)
	Disconnected(peer inflight.PeerID)
}
