package sync

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/nspcc-dev/glasschain/pkg/chain"
	"github.com/nspcc-dev/glasschain/pkg/database"
	"github.com/nspcc-dev/glasschain/pkg/mempool"
	"github.com/nspcc-dev/glasschain/pkg/peermgr"
	"github.com/nspcc-dev/glasschain/pkg/sync/inflight"
	"github.com/nspcc-dev/glasschain/pkg/sync/peerstate"
	"github.com/nspcc-dev/glasschain/pkg/sync/wire"
)

// testHarness wires a real Manager/Peer pair over the reference in-memory
// chainstate, mempool and peer manager, matching what cmd/glasschaind wires
// in production minus the transport. Handler methods are called directly
// (bypassing Run's select loop) so tests can drive them synchronously.
type testHarness struct {
	t *testing.T

	genesis *chain.Header
	store   *chain.Store
	pool    *mempool.Pool
	peers   *peermgr.Manager
	manager *Manager

	peer     *Peer
	outbound chan wire.Message
}

func newHarness(t *testing.T, limits Limits) *testHarness {
	t.Helper()

	genesis := &chain.Header{Timestamp: 1}
	store := chain.New(database.NewMemory(), genesis)
	pool := mempool.New(mempool.Config{MaxSize: 1000, MaxTxSize: 1 << 16, MaxOrphans: 100})
	peers := peermgr.New(peermgr.Config{BanThreshold: 1000, BanDuration: 0})

	log := zaptest.NewLogger(t)
	manager := NewManager(log, limits, store, pool, peers, nil)

	return &testHarness{
		t:       t,
		genesis: genesis,
		store:   store,
		pool:    pool,
		peers:   peers,
		manager: manager,
	}
}

// addPeer registers a fresh peer of the given protocol version with a
// generously buffered outbound channel so enqueueOutbound never drops a
// message the test wants to observe.
func (h *testHarness) addPeer(id uint64, version peerstate.ProtocolVersion) *Peer {
	h.t.Helper()
	inbound := make(chan wire.Message, 64)
	outbound := make(chan wire.Message, 64)
	p := newPeer(inflight.PeerID(id), version, h.manager, inbound, outbound, h.manager.log)
	h.manager.mu.Lock()
	h.manager.peers[p.state.ID] = p
	h.manager.mu.Unlock()
	h.peer = p
	h.outbound = outbound
	return p
}

// childHeader builds a header extending parent, distinguished by nonce so
// siblings hash to distinct ids.
func childHeader(parent *chain.Header, nonce uint64) *chain.Header {
	return &chain.Header{
		PrevID:        parent.ID(),
		Timestamp:     parent.Timestamp + 1,
		ConsensusData: nonce,
	}
}

// chainOf builds n headers extending from parent in sequence, returning
// them in order.
func chainOf(parent *chain.Header, n int) []*chain.Header {
	out := make([]*chain.Header, 0, n)
	cur := parent
	for i := 0; i < n; i++ {
		h := childHeader(cur, uint64(i)+1)
		out = append(out, h)
		cur = h
	}
	return out
}

// drainOutbound collects every message currently buffered on ch without
// blocking.
func drainOutbound(ch chan wire.Message) []wire.Message {
	var out []wire.Message
	for {
		select {
		case m := <-ch:
			out = append(out, m)
		default:
			return out
		}
	}
}
