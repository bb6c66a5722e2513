package sync

import (
	"context"
	stdsync "sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nspcc-dev/glasschain/pkg/metrics"
	"github.com/nspcc-dev/glasschain/pkg/primitives"
	"github.com/nspcc-dev/glasschain/pkg/sync/inflight"
	"github.com/nspcc-dev/glasschain/pkg/sync/locator"
	"github.com/nspcc-dev/glasschain/pkg/sync/peerstate"
	"github.com/nspcc-dev/glasschain/pkg/sync/wire"
)

// Manager owns the collaborators every Peer task shares: chainstate,
// mempool, the peer manager handle, the global in-flight set, and the
// registry of currently connected peers (used only to count them, never
// for touching another peer's state directly).
type Manager struct {
	log     *zap.Logger
	limits  Limits
	chain   ChainState
	mempool MempoolState
	peerMgr PeerManager

	inflight *inflight.Set
	metrics  *metrics.Sync

	mu    stdsync.Mutex
	peers map[inflight.PeerID]*Peer
}

// NewManager builds a Manager. Callers add peers with AddPeer as
// connections are accepted by the transport (out of scope here). m may be
// nil, in which case metrics recording is skipped.
func NewManager(log *zap.Logger, limits Limits, chain ChainState, mp MempoolState, peerMgr PeerManager, m *metrics.Sync) *Manager {
	return &Manager{
		log:      log,
		limits:   limits,
		chain:    chain,
		mempool:  mp,
		peerMgr:  peerMgr,
		inflight: inflight.New(),
		metrics:  m,
		peers:    make(map[inflight.PeerID]*Peer),
	}
}

// AddPeer registers a new connection and starts its dispatcher task under
// group, so Wait joins it on shutdown (spec §5 cancellation). inbound is
// fed by the transport; outbound is drained by the transport.
func (m *Manager) AddPeer(ctx context.Context, group *errgroup.Group, id inflight.PeerID, version peerstate.ProtocolVersion, inbound <-chan wire.Message, outbound chan<- wire.Message) *Peer {
	p := newPeer(id, version, m, inbound, outbound, m.log)

	m.mu.Lock()
	m.peers[id] = p
	m.mu.Unlock()

	m.peerMgr.Connected(id)
	m.recordPeerCount()

	group.Go(func() error {
		p.Run(ctx)
		m.removePeer(id)
		return nil
	})
	return p
}

func (m *Manager) removePeer(id inflight.PeerID) {
	m.mu.Lock()
	delete(m.peers, id)
	m.mu.Unlock()

	m.inflight.RemoveAllFor(id)
	m.peerMgr.Disconnected(id)
	m.recordPeerCount()
	if m.metrics != nil {
		m.metrics.BlocksInFlight.Set(float64(m.inflight.Len()))
	}
}

func (m *Manager) recordPeerCount() {
	if m.metrics != nil {
		m.metrics.PeersConnected.Set(float64(m.PeerCount()))
	}
}

// buildLocator produces a locator from the current local tip (spec §4.4),
// shared by the Initial handshake and by unconnected-header recovery.
func (m *Manager) buildLocator() []primitives.Hash {
	return locator.Build(m.chain, m.limits.MsgMaxLocatorCount)
}

// PeerCount reports the number of currently connected peers, used for
// GetPeerCount probing during shutdown (spec §6.4).
func (m *Manager) PeerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.peers)
}
