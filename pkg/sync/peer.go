package sync

import (
	"context"
	stdsync "sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/nspcc-dev/glasschain/pkg/sync/inflight"
	"github.com/nspcc-dev/glasschain/pkg/sync/misbehavior"
	"github.com/nspcc-dev/glasschain/pkg/sync/peerstate"
	"github.com/nspcc-dev/glasschain/pkg/sync/wire"
)

// Peer is the dispatcher task for one connection (component G). Everything
// it touches beyond the shared collaborators below belongs to exactly this
// goroutine; peerstate.Context carries no locking because of that
// guarantee.
type Peer struct {
	state *peerstate.Context

	log *zap.Logger

	manager *Manager

	inbound  <-chan wire.Message
	outbound chan<- wire.Message

	txQueue   *txQueue
	requested *lru.Cache

	announcePending bool

	closed chan struct{}
	once   stdsync.Once
}

// newPeer wires a fresh Peer Context to its inbound/outbound channels. It
// is unexported: peers are always created through Manager.AddPeer so the
// manager can count them and clean up their in-flight blocks.
func newPeer(id inflight.PeerID, version peerstate.ProtocolVersion, m *Manager, inbound <-chan wire.Message, outbound chan<- wire.Message, log *zap.Logger) *Peer {
	cacheSize := m.limits.MaxPeerTxAnnouncements
	if cacheSize <= 0 {
		cacheSize = 1
	}
	requested, _ := lru.New(cacheSize)
	return &Peer{
		state:     peerstate.NewContext(id, version),
		log:       log.With(zap.Uint64("peer", uint64(id))),
		manager:   m,
		inbound:   inbound,
		outbound:  outbound,
		txQueue:   newTxQueue(m.limits.MaxPeerTxAnnouncements),
		requested: requested,
		closed:    make(chan struct{}),
	}
}

// Run is the peer's cooperative event loop (spec §4.6). It owns the peer's
// entire lifetime: it releases its own chainstate and mempool
// subscriptions on return, and the caller (Manager) is responsible for
// releasing the peer's in-flight blocks.
func (p *Peer) Run(ctx context.Context) {
	defer close(p.closed)

	if err := p.sendInitialRequest(); err != nil {
		p.log.Warn("failed to send initial header request", zap.Error(err))
		return
	}

	stallTicker := time.NewTicker(p.manager.limits.SyncStallingTimeout / 2)
	defer stallTicker.Stop()

	tipEvents, cancelTip := p.manager.chain.Subscribe()
	defer cancelTip()

	txEvents, cancelTx := p.manager.mempool.Subscribe()
	defer cancelTx()

	announceTimer := time.NewTimer(time.Hour)
	announceTimer.Stop()
	defer announceTimer.Stop()

	for {
		var dueTimer <-chan time.Time
		if d, ok := p.txQueue.nextDue(); ok {
			t := time.NewTimer(time.Until(d))
			defer t.Stop()
			dueTimer = t.C
		}

		select {
		case <-ctx.Done():
			return

		case msg, ok := <-p.inbound:
			if !ok {
				return
			}
			p.state.Touch()
			if err := p.handle(msg); err != nil {
				p.reportError(err)
			}

		case _, ok := <-tipEvents:
			if !ok {
				return
			}
			// Debounce: batch any NewTips arriving within the quiet
			// period and plan the announcement once, from whatever
			// the chain's tip is by the time the timer fires (spec
			// §4.3).
			if !p.announcePending {
				p.announcePending = true
				announceTimer.Reset(p.manager.limits.AnnounceDebounce)
			}

		case txID, ok := <-txEvents:
			if !ok {
				return
			}
			p.txQueue.push(txID, time.Now())

		case <-stallTicker.C:
			p.checkStalls()

		case <-dueTimer:
			p.flushDueTx()

		case <-announceTimer.C:
			p.announcePending = false
			p.planAndSendAnnouncement()
		}
	}
}

// Send enqueues msg for delivery to this peer, blocking if the outbound
// channel is full (spec §5 backpressure).
func (p *Peer) Send(ctx context.Context, msg wire.Message) {
	select {
	case p.outbound <- msg:
	case <-ctx.Done():
	}
}

func (p *Peer) sendInitialRequest() error {
	loc := p.manager.buildLocator()
	select {
	case p.outbound <- wire.HeaderListRequest{Locator: loc}:
	default:
		// Outbound is bounded; a full queue on a brand new connection
		// means the transport is backed up rather than this peer
		// being misbehaving, so drop without penalty and let the
		// next tick retry via announce/relay traffic.
	}
	p.state.Phase = peerstate.HeaderExchange
	return nil
}

func (p *Peer) handle(msg wire.Message) error {
	switch m := msg.(type) {
	case wire.HeaderList:
		return p.handleHeaderList(m.Headers)
	case wire.HeaderListRequest:
		return p.handleHeaderListRequest(m.Locator)
	case wire.BlockListRequest:
		return p.handleBlockListRequest(m.IDs)
	case wire.BlockResponse:
		return p.handleBlockResponse(m.Block)
	case wire.NewTransaction:
		return p.handleNewTransaction(m.TxID)
	case wire.TransactionRequest:
		return p.handleTransactionRequest(m.TxID)
	case wire.TransactionResponse:
		return p.handleTransactionResponse(m.Tx)
	case wire.TestSentinel:
		return nil
	default:
		return nil
	}
}

func (p *Peer) reportError(err error) {
	type scorer interface {
		Score() int
	}
	if se, ok := err.(scorer); ok {
		p.manager.peerMgr.AdjustScore(p.state.ID, se.Score())
		p.log.Info("peer misbehavior", zap.Error(err), zap.Int("score", se.Score()))
		if p.manager.metrics != nil {
			kind := "chainstate"
			if pe, ok := err.(*misbehavior.ProtocolError); ok {
				kind = pe.Kind.String()
			}
			p.manager.metrics.MisbehaviorEvents.WithLabelValues(kind).Inc()
		}
		return
	}
	p.log.Warn("peer handler error", zap.Error(err))
}
