package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nspcc-dev/glasschain/pkg/chain"
	"github.com/nspcc-dev/glasschain/pkg/primitives"
	"github.com/nspcc-dev/glasschain/pkg/sync/peerstate"
	"github.com/nspcc-dev/glasschain/pkg/sync/wire"
)

// Invariant 1 & 2: blocks in flight never exceed the configured cap, and
// every id requested was not already present in local chainstate at
// request time.
func TestInvariantBlocksInFlightBoundedAndNotInChainstate(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxRequestBlocksCount = 3
	h := newHarness(t, limits)
	p := h.addPeer(1, peerstate.V2)

	headers := chainOf(h.genesis, 10)
	require.NoError(t, p.handleHeaderList(headers))

	assert.LessOrEqual(t, p.state.InFlightCount(), limits.MaxRequestBlocksCount)
	for _, b := range p.state.BlocksInFlight {
		_, known := h.store.GetBlockHeight(b.ID)
		assert.False(t, known, "requested id %s must not already be in chainstate", b.ID)
	}
}

// Invariant 3: BestKnown.Height never regresses, even when a peer resends
// a shorter, already-superseded prefix.
func TestInvariantBestKnownHeightNonDecreasing(t *testing.T) {
	h := newHarness(t, DefaultLimits())
	p := h.addPeer(1, peerstate.V2)

	three := chainOf(h.genesis, 3)
	require.NoError(t, p.handleHeaderList(three))
	require.True(t, p.state.BestKnown.Set)
	peak := p.state.BestKnown.Height

	require.NoError(t, p.handleHeaderList(three[:1]))
	assert.GreaterOrEqual(t, p.state.BestKnown.Height, peak)
}

// Invariant 4: two peers never simultaneously hold the same block id in
// flight; the global in-flight set arbitrates.
func TestInvariantNoSharedInFlightAcrossPeers(t *testing.T) {
	h := newHarness(t, DefaultLimits())

	p1 := h.addPeer(1, peerstate.V2)
	out1 := h.outbound
	p2 := h.addPeer(2, peerstate.V2)
	out2 := h.outbound

	h1 := childHeader(h.genesis, 1)

	require.NoError(t, p1.handleHeaderList([]*chain.Header{h1}))
	msgs1 := drainOutbound(out1)
	require.Len(t, msgs1, 1)
	req1, ok := msgs1[0].(wire.BlockListRequest)
	require.True(t, ok)
	assert.Equal(t, []primitives.Hash{h1.ID()}, req1.IDs)

	require.NoError(t, p2.handleHeaderList([]*chain.Header{h1}))
	assert.Empty(t, drainOutbound(out2), "a block already in flight from another peer must not be requested twice")
	assert.Equal(t, 0, p2.state.InFlightCount())
	assert.Equal(t, 1, p1.state.InFlightCount())

	owner, ok := h.manager.inflight.Owner(h1.ID())
	require.True(t, ok)
	assert.Equal(t, p1.state.ID, owner)
}

// Invariant 5: every outgoing HeaderList's first header connects to a
// block the peer is known to already have.
func TestInvariantAnnouncementParentKnownToPeer(t *testing.T) {
	h := newHarness(t, DefaultLimits())
	p := h.addPeer(1, peerstate.V2)

	b1 := &chain.Block{Header: *childHeader(h.genesis, 1)}
	_, err := h.store.ProcessBlock(b1)
	require.NoError(t, err)
	b2 := &chain.Block{Header: *childHeader(&b1.Header, 1)}
	_, err = h.store.ProcessBlock(b2)
	require.NoError(t, err)

	p.planAndSendAnnouncement()
	msgs := drainOutbound(h.outbound)
	require.Len(t, msgs, 1)
	hl := msgs[0].(wire.HeaderList)
	require.NotEmpty(t, hl.Headers)
	assert.Equal(t, h.genesis.ID(), hl.Headers[0].PrevID, "with no prior ack, genesis is the only block assumed known to the peer")

	// Once the peer is known to have b1, a later announcement's first
	// header must connect to b1, not restart from genesis.
	p.state.AdvanceBestKnown(b1.ID(), 1)
	p.state.KnownHeadersSent = peerstate.BestKnownBlock{}
	b3 := &chain.Block{Header: *childHeader(&b2.Header, 1)}
	_, err = h.store.ProcessBlock(b3)
	require.NoError(t, err)

	p.planAndSendAnnouncement()
	msgs = drainOutbound(h.outbound)
	require.Len(t, msgs, 1)
	hl = msgs[0].(wire.HeaderList)
	require.NotEmpty(t, hl.Headers)
	assert.Equal(t, b1.ID(), hl.Headers[0].PrevID)
}
