package sync

import (
	"github.com/nspcc-dev/glasschain/pkg/chain"
	"github.com/nspcc-dev/glasschain/pkg/primitives"
	"github.com/nspcc-dev/glasschain/pkg/sync/locator"
	"github.com/nspcc-dev/glasschain/pkg/sync/peerstate"
	"github.com/nspcc-dev/glasschain/pkg/sync/wire"
)

// planAndSendAnnouncement implements the Announcement Planner, spec §4.3.
// It runs once per debounced NewTip batch, per peer.
func (p *Peer) planAndSendAnnouncement() {
	if p.state.InFlightCount() > 0 {
		// Suppression: defer until outstanding blocks are delivered;
		// re-arm so the next debounce tick (or a later NewTip) tries
		// again.
		p.announcePending = true
		return
	}

	anchorID, anchorKnown := p.announceAnchor()

	var headers []*chain.Header
	if anchorKnown {
		headers = p.manager.chain.GetHeaders(anchorID, p.manager.limits.MsgHeaderCountLimit)
	} else {
		forkHeight := locator.FindForkPoint(p.manager.chain, p.manager.buildLocator())
		forkID, _ := p.manager.chain.IDAtHeight(forkHeight)
		headers = p.manager.chain.GetHeaders(forkID, p.manager.limits.MsgHeaderCountLimit)
	}

	if len(headers) == 0 {
		return
	}

	last := headers[len(headers)-1]
	height, ok := p.manager.chain.GetBlockHeight(last.ID())
	if !ok {
		return
	}
	if p.state.KnownHeadersSent.Set && height <= p.state.KnownHeadersSent.Height {
		// Everything in this batch was already announced.
		return
	}

	p.state.KnownHeadersSent = peerstate.BestKnownBlock{ID: last.ID(), Height: height, Set: true}
	p.enqueueOutbound(wire.HeaderList{Headers: headers})
}

// announceAnchor resolves spec §4.3(1): the peer's best known block if set
// and known locally, else genesis.
func (p *Peer) announceAnchor() (primitives.Hash, bool) {
	if p.state.BestKnown.Set {
		if _, ok := p.manager.chain.HeightOf(p.state.BestKnown.ID); ok {
			return p.state.BestKnown.ID, true
		}
		return primitives.Hash{}, false
	}
	genesisID, _ := p.manager.chain.IDAtHeight(primitives.GenesisHeight)
	return genesisID, true
}
