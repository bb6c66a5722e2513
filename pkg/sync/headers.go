package sync

import (
	"github.com/nspcc-dev/glasschain/pkg/chain"
	"github.com/nspcc-dev/glasschain/pkg/primitives"
	"github.com/nspcc-dev/glasschain/pkg/sync/locator"
	"github.com/nspcc-dev/glasschain/pkg/sync/misbehavior"
	"github.com/nspcc-dev/glasschain/pkg/sync/peerstate"
	"github.com/nspcc-dev/glasschain/pkg/sync/wire"
)

// handleHeaderList implements the Header Pipeline contract, spec §4.1.
func (p *Peer) handleHeaderList(headers []*chain.Header) error {
	// Rule 1: empty list is a valid "you are already at my tip" response.
	if len(headers) == 0 {
		p.state.Phase = peerstate.Steady
		return nil
	}

	// Rule 2: size bound.
	if len(headers) > p.manager.limits.MsgHeaderCountLimit {
		return misbehavior.New(misbehavior.MessageTooLarge,
			"header list has %d entries, limit is %d", len(headers), p.manager.limits.MsgHeaderCountLimit)
	}

	// Rule 3: internal connectivity.
	for i := 1; i < len(headers); i++ {
		if !headers[i].PrevID.Equals(headers[i-1].ID()) {
			return misbehavior.New(misbehavior.DisconnectedHeaders,
				"header %d does not connect to header %d", i, i-1)
		}
	}

	// Rule 4: per-header preliminary validity. ChainstateError ban-scores
	// are forwarded verbatim (spec §4.1(4), §7) rather than remapped to
	// a fixed misbehavior.Kind score.
	for _, h := range headers {
		if err := p.manager.chain.PreliminaryHeaderCheck(h); err != nil {
			return err
		}
	}

	// Rule 5/6: connection to local state.
	connected := p.headerConnects(headers[0])
	if !connected {
		if len(headers) == 1 {
			return p.handleSingularUnconnected(headers[0])
		}
		return misbehavior.New(misbehavior.DisconnectedHeaders, "multi-header announcement does not connect to known state")
	}

	// Any connected list resets the singular-unconnected counter.
	p.state.SingularUnconnectedHeaders = 0

	// Rule 7: accept, update best-known, extend pending, try to schedule
	// downloads.
	last := headers[len(headers)-1]
	if height, ok := p.manager.chain.GetBlockHeight(last.ID()); ok {
		p.state.AdvanceBestKnown(last.ID(), height)
	} else if parentHeight, ok := p.manager.chain.GetBlockHeight(headers[0].PrevID); ok {
		p.state.AdvanceBestKnown(last.ID(), parentHeight+primitives.Height(len(headers)))
	}
	p.state.AppendPendingHeaders(headers)
	p.state.Phase = peerstate.Steady
	if p.manager.metrics != nil {
		p.manager.metrics.HeadersProcessed.Add(float64(len(headers)))
	}

	p.scheduleBlockDownloads()
	return nil
}

// headerConnects reports whether h's parent is known as one of (a) local
// chainstate, (b) globally in flight, or (c) already tracked in this
// peer's pending headers (spec §4.1(5)).
func (p *Peer) headerConnects(h *chain.Header) bool {
	if _, ok := p.manager.chain.GetBlockHeight(h.PrevID); ok {
		return true
	}
	if p.manager.inflight.Has(h.PrevID) {
		return true
	}
	for _, ph := range p.state.PendingHeaders {
		if ph.ID().Equals(h.PrevID) {
			return true
		}
	}
	return false
}

// handleSingularUnconnected implements spec §4.1(6)'s asymmetric V1/V2
// policy for a lone unconnected header.
func (p *Peer) handleSingularUnconnected(h *chain.Header) error {
	p.state.SingularUnconnectedHeaders++

	// V2 has no tolerance: a single unconnected header is misbehavior on
	// its own, and we don't bother asking for more headers since the
	// peer is about to be scored for this.
	if p.state.ProtocolVersion == peerstate.V2 {
		return misbehavior.New(misbehavior.DisconnectedHeaders, "singular unconnected header under V2")
	}

	loc := p.manager.buildLocator()
	p.enqueueOutbound(wire.HeaderListRequest{Locator: loc})

	if p.state.SingularUnconnectedHeaders > p.manager.limits.MaxSingularUnconnectedHeaders {
		return misbehavior.New(misbehavior.DisconnectedHeaders,
			"singular unconnected header count %d exceeds tolerance", p.state.SingularUnconnectedHeaders)
	}
	return nil
}

// enqueueOutbound sends msg without blocking the handler on a full
// channel; a stuck transport is the transport's problem, not grounds to
// stall message processing for this peer.
func (p *Peer) enqueueOutbound(msg wire.Message) {
	select {
	case p.outbound <- msg:
	default:
	}
}

// handleHeaderListRequest implements the Locator & Header Response
// component (E, spec §4.4).
func (p *Peer) handleHeaderListRequest(loc []primitives.Hash) error {
	if len(loc) > p.manager.limits.MsgMaxLocatorCount {
		return misbehavior.New(misbehavior.MessageTooLarge,
			"locator has %d entries, limit is %d", len(loc), p.manager.limits.MsgMaxLocatorCount)
	}

	forkHeight := locator.FindForkPoint(p.manager.chain, loc)
	forkID, _ := p.manager.chain.IDAtHeight(forkHeight)

	headers := p.manager.chain.GetHeaders(forkID, p.manager.limits.MsgHeaderCountLimit)
	p.enqueueOutbound(wire.HeaderList{Headers: headers})
	return nil
}
