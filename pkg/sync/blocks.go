package sync

import (
	"time"

	"go.uber.org/zap"

	"github.com/nspcc-dev/glasschain/pkg/chain"
	"github.com/nspcc-dev/glasschain/pkg/primitives"
	"github.com/nspcc-dev/glasschain/pkg/sync/misbehavior"
	"github.com/nspcc-dev/glasschain/pkg/sync/wire"
)

// scheduleBlockDownloads implements the Block Download Scheduler's request
// side, spec §4.2(1-3). It is called whenever new pending headers arrive,
// a block response is processed, or the stall timer fires.
func (p *Peer) scheduleBlockDownloads() {
	slots := p.manager.limits.MaxRequestBlocksCount - p.state.InFlightCount()
	if slots <= 0 {
		return
	}

	var requestIDs []primitives.Hash
	collected := make(map[primitives.Hash]struct{})

	for _, h := range p.state.PendingHeaders {
		if len(requestIDs) >= slots {
			break
		}
		id := h.ID()

		if _, known := p.manager.chain.GetBlockHeight(id); known {
			continue
		}
		if p.manager.inflight.Has(id) {
			continue
		}

		_, parentKnown := p.manager.chain.GetBlockHeight(h.PrevID)
		_, parentCollected := collected[h.PrevID]
		if !parentKnown && !parentCollected {
			// Parent isn't settled yet by chainstate or by this
			// same batch: stop, the chain of requests would have
			// a gap.
			break
		}

		requestIDs = append(requestIDs, id)
		collected[id] = struct{}{}
	}

	if len(requestIDs) == 0 {
		return
	}

	now := time.Now()
	for _, id := range requestIDs {
		if p.manager.inflight.TryAdd(id, p.state.ID) {
			p.state.AddInFlight(id, now)
		}
	}
	p.state.DropPendingThrough(requestIDs)
	p.enqueueOutbound(wire.BlockListRequest{IDs: requestIDs})
}

// handleBlockListRequest serves a peer's request for full blocks we have
// stored. Blocks we don't have are silently skipped; requesting an id we
// never announced is the requester's own bookkeeping error, not ours to
// penalize (we only score messages received, not shaped). Serving a block
// is also how we learn the peer will have it: BestKnown advances so later
// announcements don't resend what was just requested.
func (p *Peer) handleBlockListRequest(ids []primitives.Hash) error {
	if len(ids) > p.manager.limits.MaxRequestBlocksCount {
		return misbehavior.New(misbehavior.MessageTooLarge,
			"block list request has %d entries, limit is %d", len(ids), p.manager.limits.MaxRequestBlocksCount)
	}
	for _, id := range ids {
		if b, ok := p.manager.chain.GetBlock(id); ok {
			p.enqueueOutbound(wire.BlockResponse{Block: b})
			if height, ok := p.manager.chain.GetBlockHeight(id); ok {
				p.state.AdvanceBestKnown(id, height)
			}
		}
	}
	return nil
}

// handleBlockResponse implements spec §4.2's block-response handling.
func (p *Peer) handleBlockResponse(b *chain.Block) error {
	id := b.ID()
	if !p.state.HasInFlight(id) {
		return misbehavior.New(misbehavior.UnsolicitedBlock, "block %s was not requested from this peer", id)
	}

	p.state.RemoveInFlight(id)
	p.manager.inflight.Remove(id)

	result, err := p.manager.chain.ProcessBlock(b)
	if err != nil {
		return err
	}

	switch result {
	case chain.ResultNewTip, chain.ResultAlreadyExist:
		if height, ok := p.manager.chain.GetBlockHeight(id); ok {
			p.state.AdvanceBestKnown(id, height)
		}
	case chain.ResultOrphan:
		p.log.Debug("received orphan block", zap.Stringer("id", idStringer{id}))
	}
	if p.manager.metrics != nil {
		p.manager.metrics.BlocksProcessed.WithLabelValues(result.String()).Inc()
	}

	p.scheduleBlockDownloads()
	p.retryAnnounceIfUnblocked()
	return nil
}

// retryAnnounceIfUnblocked re-runs the Announcement Planner once a
// suppression condition (outstanding blocks in flight) clears, per
// spec §4.3's suppression rule.
func (p *Peer) retryAnnounceIfUnblocked() {
	if p.announcePending && p.state.InFlightCount() == 0 {
		p.announcePending = false
		p.planAndSendAnnouncement()
	}
}

// checkStalls implements spec §4.2's stall detection: any in-flight
// request older than SyncStallingTimeout is reported and released so it
// can be rescheduled (to this or another peer).
func (p *Peer) checkStalls() {
	cutoff := time.Now().Add(-p.manager.limits.SyncStallingTimeout)
	stalled := p.state.StalledSince(cutoff)
	for _, id := range stalled {
		p.state.RemoveInFlight(id)
		p.manager.inflight.Remove(id)
		p.manager.peerMgr.AdjustScore(p.state.ID, misbehavior.Stalling.Score())
		p.log.Info("block request stalled", zap.Stringer("id", idStringer{id}))
		if p.manager.metrics != nil {
			p.manager.metrics.MisbehaviorEvents.WithLabelValues(misbehavior.Stalling.String()).Inc()
			p.manager.metrics.StallsDetected.Inc()
		}
	}
	if len(stalled) > 0 {
		p.scheduleBlockDownloads()
	}
}

type idStringer struct{ id primitives.Hash }

func (s idStringer) String() string { return s.id.String() }
