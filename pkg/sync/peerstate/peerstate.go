// Package peerstate holds the per-peer mutable state the sync core's
// dispatcher owns exclusively (spec §3, Peer Context / component A). Every
// field here is touched by exactly one goroutine — the peer's own task —
// so the type carries no internal locking.
package peerstate

import (
	"time"

	"github.com/nspcc-dev/glasschain/pkg/chain"
	"github.com/nspcc-dev/glasschain/pkg/primitives"
	"github.com/nspcc-dev/glasschain/pkg/sync/inflight"
)

// ProtocolVersion negotiates the singular-unconnected-header tolerance
// (spec §4.1(6)): V1 peers get a grace allowance, V2 does not.
type ProtocolVersion int

const (
	V1 ProtocolVersion = iota
	V2
)

// Phase is the per-peer state machine position (spec §4.7).
type Phase int

const (
	Initial Phase = iota
	HeaderExchange
	Steady
	Closed
)

func (p Phase) String() string {
	switch p {
	case Initial:
		return "Initial"
	case HeaderExchange:
		return "HeaderExchange"
	case Steady:
		return "Steady"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// BestKnownBlock is the tip a peer is known to possess, tracked
// monotonically (spec §3 invariant: never regresses).
type BestKnownBlock struct {
	ID     primitives.Hash
	Height primitives.Height
	Set    bool
}

// InFlightBlock is a requested-but-not-yet-answered block.
type InFlightBlock struct {
	ID          primitives.Hash
	RequestedAt time.Time
}

// Context is the mutable state tracked for one connected peer.
type Context struct {
	ID inflight.PeerID

	Phase           Phase
	ProtocolVersion ProtocolVersion

	BestKnown BestKnownBlock

	// BlocksInFlight is ordered: oldest request first, so stall
	// detection and re-requests can walk it front to back.
	BlocksInFlight []InFlightBlock

	// PendingHeaders is the contiguous chain of headers announced by
	// this peer whose blocks have not yet been requested.
	PendingHeaders []*chain.Header

	// KnownHeadersSent is the highest header already transmitted to
	// the peer as part of an announcement (spec §4.3(4)); it suppresses
	// redundant re-announcement before acknowledgement.
	KnownHeadersSent BestKnownBlock

	SingularUnconnectedHeaders int

	LastActivityAt time.Time
}

// NewContext creates a Peer Context fresh off a connection.
func NewContext(id inflight.PeerID, version ProtocolVersion) *Context {
	return &Context{
		ID:              id,
		Phase:           Initial,
		ProtocolVersion: version,
		LastActivityAt:  time.Now(),
	}
}

// Touch records activity for stall/liveness bookkeeping.
func (c *Context) Touch() {
	c.LastActivityAt = time.Now()
}

// AdvanceBestKnown updates BestKnown to (id, height) if it is further
// along than what is currently recorded, preserving the "never regresses"
// invariant.
func (c *Context) AdvanceBestKnown(id primitives.Hash, height primitives.Height) {
	if !c.BestKnown.Set || height > c.BestKnown.Height {
		c.BestKnown = BestKnownBlock{ID: id, Height: height, Set: true}
	}
}

// InFlightCount returns the number of blocks currently requested from
// this peer.
func (c *Context) InFlightCount() int {
	return len(c.BlocksInFlight)
}

// AddInFlight appends id as freshly requested.
func (c *Context) AddInFlight(id primitives.Hash, at time.Time) {
	c.BlocksInFlight = append(c.BlocksInFlight, InFlightBlock{ID: id, RequestedAt: at})
}

// RemoveInFlight drops id from BlocksInFlight, reporting whether it was
// present.
func (c *Context) RemoveInFlight(id primitives.Hash) bool {
	for i, b := range c.BlocksInFlight {
		if b.ID.Equals(id) {
			c.BlocksInFlight = append(c.BlocksInFlight[:i], c.BlocksInFlight[i+1:]...)
			return true
		}
	}
	return false
}

// HasInFlight reports whether id is in this peer's BlocksInFlight.
func (c *Context) HasInFlight(id primitives.Hash) bool {
	for _, b := range c.BlocksInFlight {
		if b.ID.Equals(id) {
			return true
		}
	}
	return false
}

// StalledSince returns the ids whose request timestamp is older than
// cutoff, i.e. candidates for Stalling misbehavior.
func (c *Context) StalledSince(cutoff time.Time) []primitives.Hash {
	var out []primitives.Hash
	for _, b := range c.BlocksInFlight {
		if b.RequestedAt.Before(cutoff) {
			out = append(out, b.ID)
		}
	}
	return out
}

// AppendPendingHeaders replaces or extends PendingHeaders with newly
// announced headers, matching spec §4.1(7)'s "replace / extend" wording:
// any prefix already tracked is kept, anything beyond it is appended.
func (c *Context) AppendPendingHeaders(headers []*chain.Header) {
	if len(c.PendingHeaders) == 0 {
		c.PendingHeaders = append([]*chain.Header(nil), headers...)
		return
	}
	last := c.PendingHeaders[len(c.PendingHeaders)-1]
	for _, h := range headers {
		if h.PrevID.Equals(last.ID()) {
			c.PendingHeaders = append(c.PendingHeaders, h)
			last = h
		}
	}
}

// DropPendingThrough removes every pending header up to and including the
// one with id, called once those headers have been turned into block
// requests.
func (c *Context) DropPendingThrough(ids []primitives.Hash) {
	if len(ids) == 0 {
		return
	}
	want := make(map[primitives.Hash]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	cut := 0
	for i, h := range c.PendingHeaders {
		if _, ok := want[h.ID()]; ok {
			cut = i + 1
		}
	}
	if cut > 0 {
		c.PendingHeaders = c.PendingHeaders[cut:]
	}
}
