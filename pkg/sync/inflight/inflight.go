// Package inflight implements the single piece of state shared across all
// peer tasks in the sync core: the set of block ids currently requested from
// any peer. It exists to prevent two peers from being asked for the same
// block concurrently. The mutex here is held only long enough to mutate a
// map entry — never across a channel send or a subsystem round trip.
package inflight

import (
	"sync"

	"github.com/nspcc-dev/glasschain/pkg/primitives"
)

// PeerID is an opaque identifier assigned by the peer manager; the sync
// core never interprets it beyond equality and use as a map key.
type PeerID uint64

// Set tracks, for every block id currently in flight anywhere, which peer
// it was requested from.
type Set struct {
	mu    sync.Mutex
	owner map[primitives.Hash]PeerID
}

// New returns an empty in-flight set.
func New() *Set {
	return &Set{owner: make(map[primitives.Hash]PeerID)}
}

// TryAdd registers id as in flight from peer, unless it is already in
// flight from some peer (including the same one), in which case it
// reports false and leaves the set untouched.
func (s *Set) TryAdd(id primitives.Hash, peer PeerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owner[id]; ok {
		return false
	}
	s.owner[id] = peer
	return true
}

// Remove drops id from the set, regardless of owner.
func (s *Set) Remove(id primitives.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.owner, id)
}

// Owner reports which peer currently has id in flight, if any.
func (s *Set) Owner(id primitives.Hash) (PeerID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.owner[id]
	return p, ok
}

// Has reports whether id is currently in flight from any peer.
func (s *Set) Has(id primitives.Hash) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.owner[id]
	return ok
}

// RemoveAllFor releases every id owned by peer, used when a peer
// disconnects so its in-flight requests don't permanently block those
// blocks from being (re)requested elsewhere.
func (s *Set) RemoveAllFor(peer PeerID) []primitives.Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	var released []primitives.Hash
	for id, owner := range s.owner {
		if owner == peer {
			delete(s.owner, id)
			released = append(released, id)
		}
	}
	return released
}

// Len reports the total number of ids currently in flight, across all
// peers.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.owner)
}
