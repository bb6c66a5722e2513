// Package peermgr is the peer manager collaborator the sync core reports
// misbehavior to (spec §6.4). Discovery, address books, and transport-level
// ban enforcement are out of scope; this package only tracks accumulated
// ban-score per peer and decides when a peer has crossed the ban threshold.
package peermgr

import (
	"sync"
	"time"

	"github.com/nspcc-dev/glasschain/pkg/sync/inflight"
)

// Config bounds when a peer gets banned and for how long.
type Config struct {
	BanThreshold int
	BanDuration  time.Duration
}

type peerRecord struct {
	score   int
	bannedT time.Time
}

// Manager accumulates ban-scores per peer and answers connection-count
// queries. It is intentionally ignorant of transport: banning here just
// means "the sync core and dispatcher should refuse this peer," actual
// socket teardown belongs to the transport collaborator.
type Manager struct {
	cfg Config

	mu      sync.Mutex
	records map[inflight.PeerID]*peerRecord
	count   int
}

// New builds a Manager with cfg.
func New(cfg Config) *Manager {
	return &Manager{
		cfg:     cfg,
		records: make(map[inflight.PeerID]*peerRecord),
	}
}

// AdjustScore applies a fire-and-forget ban-score delta to peer, per
// spec §6.4. A non-positive delta is ignored; scores only accumulate.
func (m *Manager) AdjustScore(peer inflight.PeerID, delta int) {
	if delta <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[peer]
	if !ok {
		rec = &peerRecord{}
		m.records[peer] = rec
	}
	rec.score += delta
	if rec.score >= m.cfg.BanThreshold && rec.bannedT.IsZero() {
		rec.bannedT = bannedAt()
	}
}

// IsBanned reports whether peer is currently serving a ban.
func (m *Manager) IsBanned(peer inflight.PeerID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[peer]
	if !ok || rec.bannedT.IsZero() {
		return false
	}
	if bannedAt().Sub(rec.bannedT) >= m.cfg.BanDuration {
		rec.bannedT = time.Time{}
		rec.score = 0
		return false
	}
	return true
}

// Score reports a peer's currently accumulated ban-score (0 if unknown).
func (m *Manager) Score(peer inflight.PeerID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[peer]; ok {
		return rec.score
	}
	return 0
}

// Connected registers peer as connected, for GetPeerCount.
func (m *Manager) Connected(peer inflight.PeerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[peer]; !ok {
		m.records[peer] = &peerRecord{}
	}
	m.count++
}

// Disconnected unregisters peer from the connection count. Its
// accumulated score is kept, so a reconnecting banned peer stays banned.
func (m *Manager) Disconnected(peer inflight.PeerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.count > 0 {
		m.count--
	}
}

// GetPeerCount returns the number of currently connected peers, per
// spec §6.4's request/response used during shutdown probing.
func (m *Manager) GetPeerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// bannedAt is split out so tests can't accidentally depend on wall-clock
// skew across assertions; it is still real time, just one call site.
func bannedAt() time.Time {
	return time.Now()
}
