// Package mempool is the mempool collaborator consumed by the sync core's
// Transaction Relay (spec §6.3). Transaction validity rules, fee
// prioritization and orphan resolution are intentionally shallow here: the
// sync core only needs admission results and a NewTransaction broadcast to
// drive relay, the same boundary chainstate (pkg/chain) draws for blocks.
package mempool

import (
	"errors"
	"sync"

	"github.com/nspcc-dev/glasschain/pkg/primitives"
)

// Tx is the transaction body the sync core fetches in response to a
// TransactionRequest. Its payload is opaque to the sync core.
type Tx struct {
	ID      primitives.Hash
	Payload []byte
}

// Result is the outcome of admitting a transaction.
type Result int

const (
	// InMempool means the transaction is now admitted and relayable.
	InMempool Result = iota
	// InOrphanPool means the transaction's inputs are not yet known and
	// it is held pending them.
	InOrphanPool
)

func (r Result) String() string {
	if r == InOrphanPool {
		return "InOrphanPool"
	}
	return "InMempool"
}

var (
	// ErrFull is returned when the pool is at capacity and cannot accept
	// another unrelated transaction.
	ErrFull = errors.New("mempool: pool is full")
	// ErrDuplicate is returned when a transaction with the same id is
	// already known (admitted or orphaned).
	ErrDuplicate = errors.New("mempool: duplicate transaction")
	// ErrTooLarge is returned when a transaction's payload exceeds
	// MaxTxSize.
	ErrTooLarge = errors.New("mempool: transaction too large")
)

// Config bounds the pool's resource usage.
type Config struct {
	MaxSize    int
	MaxTxSize  int
	MaxOrphans int
}

// Pool is a minimal admission-and-lookup mempool. It is safe for
// concurrent use by multiple peer tasks.
type Pool struct {
	cfg Config

	mu      sync.RWMutex
	txs     map[primitives.Hash]*Tx
	orphans map[primitives.Hash]*Tx

	subMu   sync.Mutex
	nextSub int
	subs    map[int]chan primitives.Hash
}

// New builds an empty Pool.
func New(cfg Config) *Pool {
	return &Pool{
		cfg:     cfg,
		txs:     make(map[primitives.Hash]*Tx),
		orphans: make(map[primitives.Hash]*Tx),
		subs:    make(map[int]chan primitives.Hash),
	}
}

// Exists reports whether id is known, in either the admitted or orphan
// pool.
func (p *Pool) Exists(id primitives.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.txs[id]
	if ok {
		return true
	}
	_, ok = p.orphans[id]
	return ok
}

// AddTransaction attempts to admit tx, implementing add_transaction from
// spec §6.3. Orphan resolution (promoting an orphan once its inputs
// arrive) is out of scope; an orphan stays an orphan until evicted or
// independently re-announced.
func (p *Pool) AddTransaction(tx *Tx, hasKnownInputs bool) (Result, error) {
	if len(tx.Payload) > p.cfg.MaxTxSize {
		return 0, ErrTooLarge
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.txs[tx.ID]; ok {
		return 0, ErrDuplicate
	}
	if _, ok := p.orphans[tx.ID]; ok {
		return 0, ErrDuplicate
	}

	if !hasKnownInputs {
		if len(p.orphans) >= p.cfg.MaxOrphans {
			return 0, ErrFull
		}
		p.orphans[tx.ID] = tx
		return InOrphanPool, nil
	}

	if len(p.txs) >= p.cfg.MaxSize {
		return 0, ErrFull
	}
	p.txs[tx.ID] = tx
	p.broadcast(tx.ID)
	return InMempool, nil
}

// GetTransaction returns the admitted (not orphaned) transaction behind
// id, if any.
func (p *Pool) GetTransaction(id primitives.Hash) (*Tx, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tx, ok := p.txs[id]
	return tx, ok
}

// Subscribe registers for NewTransaction events; cancel unregisters and
// closes the channel.
func (p *Pool) Subscribe() (<-chan primitives.Hash, func()) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	id := p.nextSub
	p.nextSub++
	ch := make(chan primitives.Hash, 64)
	p.subs[id] = ch

	cancel := func() {
		p.subMu.Lock()
		defer p.subMu.Unlock()
		if c, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (p *Pool) broadcast(id primitives.Hash) {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- id:
		default:
		}
	}
}
