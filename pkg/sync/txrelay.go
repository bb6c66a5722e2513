package sync

import (
	"container/heap"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/nspcc-dev/glasschain/pkg/mempool"
	"github.com/nspcc-dev/glasschain/pkg/primitives"
	"github.com/nspcc-dev/glasschain/pkg/sync/wire"
)

// txQueue is a min-heap keyed by (due_time, tx_id), the per-peer relay
// schedule from spec §4.5. Capacity is bounded by MaxPeerTxAnnouncements;
// overflow entries are dropped.
type txQueue struct {
	items txHeap
	cap   int
}

type txItem struct {
	dueTime time.Time
	txID    primitives.Hash
}

type txHeap []txItem

func (h txHeap) Len() int { return len(h) }
func (h txHeap) Less(i, j int) bool {
	if h[i].dueTime.Equal(h[j].dueTime) {
		return h[i].txID.Less(h[j].txID)
	}
	return h[i].dueTime.Before(h[j].dueTime)
}
func (h txHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *txHeap) Push(x any)   { *h = append(*h, x.(txItem)) }
func (h *txHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func newTxQueue(capacity int) *txQueue {
	return &txQueue{cap: capacity}
}

// push schedules txID for announcement at dueTime; if the queue is at
// capacity the entry is dropped (spec §4.5's hard cap).
func (q *txQueue) push(txID primitives.Hash, dueTime time.Time) {
	if q.items.Len() >= q.cap {
		return
	}
	heap.Push(&q.items, txItem{dueTime: dueTime, txID: txID})
}

// nextDue reports the earliest pending due time, if any.
func (q *txQueue) nextDue() (time.Time, bool) {
	if q.items.Len() == 0 {
		return time.Time{}, false
	}
	return q.items[0].dueTime, true
}

// pop removes and returns the earliest-due entry.
func (q *txQueue) pop() (primitives.Hash, bool) {
	if q.items.Len() == 0 {
		return primitives.Hash{}, false
	}
	item := heap.Pop(&q.items).(txItem)
	return item.txID, true
}

// flushDueTx emits NewTransaction announcements for every entry whose due
// time has passed.
func (p *Peer) flushDueTx() {
	now := time.Now()
	for {
		due, ok := p.txQueue.nextDue()
		if !ok || due.After(now) {
			return
		}
		txID, _ := p.txQueue.pop()
		p.enqueueOutbound(wire.NewTransaction{TxID: txID})
		if p.manager.metrics != nil {
			p.manager.metrics.TxAnnouncementsSent.Inc()
		}
	}
}

// handleNewTransaction implements the receiving side of relay: the peer
// announced a transaction id. We decide whether to fetch it by checking
// the local mempool, then this peer's own recently-requested cache so a
// peer re-announcing the same id doesn't cause a second round trip.
func (p *Peer) handleNewTransaction(txID primitives.Hash) error {
	if _, ok := p.manager.mempool.GetTransaction(txID); ok {
		return nil
	}
	if p.requested.Contains(txID) {
		return nil
	}
	p.requested.Add(txID, struct{}{})
	p.enqueueOutbound(wire.TransactionRequest{TxID: txID})
	return nil
}

// handleTransactionRequest serves a peer's request for a transaction we
// have in our mempool.
func (p *Peer) handleTransactionRequest(txID primitives.Hash) error {
	tx, ok := p.manager.mempool.GetTransaction(txID)
	if !ok {
		return nil
	}
	p.enqueueOutbound(wire.TransactionResponse{Tx: tx})
	return nil
}

// handleTransactionResponse admits a fetched transaction's body. Admission
// itself is the mempool's job (out of scope here beyond the call); any
// rejection the mempool surfaces is not wire misbehavior on its own, since
// a transaction can legitimately become invalid between announcement and
// fetch (e.g. its inputs were spent by a block that arrived meanwhile).
func (p *Peer) handleTransactionResponse(tx *mempool.Tx) error {
	if tx == nil {
		return nil
	}
	_, err := p.manager.mempool.AddTransaction(tx, true)
	switch err {
	case nil, mempool.ErrDuplicate:
		return nil
	default:
		p.log.Debug("transaction rejected by mempool", zap.Error(err))
		return nil
	}
}
