// Package chain is the chainstate collaborator: a block store offering the
// read/write surface the sync core needs (spec.md §6.2). Everything beyond
// format checks — signatures, proof-of-stake/work, transaction execution —
// is out of scope; this store only tracks a single best chain rooted at
// genesis and rejects anything that doesn't extend it, which is enough to
// drive the sync core end-to-end in tests.
package chain

import (
	"sync"

	"github.com/nspcc-dev/glasschain/pkg/database"
	"github.com/nspcc-dev/glasschain/pkg/primitives"
)

// Result is the outcome of processing a block.
type Result int

const (
	// ResultNewTip means the block extended the best chain.
	ResultNewTip Result = iota
	// ResultAlreadyExist means the block was already stored.
	ResultAlreadyExist
	// ResultOrphan means the block's parent is not in the store.
	ResultOrphan
)

func (r Result) String() string {
	switch r {
	case ResultNewTip:
		return "NewTip"
	case ResultAlreadyExist:
		return "AlreadyExist"
	case ResultOrphan:
		return "Orphan"
	default:
		return "Unknown"
	}
}

// NewTipEvent is broadcast whenever the best chain tip advances.
type NewTipEvent struct {
	ID     primitives.Hash
	Height primitives.Height
}

var (
	headerPrefix     = []byte("hd")
	blockPrefix      = []byte("bl")
	heightToIDPrefix = []byte("hi")
	idToHeightPrefix = []byte("ih")
)

// Store is an in-memory-indexed, optionally-persisted chainstate. Genesis
// is supplied at construction; everything else is learned via ProcessBlock.
type Store struct {
	mu sync.RWMutex

	db         database.Database
	headers    *database.Table
	blocks     *database.Table
	heightToID *database.Table
	idToHeight *database.Table

	byID       map[primitives.Hash]*Header
	bestID     primitives.Hash
	bestHeight primitives.Height

	subMu   sync.Mutex
	nextSub int
	subs    map[int]chan NewTipEvent
}

// New builds a Store rooted at genesis, persisting to db (use
// database.NewMemory() for an ephemeral, test-only store).
func New(db database.Database, genesis *Header) *Store {
	s := &Store{
		db:         db,
		headers:    database.NewTable(db, headerPrefix),
		blocks:     database.NewTable(db, blockPrefix),
		heightToID: database.NewTable(db, heightToIDPrefix),
		idToHeight: database.NewTable(db, idToHeightPrefix),
		byID:       make(map[primitives.Hash]*Header),
		subs:       make(map[int]chan NewTipEvent),
	}
	s.storeBlock(&Block{Header: *genesis}, primitives.GenesisHeight)
	s.bestID = genesis.ID()
	s.bestHeight = primitives.GenesisHeight
	return s
}

// PreliminaryHeaderCheck performs the cheap, format-level validation run
// before a header list is accepted. It rejects only a header with a zero
// timestamp; it does not compare timestamps with the local clock or with
// the parent header, and it does not inspect the consensus-data slot.
func (s *Store) PreliminaryHeaderCheck(h *Header) error {
	if h.Timestamp == 0 {
		return NewValidationError("header has zero timestamp", 10)
	}
	return nil
}

// GetBestBlockID returns the id of the current best chain tip.
func (s *Store) GetBestBlockID() primitives.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bestID
}

// GetBestBlockHeight returns the height of the current best chain tip.
func (s *Store) GetBestBlockHeight() primitives.Height {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bestHeight
}

// IDAtHeight returns the id of the best-chain block at height, implementing
// locator.ChainReader.
func (s *Store) IDAtHeight(height primitives.Height) (primitives.Hash, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, err := s.heightToID.Get(uint32ToBytes(height.Uint32()))
	if err != nil {
		return primitives.Hash{}, false
	}
	id, err := primitives.HashDecodeBytes(raw)
	if err != nil {
		return primitives.Hash{}, false
	}
	return id, true
}

// HeightOf returns the height of id if it lies on the best chain,
// implementing locator.ChainReader.
func (s *Store) HeightOf(id primitives.Hash) (primitives.Height, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	height, ok := s.heightOf(nil, id)
	if !ok || !s.onMainChainLocked(id, height) {
		return 0, false
	}
	return height, true
}

// GetBlockHeight returns the height of id, if known.
func (s *Store) GetBlockHeight(id primitives.Hash) (primitives.Height, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.byID[id]
	if !ok {
		return 0, false
	}
	return s.heightOf(h, id)
}

func (s *Store) heightOf(_ *Header, id primitives.Hash) (primitives.Height, bool) {
	raw, err := s.idToHeight.Get(id.Bytes())
	if err != nil {
		return 0, false
	}
	return primitives.Height(bytesToUint32(raw)), true
}

// IsBlockInMainChain reports whether id is on the best chain (as opposed to
// merely known, e.g. a still-orphaned side branch).
func (s *Store) IsBlockInMainChain(id primitives.Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	height, ok := s.heightOf(nil, id)
	if !ok {
		return false
	}
	raw, err := s.heightToID.Get(uint32ToBytes(height.Uint32()))
	if err != nil {
		return false
	}
	onChain, err := primitives.HashDecodeBytes(raw)
	return err == nil && onChain.Equals(id)
}

// GetBlock returns the full block for id, if stored.
func (s *Store) GetBlock(id primitives.Hash) (*Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadBlock(id)
}

// GetHeaders walks the best chain forward from the block right after
// startAfter (genesis if startAfter is the zero hash or unknown), returning
// up to max headers.
func (s *Store) GetHeaders(startAfter primitives.Hash, max int) []*Header {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := primitives.GenesisHeight
	if height, ok := s.heightOf(nil, startAfter); ok && s.onMainChainLocked(startAfter, height) {
		start = height.Next()
	}

	var out []*Header
	for height := start; height <= s.bestHeight && len(out) < max; height++ {
		raw, err := s.heightToID.Get(uint32ToBytes(height.Uint32()))
		if err != nil {
			break
		}
		id, err := primitives.HashDecodeBytes(raw)
		if err != nil {
			break
		}
		if h, ok := s.byID[id]; ok {
			out = append(out, h)
		}
	}
	return out
}

func (s *Store) onMainChainLocked(id primitives.Hash, height primitives.Height) bool {
	raw, err := s.heightToID.Get(uint32ToBytes(height.Uint32()))
	if err != nil {
		return false
	}
	onChain, err := primitives.HashDecodeBytes(raw)
	return err == nil && onChain.Equals(id)
}

// ProcessBlock validates and stores block, per spec.md §6.2.
func (s *Store) ProcessBlock(b *Block) (Result, error) {
	s.mu.Lock()

	id := b.ID()
	if _, ok := s.byID[id]; ok {
		s.mu.Unlock()
		return ResultAlreadyExist, nil
	}

	parentHeight, haveParent := s.heightOf(nil, b.PrevID)
	if !haveParent {
		s.mu.Unlock()
		return ResultOrphan, nil
	}

	if !b.PrevID.Equals(s.bestID) {
		s.mu.Unlock()
		return 0, NewValidationError("block does not extend the best chain", 0)
	}

	height := parentHeight.Next()
	s.storeBlock(b, height)
	s.bestID = id
	s.bestHeight = height
	s.mu.Unlock()

	s.broadcast(NewTipEvent{ID: id, Height: height})
	return ResultNewTip, nil
}

func (s *Store) storeBlock(b *Block, height primitives.Height) {
	id := b.ID()
	s.byID[id] = &b.Header

	hb := encodeHeader(&b.Header)
	_ = s.headers.Put(id.Bytes(), hb)
	_ = s.blocks.Put(id.Bytes(), encodeBlock(b))
	_ = s.idToHeight.Put(id.Bytes(), uint32ToBytes(height.Uint32()))
	_ = s.heightToID.Put(uint32ToBytes(height.Uint32()), id.Bytes())
}

func (s *Store) loadBlock(id primitives.Hash) (*Block, bool) {
	raw, err := s.blocks.Get(id.Bytes())
	if err != nil {
		return nil, false
	}
	return decodeBlock(raw), true
}

// Subscribe registers for NewTip events; the returned cancel func
// unregisters and closes the channel. The channel is buffered so a slow
// reader lags instead of blocking the store.
func (s *Store) Subscribe() (<-chan NewTipEvent, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan NewTipEvent, 16)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (s *Store) broadcast(ev NewTipEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop rather than block the store, matching
			// the broadcast's per-receiver lag tolerance.
		}
	}
}
