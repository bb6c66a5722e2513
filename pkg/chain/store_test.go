package chain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nspcc-dev/glasschain/pkg/chain"
	"github.com/nspcc-dev/glasschain/pkg/database"
	"github.com/nspcc-dev/glasschain/pkg/primitives"
)

func genesisHeader() *chain.Header {
	return &chain.Header{Version: 1, Timestamp: 1}
}

func childOf(parent *chain.Header) *chain.Header {
	return &chain.Header{Version: 1, PrevID: parent.ID(), Timestamp: parent.Timestamp + 1}
}

func TestProcessBlockExtendsTip(t *testing.T) {
	genesis := genesisHeader()
	store := chain.New(database.NewMemory(), genesis)

	h1 := childOf(genesis)
	res, err := store.ProcessBlock(&chain.Block{Header: *h1})
	require.NoError(t, err)
	assert.Equal(t, chain.ResultNewTip, res)
	assert.True(t, store.GetBestBlockID().Equals(h1.ID()))

	height, ok := store.GetBlockHeight(h1.ID())
	require.True(t, ok)
	assert.Equal(t, primitives.Height(1), height)
	assert.True(t, store.IsBlockInMainChain(h1.ID()))
}

func TestProcessBlockDuplicate(t *testing.T) {
	genesis := genesisHeader()
	store := chain.New(database.NewMemory(), genesis)
	h1 := childOf(genesis)

	res, err := store.ProcessBlock(&chain.Block{Header: *h1})
	require.NoError(t, err)
	assert.Equal(t, chain.ResultNewTip, res)

	res, err = store.ProcessBlock(&chain.Block{Header: *h1})
	require.NoError(t, err)
	assert.Equal(t, chain.ResultAlreadyExist, res)
}

func TestProcessBlockOrphan(t *testing.T) {
	genesis := genesisHeader()
	store := chain.New(database.NewMemory(), genesis)

	dangling := &chain.Header{Version: 1, PrevID: primitives.Hash{0xff}, Timestamp: 2}
	res, err := store.ProcessBlock(&chain.Block{Header: *dangling})
	require.NoError(t, err)
	assert.Equal(t, chain.ResultOrphan, res)
	assert.True(t, store.GetBestBlockID().Equals(genesis.ID()))
}

func TestGetHeadersWalksBestChain(t *testing.T) {
	genesis := genesisHeader()
	store := chain.New(database.NewMemory(), genesis)

	h1 := childOf(genesis)
	h2 := childOf(h1)
	_, err := store.ProcessBlock(&chain.Block{Header: *h1})
	require.NoError(t, err)
	_, err = store.ProcessBlock(&chain.Block{Header: *h2})
	require.NoError(t, err)

	headers := store.GetHeaders(genesis.ID(), 10)
	require.Len(t, headers, 2)
	assert.True(t, headers[0].ID().Equals(h1.ID()))
	assert.True(t, headers[1].ID().Equals(h2.ID()))

	// Asking again from h1 only returns what follows it.
	headers = store.GetHeaders(h1.ID(), 10)
	require.Len(t, headers, 1)
	assert.True(t, headers[0].ID().Equals(h2.ID()))
}

func TestNewTipBroadcast(t *testing.T) {
	genesis := genesisHeader()
	store := chain.New(database.NewMemory(), genesis)

	events, cancel := store.Subscribe()
	defer cancel()

	h1 := childOf(genesis)
	_, err := store.ProcessBlock(&chain.Block{Header: *h1})
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.True(t, ev.ID.Equals(h1.ID()))
		assert.Equal(t, primitives.Height(1), ev.Height)
	default:
		t.Fatal("expected a NewTip event")
	}
}

func TestHeaderCodecRoundTrip(t *testing.T) {
	genesis := genesisHeader()
	store := chain.New(database.NewMemory(), genesis)
	h1 := childOf(genesis)
	_, err := store.ProcessBlock(&chain.Block{Header: *h1})
	require.NoError(t, err)

	blk, ok := store.GetBlock(h1.ID())
	require.True(t, ok)
	assert.True(t, blk.ID().Equals(h1.ID()))
}
