// Package locator builds and resolves the sparse "block locator" used by
// §4.4 of the sync core to let a peer find a common ancestor without
// transmitting the whole chain.
package locator

import "github.com/nspcc-dev/glasschain/pkg/primitives"

// ChainReader is the narrow slice of the chainstate collaborator the
// locator needs: height/id lookups along the best chain.
type ChainReader interface {
	GetBestBlockHeight() primitives.Height
	// IDAtHeight returns the id of the best-chain block at height, if any
	// exists at or below the current tip.
	IDAtHeight(height primitives.Height) (primitives.Hash, bool)
	// HeightOf returns the height of id if it is present on the best
	// chain.
	HeightOf(id primitives.Hash) (primitives.Height, bool)
}

// Build produces a locator from the current tip: heights tip, tip-1, tip-3,
// tip-7, tip-15, … (the gap doubling each step), always terminating with
// genesis, and never exceeding maxEntries.
func Build(chain ChainReader, maxEntries int) []primitives.Hash {
	tip := chain.GetBestBlockHeight()
	var out []primitives.Hash

	step := primitives.Height(1)
	height := tip
	for {
		id, ok := chain.IDAtHeight(height)
		if ok {
			out = append(out, id)
		}
		if len(out) >= maxEntries || height == primitives.GenesisHeight {
			break
		}
		if height < step {
			height = primitives.GenesisHeight
		} else {
			height -= step
		}
		step *= 2
	}

	if len(out) == 0 || !out[len(out)-1].IsZero() {
		if genesis, ok := chain.IDAtHeight(primitives.GenesisHeight); ok {
			if len(out) == 0 || !genesis.Equals(out[len(out)-1]) {
				out = append(out, genesis)
			}
		}
	}
	if maxEntries > 0 && len(out) > maxEntries {
		// Keep genesis as the final entry without exceeding maxEntries.
		out = append(out[:maxEntries-1], out[len(out)-1])
	}
	return out
}

// FindForkPoint walks loc (as received from a peer) and returns the
// highest height among its entries that is present on the local best
// chain. If none are known, it reports genesis.
func FindForkPoint(chain ChainReader, loc []primitives.Hash) primitives.Height {
	best := primitives.GenesisHeight
	found := false
	for _, id := range loc {
		if height, ok := chain.HeightOf(id); ok {
			if !found || height > best {
				best = height
				found = true
			}
		}
	}
	return best
}
