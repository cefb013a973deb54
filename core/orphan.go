// Copyright 2024 The randsync Authors
// This file is part of randsync.
//
// randsync is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// randsync is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with randsync.  If not, see <http://www.gnu.org/licenses/>.

package core

import (
	"github.com/randchain/randsync/common"
	"github.com/randchain/randsync/core/types"
)

// MaxOrphanedBlocks is the default cap BlockIngestion enforces on the number
// of blocks its OrphanPool holds at once: we can't hold many orphaned blocks
// in memory during import.
const MaxOrphanedBlocks = 1024

// OrphanPool is an at-most-one-copy-per-hash store of blocks whose parent is
// not yet known. It is indexed both by its own hash (for deduplication) and
// by its parent hash (to drain children once a parent becomes known). The
// pool enforces no size bound itself; BlockIngestion checks Len against its
// limit before inserting.
type OrphanPool struct {
	byHash   map[common.Hash32]types.IndexedBlock
	children map[common.Hash32][]common.Hash32 // parent hash -> child hashes
}

// NewOrphanPool returns an empty pool.
func NewOrphanPool() *OrphanPool {
	return &OrphanPool{
		byHash:   make(map[common.Hash32]types.IndexedBlock),
		children: make(map[common.Hash32][]common.Hash32),
	}
}

// Insert adds block to the pool, keyed by its own hash. It is idempotent:
// inserting an already-present hash is a no-op and returns false.
func (p *OrphanPool) Insert(block types.IndexedBlock) bool {
	if _, exists := p.byHash[block.Hash]; exists {
		return false
	}
	p.byHash[block.Hash] = block
	parent := block.Header.Raw.PreviousHash
	p.children[parent] = append(p.children[parent], block.Hash)
	return true
}

// Contains reports whether a block with the given hash is buffered.
func (p *OrphanPool) Contains(hash common.Hash32) bool {
	_, ok := p.byHash[hash]
	return ok
}

// Len returns the number of blocks currently buffered.
func (p *OrphanPool) Len() int {
	return len(p.byHash)
}

// RemoveBlocksForParent removes and returns every block directly or
// transitively descending from parentHash that is currently in the pool, in
// an order consistent with ancestry: a block appears only after all of its
// ancestors present in the returned set. The order among sibling subtrees is
// unspecified.
func (p *OrphanPool) RemoveBlocksForParent(parentHash common.Hash32) []types.IndexedBlock {
	var out []types.IndexedBlock
	frontier := []common.Hash32{parentHash}
	for len(frontier) > 0 {
		next := frontier[0]
		frontier = frontier[1:]

		childHashes := p.children[next]
		delete(p.children, next)
		for _, childHash := range childHashes {
			block, ok := p.byHash[childHash]
			if !ok {
				continue
			}
			delete(p.byHash, childHash)
			out = append(out, block)
			frontier = append(frontier, childHash)
		}
	}
	return out
}
