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

// BlockHeaderProvider resolves header data by BlockRef.
type BlockHeaderProvider interface {
	BlockHeaderBytes(ref BlockRef) ([]byte, bool)
	BlockHeader(ref BlockRef) (types.IndexedBlockHeader, bool)
}

// BlockProvider is the read-side view of the canonical chain that every
// other component in this module depends on. Lookups are consistent within
// a single call but callers must tolerate a block appearing between two
// separate calls (no cross-call snapshot guarantee).
type BlockProvider interface {
	BlockHeaderProvider

	// BlockNumber resolves the canonical height of hash, or false if hash
	// is not on the main chain.
	BlockNumber(hash common.Hash32) (uint32, bool)
	// BlockHash resolves the canonical hash at number, or false if none.
	BlockHash(number uint32) (common.Hash32, bool)
	// Block resolves the full deserialized block by ref.
	Block(ref BlockRef) (types.IndexedBlock, bool)
}

// ContainsBlock reports whether p has header bytes for ref. A free function
// rather than an interface method so every BlockProvider shares the one
// definition: known means "has header bytes".
func ContainsBlock(p BlockHeaderProvider, ref BlockRef) bool {
	_, ok := p.BlockHeaderBytes(ref)
	return ok
}
