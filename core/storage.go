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
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/holiman/uint256"

	"github.com/randchain/randsync/common"
	"github.com/randchain/randsync/core/types"
)

// BestBlock identifies the current canonical tip.
type BestBlock struct {
	Number uint32
	Hash   common.Hash32
}

// Storage is an in-memory BlockProvider plus the mutators BlockIngestion
// needs to commit verified blocks and drive reorgs. It stands in for a
// persistent storage engine: the module needs *some* concrete BlockProvider
// to run and test against.
//
// Storage keeps every header/body it has ever seen (main chain and side
// branches alike, since ContainsBlock must answer true for any stored block, not
// only canonical ones) plus a canonical hash<->height mapping for the main
// chain. A block's parent is a valid attachment point iff it is the current
// best or a tracked member of sideTips. Every displaced best joins sideTips
// (so a competing child of an already-extended block is accepted), as does a
// reorg's whole dethroned range; extending a side branch moves the tracked
// tip from the parent to the new block.
type Storage struct {
	mu sync.RWMutex

	headers map[common.Hash32]types.IndexedBlockHeader
	bodies  map[common.Hash32]types.IndexedBlock
	work    map[common.Hash32]*uint256.Int

	canonical    map[common.Hash32]uint32
	heightToHash map[uint32]common.Hash32
	best         BestBlock
	bestWork     *uint256.Int

	// sideTips is the live set of known blocks eligible to be extended by a
	// new block other than the current best. Read by InsertBestBlock to
	// decide whether an off-best parent is acceptable at all.
	sideTips mapset.Set[common.Hash32]

	headerBytesCache *fastcache.Cache
}

// NewStorage returns a Storage seeded with genesis at height 0.
func NewStorage(genesis types.IndexedBlock) *Storage {
	s := &Storage{
		headers:          make(map[common.Hash32]types.IndexedBlockHeader),
		bodies:           make(map[common.Hash32]types.IndexedBlock),
		work:             make(map[common.Hash32]*uint256.Int),
		canonical:        make(map[common.Hash32]uint32),
		heightToHash:     make(map[uint32]common.Hash32),
		sideTips:         mapset.NewSet[common.Hash32](),
		headerBytesCache: fastcache.New(4 * 1024 * 1024),
	}
	s.headers[genesis.Hash] = genesis.Header
	s.bodies[genesis.Hash] = genesis
	s.canonical[genesis.Hash] = 0
	s.heightToHash[0] = genesis.Hash
	s.best = BestBlock{Number: 0, Hash: genesis.Hash}
	s.bestWork = genesis.Header.Raw.Work()
	s.work[genesis.Hash] = s.bestWork
	return s
}

// BestBlock returns the current canonical tip.
func (s *Storage) BestBlock() BestBlock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.best
}

// BlockNumber resolves the canonical height of hash.
func (s *Storage) BlockNumber(hash common.Hash32) (uint32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.canonical[hash]
	return n, ok
}

// BlockHash resolves the canonical hash at number.
func (s *Storage) BlockHash(number uint32) (common.Hash32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.heightToHash[number]
	return h, ok
}

func (s *Storage) resolveHash(ref BlockRef) (common.Hash32, bool) {
	if ref.IsHash() {
		return ref.Hash(), true
	}
	h, ok := s.heightToHash[ref.Number()]
	return h, ok
}

// BlockHeader resolves a header by ref.
func (s *Storage) BlockHeader(ref BlockRef) (types.IndexedBlockHeader, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hash, ok := s.resolveHash(ref)
	if !ok {
		return types.IndexedBlockHeader{}, false
	}
	h, ok := s.headers[hash]
	return h, ok
}

// BlockHeaderBytes resolves serialized header bytes by ref, through a
// bounded byte cache in front of the canonical header map.
func (s *Storage) BlockHeaderBytes(ref BlockRef) ([]byte, bool) {
	s.mu.RLock()
	hash, ok := s.resolveHash(ref)
	if !ok {
		s.mu.RUnlock()
		return nil, false
	}
	header, ok := s.headers[hash]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if cached, ok := s.headerBytesCache.HasGet(nil, hash[:]); ok {
		return cached, true
	}
	raw := header.Raw.Serialize()
	s.headerBytesCache.Set(hash[:], raw)
	return raw, true
}

// Block resolves a full deserialized block by ref.
func (s *Storage) Block(ref BlockRef) (types.IndexedBlock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hash, ok := s.resolveHash(ref)
	if !ok {
		return types.IndexedBlock{}, false
	}
	b, ok := s.bodies[hash]
	return b, ok
}

// ContainsBlock reports whether ref is known to storage at all (canonical
// or on a tracked side branch).
func (s *Storage) ContainsBlock(ref BlockRef) bool {
	return ContainsBlock(s, ref)
}

// InsertBestBlock commits block as the new best block (if it extends the
// current tip) or as a new/extended side branch, atomically re-canonizing
// the chain if the side branch now carries more cumulative work than the
// current main chain. It rejects a block whose parent is neither the
// current best nor a tracked side-tip.
func (s *Storage) InsertBestBlock(block types.IndexedBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent := block.Header.Raw.PreviousHash
	if parent != s.best.Hash && !s.sideTips.Contains(parent) {
		return ErrUnknownParent
	}
	parentWork := s.work[parent]

	s.headers[block.Hash] = block.Header
	s.bodies[block.Hash] = block
	newWork := new(uint256.Int).Add(parentWork, block.Header.Raw.Work())
	s.work[block.Hash] = newWork

	if parent == s.best.Hash {
		newHeight := s.best.Number + 1
		s.canonical[block.Hash] = newHeight
		s.heightToHash[newHeight] = block.Hash
		// The displaced best is still a known, valid attachment point for a
		// future competing child, so it joins the tracked side-tip set
		// rather than becoming unreachable.
		s.sideTips.Add(parent)
		s.best = BestBlock{Number: newHeight, Hash: block.Hash}
		s.bestWork = newWork
		return nil
	}

	s.sideTips.Remove(parent)
	if newWork.Cmp(s.bestWork) > 0 {
		return s.reorgTo(block, newWork)
	}
	s.sideTips.Add(block.Hash)
	return nil
}

// reorgTo rewinds the main chain to the fork point behind block and
// re-canonizes the branch ending at block, whose cumulative work is
// newWork. Caller holds s.mu.
func (s *Storage) reorgTo(block types.IndexedBlock, newWork *uint256.Int) error {
	// Walk back from block's parent, collecting the branch (tip-first),
	// until a hash already on the main chain (the fork point) is found.
	branch := []common.Hash32{block.Hash}
	cur := block.Header.Raw.PreviousHash
	for {
		if _, onMain := s.canonical[cur]; onMain {
			break
		}
		branch = append(branch, cur)
		header, ok := s.headers[cur]
		if !ok {
			return ErrNotCanonicalAncestor
		}
		cur = header.Raw.PreviousHash
	}
	forkHeight := s.canonical[cur]

	oldBest := s.best

	// Rewind: drop canonical entries above the fork point. Every dethroned
	// block, tip or interior, becomes a tracked side-tip: each was main
	// chain a moment ago and remains a valid attachment point for a future
	// block, exactly like any other side branch.
	for h := forkHeight + 1; h <= oldBest.Number; h++ {
		hash := s.heightToHash[h]
		delete(s.canonical, hash)
		delete(s.heightToHash, h)
		s.sideTips.Add(hash)
	}

	// Re-canonize the new branch, ancestor-first, removing each newly
	// canonized member from the side-tip set: it is main chain now, not a
	// fork-from point in its own right.
	for i := len(branch) - 1; i >= 0; i-- {
		height := forkHeight + 1 + uint32(len(branch)-1-i)
		hash := branch[i]
		s.canonical[hash] = height
		s.heightToHash[height] = hash
		s.sideTips.Remove(hash)
	}

	s.best = BestBlock{Number: forkHeight + uint32(len(branch)), Hash: block.Hash}
	s.bestWork = newWork
	return nil
}
