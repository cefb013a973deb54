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

package ingest

import (
	"sync"

	"github.com/randchain/randsync/common"
	"github.com/randchain/randsync/core"
	"github.com/randchain/randsync/core/types"
	randlog "github.com/randchain/randsync/log"
	"github.com/randchain/randsync/verify"
)

// Storage is the subset of core.Storage that BlockIngestion depends on:
// the read-side BlockProvider plus the single mutator used to commit a
// verified block (and run any resulting reorg).
type Storage interface {
	core.BlockProvider
	InsertBestBlock(block types.IndexedBlock) error
}

// resultSink is a single-slot mailbox: the verifier writes into it (at most
// one outcome per VerifyBlock call), and only BlockIngestion ever drains it.
// This avoids passing the ingestion driver's own data back into the verifier
// as a shared, mutably owned handle.
type resultSink struct {
	mu      sync.Mutex
	storage Storage
	err     error
}

func (s *resultSink) OnBlockVerificationSuccess(block types.IndexedBlock) {
	if err := s.storage.InsertBestBlock(block); err != nil {
		s.mu.Lock()
		s.err = &DatabaseError{Err: err}
		s.mu.Unlock()
	}
}

func (s *resultSink) OnBlockVerificationError(reason string, hash common.Hash32) {
	s.mu.Lock()
	s.err = &VerificationError{Reason: reason}
	s.mu.Unlock()
}

func (s *resultSink) takeError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.err
	s.err = nil
	return err
}

// BlockIngestion is the Block Ingestion Pipeline (BIP): it dedups incoming
// blocks against storage, buffers orphans, drives verification, and commits
// accepted blocks (with reorg) via Storage.InsertBestBlock.
type BlockIngestion struct {
	storage    Storage
	orphans    *core.OrphanPool
	maxOrphans int
	verifier   verify.Verifier
	sink       *resultSink
	log        randlog.Logger
}

// New returns a BlockIngestion backed by storage and verifying blocks with
// verifier, buffering at most core.MaxOrphanedBlocks orphans.
func New(storage Storage, verifier verify.Verifier) *BlockIngestion {
	return NewWithOrphanLimit(storage, verifier, core.MaxOrphanedBlocks)
}

// NewWithOrphanLimit is New with an explicit orphan pool bound, the knob
// config.Config.MaxOrphanedBlocks threads through for callers that want a
// tighter cap than the package default (e.g. exercising the orphan-flood
// path quickly in tests).
func NewWithOrphanLimit(storage Storage, verifier verify.Verifier, maxOrphans int) *BlockIngestion {
	return &BlockIngestion{
		storage:    storage,
		orphans:    core.NewOrphanPool(),
		maxOrphans: maxOrphans,
		verifier:   verifier,
		sink:       &resultSink{storage: storage},
		log:        randlog.New("component", "ingest"),
	}
}

// AppendBlock imports one candidate block: a duplicate is a no-op success,
// a parentless block is orphan-buffered (bounded), and otherwise block is
// verified and committed along with any of its orphaned descendants that
// are now unblocked, ancestor-before-descendant, all before AppendBlock
// returns.
func (b *BlockIngestion) AppendBlock(block types.IndexedBlock) error {
	if core.ContainsBlock(b.storage, core.ByHash(block.Hash)) {
		return nil
	}

	if !core.ContainsBlock(b.storage, core.ByHash(block.Header.Raw.PreviousHash)) {
		// A full pool refuses the block outright rather than buffering it
		// and reporting the overflow after the fact: the pool never exceeds
		// its bound and the rejected block is not retained.
		if !b.orphans.Contains(block.Hash) && b.orphans.Len() >= b.maxOrphans {
			b.log.Warn("too many orphan blocks", "hash", block.Hash, "pool_size", b.orphans.Len())
			return ErrTooManyOrphanBlocks
		}
		b.orphans.Insert(block)
		return nil
	}

	queue := append([]types.IndexedBlock{block}, b.orphans.RemoveBlocksForParent(block.Hash)...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		b.verifier.VerifyBlock(next, b.sink)
		if err := b.sink.takeError(); err != nil {
			b.log.Warn("block verification failed", "hash", next.Hash, "err", err)
			return err
		}
	}
	return nil
}
