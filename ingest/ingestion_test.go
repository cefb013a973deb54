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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randchain/randsync/chainutil"
	"github.com/randchain/randsync/core"
	"github.com/randchain/randsync/verify"
)

func fullVerification() verify.Parameters {
	return verify.Parameters{Level: verify.Full}
}

func noVerification() verify.Parameters {
	return verify.Parameters{Level: verify.NoVerification}
}

// A block extending the stored tip commits immediately.
func TestAppendBlockLinear(t *testing.T) {
	genesis := chainutil.Genesis()
	storage := core.NewStorage(genesis)
	bip := New(storage, verify.NewSyncVerifier(fullVerification()))

	require.NoError(t, bip.AppendBlock(chainutil.BlockH1()))
	require.EqualValues(t, 1, storage.BestBlock().Number)
}

// Orphans buffer up to the pool bound; the next one is refused.
func TestAppendBlockTooManyOrphans(t *testing.T) {
	genesis := chainutil.Genesis()
	storage := core.NewStorage(genesis)
	bip := New(storage, verify.NewSyncVerifier(fullVerification()))

	blocks := chainutil.BuildNEmptyBlocksFromGenesis(core.MaxOrphanedBlocks+2, 1)
	for index, block := range blocks {
		err := bip.AppendBlock(block)
		if index == core.MaxOrphanedBlocks {
			require.ErrorIs(t, err, ErrTooManyOrphanBlocks)
		} else {
			require.NoError(t, err)
		}
	}
	require.EqualValues(t, 0, storage.BestBlock().Number)
}

// A block with a known parent but failing verification is rejected.
func TestAppendBlockVerificationError(t *testing.T) {
	genesis := chainutil.Genesis()
	storage := core.NewStorage(genesis)
	bip := New(storage, verify.NewSyncVerifier(fullVerification()))

	wrongBlock := chainutil.NewBlockBuilder().Parent(genesis.Hash).Bits(0).Build()
	err := bip.AppendBlock(wrongBlock)
	require.Error(t, err)
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	require.EqualValues(t, 0, storage.BestBlock().Number)
}

func TestAppendBlockDuplicateIsNoop(t *testing.T) {
	genesis := chainutil.Genesis()
	storage := core.NewStorage(genesis)
	bip := New(storage, verify.NewSyncVerifier(fullVerification()))

	require.NoError(t, bip.AppendBlock(genesis))
	require.EqualValues(t, 0, storage.BestBlock().Number)

	require.NoError(t, bip.AppendBlock(chainutil.BlockH1()))
	require.EqualValues(t, 1, storage.BestBlock().Number)
}

// A side branch that overtakes the main chain in work triggers a reorg.
func TestAppendBlockReorg(t *testing.T) {
	b0 := chainutil.NewBlockBuilder().Build()
	b1 := chainutil.NewBlockBuilder().Parent(b0.Hash).Iterations(1).Build()
	b2 := chainutil.NewBlockBuilder().Parent(b0.Hash).Iterations(2).Build()
	b3 := chainutil.NewBlockBuilder().Parent(b2.Hash).Build()

	storage := core.NewStorage(b0)
	bip := New(storage, verify.NewSyncVerifier(noVerification()))

	require.NoError(t, bip.AppendBlock(b1))
	require.NoError(t, bip.AppendBlock(b2))
	require.NoError(t, bip.AppendBlock(b3))

	require.Equal(t, b3.Hash, storage.BestBlock().Hash)
	_, onMain := storage.BlockNumber(b1.Hash)
	require.False(t, onMain)
}

// A linear chain appended in any order converges to the same storage state
// as an in-order append.
func TestAppendBlockAnyPermutationConverges(t *testing.T) {
	blocks := chainutil.BuildNEmptyBlocksFromGenesis(3, 0)
	permutations := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}

	for _, perm := range permutations {
		storage := core.NewStorage(chainutil.Genesis())
		bip := New(storage, verify.NewSyncVerifier(noVerification()))

		for _, i := range perm {
			require.NoError(t, bip.AppendBlock(blocks[i]))
		}

		best := storage.BestBlock()
		require.EqualValues(t, 3, best.Number, "permutation %v", perm)
		require.Equal(t, blocks[2].Hash, best.Hash, "permutation %v", perm)
		for i, b := range blocks {
			n, ok := storage.BlockNumber(b.Hash)
			require.True(t, ok, "permutation %v", perm)
			require.EqualValues(t, i+1, n, "permutation %v", perm)
		}
	}
}

// Orphan children are drained and committed ancestor-first once their
// parent arrives, all within one AppendBlock call.
func TestAppendBlockDrainsOrphanDescendants(t *testing.T) {
	genesis := chainutil.Genesis()
	storage := core.NewStorage(genesis)
	bip := New(storage, verify.NewSyncVerifier(noVerification()))

	blocks := chainutil.BuildNEmptyBlocksFromGenesis(3, 0) // b1, b2, b3 in order
	b1, b2, b3 := blocks[0], blocks[1], blocks[2]

	require.NoError(t, bip.AppendBlock(b3))
	require.NoError(t, bip.AppendBlock(b2))
	require.EqualValues(t, 0, storage.BestBlock().Number, "still missing b1")

	require.NoError(t, bip.AppendBlock(b1))
	require.EqualValues(t, 3, storage.BestBlock().Number)
	require.Equal(t, b3.Hash, storage.BestBlock().Hash)
}
