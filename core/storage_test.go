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

package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randchain/randsync/chainutil"
	"github.com/randchain/randsync/core"
)

func TestStorageContainsBlockTracksMainAndSideChain(t *testing.T) {
	genesis := chainutil.Genesis()
	storage := core.NewStorage(genesis)
	require.True(t, storage.ContainsBlock(core.ByHash(genesis.Hash)))

	b1 := chainutil.BlockH1()
	require.False(t, storage.ContainsBlock(core.ByHash(b1.Hash)))
	require.NoError(t, storage.InsertBestBlock(b1))
	require.True(t, storage.ContainsBlock(core.ByHash(b1.Hash)))

	number, ok := storage.BlockNumber(b1.Hash)
	require.True(t, ok)
	require.EqualValues(t, 1, number)
}

func TestStorageInsertBestBlockRejectsUnknownParent(t *testing.T) {
	genesis := chainutil.Genesis()
	storage := core.NewStorage(genesis)

	dangling := chainutil.NewBlockBuilder().Nonce(7).Build() // parent: zero hash, never seen
	err := storage.InsertBestBlock(dangling)
	require.ErrorIs(t, err, core.ErrUnknownParent)
}

func TestStorageInsertBestBlockExtendsMainChain(t *testing.T) {
	genesis := chainutil.Genesis()
	storage := core.NewStorage(genesis)
	blocks := chainutil.BuildNEmptyBlocksFromGenesis(3, 0)

	for _, b := range blocks {
		require.NoError(t, storage.InsertBestBlock(b))
	}
	best := storage.BestBlock()
	require.EqualValues(t, 3, best.Number)
	require.Equal(t, blocks[2].Hash, best.Hash)
}

// A lighter side branch is tracked but never displaces the heavier main
// chain.
func TestStorageInsertBestBlockTracksLighterSideBranchWithoutReorg(t *testing.T) {
	genesis := chainutil.Genesis()
	main := chainutil.NewBlockBuilder().Parent(genesis.Hash).Iterations(5).Build()
	side := chainutil.NewBlockBuilder().Parent(genesis.Hash).Iterations(1).Build()

	storage := core.NewStorage(genesis)
	require.NoError(t, storage.InsertBestBlock(main))
	require.NoError(t, storage.InsertBestBlock(side))

	best := storage.BestBlock()
	require.Equal(t, main.Hash, best.Hash)
	require.True(t, storage.ContainsBlock(core.ByHash(side.Hash)))
	_, onMain := storage.BlockNumber(side.Hash)
	require.False(t, onMain)
}

// A side branch forking from a block well behind the current tip, once it
// overtakes the main chain's cumulative work, triggers a reorg that rewinds
// and re-canonizes atomically.
func TestStorageInsertBestBlockReorgsFromDeepFork(t *testing.T) {
	genesis := chainutil.Genesis()
	storage := core.NewStorage(genesis)

	a1 := chainutil.NewBlockBuilder().Parent(genesis.Hash).Iterations(1).Build()
	a2 := chainutil.NewBlockBuilder().Parent(a1.Hash).Iterations(1).Build()
	require.NoError(t, storage.InsertBestBlock(a1))
	require.NoError(t, storage.InsertBestBlock(a2))
	require.EqualValues(t, 2, storage.BestBlock().Number)

	// Side branch off genesis: b1 alone is lighter than a1+a2, so it stays a
	// side branch; b2 carries enough work for the branch to overtake.
	b1 := chainutil.NewBlockBuilder().Parent(genesis.Hash).Iterations(1).Nonce(100).Build()
	b2 := chainutil.NewBlockBuilder().Parent(b1.Hash).Iterations(2).Build()
	require.NoError(t, storage.InsertBestBlock(b1))
	_, onMainBeforeReorg := storage.BlockNumber(b1.Hash)
	require.False(t, onMainBeforeReorg)

	require.NoError(t, storage.InsertBestBlock(b2))

	best := storage.BestBlock()
	require.Equal(t, b2.Hash, best.Hash)
	require.EqualValues(t, 2, best.Number)

	n1, ok1 := storage.BlockNumber(b1.Hash)
	require.True(t, ok1)
	require.EqualValues(t, 1, n1)

	_, onMainA1 := storage.BlockNumber(a1.Hash)
	require.False(t, onMainA1)
	require.True(t, storage.ContainsBlock(core.ByHash(a1.Hash)))
}
