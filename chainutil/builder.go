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

// Package chainutil provides deterministic block/header fixtures for tests:
// a fixed genesis, its first child, straight-line chains of empty blocks,
// and a small fluent builder for everything else.
package chainutil

import (
	"github.com/randchain/randsync/common"
	"github.com/randchain/randsync/core/types"
)

// EasiestBits is the easiest compact proof-of-work target the builder uses;
// roughly half of all hashes meet it. BlockH1's hash meets it, so that
// fixture passes SyncVerifier's HeaderOnly check without mining; Genesis's
// hash does not.
const EasiestBits = 0x207fffff

// Genesis returns the fixed genesis block used across tests: height 0,
// zero previous hash.
func Genesis() types.IndexedBlock {
	return NewBlockBuilder().Build()
}

// BlockH1 returns a block whose parent is Genesis.
func BlockH1() types.IndexedBlock {
	genesis := Genesis()
	return NewBlockBuilder().Parent(genesis.Hash).Nonce(1).Build()
}

// BuildNEmptyBlocksFromGenesis returns n blocks extending genesis in a
// straight line, b1..bn, each with a distinct hash. skipIndex (1-based) is
// omitted from the result if non-zero, so callers can build an orphan chain
// missing its would-be first link.
func BuildNEmptyBlocksFromGenesis(n int, skipIndex int) []types.IndexedBlock {
	blocks := make([]types.IndexedBlock, 0, n)
	parent := Genesis().Hash
	for i := 1; i <= n; i++ {
		b := NewBlockBuilder().Parent(parent).Nonce(uint32(i)).Build()
		parent = b.Hash
		if i == skipIndex {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// BlockBuilder is a small fluent builder for IndexedBlock fixtures.
type BlockBuilder struct {
	header types.Header
}

// NewBlockBuilder returns a builder defaulted to an easy-PoW header
// building on the zero hash (i.e. a genesis-shaped block).
func NewBlockBuilder() *BlockBuilder {
	return &BlockBuilder{header: types.Header{
		Version: 1,
		Bits:    EasiestBits,
		Time:    1231006505,
	}}
}

// Parent sets the previous-block hash.
func (b *BlockBuilder) Parent(hash common.Hash32) *BlockBuilder {
	b.header.PreviousHash = hash
	return b
}

// Nonce sets the header nonce, the usual knob for making two otherwise
// identical headers hash differently in tests.
func (b *BlockBuilder) Nonce(n uint32) *BlockBuilder {
	b.header.Nonce = n
	return b
}

// Bits overrides the compact PoW target, e.g. to build a block that fails
// SyncVerifier's proof-of-work check.
func (b *BlockBuilder) Bits(bits uint32) *BlockBuilder {
	b.header.Bits = bits
	return b
}

// Iterations dials in a harder target than EasiestBits by halving it n
// times, doubling the block's work each step. The fixture equivalent of
// "mined for n iterations", used by the reorg tests to build branches whose
// cumulative-work comparison is unambiguous: each extra iteration outweighs
// the one before it in the expanded integer work, not just in the compact
// encoding.
func (b *BlockBuilder) Iterations(n uint32) *BlockBuilder {
	const mantissaMask = 0x007fffff
	b.header.Bits = 0x20000000 | ((mantissaMask >> n) & mantissaMask)
	return b
}

// Build computes the header hash and returns the finished block.
func (b *BlockBuilder) Build() types.IndexedBlock {
	return types.NewIndexedBlock(b.header, nil)
}
