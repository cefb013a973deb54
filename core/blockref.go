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

// Package core holds the read-side BlockProvider interface, its in-memory
// backing Storage (whose InsertBestBlock carries the chain/reorg state
// machine), and the OrphanPool.
package core

import "github.com/randchain/randsync/common"

// BlockRef is a discriminated union used to key BlockProvider lookups by
// either canonical height or hash.
type BlockRef struct {
	byHash bool
	number uint32
	hash   common.Hash32
}

// ByNumber builds a BlockRef keyed by canonical height.
func ByNumber(n uint32) BlockRef { return BlockRef{number: n} }

// ByHash builds a BlockRef keyed by hash.
func ByHash(h common.Hash32) BlockRef { return BlockRef{byHash: true, hash: h} }

// IsHash reports whether the ref is hash-keyed.
func (r BlockRef) IsHash() bool { return r.byHash }

// Number returns the height if the ref is number-keyed.
func (r BlockRef) Number() uint32 { return r.number }

// Hash returns the hash if the ref is hash-keyed.
func (r BlockRef) Hash() common.Hash32 { return r.hash }
