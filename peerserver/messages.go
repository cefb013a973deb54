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

// Package peerserver implements the Peer Request Server (PRS): a fair,
// per-peer round-robin task queue and the ServerTaskExecutor that drains it,
// serving getdata/getblocks/getheaders/mempool requests against a
// core.BlockProvider.
package peerserver

import "github.com/randchain/randsync/common"

// PeerIndex identifies a connected peer. It is opaque to this package; the
// transport layer assigns and owns the numbering.
type PeerIndex uint32

// RequestId threads a peer's own request identifier back through to its
// Headers response, the way the wire protocol's getheaders/headers pairing
// requires.
type RequestId uint32

// InventoryType discriminates the kind of item an InventoryVector names.
// This module does not relay transactions, so only the two values its own
// paths can produce or consume are defined; MessageTx and the witness
// variants belong to the codec layer.
type InventoryType int

const (
	// InventoryError marks a malformed/unknown inventory entry; it is never
	// served and only kept to round out the wire enum.
	InventoryError InventoryType = iota
	// InventoryMessageBlock marks an inventory entry naming a full block.
	InventoryMessageBlock
)

// InventoryVector names a single block by hash for inclusion in a GetData
// request or an Inv/NotFound response.
type InventoryVector struct {
	Type InventoryType
	Hash common.Hash32
}

// GetData is a getdata request: an ordered list of items a peer wants
// delivered in full.
type GetData struct {
	Inventory []InventoryVector
}

// NotFound lists the GetData entries this node could not serve.
type NotFound struct {
	Inventory []InventoryVector
}

// GetBlocks is a getblocks request: find the caller's best common ancestor
// with this node via BlockLocatorHashes, then list inventory for every
// block after it up to HashStop (or GetBlocksMaxResponseHashes, whichever
// comes first).
type GetBlocks struct {
	BlockLocatorHashes []common.Hash32
	HashStop           common.Hash32
}

// GetHeaders is the header-only analogue of GetBlocks. The RequestId that is
// threaded back to the caller's Headers response travels beside it, in
// ServerTask.RequestId.
type GetHeaders struct {
	BlockLocatorHashes []common.Hash32
	HashStop           common.Hash32
}

// Inv carries a batch of InventoryVector entries, the getblocks response
// shape.
type Inv struct {
	Inventory []InventoryVector
}

const (
	// GetBlocksMaxResponseHashes bounds how many hashes a single getblocks
	// response carries.
	GetBlocksMaxResponseHashes = 500
	// GetHeadersMaxResponseHeaders bounds how many headers a single
	// getheaders response carries.
	GetHeadersMaxResponseHeaders = 2000
)
