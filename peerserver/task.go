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

package peerserver

import "github.com/randchain/randsync/core/types"

// TaskKind discriminates the variants of ServerTask.
type TaskKind int

const (
	TaskGetData TaskKind = iota
	TaskReversedGetData
	TaskGetBlocks
	TaskGetHeaders
	TaskMempool
)

// ServerTask is one unit of work queued for a peer: a getdata/getblocks/
// getheaders/mempool request, or the reversed-getdata continuation a
// getdata response is served across one block at a time. Exactly the
// fields relevant to Kind are populated.
type ServerTask struct {
	Kind       TaskKind
	Peer       PeerIndex
	GetData    GetData
	NotFound   NotFound
	GetBlocks  GetBlocks
	GetHeaders GetHeaders
	RequestId  RequestId
}

// PeerIndexOf returns the peer this task belongs to, the sole field every
// queue operation keys on.
func (t ServerTask) PeerIndexOf() PeerIndex { return t.Peer }

// Peers is the subset of peer-set management PRS depends on: reporting a
// protocol violation observed while serving a request.
type Peers interface {
	Misbehaving(peer PeerIndex, reason string)
}

// TaskExecutor is the outbound side: where ServerTaskExecutor hands off the
// responses it builds. Implemented by the transport/connection layer, which
// lives outside this module.
type TaskExecutor interface {
	Block(peer PeerIndex, block types.IndexedBlock)
	Inventory(peer PeerIndex, inv Inv)
	Headers(peer PeerIndex, headers []types.Header, requestId *RequestId)
	NotFound(peer PeerIndex, notFound NotFound)
}
