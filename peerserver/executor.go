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

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/randchain/randsync/common"
	"github.com/randchain/randsync/core"
	"github.com/randchain/randsync/core/types"
	randlog "github.com/randchain/randsync/log"
)

// misbehaviorLogCacheSize bounds the de-dup cache below: once a peer has
// been reported for a given reason, repeating the exact same violation
// doesn't re-log at warn level, only the first occurrence does.
const misbehaviorLogCacheSize = 256

// serverTaskExecutor drains one ServerTask at a time: get_data/getblocks/
// getheaders/mempool serving, plus locate_best_common_block, the shared
// fork-aware lookup getblocks and getheaders both build their response on.
type serverTaskExecutor struct {
	peers    Peers
	storage  core.BlockProvider
	outbound TaskExecutor
	log      randlog.Logger

	reportedOnce *lru.Cache[misbehaviorKey, struct{}]
}

type misbehaviorKey struct {
	peer   PeerIndex
	reason string
}

func newServerTaskExecutor(peers Peers, storage core.BlockProvider, outbound TaskExecutor) *serverTaskExecutor {
	cache, _ := lru.New[misbehaviorKey, struct{}](misbehaviorLogCacheSize)
	return &serverTaskExecutor{
		peers:        peers,
		storage:      storage,
		outbound:     outbound,
		log:          randlog.New("component", "peerserver"),
		reportedOnce: cache,
	}
}

// execute runs task, returning a follow-up task to requeue at the front of
// the peer's own queue (the ReversedGetData continuation pattern) if one is
// needed.
func (e *serverTaskExecutor) execute(task ServerTask) (ServerTask, bool) {
	switch task.Kind {
	case TaskGetData:
		return e.serveGetData(task.Peer, task.GetData)
	case TaskReversedGetData:
		return e.serveReversedGetData(task.Peer, task.GetData, task.NotFound)
	case TaskGetBlocks:
		e.serveGetBlocks(task.Peer, task.GetBlocks)
	case TaskGetHeaders:
		e.serveGetHeaders(task.Peer, task.GetHeaders, task.RequestId)
	case TaskMempool:
		e.serveMempool(task.Peer)
	}
	return ServerTask{}, false
}

// serveGetData reverses the requested inventory so ReversedGetData can pop
// items off the back one per worker turn, giving other peers' tasks a
// chance to interleave instead of one getdata hogging the worker
// goroutine for its whole response.
func (e *serverTaskExecutor) serveGetData(peer PeerIndex, message GetData) (ServerTask, bool) {
	reversed := make([]InventoryVector, len(message.Inventory))
	for i, v := range message.Inventory {
		reversed[len(reversed)-1-i] = v
	}
	return ServerTask{
		Kind:     TaskReversedGetData,
		Peer:     peer,
		GetData:  GetData{Inventory: reversed},
		NotFound: NotFound{},
	}, true
}

func (e *serverTaskExecutor) serveReversedGetData(peer PeerIndex, message GetData, notFound NotFound) (ServerTask, bool) {
	if len(message.Inventory) == 0 {
		if len(notFound.Inventory) > 0 {
			e.log.Trace("getdata request contains unknown items", "peer", peer, "count", len(notFound.Inventory))
			e.outbound.NotFound(peer, notFound)
		}
		return ServerTask{}, false
	}

	last := len(message.Inventory) - 1
	next := message.Inventory[last]
	message.Inventory = message.Inventory[:last]

	switch next.Type {
	case InventoryMessageBlock:
		if block, ok := e.storage.Block(core.ByHash(next.Hash)); ok {
			e.outbound.Block(peer, block)
		} else {
			notFound.Inventory = append(notFound.Inventory, next)
		}
	case InventoryError:
	}

	return ServerTask{
		Kind:     TaskReversedGetData,
		Peer:     peer,
		GetData:  message,
		NotFound: notFound,
	}, true
}

func (e *serverTaskExecutor) serveGetBlocks(peer PeerIndex, message GetBlocks) {
	height, ok := e.locateBestCommonBlock(message.HashStop, message.BlockLocatorHashes)
	if !ok {
		e.misbehaving(peer, "Got 'getblocks' message without known blocks")
		return
	}

	var inventory []InventoryVector
	for h := height + 1; h < height+1+GetBlocksMaxResponseHashes; h++ {
		hash, ok := e.storage.BlockHash(h)
		if !ok || hash == message.HashStop {
			break
		}
		inventory = append(inventory, InventoryVector{Type: InventoryMessageBlock, Hash: hash})
	}

	// Empty inventory messages are invalid on the wire; empty headers
	// messages are not, so getblocks stays silent when there is nothing new.
	if len(inventory) == 0 {
		e.log.Trace("'getblocks' request is ignored, no new blocks for peer", "peer", peer)
		return
	}
	e.outbound.Inventory(peer, Inv{Inventory: inventory})
}

func (e *serverTaskExecutor) serveGetHeaders(peer PeerIndex, message GetHeaders, requestId RequestId) {
	height, ok := e.locateBestCommonBlock(message.HashStop, message.BlockLocatorHashes)
	if !ok {
		e.misbehaving(peer, "Got 'headers' message without known blocks")
		return
	}

	var headers []types.Header
	for h := height + 1; h < height+1+GetHeadersMaxResponseHeaders; h++ {
		hash, ok := e.storage.BlockHash(h)
		if !ok || hash == message.HashStop {
			break
		}
		header, ok := e.storage.BlockHeader(core.ByHash(hash))
		if !ok {
			break
		}
		headers = append(headers, header.Raw)
	}

	req := requestId
	e.outbound.Headers(peer, headers, &req)
}

// serveMempool has no mempool to serve against (this module does not relay
// transactions); it stays a deliberate no-op.
func (e *serverTaskExecutor) serveMempool(peer PeerIndex) {
	e.log.Trace("'mempool' request ignored, pool is empty", "peer", peer)
}

// locateBestCommonBlock walks locator (then hashStop) looking for the
// first hash known to storage. A hash on the main chain resolves directly;
// a hash on a side branch is walked back, ancestor by ancestor, until it
// meets the main chain, and that intersection is the answer. This mirrors
// how a peer's locator is built (exponentially sparser going back), so the
// common ancestor is found in O(log height) steps in the common case.
func (e *serverTaskExecutor) locateBestCommonBlock(hashStop common.Hash32, locator []common.Hash32) (uint32, bool) {
	candidates := append(append([]common.Hash32{}, locator...), hashStop)
	for _, hash := range candidates {
		if height, ok := e.storage.BlockNumber(hash); ok {
			return height, true
		}

		cur := hash
		for {
			header, ok := e.storage.BlockHeader(core.ByHash(cur))
			if !ok {
				break
			}
			parent := header.Raw.PreviousHash
			if height, ok := e.storage.BlockNumber(parent); ok {
				return height, true
			}
			cur = parent
		}
	}
	return 0, false
}

func (e *serverTaskExecutor) misbehaving(peer PeerIndex, reason string) {
	key := misbehaviorKey{peer: peer, reason: reason}
	if _, seen := e.reportedOnce.Get(key); !seen {
		e.reportedOnce.Add(key, struct{}{})
		e.log.Warn("peer misbehaving", "peer", peer, "reason", reason)
	}
	e.peers.Misbehaving(peer, reason)
}
