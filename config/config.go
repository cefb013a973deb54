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

// Package config aggregates the handful of knobs the rest of this module's
// components are parameterized over, so a single struct can be threaded
// from cmd/randsyncd's flag parsing down into verify and ingest.
package config

import (
	"github.com/randchain/randsync/common"
	"github.com/randchain/randsync/core"
	"github.com/randchain/randsync/verify"
)

// Config aggregates BlockIngestion's and the peer request server's tunables.
type Config struct {
	// Verification controls how thoroughly BlockIngestion checks incoming
	// blocks before committing them.
	Verification verify.Parameters

	// MaxOrphanedBlocks overrides core.MaxOrphanedBlocks when positive,
	// mainly so tests can exercise the orphan-flood path with a small pool.
	MaxOrphanedBlocks int

	// PeerTaskQueueBuffer bounds how many ServerTask values any single peer
	// may have queued in peerserver.Server before Execute starts blocking.
	// 0 means unbounded. It matches the maxQueueLen argument of
	// peerserver.NewServerWithQueueBuffer; cmd/randsyncd starts no peer
	// server, so nothing in this module reads the field.
	PeerTaskQueueBuffer int
}

// Default returns the configuration cmd/randsyncd uses absent any flags:
// header-only verification, the stock orphan pool bound, and no queue cap.
func Default() Config {
	return Config{
		Verification:        verify.Parameters{Level: verify.HeaderOnly, Edge: common.ZeroHash},
		MaxOrphanedBlocks:   core.MaxOrphanedBlocks,
		PeerTaskQueueBuffer: 0,
	}
}

// EffectiveMaxOrphanedBlocks returns MaxOrphanedBlocks if set, else the
// package-wide default.
func (c Config) EffectiveMaxOrphanedBlocks() int {
	if c.MaxOrphanedBlocks <= 0 {
		return core.MaxOrphanedBlocks
	}
	return c.MaxOrphanedBlocks
}
