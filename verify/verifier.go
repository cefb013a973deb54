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

// Package verify defines the block verifier collaborator BlockIngestion
// drives. Full consensus rules live outside this module; this package only
// specifies the adapter shape and a synchronous reference implementation
// sufficient for NoVerification and header-only checking.
package verify

import (
	"github.com/randchain/randsync/common"
	"github.com/randchain/randsync/core/types"
)

// Level selects how thoroughly a block is checked before acceptance.
type Level int

const (
	// NoVerification accepts every block's header/transactions unchecked.
	// Used in tests exercising reorg/ordering logic in isolation from
	// consensus rules.
	NoVerification Level = iota
	// HeaderOnly checks only proof-of-work against the header's bits field.
	HeaderOnly
	// Full additionally runs transaction/script checks. Those rules live
	// outside this module, so a Full-configured Verifier here behaves like
	// HeaderOnly; the level exists so callers can wire the enum through end
	// to end.
	Full
)

// Parameters configures a Verifier: how strict to be, and the lowest
// ancestor hash at which full rules start to apply (used to skip
// re-verifying blocks behind a trusted checkpoint during initial sync).
type Parameters struct {
	Level Level
	Edge  common.Hash32
}

// Sink receives the asynchronous result of a VerifyBlock call. A Verifier
// invokes exactly one of these methods per VerifyBlock call.
type Sink interface {
	OnBlockVerificationSuccess(block types.IndexedBlock)
	OnBlockVerificationError(reason string, hash common.Hash32)
}

// Verifier checks a block and reports the outcome to sink. BlockIngestion
// requires a Verifier whose sink callback is fully serialized ahead of
// VerifyBlock's return; see SyncVerifier.
type Verifier interface {
	VerifyBlock(block types.IndexedBlock, sink Sink)
}
