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

package verify

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/randchain/randsync/core/types"
)

// SyncVerifier checks a block and calls back into its sink before
// VerifyBlock returns. This is the configuration BlockIngestion requires:
// the caller observes the sink's state fully updated by the time
// VerifyBlock returns, with no further synchronization needed beyond a
// mutex acquire on the sink itself.
type SyncVerifier struct {
	params Parameters
}

// NewSyncVerifier returns a SyncVerifier configured with params.
func NewSyncVerifier(params Parameters) *SyncVerifier {
	return &SyncVerifier{params: params}
}

// VerifyBlock checks block and reports the result to sink synchronously.
func (v *SyncVerifier) VerifyBlock(block types.IndexedBlock, sink Sink) {
	if v.params.Level == NoVerification {
		sink.OnBlockVerificationSuccess(block)
		return
	}
	if block.Header.Raw.PreviousHash == v.params.Edge {
		// Blocks building directly on the trusted edge skip re-verification
		// of everything behind it; the edge block itself was already
		// accepted when it became the edge.
		sink.OnBlockVerificationSuccess(block)
		return
	}
	if err := checkProofOfWork(block); err != nil {
		sink.OnBlockVerificationError(err.Error(), block.Hash)
		return
	}
	sink.OnBlockVerificationSuccess(block)
}

// checkProofOfWork verifies that a header's hash, read as a 256-bit integer,
// does not exceed the target its bits field encodes.
func checkProofOfWork(block types.IndexedBlock) error {
	target := block.Header.Raw.Target()
	hashInt := new(uint256.Int).SetBytes(reverse(block.Hash[:]))
	if hashInt.Cmp(target) > 0 {
		return fmt.Errorf("hash %s exceeds target for bits %08x", block.Hash, block.Header.Raw.Bits)
	}
	return nil
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[i] = b[len(b)-1-i]
	}
	return out
}
