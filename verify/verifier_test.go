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

package verify_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randchain/randsync/chainutil"
	"github.com/randchain/randsync/common"
	"github.com/randchain/randsync/core/types"
	"github.com/randchain/randsync/verify"
)

// recordingSink captures the single callback a VerifyBlock call delivers.
type recordingSink struct {
	mu        sync.Mutex
	succeeded []common.Hash32
	failed    []common.Hash32
	reasons   []string
}

func (s *recordingSink) OnBlockVerificationSuccess(block types.IndexedBlock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.succeeded = append(s.succeeded, block.Hash)
}

func (s *recordingSink) OnBlockVerificationError(reason string, hash common.Hash32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, hash)
	s.reasons = append(s.reasons, reason)
}

func TestSyncVerifierAcceptsBlockMeetingTarget(t *testing.T) {
	sink := &recordingSink{}
	v := verify.NewSyncVerifier(verify.Parameters{Level: verify.HeaderOnly})

	b1 := chainutil.BlockH1()
	v.VerifyBlock(b1, sink)

	require.Equal(t, []common.Hash32{b1.Hash}, sink.succeeded)
	require.Empty(t, sink.failed)
}

func TestSyncVerifierRejectsBlockExceedingTarget(t *testing.T) {
	sink := &recordingSink{}
	v := verify.NewSyncVerifier(verify.Parameters{Level: verify.HeaderOnly})

	// A zero bits field expands to a zero target no hash can meet.
	bad := chainutil.NewBlockBuilder().Parent(chainutil.Genesis().Hash).Bits(0).Build()
	v.VerifyBlock(bad, sink)

	require.Empty(t, sink.succeeded)
	require.Equal(t, []common.Hash32{bad.Hash}, sink.failed)
	require.NotEmpty(t, sink.reasons[0])
}

func TestSyncVerifierNoVerificationAcceptsAnything(t *testing.T) {
	sink := &recordingSink{}
	v := verify.NewSyncVerifier(verify.Parameters{Level: verify.NoVerification})

	bad := chainutil.NewBlockBuilder().Bits(0).Build()
	v.VerifyBlock(bad, sink)

	require.Len(t, sink.succeeded, 1)
	require.Empty(t, sink.failed)
}

func TestSyncVerifierSkipsChecksBehindEdge(t *testing.T) {
	genesis := chainutil.Genesis()
	sink := &recordingSink{}
	v := verify.NewSyncVerifier(verify.Parameters{Level: verify.HeaderOnly, Edge: genesis.Hash})

	// Would fail the proof-of-work check, but builds directly on the trusted
	// edge and so is accepted without it.
	checkpointed := chainutil.NewBlockBuilder().Parent(genesis.Hash).Bits(0).Build()
	v.VerifyBlock(checkpointed, sink)

	require.Len(t, sink.succeeded, 1)
	require.Empty(t, sink.failed)
}

func TestAsyncVerifierDeliversAfterWait(t *testing.T) {
	sink := &recordingSink{}
	v := verify.NewAsyncVerifier(verify.NewSyncVerifier(verify.Parameters{Level: verify.NoVerification}))

	blocks := chainutil.BuildNEmptyBlocksFromGenesis(5, 0)
	for _, b := range blocks {
		v.VerifyBlock(b, sink)
	}
	v.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.succeeded, 5)
	require.Empty(t, sink.failed)
}
