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
	"sync"

	"github.com/randchain/randsync/core/types"
)

// AsyncVerifier runs verification on a background goroutine and reports the
// result to the sink once the work completes. BlockIngestion is never
// configured with one, since its verification loop requires the sink to be
// fully observable immediately after VerifyBlock returns; this delivery
// mode suits callers that poll or block on their own sink instead.
type AsyncVerifier struct {
	inner Verifier
	wg    sync.WaitGroup
}

// NewAsyncVerifier wraps inner to deliver its sink callbacks asynchronously.
func NewAsyncVerifier(inner Verifier) *AsyncVerifier {
	return &AsyncVerifier{inner: inner}
}

// VerifyBlock schedules verification of block on a new goroutine and
// returns immediately, before the sink has necessarily been called.
func (v *AsyncVerifier) VerifyBlock(block types.IndexedBlock, sink Sink) {
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		v.inner.VerifyBlock(block, sink)
	}()
}

// Wait blocks until every VerifyBlock call scheduled so far has delivered
// its sink callback. Tests use this; BlockIngestion never does, since it
// must not be paired with an AsyncVerifier.
func (v *AsyncVerifier) Wait() {
	v.wg.Wait()
}
