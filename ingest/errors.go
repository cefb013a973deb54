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

// Package ingest implements the Block Ingestion Pipeline (BIP): the
// synchronous importer that dedups, orphan-buffers, verifies, and commits
// candidate blocks, driving chain reorganization through core.Storage.
package ingest

import "github.com/cockroachdb/errors"

// ErrTooManyOrphanBlocks is returned when accepting a parentless block would
// push the orphan pool beyond the BlockIngestion's orphan limit
// (core.MaxOrphanedBlocks unless set with NewWithOrphanLimit).
var ErrTooManyOrphanBlocks = errors.New("ingest: too many orphan blocks")

// VerificationError wraps the human-readable reason a Verifier rejected a
// block. Subsequent blocks in the same AppendBlock call's verification
// queue are not attempted once this is returned.
type VerificationError struct {
	Reason string
}

func (e *VerificationError) Error() string {
	return "ingest: verification failed: " + e.Reason
}

// DatabaseError wraps a storage-layer error encountered while committing a
// verified block (e.g. an unknown-parent rejection on the reorg path).
type DatabaseError struct {
	Err error
}

func (e *DatabaseError) Error() string {
	return "ingest: database error: " + e.Err.Error()
}

func (e *DatabaseError) Unwrap() error { return e.Err }
