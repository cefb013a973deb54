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

package core

import "github.com/cockroachdb/errors"

// ErrUnknownParent is returned by Storage.InsertBestBlock when a block's
// parent is neither the current best block nor a tracked side tip. The
// parent may still be a block this Storage holds.
var ErrUnknownParent = errors.New("core: block's parent is not known to storage")

// ErrNotCanonicalAncestor is returned when a reorg rewind cannot locate the
// fork point on the main chain.
var ErrNotCanonicalAncestor = errors.New("core: fork point is not on the main chain")
