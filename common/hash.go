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

// Package common holds the small set of types shared by every other package
// in this module: the 32-byte block/header hash.
package common

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Hash32 is a double-SHA-256 block or header hash, reused verbatim from the
// btcsuite chainhash package rather than redefined here.
type Hash32 = chainhash.Hash

// ZeroHash is the all-zero hash, used as a wildcard "no stop hash" value in
// GetBlocks/GetHeaders requests.
var ZeroHash = Hash32{}

// DoubleSHA256 computes SHA256(SHA256(data)), the hashing primitive every
// Bitcoin-family header commitment is built on.
func DoubleSHA256(data []byte) Hash32 {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return Hash32(second)
}
