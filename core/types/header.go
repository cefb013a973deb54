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

// Package types holds the block and header data model: the 80-byte header,
// the indexed (hash-carrying) wrappers around it, and the block body.
package types

import (
	"encoding/binary"

	"github.com/holiman/uint256"

	"github.com/randchain/randsync/common"
)

// Header is the 80-byte portion of a block that is hashed and proof-of-work
// sealed: {version, previous_hash, merkle_root, time, bits, nonce}.
type Header struct {
	Version       int32
	PreviousHash  common.Hash32
	MerkleRoot    common.Hash32
	Time          uint32
	Bits          uint32
	Nonce         uint32
}

// Serialize returns the fixed 80-byte wire encoding of the header, the input
// to the SHA256d hash invariant.
func (h *Header) Serialize() []byte {
	buf := make([]byte, 80)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Version))
	copy(buf[4:36], h.PreviousHash[:])
	copy(buf[36:68], h.MerkleRoot[:])
	binary.LittleEndian.PutUint32(buf[68:72], h.Time)
	binary.LittleEndian.PutUint32(buf[72:76], h.Bits)
	binary.LittleEndian.PutUint32(buf[76:80], h.Nonce)
	return buf
}

// Hash returns SHA256d(Serialize()).
func (h *Header) Hash() common.Hash32 {
	return common.DoubleSHA256(h.Serialize())
}

// Target decodes the compact "bits" field into its expanded 256-bit target.
// Bits is {exponent:8, mantissa:24} as per Bitcoin's nBits compact encoding.
func (h *Header) Target() *uint256.Int {
	return compactToTarget(h.Bits)
}

// Work returns this header's individual contribution to cumulative chain
// work: floor(2^256 / (target+1)), the standard Bitcoin-family work metric.
func (h *Header) Work() *uint256.Int {
	target := h.Target()
	if target.IsZero() {
		return uint256.NewInt(0)
	}
	denom := new(uint256.Int).AddUint64(target, 1)
	numerator := &uint256.Int{}
	// 2^256 doesn't fit in uint256.Int, so compute via (~0 - target) / (target+1) + 1,
	// the standard trick: floor(2^256/(target+1)) = floor((2^256-1-target)/(target+1)) + 1.
	maxUint := new(uint256.Int).Not(uint256.NewInt(0))
	numerator.Sub(maxUint, target)
	work := new(uint256.Int).Div(numerator, denom)
	work.AddUint64(work, 1)
	return work
}

func compactToTarget(bits uint32) *uint256.Int {
	exponent := bits >> 24
	mantissa := bits & 0x007fffff
	target := uint256.NewInt(uint64(mantissa))
	if exponent <= 3 {
		shift := 8 * (3 - exponent)
		target = new(uint256.Int).Rsh(target, uint(shift))
		return target
	}
	shift := 8 * (exponent - 3)
	return new(uint256.Int).Lsh(target, uint(shift))
}

// IndexedBlockHeader pairs a Header with its precomputed hash.
type IndexedBlockHeader struct {
	Hash common.Hash32
	Raw  Header
}

// NewIndexedBlockHeader computes and attaches the hash of raw.
func NewIndexedBlockHeader(raw Header) IndexedBlockHeader {
	return IndexedBlockHeader{Hash: raw.Hash(), Raw: raw}
}

// Transaction is a minimal transaction stub: the ingestion/serving core
// never inspects transaction contents (that's the verifier's and mempool's
// job, both out of scope), only the count and raw bytes for serialization.
type Transaction struct {
	Raw []byte
}

// IndexedBlock is an immutable block carrying its precomputed hash alongside
// its header and transaction list. Invariant: Hash == SHA256d(header.Serialize()).
type IndexedBlock struct {
	Hash         common.Hash32
	Header       IndexedBlockHeader
	Transactions []Transaction
}

// NewIndexedBlock constructs an IndexedBlock, computing the header hash.
func NewIndexedBlock(raw Header, txs []Transaction) IndexedBlock {
	ih := NewIndexedBlockHeader(raw)
	return IndexedBlock{Hash: ih.Hash, Header: ih, Transactions: txs}
}
