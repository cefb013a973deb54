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

// Command randsyncd is a minimal demo importer: it wires config, logging,
// an in-memory core.Storage and ingest.BlockIngestion together, and feeds a
// file of newline-delimited hex-encoded block headers through AppendBlock,
// logging each failure and continuing with the next block.
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/randchain/randsync/chainutil"
	"github.com/randchain/randsync/config"
	"github.com/randchain/randsync/core"
	"github.com/randchain/randsync/core/types"
	"github.com/randchain/randsync/ingest"
	randlog "github.com/randchain/randsync/log"
	"github.com/randchain/randsync/verify"
)

func main() {
	app := &cli.App{
		Name:  "randsyncd",
		Usage: "replay a file of hex-encoded block headers through the ingestion pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "blocks",
				Usage:    "path to a file of newline-delimited 80-byte hex block headers",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "no-verify",
				Usage: "accept every block's header unchecked (NoVerification level)",
			},
			&cli.IntFlag{
				Name:  "max-orphans",
				Usage: "override the orphan pool bound",
				Value: core.MaxOrphanedBlocks,
			},
			&cli.BoolFlag{
				Name:  "json-logs",
				Usage: "emit structured JSON logs instead of the terminal format",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		randlog.Error("randsyncd exiting", "err", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("json-logs") {
		randlog.SetDefault(randlog.NewLogger(randlog.JSONHandler(os.Stdout)))
	}
	log := randlog.New("component", "randsyncd")

	cfg := config.Default()
	cfg.MaxOrphanedBlocks = c.Int("max-orphans")
	if c.Bool("no-verify") {
		cfg.Verification.Level = verify.NoVerification
	}

	genesis := chainutil.Genesis()
	storage := core.NewStorage(genesis)
	bip := ingest.NewWithOrphanLimit(storage, verify.NewSyncVerifier(cfg.Verification), cfg.EffectiveMaxOrphanedBlocks())

	file, err := os.Open(c.String("blocks"))
	if err != nil {
		return fmt.Errorf("opening blocks file: %w", err)
	}
	defer file.Close()

	var imported, skipped int
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		block, err := decodeHeaderLine(line)
		if err != nil {
			log.Warn("skipping malformed block line", "err", err)
			skipped++
			continue
		}
		if err := bip.AppendBlock(block); err != nil {
			log.Warn("block import failed, continuing with next block", "hash", block.Hash, "err", err)
			skipped++
			continue
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading blocks file: %w", err)
	}

	best := storage.BestBlock()
	log.Info("import complete", "imported", imported, "skipped", skipped, "best_height", best.Number, "best_hash", best.Hash)
	return nil
}

// decodeHeaderLine parses one hex-encoded 80-byte header line into an
// IndexedBlock with no transactions; this demo binary only exercises
// header-level ingestion.
func decodeHeaderLine(line string) (types.IndexedBlock, error) {
	raw, err := hex.DecodeString(line)
	if err != nil {
		return types.IndexedBlock{}, fmt.Errorf("invalid hex: %w", err)
	}
	if len(raw) != 80 {
		return types.IndexedBlock{}, fmt.Errorf("expected 80-byte header, got %d bytes", len(raw))
	}

	header := types.Header{
		Version: int32(le32(raw[0:4])),
		Time:    le32(raw[68:72]),
		Bits:    le32(raw[72:76]),
		Nonce:   le32(raw[76:80]),
	}
	copy(header.PreviousHash[:], raw[4:36])
	copy(header.MerkleRoot[:], raw[36:68])
	return types.NewIndexedBlock(header, nil), nil
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
