package crcdir

/*
	Copyright 2019 Nicholas Krichevsky

	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at

		http://www.apache.org/licenses/LICENSE-2.0

	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

import (
	"context"
	"errors"
	"hash"
	"os"
	"strconv"

	"golang.org/x/xerrors"
)

var errNotFile = errors.New("not a file; will not hash")

// FileRecord is the checksum of a single walked file.
type FileRecord struct {
	// Name is the final path component of the file, as raw bytes from the filesystem.
	Name string
	// CRC is the checksum in lowercase hex, without zero padding.
	CRC string
}

// WalkHasher represents something that can walk a tree and generate a sorted table of checksums
type WalkHasher interface {
	// WalkAndHash takes a root path and returns a record for each file beneath it, in ResultTable order.
	WalkAndHash(ctx context.Context, root string) (ResultTable, error)
}

// hashFile will read the whole file at entry.Path into h, and produce a record of its checksum.
func hashFile(h hash.Hash32, entry FileEntry) (FileRecord, error) {
	if !entry.Mode.IsRegular() {
		return FileRecord{}, xerrors.Errorf("could not hash (%s): %w", entry.Path, errNotFile)
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		return FileRecord{}, xerrors.Errorf("failed to read file (%s) to hash: %w", entry.Path, err)
	}

	// hash.Hash never returns an error from Write
	h.Write(data)

	return FileRecord{Name: entry.Name, CRC: formatChecksum(h.Sum32())}, nil
}

// formatChecksum renders a checksum as minimal-width lowercase hex (e.g. "0", "ff", "cbf43926").
func formatChecksum(sum uint32) string {
	return strconv.FormatUint(uint64(sum), 16)
}
