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
	"fmt"
	"hash"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

// hasherFactory builds a WalkHasher under test around the given walker and reporter
type hasherFactory func(walker pathWalker, hashConstructor func() hash.Hash32, reporter ProgressReporter) WalkHasher

func TestSerialWalkHasher_WalkAndHash(t *testing.T) {
	testWalkHasherInterface(t, func(walker pathWalker, hashConstructor func() hash.Hash32, reporter ProgressReporter) WalkHasher {
		return makeSerialWalkHasher(walker, hashConstructor, SerialWalkHasherProgressReporter(reporter))
	})
}

func TestParallelWalkHasher_WalkAndHash(t *testing.T) {
	for _, numWorkers := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("%d workers", numWorkers), func(t *testing.T) {
			testWalkHasherInterface(t, func(walker pathWalker, hashConstructor func() hash.Hash32, reporter ProgressReporter) WalkHasher {
				return makeParallelWalkHasher(numWorkers, walker, hashConstructor, ParallelWalkHasherProgressReporter(reporter))
			})
		})
	}
}

// makeEntries writes all of the given files (name => contents) into a temp dir, and gets entries for them
func makeEntries(t *testing.T, files map[string]string) []FileEntry {
	t.Helper()
	dir := t.TempDir()
	entries := []FileEntry{}
	for name, contents := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
		entries = append(entries, FileEntry{Path: path, Name: name})
	}

	return entries
}

func testWalkHasherInterface(t *testing.T, makeHasher hasherFactory) {
	t.Run("hashes every entry in order", func(t *testing.T) {
		entries := makeEntries(t, map[string]string{
			"foo":   "A",
			"bar":   "A",
			"check": "123456789",
			"empty": "",
		})

		reporter := &recordingReporter{}
		hasher := makeHasher(&staticWalker{entries: entries}, crc32.NewIEEE, reporter)
		table, err := hasher.WalkAndHash(context.Background(), "root")
		assert.NoError(t, err)
		assert.Equal(t, ResultTable{
			{Name: "bar", CRC: "d3d99e8b"},
			{Name: "check", CRC: "cbf43926"},
			{Name: "empty", CRC: "0"},
			{Name: "foo", CRC: "d3d99e8b"},
		}, table)
		// Workers may race to report, so only the set of reports is fixed.
		assert.ElementsMatch(t, []Progress{25, 50, 75, 100}, reporter.reported)
	})

	t.Run("same names in different directories are both kept", func(t *testing.T) {
		first := makeEntries(t, map[string]string{"same": "one"})
		second := makeEntries(t, map[string]string{"same": "two"})
		hasher := makeHasher(&staticWalker{entries: append(first, second...)}, crc32.NewIEEE, &recordingReporter{})
		table, err := hasher.WalkAndHash(context.Background(), "root")
		assert.NoError(t, err)
		assert.Len(t, table, 2)
		assertSorted(t, table)
	})

	t.Run("no entries", func(t *testing.T) {
		reporter := &recordingReporter{}
		hasher := makeHasher(&staticWalker{entries: []FileEntry{}}, crc32.NewIEEE, reporter)
		table, err := hasher.WalkAndHash(context.Background(), "root")
		assert.NoError(t, err)
		assert.Empty(t, table)
		assert.Empty(t, reporter.reported)
	})

	t.Run("many entries", func(t *testing.T) {
		files := map[string]string{}
		for i := 0; i < 1000; i++ {
			files[fmt.Sprintf("file-%d", i)] = fmt.Sprintf("contents %d", i)
		}

		hasher := makeHasher(&staticWalker{entries: makeEntries(t, files)}, crc32.NewIEEE, &recordingReporter{})
		table, err := hasher.WalkAndHash(context.Background(), "root")
		assert.NoError(t, err)
		assert.Len(t, table, 1000)
		assertSorted(t, table)
		for _, record := range table {
			assert.Equal(t, formatChecksum(crc32.ChecksumIEEE([]byte(files[record.Name]))), record.CRC)
		}
	})

	t.Run("unreadable file fails the walk", func(t *testing.T) {
		entries := makeEntries(t, map[string]string{"present": "here"})
		entries = append(entries, FileEntry{Path: filepath.Join(t.TempDir(), "vanished"), Name: "vanished"})
		hasher := makeHasher(&staticWalker{entries: entries}, crc32.NewIEEE, &recordingReporter{})
		table, err := hasher.WalkAndHash(context.Background(), "root")
		assert.Error(t, err)
		assert.True(t, xerrors.Is(err, os.ErrNotExist))
		assert.Nil(t, table)
	})

	t.Run("cancelled context stops the walk", func(t *testing.T) {
		entries := makeEntries(t, map[string]string{"a": "a", "b": "b"})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		hasher := makeHasher(&staticWalker{entries: entries}, crc32.NewIEEE, &recordingReporter{})
		_, err := hasher.WalkAndHash(ctx, "root")
		assert.True(t, xerrors.Is(err, context.Canceled))
	})
}

func TestWalkHashers_PassMaxDepth(t *testing.T) {
	t.Run("serial", func(t *testing.T) {
		walker := &staticWalker{}
		hasher := makeSerialWalkHasher(walker, crc32.NewIEEE, SerialWalkHasherMaxDepth(3))
		_, err := hasher.WalkAndHash(context.Background(), "root")
		assert.NoError(t, err)
		assert.Equal(t, 3, walker.lastMaxDepth)
	})

	t.Run("parallel", func(t *testing.T) {
		walker := &staticWalker{}
		hasher := makeParallelWalkHasher(2, walker, crc32.NewIEEE, ParallelWalkHasherMaxDepth(3))
		_, err := hasher.WalkAndHash(context.Background(), "root")
		assert.NoError(t, err)
		assert.Equal(t, 3, walker.lastMaxDepth)
	})

	t.Run("unbounded by default", func(t *testing.T) {
		walker := &staticWalker{}
		hasher := makeParallelWalkHasher(2, walker, crc32.NewIEEE)
		_, err := hasher.WalkAndHash(context.Background(), "root")
		assert.NoError(t, err)
		assert.Equal(t, UnboundedDepth, walker.lastMaxDepth)
	})
}

func TestNewWalkHashers_WalkRealTree(t *testing.T) {
	root := makeTree(t, map[string]string{
		"top.txt":       "123456789",
		"sub/inner.txt": "A",
	})

	hashers := map[string]WalkHasher{
		"serial":   NewSerialWalkHasher(crc32.NewIEEE, SerialWalkHasherMaxDepth(1)),
		"parallel": NewParallelWalkHasher(4, crc32.NewIEEE, ParallelWalkHasherMaxDepth(1)),
	}

	for name, hasher := range hashers {
		t.Run(name, func(t *testing.T) {
			table, err := hasher.WalkAndHash(context.Background(), root)
			assert.NoError(t, err)
			assert.Equal(t, ResultTable{{Name: "top.txt", CRC: "cbf43926"}}, table)
		})
	}
}
