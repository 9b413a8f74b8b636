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
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

// UnboundedDepth can be given as a maximum depth to walk an entire tree. Any negative depth is treated the same way.
const UnboundedDepth = -1

// FileEntry represents a regular file found by a walk.
type FileEntry struct {
	// Path can be used to open the file. It is relative to the walked root if the root was relative.
	Path string
	// Name is the final component of Path.
	Name string
	// Mode is the mode of the file, after following any symbolic link.
	Mode fs.FileMode
}

type pathWalker interface {
	// Walk takes a root path and returns all regular files at most maxDepth levels beneath it.
	// Entries that cannot be read are skipped; Walk never fails.
	Walk(root string, maxDepth int) []FileEntry
}

// fileWalker will only collect regular files
type fileWalker struct {
	logger      *zap.Logger
	followLinks bool
}

// Walk acts as a wrapper for fastwalk.Walk, only collecting regular files within the depth bound.
func (walker fileWalker) Walk(root string, maxDepth int) []FileEntry {
	entries := []FileEntry{}
	entriesLock := sync.Mutex{}
	conf := fastwalk.Config{Follow: walker.followLinks}
	// fastwalk calls this function concurrently, so any shared state must be locked.
	err := fastwalk.Walk(&conf, root, func(path string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			walker.logger.Debug("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			return nil
		}

		mode, err := walker.resolveMode(path, dirEntry)
		if err != nil {
			walker.logger.Debug("skipping entry that could not be stat'd", zap.String("path", path), zap.Error(err))
			return nil
		}

		depth := pathDepth(root, path)
		bounded := maxDepth >= 0
		if mode.IsDir() {
			if bounded && depth >= maxDepth {
				return filepath.SkipDir
			}

			return nil
		} else if !mode.IsRegular() || (bounded && depth > maxDepth) {
			return nil
		}

		entry := FileEntry{
			Path: path,
			Name: filepath.Base(path),
			Mode: mode,
		}

		entriesLock.Lock()
		entries = append(entries, entry)
		entriesLock.Unlock()

		return nil
	})

	// Only a root we can't open at all will get here; that's just an empty tree to us.
	if err != nil {
		walker.logger.Debug("could not walk root", zap.String("root", root), zap.Error(err))
	}

	return entries
}

// resolveMode gets the type of the given entry, looking through symbolic links if the walker follows them.
func (walker fileWalker) resolveMode(path string, dirEntry fs.DirEntry) (fs.FileMode, error) {
	mode := dirEntry.Type()
	if mode&os.ModeSymlink == 0 || !walker.followLinks {
		return mode, nil
	}

	info, err := fastwalk.StatDirEntry(path, dirEntry)
	if err != nil {
		return 0, err
	}

	return info.Mode(), nil
}

// pathDepth gives the number of path components that path has beneath root. root itself is at depth zero.
func pathDepth(root, path string) int {
	relPath, err := filepath.Rel(root, path)
	if err != nil || relPath == "." {
		return 0
	}

	return strings.Count(relPath, string(filepath.Separator)) + 1
}
