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
	"hash"

	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// SerialWalkHasher will hash all files one after the other
// Implements WalkHasher
type SerialWalkHasher struct {
	constructor func() hash.Hash32
	walker      pathWalker
	maxDepth    int
	followLinks bool
	reporter    ProgressReporter
	logger      *zap.Logger
}

// SerialWalkHasherOption configures a SerialWalkHasher
type SerialWalkHasherOption func(*SerialWalkHasher)

// SerialWalkHasherProgressReporter sets the ProgressReporter that will be told about hashing progress
func SerialWalkHasherProgressReporter(reporter ProgressReporter) SerialWalkHasherOption {
	return func(hasher *SerialWalkHasher) {
		hasher.reporter = reporter
	}
}

// SerialWalkHasherMaxDepth limits how deep beneath the root files will be hashed. By default, there is no limit.
func SerialWalkHasherMaxDepth(maxDepth int) SerialWalkHasherOption {
	return func(hasher *SerialWalkHasher) {
		hasher.maxDepth = maxDepth
	}
}

// SerialWalkHasherFollowLinks sets whether symbolic links are followed. They are followed by default.
func SerialWalkHasherFollowLinks(followLinks bool) SerialWalkHasherOption {
	return func(hasher *SerialWalkHasher) {
		hasher.followLinks = followLinks
	}
}

// SerialWalkHasherLogger sets the logger used for skipped entries and scan milestones
func SerialWalkHasherLogger(logger *zap.Logger) SerialWalkHasherOption {
	return func(hasher *SerialWalkHasher) {
		hasher.logger = logger
	}
}

// NewSerialWalkHasher makes a new serial hasher with a constructor for a hash algorithm
func NewSerialWalkHasher(constructor func() hash.Hash32, options ...SerialWalkHasherOption) *SerialWalkHasher {
	hasher := makeSerialWalkHasher(nil, constructor, options...)
	hasher.walker = fileWalker{logger: hasher.logger, followLinks: hasher.followLinks}

	return hasher
}

// makeSerialWalkHasher will build a serial hash walker with the given walker. Used mainly as faux-dependency injection
func makeSerialWalkHasher(walker pathWalker, constructor func() hash.Hash32, options ...SerialWalkHasherOption) *SerialWalkHasher {
	hasher := &SerialWalkHasher{
		walker:      walker,
		constructor: constructor,
		maxDepth:    UnboundedDepth,
		followLinks: true,
		reporter:    nilProgressReporter{},
		logger:      zap.NewNop(),
	}

	for _, option := range options {
		option(hasher)
	}

	return hasher
}

// WalkAndHash walks the given path and returns a sorted table of checksums for all the files in the path
func (hasher *SerialWalkHasher) WalkAndHash(ctx context.Context, root string) (ResultTable, error) {
	entries := hasher.walker.Walk(root, hasher.maxDepth)
	hasher.logger.Debug("walk complete", zap.String("root", root), zap.Int("files", len(entries)))

	aggregator := newResultAggregator(len(entries))
	progress := newFileProgress(hasher.reporter, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, xerrors.Errorf("serial hash walk interrupted: %w", err)
		}

		record, err := hashFile(hasher.constructor(), entry)
		if err != nil {
			return nil, xerrors.Errorf("could not perform serial hash walk: %w", err)
		}

		aggregator.Publish(record)
		progress.tick()
	}

	return aggregator.Finalize(), nil
}
