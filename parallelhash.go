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
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// ParallelWalkHasher will hash all files concurrently, up to the number of specified workers
type ParallelWalkHasher struct {
	constructor func() hash.Hash32
	walker      pathWalker
	numWorkers  int
	maxDepth    int
	followLinks bool
	reporter    ProgressReporter
	logger      *zap.Logger
}

// ParallelWalkHasherOption configures a ParallelWalkHasher
type ParallelWalkHasherOption func(*ParallelWalkHasher)

// ParallelWalkHasherProgressReporter sets the ProgressReporter that will be told about hashing progress
func ParallelWalkHasherProgressReporter(reporter ProgressReporter) ParallelWalkHasherOption {
	return func(hasher *ParallelWalkHasher) {
		hasher.reporter = reporter
	}
}

// ParallelWalkHasherMaxDepth limits how deep beneath the root files will be hashed. By default, there is no limit.
func ParallelWalkHasherMaxDepth(maxDepth int) ParallelWalkHasherOption {
	return func(hasher *ParallelWalkHasher) {
		hasher.maxDepth = maxDepth
	}
}

// ParallelWalkHasherFollowLinks sets whether symbolic links are followed. They are followed by default.
func ParallelWalkHasherFollowLinks(followLinks bool) ParallelWalkHasherOption {
	return func(hasher *ParallelWalkHasher) {
		hasher.followLinks = followLinks
	}
}

// ParallelWalkHasherLogger sets the logger used for skipped entries and scan milestones
func ParallelWalkHasherLogger(logger *zap.Logger) ParallelWalkHasherOption {
	return func(hasher *ParallelWalkHasher) {
		hasher.logger = logger
	}
}

// NewParallelWalkHasher makes a new hash walker with a constructor for a hash algorithm and a number of workers
func NewParallelWalkHasher(numWorkers int, constructor func() hash.Hash32, options ...ParallelWalkHasherOption) *ParallelWalkHasher {
	hasher := makeParallelWalkHasher(numWorkers, nil, constructor, options...)
	hasher.walker = fileWalker{logger: hasher.logger, followLinks: hasher.followLinks}

	return hasher
}

// makeParallelWalkHasher will build a parallel hash walker with the given walker. Used mainly as faux-dependency
// injection
func makeParallelWalkHasher(numWorkers int, walker pathWalker, constructor func() hash.Hash32, options ...ParallelWalkHasherOption) *ParallelWalkHasher {
	hasher := &ParallelWalkHasher{
		walker:      walker,
		constructor: constructor,
		numWorkers:  numWorkers,
		maxDepth:    UnboundedDepth,
		followLinks: true,
		reporter:    nilProgressReporter{},
		logger:      zap.NewNop(),
	}

	for _, option := range options {
		option(hasher)
	}

	if hasher.numWorkers < 1 {
		hasher.numWorkers = 1
	}

	return hasher
}

// WalkAndHash collects every file beneath root, then hashes them across all workers. If any file cannot be read, the
// whole walk fails and no table is returned.
func (hasher *ParallelWalkHasher) WalkAndHash(ctx context.Context, root string) (ResultTable, error) {
	entries := hasher.walker.Walk(root, hasher.maxDepth)
	hasher.logger.Debug("walk complete", zap.String("root", root), zap.Int("files", len(entries)))

	// Everything is known up front, so the queue can hold all of the work at once.
	workChan := make(chan FileEntry, len(entries))
	for _, entry := range entries {
		workChan <- entry
	}
	close(workChan)

	aggregator := newResultAggregator(len(entries))
	progress := newFileProgress(hasher.reporter, len(entries))
	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < hasher.numWorkers; i++ {
		group.Go(func() error {
			return hasher.doHashWork(groupCtx, workChan, aggregator, progress)
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, xerrors.Errorf("could not perform parallel hash walk: %w", err)
	}

	return aggregator.Finalize(), nil
}

// doHashWork hashes entries from workChan until it is drained, or until ctx is cancelled
func (hasher *ParallelWalkHasher) doHashWork(ctx context.Context, workChan <-chan FileEntry, aggregator *resultAggregator, progress *fileProgress) error {
	for entry := range workChan {
		// Another worker may have failed, so there's no point in going on.
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := hashFile(hasher.constructor(), entry)
		if err != nil {
			return xerrors.Errorf("could not hash file in worker: %w", err)
		}

		aggregator.Publish(record)
		progress.tick()
	}

	return nil
}
