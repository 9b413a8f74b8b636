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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// recordingReporter will hold every progress that has been reported to it
type recordingReporter struct {
	reported     []Progress
	reportedLock sync.Mutex
}

func (reporter *recordingReporter) ReportProgress(progress Progress) {
	reporter.reportedLock.Lock()
	defer reporter.reportedLock.Unlock()

	reporter.reported = append(reporter.reported, progress)
}

func TestFileProgress(t *testing.T) {
	t.Run("reports each percentage once", func(t *testing.T) {
		reporter := &recordingReporter{}
		progress := newFileProgress(reporter, 4)
		for i := 0; i < 4; i++ {
			progress.tick()
		}

		assert.Equal(t, []Progress{25, 50, 75, 100}, reporter.reported)
	})

	t.Run("does not repeat unchanged percentages", func(t *testing.T) {
		reporter := &recordingReporter{}
		progress := newFileProgress(reporter, 1000)
		for i := 0; i < 1000; i++ {
			progress.tick()
		}

		assert.Len(t, reporter.reported, 100)
		assert.Equal(t, Progress(100), reporter.reported[len(reporter.reported)-1])
	})

	t.Run("concurrent ticks reach 100 exactly once", func(t *testing.T) {
		reporter := &recordingReporter{}
		progress := newFileProgress(reporter, 500)
		waitGroup := sync.WaitGroup{}
		for i := 0; i < 10; i++ {
			waitGroup.Add(1)
			go func() {
				defer waitGroup.Done()
				for j := 0; j < 50; j++ {
					progress.tick()
				}
			}()
		}

		waitGroup.Wait()
		numComplete := 0
		for _, reported := range reporter.reported {
			if reported == 100 {
				numComplete++
			}
		}

		assert.Equal(t, 1, numComplete)
		assert.LessOrEqual(t, len(reporter.reported), 100)
	})
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, int64(100), progressPercent(0, 0))
	assert.Equal(t, int64(0), progressPercent(0, 3))
	assert.Equal(t, int64(33), progressPercent(1, 3))
	assert.Equal(t, int64(66), progressPercent(2, 3))
	assert.Equal(t, int64(100), progressPercent(3, 3))
}
