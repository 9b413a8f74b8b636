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

import "sync/atomic"

// Progress repressents the progress of something, on a scale of 0-100
type Progress int

// ProgressReporter will report the progress of a process
type ProgressReporter interface {
	// Progress will report the progress of the process. It may be called from several goroutines at once.
	ReportProgress(progress Progress)
}

// nilProgressReporter will do nothing when it receives a progress
type nilProgressReporter struct{}

// ReportProgress will do absolutely nothing when it receives a progress
func (reporter nilProgressReporter) ReportProgress(progress Progress) {

}

// fileProgress counts completed files out of a known total, and forwards the percentage to a ProgressReporter
// whenever it changes.
type fileProgress struct {
	reporter     ProgressReporter
	total        int64
	numCompleted atomic.Int64
	lastReported atomic.Int64
}

func newFileProgress(reporter ProgressReporter, total int) *fileProgress {
	return &fileProgress{
		reporter: reporter,
		total:    int64(total),
	}
}

// tick marks one more file as complete.
func (progress *fileProgress) tick() {
	numCompleted := progress.numCompleted.Add(1)
	percent := progressPercent(numCompleted, progress.total)
	for {
		last := progress.lastReported.Load()
		if percent <= last {
			return
		}

		// Only the goroutine that advances lastReported gets to report, so each percentage is reported at most once.
		if progress.lastReported.CompareAndSwap(last, percent) {
			progress.reporter.ReportProgress(Progress(percent))
			return
		}
	}
}

// progressPercent gives how far along numCompleted is in total, rounded down. An empty total is always complete.
func progressPercent(numCompleted, total int64) int64 {
	if total <= 0 {
		return 100
	}

	return numCompleted * 100 / total
}
