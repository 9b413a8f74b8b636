package main

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
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ollien/crcdir"
)

const (
	progressBarLength = 20
	progressBarFormat = "[%s] %d%%"
)

// progressBarReporter implements crcdir.ProgressReporter and will draw a progress bar on its writer
type progressBarReporter struct {
	out io.Writer
	// Workers report concurrently, so writes must not interleave
	outLock sync.Mutex
}

func newProgressBarReporter(out io.Writer) *progressBarReporter {
	return &progressBarReporter{out: out}
}

// ReportProgress will redraw the progress bar
func (reporter *progressBarReporter) ReportProgress(progress crcdir.Progress) {
	reporter.outLock.Lock()
	defer reporter.outLock.Unlock()

	fmt.Fprintf(reporter.out, "\r%s", renderProgressBar(progress))
}

// finish draws a full bar and moves past it
func (reporter *progressBarReporter) finish() {
	reporter.outLock.Lock()
	defer reporter.outLock.Unlock()

	fmt.Fprintf(reporter.out, "\r%s\n", renderProgressBar(100))
}

// abort leaves the bar where it stopped, so that error output starts on a fresh line
func (reporter *progressBarReporter) abort() {
	reporter.outLock.Lock()
	defer reporter.outLock.Unlock()

	fmt.Fprint(reporter.out, "\n")
}

// renderProgressBar renders a bar like "[=====               ] 25%"
func renderProgressBar(progress crcdir.Progress) string {
	lastEqualsSignPosition := int(progressBarLength * float64(progress) / 100)
	if lastEqualsSignPosition > progressBarLength {
		lastEqualsSignPosition = progressBarLength
	} else if lastEqualsSignPosition < 0 {
		lastEqualsSignPosition = 0
	}

	equalsSigns := strings.Repeat("=", lastEqualsSignPosition) + strings.Repeat(" ", progressBarLength-lastEqualsSignPosition)

	return fmt.Sprintf(progressBarFormat, equalsSigns, progress)
}
