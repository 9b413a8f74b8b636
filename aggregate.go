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
	"slices"
	"strings"
	"sync"
)

// ResultTable holds one FileRecord per hashed file. Once produced by a WalkHasher, it is sorted by name, then by
// CRC. Both comparisons are bytewise, so CRCs are not compared numerically ("10" comes before "9").
type ResultTable []FileRecord

// resultAggregator collects records from many workers at once.
type resultAggregator struct {
	records     ResultTable
	recordsLock sync.Mutex
}

func newResultAggregator(capacity int) *resultAggregator {
	return &resultAggregator{
		records: make(ResultTable, 0, capacity),
	}
}

// Publish adds a record to the aggregator. Safe to call from any number of goroutines.
func (aggregator *resultAggregator) Publish(record FileRecord) {
	aggregator.recordsLock.Lock()
	defer aggregator.recordsLock.Unlock()

	aggregator.records = append(aggregator.records, record)
}

// Finalize sorts and returns all published records. It must only be called once all publishers are done.
func (aggregator *resultAggregator) Finalize() ResultTable {
	aggregator.recordsLock.Lock()
	defer aggregator.recordsLock.Unlock()

	slices.SortFunc(aggregator.records, compareRecords)

	return aggregator.records
}

// compareRecords orders records by name, then by the CRC string.
func compareRecords(a, b FileRecord) int {
	if res := strings.Compare(a.Name, b.Name); res != 0 {
		return res
	}

	return strings.Compare(a.CRC, b.CRC)
}
