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
	"encoding/csv"
	"io"
	"os"

	"golang.org/x/xerrors"
)

// DefaultOutputPath is where the table is written unless told otherwise.
const DefaultOutputPath = "crc-dir.csv"

var tableHeader = []string{"Name", "CRC"}

// WriteTable writes the table as CSV to w, header first, rows in table order.
func WriteTable(w io.Writer, table ResultTable) error {
	csvWriter := csv.NewWriter(w)
	err := csvWriter.Write(tableHeader)
	if err != nil {
		return xerrors.Errorf("could not write table header: %w", err)
	}

	for _, record := range table {
		err = csvWriter.Write([]string{record.Name, record.CRC})
		if err != nil {
			return xerrors.Errorf("could not write record for (%s): %w", record.Name, err)
		}
	}

	csvWriter.Flush()
	err = csvWriter.Error()
	if err != nil {
		return xerrors.Errorf("could not flush table: %w", err)
	}

	return nil
}

// WriteTableFile creates (or truncates) the file at path and writes the table to it. A failure partway through may
// leave a partial file behind.
func WriteTableFile(path string, table ResultTable) (retErr error) {
	outFile, err := os.Create(path)
	if err != nil {
		return xerrors.Errorf("could not create output file (%s): %w", path, err)
	}

	defer func() {
		err := outFile.Close()
		if err != nil && retErr == nil {
			retErr = xerrors.Errorf("could not close output file (%s): %w", path, err)
		}
	}()

	err = WriteTable(outFile, table)
	if err != nil {
		return xerrors.Errorf("could not write output file (%s): %w", path, err)
	}

	return nil
}
