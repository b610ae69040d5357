// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package mcsv

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Writer writes CSV files with a fixed header, using "\n" line endings.
type Writer struct {
	w      *csv.Writer
	header []string
}

func NewWriter(w io.Writer, header ...string) (*Writer, error) {
	o := &Writer{w: csv.NewWriter(w), header: header}
	if err := o.w.Write(header); err != nil {
		return nil, err
	}
	return o, nil
}

func (w *Writer) Write(values ...string) error {
	if len(values) != len(w.header) {
		return fmt.Errorf("mcsv: got %d values for %d columns", len(values), len(w.header))
	}
	return w.w.Write(values)
}

func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}
