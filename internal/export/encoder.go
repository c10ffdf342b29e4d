// Package export renders run results as CSV or XLSX tables and stores them in
// a directory or an object storage bucket.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Format selects the file format of an export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Table is one export file: a header row followed by data rows.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Encoder turns a table into file content.
type Encoder interface {
	Format() Format
	ContentType() string
	Encode(t *Table) ([]byte, error)
}

// NewEncoder returns the encoder for format.
func NewEncoder(format Format) (Encoder, error) {
	switch format {
	case FormatCSV, "":
		return NewCSVEncoder(';'), nil
	case FormatXLSX:
		return &xlsxEncoder{}, nil
	}
	return nil, fmt.Errorf("export: unsupported format %q", format)
}

type csvEncoder struct {
	comma rune
}

// NewCSVEncoder creates a CSV encoder with the given field separator.
func NewCSVEncoder(comma rune) Encoder {
	return &csvEncoder{comma: comma}
}

func (e *csvEncoder) Format() Format      { return FormatCSV }
func (e *csvEncoder) ContentType() string { return "text/csv; charset=utf-8" }

func (e *csvEncoder) Encode(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = e.comma

	if err := w.Write(t.Header); err != nil {
		return nil, fmt.Errorf("export: write csv header: %w", err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("export: write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

const xlsxSheet = "Sheet1"

type xlsxEncoder struct{}

func (e *xlsxEncoder) Format() Format { return FormatXLSX }
func (e *xlsxEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Encode writes every cell as a string so ids and comma prices keep their text form.
func (e *xlsxEncoder) Encode(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	write := func(rowIdx int, row []string) error {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		return f.SetSheetRow(xlsxSheet, cell, &cells)
	}

	if err := write(1, t.Header); err != nil {
		return nil, fmt.Errorf("export: write xlsx header: %w", err)
	}
	for i, row := range t.Rows {
		if err := write(i+2, row); err != nil {
			return nil, fmt.Errorf("export: write xlsx row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
