// Package importfile reads the identity file published by the shop system after
// it created the set products, and archives it once processed.
package importfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

// Required header columns.
const (
	ColumnItemID        = "ItemID"
	ColumnMainVariantID = "MainVariantID"
	ColumnJobID         = "FreeText17"
)

var requiredColumns = []string{ColumnItemID, ColumnMainVariantID, ColumnJobID}

// Row is one data line of the import file with trimmed raw values.
type Row struct {
	Line          int
	ItemID        string
	MainVariantID string
	JobID         string
}

// Blank reports whether any required field is empty.
func (r Row) Blank() bool {
	return r.ItemID == "" || r.MainVariantID == "" || r.JobID == ""
}

// ParseCSV reads a ';' separated file with a header line.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImportFile, err)
	}
	return parseRecords(records)
}

// ParseXLSX reads the first sheet of a workbook with a header row.
func ParseXLSX(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImportFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrInvalidImportFile)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImportFile, err)
	}
	return parseRecords(records)
}

// Parse dispatches on the file extension.
func Parse(ext string, data []byte) ([]Row, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "csv":
		return ParseCSV(bytes.NewReader(data))
	case "xlsx":
		return ParseXLSX(data)
	}
	return nil, fmt.Errorf("%w: unsupported extension %q", domain.ErrInvalidImportFile, ext)
}

func parseRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", domain.ErrInvalidImportFile)
	}

	index := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing column %s", domain.ErrInvalidImportFile, strings.Join(missing, ", "))
	}

	field := func(rec []string, col string) string {
		i := index[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	rows := make([]Row, 0, len(records)-1)
	for n, rec := range records[1:] {
		if isEmptyRecord(rec) {
			continue
		}
		rows = append(rows, Row{
			Line:          n + 2,
			ItemID:        field(rec, ColumnItemID),
			MainVariantID: field(rec, ColumnMainVariantID),
			JobID:         field(rec, ColumnJobID),
		})
	}
	return rows, nil
}

func isEmptyRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// IsInvalid reports whether err means the file itself is unusable.
func IsInvalid(err error) bool {
	return errors.Is(err, domain.ErrInvalidImportFile)
}
