package importfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

func TestParseCSV(t *testing.T) {
	in := "\ufeffName;ItemID;MainVariantID;FreeText17\n" +
		"Oven set; 7001 ;8001;12\n" +
		";;;\n" +
		"Hob set;7002;;13\n" +
		"\"Quoted; name\";7003;8003;14"

	rows, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Row{Line: 2, ItemID: "7001", MainVariantID: "8001", JobID: "12"}, rows[0])
	assert.True(t, rows[1].Blank())
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "14", rows[2].JobID)
}

func TestParseCSV_MissingColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("ItemID;MainVariantID\n1;2\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidImportFile))
	assert.Contains(t, err.Error(), "FreeText17")
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"FreeText17", "ItemID", "MainVariantID"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]string{"5", "100", "200"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := Parse(".xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{Line: 2, ItemID: "100", MainVariantID: "200", JobID: "5"}, rows[0])
}

func TestParse_UnsupportedExtension(t *testing.T) {
	_, err := Parse(".txt", []byte("x"))
	assert.True(t, IsInvalid(err))
}

func TestFileSource_OpenAndArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive")
	csvPath := filepath.Join(dir, "neue_Sets.csv")
	xlsxPath := filepath.Join(dir, "neue_Sets.xlsx")

	src := NewFileSource(archive, xlsxPath, csvPath).(*fileSource)
	src.now = func() time.Time { return time.Date(2025, 11, 14, 9, 5, 7, 0, time.UTC) }

	_, err := src.Open(context.Background())
	assert.True(t, errors.Is(err, domain.ErrImportFileMissing))

	require.NoError(t, os.WriteFile(csvPath, []byte("ItemID;MainVariantID;FreeText17\n1;2;3\n"), 0o644))

	f, err := src.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ".csv", f.Ext)
	require.Len(t, f.Rows, 1)

	dst, err := src.Archive(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(archive, "neue_Sets_2025-11-14_090507.csv"), dst)

	_, err = os.Stat(csvPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(dst)
	assert.NoError(t, err)
}
