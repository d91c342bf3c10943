package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// rowSource yields the rows of a tabular file, header first. Read returns
// io.EOF after the last row.
type rowSource interface {
	Read() ([]string, error)
	Close() error
}

// openRowSource picks a reader from the file extension: .xlsx files go through
// excelize, everything else is treated as comma separated text.
func openRowSource(path string) (rowSource, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return openXLSXSource(path)
	}
	return openCSVSource(path)
}

type csvSource struct {
	file   *os.File
	reader *csv.Reader
}

func openCSVSource(path string) (*csvSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	reader := csv.NewReader(stripBOM(file))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	return &csvSource{file: file, reader: reader}, nil
}

func (s *csvSource) Read() ([]string, error) { return s.reader.Read() }

func (s *csvSource) Close() error { return s.file.Close() }

// SalesSheet is the sheet read from an .xlsx sales source when present;
// otherwise the first sheet is used.
const SalesSheet = "sales"

type xlsxSource struct {
	file  *excelize.File
	rows  *excelize.Rows
	width int
}

func openXLSXSource(path string) (*xlsxSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	sheet := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(strings.TrimSpace(name), SalesSheet) {
			sheet = name
			break
		}
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return &xlsxSource{file: f, rows: rows}, nil
}

// Read returns the next non-empty row. Trailing empty cells are dropped by
// excelize, so rows are padded back to the header width.
func (s *xlsxSource) Read() ([]string, error) {
	for s.rows.Next() {
		cols, err := s.rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
		if isBlank(cols) {
			continue
		}
		if s.width == 0 {
			s.width = len(cols)
		}
		for len(cols) < s.width {
			cols = append(cols, "")
		}
		return cols, nil
	}
	if err := s.rows.Error(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (s *xlsxSource) Close() error {
	s.rows.Close()
	return s.file.Close()
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// stripBOM drops a leading UTF-8 byte order mark, which spreadsheet tools
// like to prepend to exported CSV files.
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, len(utf8BOM))
	n, err := io.ReadFull(r, buf)
	if err != nil || !bytes.Equal(buf[:n], utf8BOM) {
		return io.MultiReader(bytes.NewReader(buf[:n]), r)
	}
	return r
}
