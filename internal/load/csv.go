package load

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	apperrors "salesetl/internal/errors"
	"salesetl/pkg/contracts/domain"
)

// CSVLoader writes processed sales to a CSV file, replacing its content.
type CSVLoader struct {
	path   string
	logger *slog.Logger
}

// NewCSVLoader creates a CSV loader for path
func NewCSVLoader(path string, logger *slog.Logger) *CSVLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVLoader{path: path, logger: logger}
}

func (l *CSVLoader) Name() string { return "csv" }

// Load writes the header and one row per sale
func (l *CSVLoader) Load(ctx context.Context, sales []domain.ProcessedSale) error {
	l.logger.DebugContext(ctx, "Writing CSV file",
		slog.String("file_path", l.path),
		slog.Int("record_count", len(sales)))

	err := writeFile(l.path, func(w io.Writer) error { return EncodeCSV(w, sales) })
	if err != nil {
		return apperrors.NewLoadError("failed to write CSV output", err).WithContext("file", l.path)
	}
	return nil
}

// EncodeCSV renders sales as CSV with a header row.
func EncodeCSV(w io.Writer, sales []domain.ProcessedSale) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(domain.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, sale := range sales {
		if err := writer.Write(sale.Record()); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// DecodeCSV reads sales previously written by EncodeCSV.
func DecodeCSV(r io.Reader) ([]domain.ProcessedSale, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(domain.Columns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if !slices.Equal(header, domain.Columns) {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	sales := []domain.ProcessedSale{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return sales, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		sale, err := domain.ParseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		sales = append(sales, sale)
	}
}
