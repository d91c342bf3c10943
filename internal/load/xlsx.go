package load

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "salesetl/internal/errors"
	"salesetl/pkg/contracts/domain"
)

// XLSXSheet is the worksheet name used by XLSXLoader.
const XLSXSheet = "processed_sales"

// moneyNumFmt is the built-in "0.00" number format.
const moneyNumFmt = 2

// XLSXLoader writes processed sales to a single-sheet workbook.
type XLSXLoader struct {
	path   string
	logger *slog.Logger
}

// NewXLSXLoader creates an XLSX loader for path
func NewXLSXLoader(path string, logger *slog.Logger) *XLSXLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXLoader{path: path, logger: logger}
}

func (l *XLSXLoader) Name() string { return "xlsx" }

// Load replaces the workbook with the current sales
func (l *XLSXLoader) Load(ctx context.Context, sales []domain.ProcessedSale) error {
	l.logger.DebugContext(ctx, "Writing XLSX file",
		slog.String("file_path", l.path),
		slog.Int("record_count", len(sales)))

	err := writeFile(l.path, func(w io.Writer) error { return EncodeXLSX(w, sales) })
	if err != nil {
		return apperrors.NewLoadError("failed to write XLSX output", err).WithContext("file", l.path)
	}
	return nil
}

// EncodeXLSX renders sales as a workbook. Quantity and year are numeric
// cells; money cells are numeric with two decimals.
func EncodeXLSX(w io.Writer, sales []domain.ProcessedSale) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: moneyNumFmt})
	if err != nil {
		return fmt.Errorf("failed to create money style: %w", err)
	}

	sw, err := f.NewStreamWriter(XLSXSheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(domain.Columns))
	for i, col := range domain.Columns {
		header[i] = col
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, s := range sales {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			s.SaleID,
			s.SaleDate.Format(domain.DateLayout),
			s.CustomerID,
			s.CustomerName,
			s.Product,
			s.Quantity,
			excelize.Cell{StyleID: moneyStyle, Value: s.UnitPrice.InexactFloat64()},
			excelize.Cell{StyleID: moneyStyle, Value: s.TotalValue.InexactFloat64()},
			s.Category,
			s.Region,
			s.CustomerState,
			s.CustomerSegment,
			s.DayOfWeek,
			s.Month,
			s.Year,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
