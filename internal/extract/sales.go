package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strconv"
	"strings"

	apperrors "salesetl/internal/errors"
	"salesetl/pkg/contracts/domain"
)

// SalesColumns are the header names every sales source must provide.
var SalesColumns = []string{
	"sale_id",
	"sale_date",
	"customer_id",
	"product",
	"quantity",
	"unit_price",
	"category",
	"region",
}

// DefaultChunkSize is used when the extractor is built with a non-positive size.
const DefaultChunkSize = 1000

// SalesExtractor reads raw sales rows from a CSV or XLSX file.
type SalesExtractor struct {
	path      string
	chunkSize int
	logger    *slog.Logger
}

// NewSalesExtractor creates an extractor for the sales file at path
func NewSalesExtractor(path string, chunkSize int, logger *slog.Logger) *SalesExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &SalesExtractor{
		path:      path,
		chunkSize: chunkSize,
		logger:    logger.With(slog.String("source", "sales")),
	}
}

// ExtractSales returns every sale in the source, or an empty slice when the
// file is missing or any row is malformed. The failure is logged, never
// returned; an empty result tells the caller to stop the run.
func (e *SalesExtractor) ExtractSales(ctx context.Context) []domain.RawSale {
	sales, err := e.ReadSales(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "Error extracting sales",
			slog.String("file", e.path),
			slog.String("error", err.Error()))
		return []domain.RawSale{}
	}

	e.logger.InfoContext(ctx, "Extracted sales",
		slog.String("file", e.path),
		slog.Int("count", len(sales)))
	return sales
}

// ReadSales reads the whole source. The first bad row fails the file.
func (e *SalesExtractor) ReadSales(ctx context.Context) ([]domain.RawSale, error) {
	var sales []domain.RawSale
	for chunk, err := range e.Chunks(ctx) {
		if err != nil {
			return nil, err
		}
		sales = append(sales, chunk...)
		e.logger.DebugContext(ctx, "Sales chunk read",
			slog.Int("chunk_size", len(chunk)),
			slog.Int("total", len(sales)))
	}
	return sales, nil
}

// Chunks yields the sales in batches of at most the configured chunk size.
// On error it yields a nil batch with the error and stops.
func (e *SalesExtractor) Chunks(ctx context.Context) iter.Seq2[[]domain.RawSale, error] {
	return func(yield func([]domain.RawSale, error) bool) {
		src, err := openRowSource(e.path)
		if err != nil {
			yield(nil, apperrors.NewExtractionError("failed to open sales source", err))
			return
		}
		defer src.Close()

		header, err := src.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = fmt.Errorf("sales source has no header row")
			}
			yield(nil, apperrors.NewExtractionError("failed to read sales header", err))
			return
		}

		cols, err := newColumnIndex(header, SalesColumns)
		if err != nil {
			yield(nil, apperrors.NewExtractionError("invalid sales header", err))
			return
		}

		chunk := make([]domain.RawSale, 0, e.chunkSize)
		for record := 2; ; record++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			row, err := src.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				yield(nil, apperrors.NewExtractionError("failed to read sales row", err).
					WithContext("record", record))
				return
			}

			sale, err := cols.decodeSale(row)
			if err != nil {
				yield(nil, apperrors.NewExtractionError(fmt.Sprintf("malformed sales record %d", record), err).
					WithContext("record", record))
				return
			}

			chunk = append(chunk, sale)
			if len(chunk) == e.chunkSize {
				if !yield(chunk, nil) {
					return
				}
				chunk = make([]domain.RawSale, 0, e.chunkSize)
			}
		}

		if len(chunk) > 0 {
			yield(chunk, nil)
		}
	}
}

// columnIndex maps header names to their position in a row
type columnIndex map[string]int

func newColumnIndex(header []string, required []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}

	var missing []string
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func (c columnIndex) field(row []string, name string) (string, error) {
	i := c[name]
	if i >= len(row) {
		return "", fmt.Errorf("missing value for %s", name)
	}
	return row[i], nil
}

func (c columnIndex) decodeSale(row []string) (domain.RawSale, error) {
	values := make(map[string]string, len(SalesColumns))
	for _, name := range SalesColumns {
		v, err := c.field(row, name)
		if err != nil {
			return domain.RawSale{}, err
		}
		values[name] = v
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(values["quantity"]))
	if err != nil {
		return domain.RawSale{}, fmt.Errorf("invalid quantity %q: %w", values["quantity"], err)
	}
	unitPrice, err := strconv.ParseFloat(strings.TrimSpace(values["unit_price"]), 64)
	if err != nil {
		return domain.RawSale{}, fmt.Errorf("invalid unit_price %q: %w", values["unit_price"], err)
	}

	return domain.RawSale{
		SaleID:     values["sale_id"],
		SaleDate:   values["sale_date"],
		CustomerID: values["customer_id"],
		Product:    values["product"],
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		Category:   values["category"],
		Region:     values["region"],
	}, nil
}
