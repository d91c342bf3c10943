package load

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	apperrors "salesetl/internal/errors"
	"salesetl/internal/money"
	"salesetl/pkg/contracts/domain"
)

// JSONLoader writes processed sales as an indented JSON array.
type JSONLoader struct {
	path   string
	logger *slog.Logger
}

// NewJSONLoader creates a JSON loader for path
func NewJSONLoader(path string, logger *slog.Logger) *JSONLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONLoader{path: path, logger: logger}
}

func (l *JSONLoader) Name() string { return "json" }

// Load replaces the file with the encoded sales
func (l *JSONLoader) Load(ctx context.Context, sales []domain.ProcessedSale) error {
	l.logger.DebugContext(ctx, "Writing JSON file",
		slog.String("file_path", l.path),
		slog.Int("record_count", len(sales)))

	err := writeFile(l.path, func(w io.Writer) error { return EncodeJSON(w, sales) })
	if err != nil {
		return apperrors.NewLoadError("failed to write JSON output", err).WithContext("file", l.path)
	}
	return nil
}

// saleDocument is the JSON shape of a ProcessedSale. Field order follows
// domain.Columns; money is emitted as a number with two decimals.
type saleDocument struct {
	SaleID          string      `json:"sale_id"`
	SaleDate        string      `json:"sale_date"`
	CustomerID      string      `json:"customer_id"`
	CustomerName    string      `json:"customer_name"`
	Product         string      `json:"product"`
	Quantity        int         `json:"quantity"`
	UnitPrice       json.Number `json:"unit_price"`
	TotalValue      json.Number `json:"total_value"`
	Category        string      `json:"category"`
	Region          string      `json:"region"`
	CustomerState   string      `json:"customer_state"`
	CustomerSegment string      `json:"customer_segment"`
	DayOfWeek       string      `json:"day_of_week"`
	Month           string      `json:"month"`
	Year            int         `json:"year"`
}

func newSaleDocument(s domain.ProcessedSale) saleDocument {
	return saleDocument{
		SaleID:          s.SaleID,
		SaleDate:        s.SaleDate.Format(domain.DateLayout),
		CustomerID:      s.CustomerID,
		CustomerName:    s.CustomerName,
		Product:         s.Product,
		Quantity:        s.Quantity,
		UnitPrice:       json.Number(s.UnitPrice.StringFixed(domain.MoneyPlaces)),
		TotalValue:      json.Number(s.TotalValue.StringFixed(domain.MoneyPlaces)),
		Category:        s.Category,
		Region:          s.Region,
		CustomerState:   s.CustomerState,
		CustomerSegment: s.CustomerSegment,
		DayOfWeek:       s.DayOfWeek,
		Month:           s.Month,
		Year:            s.Year,
	}
}

func (d saleDocument) sale() (domain.ProcessedSale, error) {
	date, err := time.Parse(domain.DateLayout, d.SaleDate)
	if err != nil {
		return domain.ProcessedSale{}, fmt.Errorf("invalid sale_date %q: %w", d.SaleDate, err)
	}
	unitPrice, err := money.Parse(d.UnitPrice.String())
	if err != nil {
		return domain.ProcessedSale{}, fmt.Errorf("invalid unit_price: %w", err)
	}
	totalValue, err := money.Parse(d.TotalValue.String())
	if err != nil {
		return domain.ProcessedSale{}, fmt.Errorf("invalid total_value: %w", err)
	}

	return domain.ProcessedSale{
		SaleID:          d.SaleID,
		SaleDate:        date,
		CustomerID:      d.CustomerID,
		CustomerName:    d.CustomerName,
		Product:         d.Product,
		Quantity:        d.Quantity,
		UnitPrice:       unitPrice,
		TotalValue:      totalValue,
		Category:        d.Category,
		Region:          d.Region,
		CustomerState:   d.CustomerState,
		CustomerSegment: d.CustomerSegment,
		DayOfWeek:       d.DayOfWeek,
		Month:           d.Month,
		Year:            d.Year,
	}, nil
}

// EncodeJSON renders sales as a JSON array indented by two spaces.
// Non-ASCII text and HTML characters are written unescaped.
func EncodeJSON(w io.Writer, sales []domain.ProcessedSale) error {
	docs := make([]saleDocument, 0, len(sales))
	for _, s := range sales {
		docs = append(docs, newSaleDocument(s))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("failed to encode sales: %w", err)
	}
	return nil
}

// DecodeJSON reads sales previously written by EncodeJSON.
func DecodeJSON(r io.Reader) ([]domain.ProcessedSale, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var docs []saleDocument
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode sales: %w", err)
	}

	sales := make([]domain.ProcessedSale, 0, len(docs))
	for i, d := range docs {
		sale, err := d.sale()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		sales = append(sales, sale)
	}
	return sales, nil
}
