package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical rendering of a sale date in every output.
const DateLayout = "2006-01-02"

// MoneyPlaces is the number of fractional digits carried by money fields.
const MoneyPlaces = 2

// RawSale is one sales row as read from the source file, before validation.
type RawSale struct {
	SaleID     string  `json:"sale_id"`
	SaleDate   string  `json:"sale_date"`
	CustomerID string  `json:"customer_id"`
	Product    string  `json:"product"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Category   string  `json:"category"`
	Region     string  `json:"region"`
}

// Customer is a customer master record keyed by CustomerID.
type Customer struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	City       string `json:"city"`
	State      string `json:"state"`
	Segment    string `json:"segment"`
}

// CustomerIndex maps customer_id to its Customer record.
type CustomerIndex map[string]Customer

// ProcessedSale is a validated sale joined with its customer.
// UnitPrice and TotalValue always carry exactly MoneyPlaces fractional digits.
type ProcessedSale struct {
	SaleID          string
	SaleDate        time.Time
	CustomerID      string
	CustomerName    string
	Product         string
	Quantity        int
	UnitPrice       decimal.Decimal
	TotalValue      decimal.Decimal
	Category        string
	Region          string
	CustomerState   string
	CustomerSegment string
	DayOfWeek       string
	Month           string
	Year            int
}

// Columns is the output column order shared by every loader.
var Columns = []string{
	"sale_id",
	"sale_date",
	"customer_id",
	"customer_name",
	"product",
	"quantity",
	"unit_price",
	"total_value",
	"category",
	"region",
	"customer_state",
	"customer_segment",
	"day_of_week",
	"month",
	"year",
}

// Record renders the sale as a flat row in Columns order.
func (s ProcessedSale) Record() []string {
	return []string{
		s.SaleID,
		s.SaleDate.Format(DateLayout),
		s.CustomerID,
		s.CustomerName,
		s.Product,
		strconv.Itoa(s.Quantity),
		s.UnitPrice.StringFixed(MoneyPlaces),
		s.TotalValue.StringFixed(MoneyPlaces),
		s.Category,
		s.Region,
		s.CustomerState,
		s.CustomerSegment,
		s.DayOfWeek,
		s.Month,
		strconv.Itoa(s.Year),
	}
}

// ParseRecord is the inverse of Record.
func ParseRecord(record []string) (ProcessedSale, error) {
	if len(record) != len(Columns) {
		return ProcessedSale{}, fmt.Errorf("expected %d fields, got %d", len(Columns), len(record))
	}

	date, err := time.Parse(DateLayout, record[1])
	if err != nil {
		return ProcessedSale{}, fmt.Errorf("invalid sale_date %q: %w", record[1], err)
	}
	quantity, err := strconv.Atoi(record[5])
	if err != nil {
		return ProcessedSale{}, fmt.Errorf("invalid quantity %q: %w", record[5], err)
	}
	unitPrice, err := decimal.NewFromString(record[6])
	if err != nil {
		return ProcessedSale{}, fmt.Errorf("invalid unit_price %q: %w", record[6], err)
	}
	totalValue, err := decimal.NewFromString(record[7])
	if err != nil {
		return ProcessedSale{}, fmt.Errorf("invalid total_value %q: %w", record[7], err)
	}
	year, err := strconv.Atoi(record[14])
	if err != nil {
		return ProcessedSale{}, fmt.Errorf("invalid year %q: %w", record[14], err)
	}

	return ProcessedSale{
		SaleID:          record[0],
		SaleDate:        date,
		CustomerID:      record[2],
		CustomerName:    record[3],
		Product:         record[4],
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		TotalValue:      totalValue,
		Category:        record[8],
		Region:          record[9],
		CustomerState:   record[10],
		CustomerSegment: record[11],
		DayOfWeek:       record[12],
		Month:           record[13],
		Year:            year,
	}, nil
}

// Equal reports whether two sales carry the same values. Decimals compare by
// value, so 89.9 and 89.90 are equal.
func (s ProcessedSale) Equal(o ProcessedSale) bool {
	return s.SaleID == o.SaleID &&
		s.SaleDate.Equal(o.SaleDate) &&
		s.CustomerID == o.CustomerID &&
		s.CustomerName == o.CustomerName &&
		s.Product == o.Product &&
		s.Quantity == o.Quantity &&
		s.UnitPrice.Equal(o.UnitPrice) &&
		s.TotalValue.Equal(o.TotalValue) &&
		s.Category == o.Category &&
		s.Region == o.Region &&
		s.CustomerState == o.CustomerState &&
		s.CustomerSegment == o.CustomerSegment &&
		s.DayOfWeek == o.DayOfWeek &&
		s.Month == o.Month &&
		s.Year == o.Year
}
