package transform

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salesetl/internal/errors"
	"salesetl/internal/money"
	"salesetl/internal/shared/testutil"
	"salesetl/pkg/contracts/domain"
)

func validSale() domain.RawSale {
	return domain.RawSale{
		SaleID:     "S001",
		SaleDate:   "2024-01-15",
		CustomerID: "C001",
		Product:    "Gaming Laptop",
		Quantity:   1,
		UnitPrice:  2500.00,
		Category:   "Electronics",
		Region:     "Southeast",
	}
}

func TestTransform_DemoData(t *testing.T) {
	tr := New("", nil)

	processed, result := tr.Transform(context.Background(), testutil.RawSales(), testutil.Customers())

	want := testutil.ProcessedSales()
	require.Len(t, processed, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(processed[i]), "sale %s: got %+v", want[i].SaleID, processed[i])
	}
	assert.Equal(t, 5, result.Input)
	assert.Equal(t, 5, result.Accepted)
	assert.Zero(t, result.RejectedTotal())
}

func TestProcessOne_S001(t *testing.T) {
	outcome := New("", nil).ProcessOne(validSale(), testutil.Customers())
	require.True(t, outcome.Accepted())

	sale := outcome.Sale
	assert.Equal(t, "S001", sale.SaleID)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), sale.SaleDate)
	assert.Equal(t, "Monday", sale.DayOfWeek)
	assert.Equal(t, "January", sale.Month)
	assert.Equal(t, 2024, sale.Year)
	assert.Equal(t, "2500.00", sale.UnitPrice.StringFixed(2))
	assert.Equal(t, "2500.00", sale.TotalValue.StringFixed(2))
	assert.Equal(t, "John Smith", sale.CustomerName)
	assert.Equal(t, "SP", sale.CustomerState)
	assert.Equal(t, "Corporate", sale.CustomerSegment)
	assert.Equal(t, "Gaming Laptop", sale.Product)
	assert.Equal(t, "Electronics", sale.Category)
	assert.Equal(t, "Southeast", sale.Region)
}

func TestProcessOne_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*domain.RawSale)
		reason domain.RejectReason
	}{
		{"negative quantity", func(s *domain.RawSale) { s.Quantity = -1 }, domain.RejectInvalidQuantity},
		{"zero quantity", func(s *domain.RawSale) { s.Quantity = 0 }, domain.RejectInvalidQuantity},
		{"zero price", func(s *domain.RawSale) { s.UnitPrice = 0 }, domain.RejectInvalidPrice},
		{"negative price", func(s *domain.RawSale) { s.UnitPrice = -10.5 }, domain.RejectInvalidPrice},
		{"empty sale id", func(s *domain.RawSale) { s.SaleID = "" }, domain.RejectMissingSaleID},
		{"empty customer id", func(s *domain.RawSale) { s.CustomerID = "" }, domain.RejectMissingCustomerID},
		{"unknown customer", func(s *domain.RawSale) { s.CustomerID = "C999" }, domain.RejectUnknownCustomer},
		{"slash separators", func(s *domain.RawSale) { s.SaleDate = "2024/01/15" }, domain.RejectInvalidDate},
		{"impossible day", func(s *domain.RawSale) { s.SaleDate = "2024-02-30" }, domain.RejectInvalidDate},
		{"impossible month", func(s *domain.RawSale) { s.SaleDate = "2024-13-01" }, domain.RejectInvalidDate},
		{"not a leap year", func(s *domain.RawSale) { s.SaleDate = "2023-02-29" }, domain.RejectInvalidDate},
		{"single digit month", func(s *domain.RawSale) { s.SaleDate = "2024-1-15" }, domain.RejectInvalidDate},
		{"two digit year", func(s *domain.RawSale) { s.SaleDate = "24-01-15" }, domain.RejectInvalidDate},
		{"trailing time", func(s *domain.RawSale) { s.SaleDate = "2024-01-15T10:00:00" }, domain.RejectInvalidDate},
		{"empty date", func(s *domain.RawSale) { s.SaleDate = "" }, domain.RejectInvalidDate},
		{"nan price", func(s *domain.RawSale) { s.UnitPrice = math.NaN() }, domain.RejectConversionFailed},
		{"infinite price", func(s *domain.RawSale) { s.UnitPrice = math.Inf(1) }, domain.RejectConversionFailed},
	}

	tr := New("", nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sale := validSale()
			tt.modify(&sale)

			outcome := tr.ProcessOne(sale, testutil.Customers())
			assert.False(t, outcome.Accepted())
			assert.Nil(t, outcome.Sale)
			assert.Equal(t, tt.reason, outcome.Reason)
			assert.Error(t, outcome.Err)
			assert.Equal(t, sale.SaleID, outcome.SaleID)
		})
	}
}

func TestProcessOne_FieldRejectsAreValidationErrors(t *testing.T) {
	tr := New("", nil)

	sale := validSale()
	sale.Quantity = -1
	outcome := tr.ProcessOne(sale, testutil.Customers())
	require.Equal(t, domain.RejectInvalidQuantity, outcome.Reason)
	assert.True(t, apperrors.IsType(outcome.Err, apperrors.ErrTypeValidation))
	assert.EqualError(t, outcome.Err, "[VALIDATION] invalid_quantity: quantity -1 is not positive")

	sale = validSale()
	sale.CustomerID = "C999"
	outcome = tr.ProcessOne(sale, testutil.Customers())
	require.Equal(t, domain.RejectUnknownCustomer, outcome.Reason)
	assert.False(t, apperrors.IsType(outcome.Err, apperrors.ErrTypeValidation))
}

func TestProcessOne_LeapDay(t *testing.T) {
	sale := validSale()
	sale.SaleDate = "2024-02-29"

	outcome := New("", nil).ProcessOne(sale, testutil.Customers())
	require.True(t, outcome.Accepted())
	assert.Equal(t, "Thursday", outcome.Sale.DayOfWeek)
	assert.Equal(t, "February", outcome.Sale.Month)
}

func TestProcessOne_CustomLayout(t *testing.T) {
	sale := validSale()
	sale.SaleDate = "15/01/2024"

	outcome := New("02/01/2006", nil).ProcessOne(sale, testutil.Customers())
	require.True(t, outcome.Accepted())
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), outcome.Sale.SaleDate)

	sale.SaleDate = "2024-01-15"
	outcome = New("02/01/2006", nil).ProcessOne(sale, testutil.Customers())
	assert.Equal(t, domain.RejectInvalidDate, outcome.Reason)
}

func TestProcessOne_Rounding(t *testing.T) {
	tests := []struct {
		price     float64
		quantity  int
		wantUnit  string
		wantTotal string
	}{
		{0.125, 1, "0.13", "0.13"},
		{0.125, 3, "0.13", "0.39"},
		{2.675, 1, "2.68", "2.68"},
		{1.005, 2, "1.01", "2.02"},
		{10.555, 7, "10.56", "73.92"},
		{89.90, 2, "89.90", "179.80"},
		{0.1, 3, "0.10", "0.30"},
		{19.994, 1, "19.99", "19.99"},
		{0.004, 5, "0.00", "0.00"},
	}

	tr := New("", nil)
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%vx%d", tt.price, tt.quantity), func(t *testing.T) {
			sale := validSale()
			sale.UnitPrice = tt.price
			sale.Quantity = tt.quantity

			outcome := tr.ProcessOne(sale, testutil.Customers())
			require.True(t, outcome.Accepted())
			assert.Equal(t, tt.wantUnit, outcome.Sale.UnitPrice.StringFixed(2))
			assert.Equal(t, tt.wantTotal, outcome.Sale.TotalValue.StringFixed(2))
		})
	}
}

func TestTransform_TotalValueIdentity(t *testing.T) {
	customers := testutil.Customers()
	var sales []domain.RawSale
	for i := 1; i <= 500; i++ {
		sale := validSale()
		sale.SaleID = fmt.Sprintf("S%04d", i)
		sale.UnitPrice = float64(i)*1.337 + 0.005
		sale.Quantity = i%9 + 1
		sales = append(sales, sale)
	}

	processed, result := New("", nil).Transform(context.Background(), sales, customers)
	require.Equal(t, len(sales), result.Accepted)

	for _, s := range processed {
		assert.True(t, s.UnitPrice.Equal(s.UnitPrice.Round(2)), "unit price %s has more than 2 places", s.UnitPrice)
		want := s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity))).Round(2)
		assert.True(t, want.Equal(s.TotalValue), "sale %s: %s != %s", s.SaleID, s.TotalValue, want)
		assert.True(t, money.Mul(s.UnitPrice, s.Quantity).Equal(s.TotalValue))
	}
}

func TestTransform_PreservesOrderAndDropsRejects(t *testing.T) {
	sales := testutil.RawSales()
	bad := validSale()
	bad.SaleID = "S900"
	bad.Quantity = -1
	unknown := validSale()
	unknown.SaleID = "S901"
	unknown.CustomerID = "C999"

	input := []domain.RawSale{sales[0], bad, sales[1], unknown, sales[2], sales[3], sales[4]}
	logger, logs := testutil.NewTestLogger(t)

	processed, result := New("", logger).Transform(context.Background(), input, testutil.Customers())

	ids := make([]string, 0, len(processed))
	for _, s := range processed {
		ids = append(ids, s.SaleID)
	}
	assert.Equal(t, []string{"S001", "S002", "S003", "S004", "S005"}, ids)
	assert.Equal(t, 7, result.Input)
	assert.Equal(t, 5, result.Accepted)
	assert.Equal(t, 2, result.RejectedTotal())
	assert.Equal(t, 1, result.Rejected[domain.RejectInvalidQuantity])
	assert.Equal(t, 1, result.Rejected[domain.RejectUnknownCustomer])

	warnings := logs.GetRecordsByLevel(slog.LevelWarn)
	require.Len(t, warnings, 2)
	assert.Equal(t, "S900", warnings[0].Attrs["sale_id"])
	assert.Equal(t, "invalid_quantity", warnings[0].Attrs["reason"])
	assert.Equal(t, "S901", warnings[1].Attrs["sale_id"])
	assert.Equal(t, "unknown_customer", warnings[1].Attrs["reason"])
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Processed sales")
}

func TestTransform_Idempotent(t *testing.T) {
	tr := New("", nil)
	input := testutil.RawSales()
	before := testutil.RawSales()

	first, _ := tr.Transform(context.Background(), input, testutil.Customers())
	second, _ := tr.Transform(context.Background(), input, testutil.Customers())

	assert.True(t, testutil.SalesEqual(first, second))
	assert.Equal(t, before, input)
}

func TestTransform_EmptyInput(t *testing.T) {
	processed, result := New("", nil).Transform(context.Background(), nil, testutil.Customers())
	assert.NotNil(t, processed)
	assert.Empty(t, processed)
	assert.Zero(t, result.Input)

	processed, result = New("", nil).Transform(context.Background(), testutil.RawSales(), domain.CustomerIndex{})
	assert.Empty(t, processed)
	assert.Equal(t, 5, result.Rejected[domain.RejectUnknownCustomer])
}

func TestTransform_RecoversPanics(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	tr := New("", logger)
	inner := tr.process
	tr.process = func(sale domain.RawSale, customers domain.CustomerIndex) domain.Outcome {
		if sale.SaleID == "S003" {
			panic("unexpected state")
		}
		return inner(sale, customers)
	}

	processed, result := tr.Transform(context.Background(), testutil.RawSales(), testutil.Customers())

	assert.Len(t, processed, 4)
	assert.Equal(t, 1, result.Rejected[domain.RejectInternalError])
	assert.True(t, logs.ContainsAttr("sale_id", "S003"))
	assert.True(t, logs.ContainsAttr("reason", "internal_error"))

	outcome := tr.ProcessOne(testutil.RawSales()[2], testutil.Customers())
	assert.Equal(t, domain.RejectInternalError, outcome.Reason)
	assert.ErrorContains(t, outcome.Err, "unexpected state")
}
