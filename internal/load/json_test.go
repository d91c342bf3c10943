package load

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/shared/testutil"
	"salesetl/pkg/contracts/domain"
)

const singleSaleJSON = `[
  {
    "sale_id": "S002",
    "sale_date": "2024-01-16",
    "customer_id": "C002",
    "customer_name": "Maria Santos",
    "product": "Wireless Mouse",
    "quantity": 2,
    "unit_price": 89.90,
    "total_value": 179.80,
    "category": "Accessories",
    "region": "South",
    "customer_state": "RS",
    "customer_segment": "Home Office",
    "day_of_week": "Tuesday",
    "month": "January",
    "year": 2024
  }
]
`

func TestEncodeJSON_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, testutil.ProcessedSales()[1:2]))
	assert.Equal(t, singleSaleJSON, buf.String())
}

func TestEncodeJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestEncodeJSON_KeepsNonASCII(t *testing.T) {
	sale := testutil.ProcessedSales()[0]
	sale.CustomerName = "João Conceição"
	sale.Product = `Café & "Chá" <500g>`

	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, []domain.ProcessedSale{sale}))

	out := buf.String()
	assert.Contains(t, out, `"customer_name": "João Conceição"`)
	assert.Contains(t, out, `"product": "Café & \"Chá\" <500g>"`)
	assert.NotContains(t, out, `\u00`)
}

func TestJSON_RoundTrip(t *testing.T) {
	want := testutil.ProcessedSales()
	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, want))

	got, err := DecodeJSON(&buf)
	require.NoError(t, err)
	assert.True(t, testutil.SalesEqual(want, got))
	assert.Equal(t, "179.80", got[1].TotalValue.StringFixed(2))
}

func TestJSON_RoundTripKeepsCents(t *testing.T) {
	sale := testutil.ProcessedSales()[0]
	sale.UnitPrice = decimal.RequireFromString("0.10")
	sale.TotalValue = decimal.RequireFromString("0.30")
	sale.Quantity = 3

	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, []domain.ProcessedSale{sale}))
	assert.Contains(t, buf.String(), `"unit_price": 0.10`)

	got, err := DecodeJSON(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, sale.Equal(got[0]))
}

func TestDecodeJSON_Errors(t *testing.T) {
	tests := map[string]string{
		"not an array":  `{"sale_id": "S001"}`,
		"unknown field": `[{"sale_id": "S001", "discount": 1}]`,
		"bad date":      `[{"sale_id": "S001", "sale_date": "2024-13-01", "unit_price": 1, "total_value": 1}]`,
		"truncated":     `[{"sale_id": "S001"`,
		"missing total": `[{"sale_id": "S001", "sale_date": "2024-01-15", "unit_price": 1}]`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeJSON(strings.NewReader(content))
			assert.Error(t, err)
		})
	}
}

func TestDecodeJSON_QuantizesMoney(t *testing.T) {
	content := `[{"sale_id": "S001", "sale_date": "2024-01-15", "quantity": 2, "unit_price": 1.005, "total_value": 2.02, "year": 2024}]`

	got, err := DecodeJSON(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1.01", got[0].UnitPrice.StringFixed(2))
	assert.True(t, got[0].UnitPrice.Equal(decimal.RequireFromString("1.01")))
}

func TestJSONLoader_Reproducible(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_sales.json")
	loader := NewJSONLoader(path, nil)
	assert.Equal(t, "json", loader.Name())

	require.NoError(t, loader.Load(context.Background(), testutil.ProcessedSales()))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, loader.Load(context.Background(), testutil.ProcessedSales()))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := DecodeJSON(f)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}
