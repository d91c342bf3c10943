package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"salesetl/pkg/contracts/domain"
)

// Customers returns the four demo customers keyed by id
func Customers() domain.CustomerIndex {
	return domain.CustomerIndex{
		"C001": {CustomerID: "C001", Name: "John Smith", Email: "john.smith@email.com", City: "São Paulo", State: "SP", Segment: "Corporate"},
		"C002": {CustomerID: "C002", Name: "Maria Santos", Email: "maria.santos@email.com", City: "Porto Alegre", State: "RS", Segment: "Home Office"},
		"C003": {CustomerID: "C003", Name: "Peter Oliveira", Email: "peter.oliveira@email.com", City: "Salvador", State: "BA", Segment: "Gamer"},
		"C004": {CustomerID: "C004", Name: "Anna Costa", Email: "anna.costa@email.com", City: "Brasília", State: "DF", Segment: "Home Office"},
	}
}

// RawSales returns the five demo sales rows
func RawSales() []domain.RawSale {
	return []domain.RawSale{
		{SaleID: "S001", SaleDate: "2024-01-15", CustomerID: "C001", Product: "Gaming Laptop", Quantity: 1, UnitPrice: 2500.00, Category: "Electronics", Region: "Southeast"},
		{SaleID: "S002", SaleDate: "2024-01-16", CustomerID: "C002", Product: "Wireless Mouse", Quantity: 2, UnitPrice: 89.90, Category: "Accessories", Region: "South"},
		{SaleID: "S003", SaleDate: "2024-01-17", CustomerID: "C003", Product: "Mechanical Keyboard", Quantity: 1, UnitPrice: 299.00, Category: "Accessories", Region: "Northeast"},
		{SaleID: "S004", SaleDate: "2024-01-18", CustomerID: "C001", Product: `24" Monitor`, Quantity: 1, UnitPrice: 899.00, Category: "Electronics", Region: "Southeast"},
		{SaleID: "S005", SaleDate: "2024-01-19", CustomerID: "C004", Product: "Bluetooth Headphones", Quantity: 3, UnitPrice: 199.00, Category: "Audio", Region: "Midwest"},
	}
}

// ProcessedSales returns the expected transform output for RawSales and Customers
func ProcessedSales() []domain.ProcessedSale {
	day := func(d int) time.Time { return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC) }
	money := decimal.RequireFromString

	return []domain.ProcessedSale{
		{SaleID: "S001", SaleDate: day(15), CustomerID: "C001", CustomerName: "John Smith", Product: "Gaming Laptop", Quantity: 1, UnitPrice: money("2500.00"), TotalValue: money("2500.00"), Category: "Electronics", Region: "Southeast", CustomerState: "SP", CustomerSegment: "Corporate", DayOfWeek: "Monday", Month: "January", Year: 2024},
		{SaleID: "S002", SaleDate: day(16), CustomerID: "C002", CustomerName: "Maria Santos", Product: "Wireless Mouse", Quantity: 2, UnitPrice: money("89.90"), TotalValue: money("179.80"), Category: "Accessories", Region: "South", CustomerState: "RS", CustomerSegment: "Home Office", DayOfWeek: "Tuesday", Month: "January", Year: 2024},
		{SaleID: "S003", SaleDate: day(17), CustomerID: "C003", CustomerName: "Peter Oliveira", Product: "Mechanical Keyboard", Quantity: 1, UnitPrice: money("299.00"), TotalValue: money("299.00"), Category: "Accessories", Region: "Northeast", CustomerState: "BA", CustomerSegment: "Gamer", DayOfWeek: "Wednesday", Month: "January", Year: 2024},
		{SaleID: "S004", SaleDate: day(18), CustomerID: "C001", CustomerName: "John Smith", Product: `24" Monitor`, Quantity: 1, UnitPrice: money("899.00"), TotalValue: money("899.00"), Category: "Electronics", Region: "Southeast", CustomerState: "SP", CustomerSegment: "Corporate", DayOfWeek: "Thursday", Month: "January", Year: 2024},
		{SaleID: "S005", SaleDate: day(19), CustomerID: "C004", CustomerName: "Anna Costa", Product: "Bluetooth Headphones", Quantity: 3, UnitPrice: money("199.00"), TotalValue: money("597.00"), Category: "Audio", Region: "Midwest", CustomerState: "DF", CustomerSegment: "Home Office", DayOfWeek: "Friday", Month: "January", Year: 2024},
	}
}

// SalesEqual reports whether two sale lists match value by value
func SalesEqual(a, b []domain.ProcessedSale) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
