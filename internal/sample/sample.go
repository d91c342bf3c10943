// Package sample writes the demo input files used when a run starts
// without inputs: five sales and the four customers they reference.
package sample

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"salesetl/internal/config"
	"salesetl/pkg/contracts/domain"
)

// Sales returns the demo sales rows
func Sales() []domain.RawSale {
	return []domain.RawSale{
		{SaleID: "S001", SaleDate: "2024-01-15", CustomerID: "C001", Product: "Gaming Laptop", Quantity: 1, UnitPrice: 2500.00, Category: "Electronics", Region: "Southeast"},
		{SaleID: "S002", SaleDate: "2024-01-16", CustomerID: "C002", Product: "Wireless Mouse", Quantity: 2, UnitPrice: 89.90, Category: "Accessories", Region: "South"},
		{SaleID: "S003", SaleDate: "2024-01-17", CustomerID: "C003", Product: "Mechanical Keyboard", Quantity: 1, UnitPrice: 299.00, Category: "Accessories", Region: "Northeast"},
		{SaleID: "S004", SaleDate: "2024-01-18", CustomerID: "C001", Product: `24" Monitor`, Quantity: 1, UnitPrice: 899.00, Category: "Electronics", Region: "Southeast"},
		{SaleID: "S005", SaleDate: "2024-01-19", CustomerID: "C004", Product: "Bluetooth Headphones", Quantity: 3, UnitPrice: 199.00, Category: "Audio", Region: "Midwest"},
	}
}

// Customers returns the demo customers in file order
func Customers() []domain.Customer {
	return []domain.Customer{
		{CustomerID: "C001", Name: "John Smith", Email: "john.smith@email.com", City: "São Paulo", State: "SP", Segment: "Corporate"},
		{CustomerID: "C002", Name: "Maria Santos", Email: "maria.santos@email.com", City: "Porto Alegre", State: "RS", Segment: "Home Office"},
		{CustomerID: "C003", Name: "Peter Oliveira", Email: "peter.oliveira@email.com", City: "Salvador", State: "BA", Segment: "Gamer"},
		{CustomerID: "C004", Name: "Anna Costa", Email: "anna.costa@email.com", City: "Brasília", State: "DF", Segment: "Home Office"},
	}
}

// EnsureInputs writes both demo files when either input is missing and
// reports whether it did. A lone existing input is overwritten.
func EnsureInputs(paths *config.Paths, logger *slog.Logger) (bool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if paths.InputsExist() {
		return false, nil
	}

	logger.Warn("Input files not found, creating sample data",
		slog.String("sales_file", paths.SalesFile),
		slog.String("customers_file", paths.CustomersFile))

	if err := os.MkdirAll(paths.InputDir, 0755); err != nil {
		return false, fmt.Errorf("failed to create input directory: %w", err)
	}
	if err := WriteSales(paths.SalesFile); err != nil {
		return false, err
	}
	if err := WriteCustomers(paths.CustomersFile); err != nil {
		return false, err
	}

	logger.Info("Sample data created",
		slog.Int("sales", len(Sales())),
		slog.Int("customers", len(Customers())))
	return true, nil
}

// WriteSales writes the demo sales as CSV with a header row
func WriteSales(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"sale_id", "sale_date", "customer_id", "product", "quantity", "unit_price", "category", "region"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range Sales() {
		row := []string{
			s.SaleID,
			s.SaleDate,
			s.CustomerID,
			s.Product,
			strconv.Itoa(s.Quantity),
			strconv.FormatFloat(s.UnitPrice, 'f', 2, 64),
			s.Category,
			s.Region,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write sale %s: %w", s.SaleID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// WriteCustomers writes the demo customers as an indented JSON array
func WriteCustomers(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Customers()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
