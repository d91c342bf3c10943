package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"

	apperrors "salesetl/internal/errors"
	"salesetl/pkg/contracts/domain"
)

// customerRecord is one element of the customers file. Every key must be
// present; only customer_id must also be non-empty.
type customerRecord struct {
	CustomerID *string `json:"customer_id" validate:"required,min=1"`
	Name       *string `json:"name" validate:"required"`
	Email      *string `json:"email" validate:"required"`
	City       *string `json:"city" validate:"required"`
	State      *string `json:"state" validate:"required"`
	Segment    *string `json:"segment" validate:"required"`
}

func (r customerRecord) customer() domain.Customer {
	return domain.Customer{
		CustomerID: *r.CustomerID,
		Name:       *r.Name,
		Email:      *r.Email,
		City:       *r.City,
		State:      *r.State,
		Segment:    *r.Segment,
	}
}

// CustomersExtractor reads the customer master file, a JSON array of records.
type CustomersExtractor struct {
	path     string
	logger   *slog.Logger
	validate *validator.Validate
}

// NewCustomersExtractor creates an extractor for the customers file at path
func NewCustomersExtractor(path string, logger *slog.Logger) *CustomersExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomersExtractor{
		path:     path,
		logger:   logger.With(slog.String("source", "customers")),
		validate: validator.New(),
	}
}

// ExtractCustomers returns the customers keyed by id, or an empty index when
// the file cannot be read or any record is invalid. Failures are logged.
func (e *CustomersExtractor) ExtractCustomers(ctx context.Context) domain.CustomerIndex {
	customers, err := e.ReadCustomers(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "Error extracting customers",
			slog.String("file", e.path),
			slog.String("error", err.Error()))
		return domain.CustomerIndex{}
	}

	e.logger.InfoContext(ctx, "Extracted customers",
		slog.String("file", e.path),
		slog.Int("count", len(customers)))
	return customers
}

// ReadCustomers decodes and indexes the whole file. A later record with an
// already seen customer_id replaces the earlier one.
func (e *CustomersExtractor) ReadCustomers(ctx context.Context) (domain.CustomerIndex, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return nil, apperrors.NewExtractionError("failed to read customers source", err)
	}

	var records []customerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperrors.NewExtractionError("failed to decode customers", err)
	}

	customers := make(domain.CustomerIndex, len(records))
	for i, r := range records {
		if err := e.validate.StructCtx(ctx, r); err != nil {
			return nil, apperrors.NewExtractionError(fmt.Sprintf("invalid customer record %d", i), err).
				WithContext("index", i)
		}
		c := r.customer()
		customers[c.CustomerID] = c
	}

	return customers, nil
}
