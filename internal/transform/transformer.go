package transform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "salesetl/internal/errors"
	"salesetl/internal/money"
	"salesetl/pkg/contracts/domain"
)

// Result summarizes one Transform call.
type Result struct {
	Input    int
	Accepted int
	Rejected map[domain.RejectReason]int
}

// RejectedTotal returns the number of dropped records across all reasons.
func (r Result) RejectedTotal() int {
	total := 0
	for _, n := range r.Rejected {
		total += n
	}
	return total
}

// Transformer validates and enriches raw sales.
type Transformer struct {
	dateLayout string
	logger     *slog.Logger

	// process is the per-record step; ProcessOne guards it with recover.
	process func(domain.RawSale, domain.CustomerIndex) domain.Outcome
}

// New creates a Transformer parsing sale dates with dateLayout
// (domain.DateLayout when empty).
func New(dateLayout string, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	if dateLayout == "" {
		dateLayout = domain.DateLayout
	}
	t := &Transformer{
		dateLayout: dateLayout,
		logger:     logger.With(slog.String("stage", "transform")),
	}
	t.process = t.processOne
	return t
}

// Transform processes every sale and returns the accepted ones in input order.
func (t *Transformer) Transform(ctx context.Context, sales []domain.RawSale, customers domain.CustomerIndex) ([]domain.ProcessedSale, Result) {
	result := Result{
		Input:    len(sales),
		Rejected: make(map[domain.RejectReason]int),
	}
	processed := make([]domain.ProcessedSale, 0, len(sales))

	for _, sale := range sales {
		outcome := t.ProcessOne(sale, customers)
		if outcome.Accepted() {
			processed = append(processed, *outcome.Sale)
			continue
		}

		result.Rejected[outcome.Reason]++
		attrs := []any{
			slog.String("sale_id", sale.SaleID),
			slog.String("reason", string(outcome.Reason)),
		}
		if outcome.Err != nil {
			attrs = append(attrs, slog.String("error", outcome.Err.Error()))
		}
		t.logger.WarnContext(ctx, "Rejected sale", attrs...)
	}
	result.Accepted = len(processed)

	t.logger.InfoContext(ctx, "Processed sales",
		slog.Int("input", result.Input),
		slog.Int("accepted", result.Accepted),
		slog.Int("rejected", result.RejectedTotal()))

	return processed, result
}

// ProcessOne turns a single raw sale into an Outcome. A panic while
// processing is reported as an internal_error reject.
func (t *Transformer) ProcessOne(sale domain.RawSale, customers domain.CustomerIndex) (outcome domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = domain.Reject(sale.SaleID, domain.RejectInternalError, fmt.Errorf("panic: %v", r))
		}
	}()
	return t.process(sale, customers)
}

func (t *Transformer) processOne(sale domain.RawSale, customers domain.CustomerIndex) domain.Outcome {
	if reason, err := validate(sale); err != nil {
		return domain.Reject(sale.SaleID, reason,
			apperrors.NewValidationError(string(reason), err).WithContext("sale_id", sale.SaleID))
	}

	customer, ok := customers[sale.CustomerID]
	if !ok {
		return domain.Reject(sale.SaleID, domain.RejectUnknownCustomer,
			fmt.Errorf("customer %q not found", sale.CustomerID))
	}

	date, err := time.Parse(t.dateLayout, sale.SaleDate)
	if err != nil {
		return domain.Reject(sale.SaleID, domain.RejectInvalidDate, err)
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	unitPrice, err := money.FromFloat(sale.UnitPrice)
	if err != nil {
		return domain.Reject(sale.SaleID, domain.RejectConversionFailed, err)
	}

	return domain.Accept(domain.ProcessedSale{
		SaleID:          sale.SaleID,
		SaleDate:        date,
		CustomerID:      sale.CustomerID,
		CustomerName:    customer.Name,
		Product:         sale.Product,
		Quantity:        sale.Quantity,
		UnitPrice:       unitPrice,
		TotalValue:      money.Mul(unitPrice, sale.Quantity),
		Category:        sale.Category,
		Region:          sale.Region,
		CustomerState:   customer.State,
		CustomerSegment: customer.Segment,
		DayOfWeek:       date.Weekday().String(),
		Month:           date.Month().String(),
		Year:            date.Year(),
	})
}

var (
	errMissingSaleID     = errors.New("sale_id is empty")
	errMissingCustomerID = errors.New("customer_id is empty")
)

func validate(sale domain.RawSale) (domain.RejectReason, error) {
	switch {
	case sale.SaleID == "":
		return domain.RejectMissingSaleID, errMissingSaleID
	case sale.CustomerID == "":
		return domain.RejectMissingCustomerID, errMissingCustomerID
	case sale.Quantity <= 0:
		return domain.RejectInvalidQuantity, fmt.Errorf("quantity %d is not positive", sale.Quantity)
	case sale.UnitPrice <= 0:
		return domain.RejectInvalidPrice, fmt.Errorf("unit_price %v is not positive", sale.UnitPrice)
	}
	return domain.RejectNone, nil
}
