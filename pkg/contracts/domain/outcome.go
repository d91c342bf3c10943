package domain

// RejectReason names why a raw sale produced no ProcessedSale.
type RejectReason string

const (
	RejectNone              RejectReason = ""
	RejectMissingSaleID     RejectReason = "missing_sale_id"
	RejectMissingCustomerID RejectReason = "missing_customer_id"
	RejectInvalidQuantity   RejectReason = "invalid_quantity"
	RejectInvalidPrice      RejectReason = "invalid_price"
	RejectUnknownCustomer   RejectReason = "unknown_customer"
	RejectInvalidDate       RejectReason = "invalid_date"
	RejectConversionFailed  RejectReason = "conversion_failed"
	RejectInternalError     RejectReason = "internal_error"
)

// Outcome is the result of processing one raw sale: either an accepted
// ProcessedSale or a reject reason with an optional underlying error.
type Outcome struct {
	SaleID string
	Sale   *ProcessedSale
	Reason RejectReason
	Err    error
}

// Accepted reports whether the outcome carries a processed sale.
func (o Outcome) Accepted() bool {
	return o.Sale != nil
}

// Accept wraps a processed sale in a successful outcome.
func Accept(sale ProcessedSale) Outcome {
	return Outcome{SaleID: sale.SaleID, Sale: &sale}
}

// Reject builds a rejected outcome.
func Reject(saleID string, reason RejectReason, err error) Outcome {
	return Outcome{SaleID: saleID, Reason: reason, Err: err}
}
