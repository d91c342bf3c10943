// Package transform turns raw sales into processed sales.
//
// Each raw sale is validated, joined with its customer, given a quantized
// unit price and total, and stamped with weekday, month and year derived
// from its date. A record that fails any step is dropped and counted by
// reason; it never stops the batch. Output order follows input order.
package transform
