// Package money converts and rounds currency amounts using base-10 decimals.
//
// Every amount that leaves the transform stage goes through Quantize with
// DefaultRounding, so two runs over the same input always produce the same
// cents regardless of how the source price was represented.
package money

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for money values.
const Places int32 = 2

// RoundingMode selects how a value exactly halfway between two
// representable amounts is rounded.
type RoundingMode int

const (
	// RoundHalfUp rounds ties away from zero: 0.125 -> 0.13, -0.125 -> -0.13.
	RoundHalfUp RoundingMode = iota
	// RoundHalfEven rounds ties to the even neighbour: 0.125 -> 0.12.
	RoundHalfEven
	// RoundDown truncates toward zero.
	RoundDown
)

// DefaultRounding is the accounting rounding applied to all sale amounts.
const DefaultRounding = RoundHalfUp

func (m RoundingMode) String() string {
	switch m {
	case RoundHalfUp:
		return "half_up"
	case RoundHalfEven:
		return "half_even"
	case RoundDown:
		return "down"
	default:
		return fmt.Sprintf("RoundingMode(%d)", int(m))
	}
}

// Quantize rounds d to Places fractional digits using mode. Use
// StringFixed(Places) to render the result with trailing zeros.
func Quantize(d decimal.Decimal, mode RoundingMode) decimal.Decimal {
	switch mode {
	case RoundHalfEven:
		return d.RoundBank(Places)
	case RoundDown:
		return d.Truncate(Places)
	default:
		// decimal.Round breaks ties away from zero.
		return d.Round(Places)
	}
}

// FromFloat converts a binary float to a quantized decimal. The float is first
// taken at its shortest round-tripping decimal form, so 2.675 is treated as
// 2.675 and rounds to 2.68.
func FromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, fmt.Errorf("cannot convert %v to a decimal amount", f)
	}
	return Quantize(decimal.NewFromFloat(f), DefaultRounding), nil
}

// Parse reads a decimal string and quantizes it.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Quantize(d, DefaultRounding), nil
}

// Mul multiplies a quantized unit amount by a quantity and quantizes the product.
func Mul(unit decimal.Decimal, quantity int) decimal.Decimal {
	return Quantize(unit.Mul(decimal.NewFromInt(int64(quantity))), DefaultRounding)
}
