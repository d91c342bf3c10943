package money

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantize_HalfUpBoundaries(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.125", "0.13"},
		{"0.135", "0.14"},
		{"0.124", "0.12"},
		{"0.1249999", "0.12"},
		{"0.1250001", "0.13"},
		{"2.675", "2.68"},
		{"1.005", "1.01"},
		{"-0.125", "-0.13"},
		{"-0.124", "-0.12"},
		{"89.9", "89.90"},
		{"2500", "2500.00"},
		{"0.005", "0.01"},
		{"0.004", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Quantize(decimal.RequireFromString(tt.in), DefaultRounding)
			assert.Equal(t, tt.want, got.StringFixed(Places))
		})
	}
}

func TestQuantize_OtherModes(t *testing.T) {
	d := decimal.RequireFromString("0.125")

	assert.Equal(t, "0.12", Quantize(d, RoundHalfEven).StringFixed(Places))
	assert.Equal(t, "0.12", Quantize(d, RoundDown).StringFixed(Places))
	assert.Equal(t, "0.14", Quantize(decimal.RequireFromString("0.135"), RoundHalfEven).StringFixed(Places))
	assert.Equal(t, "-0.12", Quantize(decimal.RequireFromString("-0.129"), RoundDown).StringFixed(Places))
}

func TestDefaultRoundingIsHalfUp(t *testing.T) {
	assert.Equal(t, RoundHalfUp, DefaultRounding)
	assert.Equal(t, "half_up", DefaultRounding.String())
	assert.Equal(t, "RoundingMode(9)", RoundingMode(9).String())
}

func TestFromFloat(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"whole", 2500.00, "2500.00"},
		{"one decimal", 89.90, "89.90"},
		{"binary tie", 0.125, "0.13"},
		{"shortest repr tie", 2.675, "2.68"},
		{"shortest repr tie small", 1.005, "1.01"},
		{"sub cent", 0.001, "0.00"},
		{"long tail", 19.999999, "20.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromFloat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(Places))
		})
	}
}

func TestFromFloat_RejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := FromFloat(f)
		assert.Error(t, err)
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("199.005")
	require.NoError(t, err)
	assert.Equal(t, "199.01", d.StringFixed(Places))

	_, err = Parse("abc")
	assert.Error(t, err)
}

func TestMul(t *testing.T) {
	unit, err := FromFloat(199.00)
	require.NoError(t, err)
	assert.Equal(t, "597.00", Mul(unit, 3).StringFixed(Places))

	unit, err = FromFloat(89.90)
	require.NoError(t, err)
	assert.Equal(t, "179.80", Mul(unit, 2).StringFixed(Places))
}

func TestMul_NoDriftAcrossLargeBatch(t *testing.T) {
	unit, err := FromFloat(0.1)
	require.NoError(t, err)

	total := decimal.Zero
	for i := 0; i < 100000; i++ {
		total = total.Add(Mul(unit, 1))
	}
	assert.Equal(t, "10000.00", total.StringFixed(Places))
}
