// Package core holds the domain value types of the billing ledger:
// monetary amounts in integer centavos, line items, fiscal periods and
// the closed set of error kinds the aggregation pipeline reports.
//
// All arithmetic inside the pipeline happens on Money (int64 centavos);
// major-currency floats exist only at the store boundary (documents keep
// amounts in pesos) and at the output boundary (rendered statements).
package core

import (
	"math"
	"strconv"
)

// Money is a monetary amount in centavos (1/100 of the major unit).
type Money int64

// centEpsilon bounds the float noise tolerated when converting a stored
// major-unit value to centavos. Anything further from a whole centavo is
// treated as corrupted data, not rounded away.
const centEpsilon = 1e-6

// CentsFromMajor converts a major-unit amount as stored in a document
// (e.g. 200.00 pesos) to centavos. It fails with a ValidationError when the
// value does not resolve to a whole number of centavos, so float drift in a
// stored record can never leak into a running balance.
func CentsFromMajor(value float64) (Money, error) {
	cents := value * 100
	rounded := math.Round(cents)
	if math.Abs(cents-rounded) > centEpsilon*(math.Abs(cents)+1) {
		return 0, &ValidationError{Value: value}
	}
	return Money(rounded), nil
}

// Cents returns the raw centavo count.
func (m Money) Cents() int64 { return int64(m) }

// Major returns the major-unit value for display. Calculations must stay on
// centavos; this is a formatting aid only.
func (m Money) Major() float64 { return float64(m) / 100 }

// Abs returns the absolute value.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// String formats the amount with two decimals, e.g. "1234.56".
func (m Money) String() string {
	return strconv.FormatFloat(m.Major(), 'f', 2, 64)
}

// MarshalJSON renders the amount as a 2-decimal major-unit number. The
// externally visible statement uses major units; only internals keep
// centavos.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a major-unit number and converts it to centavos,
// rejecting values that are not whole centavos.
func (m *Money) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	parsed, err := CentsFromMajor(v)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
