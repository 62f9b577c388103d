package records

import (
	"fmt"
	"math"
	"strconv"
)

// Number is a numeric value carrying the boundary rendering contract used by
// the pipeline report and every reporting component: the value is rounded to
// 2 decimal places, and when the rounded value has zero fractional part it is
// rendered as an integer ("25", not "25.0"; "19.9", not "19.90").
//
// Number is a plain float64 underneath, so it decodes from JSON numbers
// without a custom unmarshaler and participates in arithmetic via float64
// conversion.
type Number float64

// Round2 rounds v to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// maxExactInt bounds integer rendering to values float64 represents exactly.
const maxExactInt = 1e15

// String renders n per the contract.
func (n Number) String() string {
	return string(n.appendTo(nil))
}

// MarshalJSON renders n per the contract. Non-finite values are rejected the
// same way encoding/json rejects them for float64.
func (n Number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("records: unsupported number value %v", v)
	}
	return n.appendTo(nil), nil
}

func (n Number) appendTo(b []byte) []byte {
	v := Round2(float64(n))
	if v == math.Trunc(v) && math.Abs(v) < maxExactInt {
		return strconv.AppendInt(b, int64(v), 10)
	}
	return strconv.AppendFloat(b, v, 'f', -1, 64)
}
