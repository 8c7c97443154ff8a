package engine

import (
	"math"
	"strconv"
	"strings"
)

// FormatResult renders a result the way it is shown and re-entered: the
// shortest decimal that round-trips, with exponent notation outside
// [1e-6, 1e21) written as "1e+21" or "1e-7".
func FormatResult(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
