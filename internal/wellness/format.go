// internal/wellness/format.go
package wellness

import (
	"math"
	"strconv"
)

// Decimal formats a float with the shortest exact representation, keeping
// one decimal for whole numbers (7 -> "7.0", 7.25 -> "7.25").
func Decimal(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
