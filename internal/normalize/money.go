package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var amountReplacer = strings.NewReplacer(",", "", "₦", "", "$", "", " ", "")

// Amount parses a monetary value that may carry thousands separators or a
// currency sign. An empty value is zero, not an error; the extracts leave
// unused amount cells blank.
func Amount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = amountReplacer.Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}

// Round2 rounds to two decimal places for report output.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
