package grading

import (
	"math"
	"strconv"
	"strings"
)

// ParseCredits reads a transcript credit value. Anything that is not a
// finite, non-negative number becomes 0 so the row still takes part in the
// audit.
//
//	"3"    -> 3
//	" 1.5" -> 1.5
//	"3cr"  -> 0
//	"-3"   -> 0
func ParseCredits(s string) float64 {
	v, ok := parseFloatStrict(s)
	if !ok || v < 0 {
		return 0
	}
	return v
}

func parseFloatStrict(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
