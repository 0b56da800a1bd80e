package util

import (
	"fmt"
	"math"
	"strings"
)

// IndentExpand repeats indent growth times.
func IndentExpand(indent string, growth int) string {
	if growth <= 0 {
		return ""
	}
	return strings.Repeat(indent, growth)
}

// FormatValue prints v with three decimals, or "..." when v is missing.
func FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "..."
	}
	return fmt.Sprintf("%.3f", v)
}
