package util

import (
	"fmt"
	"math"
)

// FormatVolume renders a signed notional amount with a K/M/B suffix,
// e.g. +$1.25M or -$430.00K, for prompt text.
func FormatVolume(value float64) string {
	abs := math.Abs(value)
	sign := "+"
	if value < 0 {
		sign = "-"
	}
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%s$%.2fB", sign, abs/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%s$%.2fM", sign, abs/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%s$%.2fK", sign, abs/1e3)
	default:
		return fmt.Sprintf("%s$%.2f", sign, abs)
	}
}
