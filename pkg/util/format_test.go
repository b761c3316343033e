package util

import "testing"

func TestFormatVolume(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "+$0.00"},
		{42.5, "+$42.50"},
		{-999.994, "-$999.99"},
		{1_000, "+$1.00K"},
		{-430_000, "-$430.00K"},
		{1_250_000, "+$1.25M"},
		{2_500_000_000, "+$2.50B"},
		{-1_000_000_000, "-$1.00B"},
	}
	for _, c := range cases {
		if got := FormatVolume(c.in); got != c.want {
			t.Fatalf("FormatVolume(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
