package repository

import "testing"

func TestIntervalMSAllPeriods(t *testing.T) {
	want := map[Period]int64{
		P1m:  60_000,
		P3m:  180_000,
		P5m:  300_000,
		P15m: 900_000,
		P30m: 1_800_000,
		P1h:  3_600_000,
		P2h:  7_200_000,
		P4h:  14_400_000,
	}
	for p, ms := range want {
		got, ok := IntervalMS(p)
		if !ok {
			t.Fatalf("expected %s to be supported", p)
		}
		if got != ms {
			t.Fatalf("period %s: got %d want %d", p, got, ms)
		}
	}
}

func TestIntervalMSUnknown(t *testing.T) {
	for _, p := range []Period{"", "2m", "1d", "60", "1H"} {
		if _, ok := IntervalMS(p); ok {
			t.Fatalf("expected %q to be unsupported", p)
		}
		if IsValidPeriod(p) {
			t.Fatalf("expected %q to be invalid", p)
		}
	}
}

func TestPeriodsCoversLookup(t *testing.T) {
	ps := Periods()
	if len(ps) != len(periodIntervals) {
		t.Fatalf("got %d periods, lookup has %d", len(ps), len(periodIntervals))
	}
	for _, p := range ps {
		if !IsValidPeriod(p) {
			t.Fatalf("listed period %s not in lookup", p)
		}
	}
}
