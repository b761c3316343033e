package repository

// Period represents a flow aggregation window label.
type Period string

const (
	P1m  Period = "1m"
	P3m  Period = "3m"
	P5m  Period = "5m"
	P15m Period = "15m"
	P30m Period = "30m"
	P1h  Period = "1h"
	P2h  Period = "2h"
	P4h  Period = "4h"
)

// periodIntervals maps each supported period to its width in milliseconds.
var periodIntervals = map[Period]int64{
	P1m:  60 * 1000,
	P3m:  3 * 60 * 1000,
	P5m:  5 * 60 * 1000,
	P15m: 15 * 60 * 1000,
	P30m: 30 * 60 * 1000,
	P1h:  60 * 60 * 1000,
	P2h:  2 * 60 * 60 * 1000,
	P4h:  4 * 60 * 60 * 1000,
}

// IntervalMS returns the bucket width in milliseconds for a period,
// and false if the period is not supported.
func IntervalMS(p Period) (int64, bool) {
	ms, ok := periodIntervals[p]
	return ms, ok
}

// IsValidPeriod returns true if p is a supported period label.
func IsValidPeriod(p Period) bool {
	_, ok := periodIntervals[p]
	return ok
}

// Periods returns the supported period labels.
func Periods() []Period {
	return []Period{P1m, P3m, P5m, P15m, P30m, P1h, P2h, P4h}
}
