package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/toi500/Hyper-Alpha-Arena/internal/domain/models"
)

// bucketKey floors a millisecond timestamp to its interval boundary.
// The key is always an exact multiple of intervalMS with key <= tsMS.
func bucketKey(tsMS, intervalMS int64) int64 {
	r := tsMS % intervalMS
	if r < 0 {
		r += intervalMS
	}
	return tsMS - r
}

// notionalBucket accumulates taker buy/sell notional for one bucket.
// Sums stay decimal until the derive step converts to float64.
type notionalBucket struct {
	buy  decimal.Decimal
	sell decimal.Decimal
}

// sumNotionalBuckets folds trade flow rows into per-bucket notional sums.
// Null notionals count as zero. Returns bucket keys ascending.
func sumNotionalBuckets(rows []models.TradeFlow, intervalMS int64) ([]int64, map[int64]*notionalBucket) {
	buckets := make(map[int64]*notionalBucket)
	for _, r := range rows {
		key := bucketKey(r.Timestamp, intervalMS)
		b, ok := buckets[key]
		if !ok {
			b = &notionalBucket{}
			buckets[key] = b
		}
		if r.TakerBuyNotional.Valid {
			b.buy = b.buy.Add(r.TakerBuyNotional.Decimal)
		}
		if r.TakerSellNotional.Valid {
			b.sell = b.sell.Add(r.TakerSellNotional.Decimal)
		}
	}
	return sortedBucketKeys(buckets), buckets
}

// lastPerBucket folds n samples into buckets where the last sample in
// ascending timestamp order wins. ts and val project the i-th sample.
func lastPerBucket[T any](n int, intervalMS int64, ts func(i int) int64, val func(i int) T) ([]int64, map[int64]T) {
	buckets := make(map[int64]T)
	for i := 0; i < n; i++ {
		buckets[bucketKey(ts(i), intervalMS)] = val(i)
	}
	return sortedBucketKeys(buckets), buckets
}

func sortedBucketKeys[T any](buckets map[int64]T) []int64 {
	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// tail returns the final at most n values, chronological order preserved.
func tail(vals []float64, n int) []float64 {
	if len(vals) > n {
		return vals[len(vals)-n:]
	}
	return vals
}
