package usecase

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/toi500/Hyper-Alpha-Arena/internal/domain/models"
)

func TestBucketKeyProperties(t *testing.T) {
	intervals := []int64{60_000, 180_000, 900_000, 14_400_000}
	timestamps := []int64{0, 1, 59_999, 60_000, 60_001, 1_700_000_000_123, -1, -60_000, -59_999}

	for _, interval := range intervals {
		for _, ts := range timestamps {
			key := bucketKey(ts, interval)
			if key%interval != 0 {
				t.Fatalf("key %d not a multiple of %d", key, interval)
			}
			if key > ts || ts >= key+interval {
				t.Fatalf("ts %d not in [%d, %d)", ts, key, key+interval)
			}
		}
	}
}

func TestBucketKeyExact(t *testing.T) {
	if got := bucketKey(125_000, 60_000); got != 120_000 {
		t.Fatalf("got %d want 120000", got)
	}
	if got := bucketKey(60_000, 60_000); got != 60_000 {
		t.Fatalf("got %d want 60000", got)
	}
}

func TestSumNotionalBucketsNullAsZero(t *testing.T) {
	rows := []models.TradeFlow{
		{Timestamp: 0, TakerBuyNotional: dec("100"), TakerSellNotional: dec("40")},
		{Timestamp: 30_000, TakerBuyNotional: decimal.NullDecimal{}, TakerSellNotional: dec("10")},
		{Timestamp: 61_000, TakerBuyNotional: dec("5"), TakerSellNotional: decimal.NullDecimal{}},
	}
	keys, buckets := sumNotionalBuckets(rows, 60_000)
	if len(keys) != 2 || keys[0] != 0 || keys[1] != 60_000 {
		t.Fatalf("unexpected keys %v", keys)
	}
	if got := buckets[0].buy.String(); got != "100" {
		t.Fatalf("bucket 0 buy = %s", got)
	}
	if got := buckets[0].sell.String(); got != "50" {
		t.Fatalf("bucket 0 sell = %s", got)
	}
	if got := buckets[60_000].buy.String(); got != "5" {
		t.Fatalf("bucket 60000 buy = %s", got)
	}
	if got := buckets[60_000].sell.String(); got != "0" {
		t.Fatalf("bucket 60000 sell = %s", got)
	}
}

func TestLastPerBucketLastWins(t *testing.T) {
	ts := []int64{0, 30_000, 59_999, 60_000}
	vals := []float64{1, 2, 3, 4}
	keys, buckets := lastPerBucket(len(ts), 60_000,
		func(i int) int64 { return ts[i] },
		func(i int) float64 { return vals[i] },
	)
	if len(keys) != 2 {
		t.Fatalf("unexpected keys %v", keys)
	}
	if buckets[0] != 3 {
		t.Fatalf("bucket 0 = %v, want last sample 3", buckets[0])
	}
	if buckets[60_000] != 4 {
		t.Fatalf("bucket 60000 = %v, want 4", buckets[60_000])
	}
}

func TestTail(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6, 7}
	got := tail(vals, 5)
	if len(got) != 5 || got[0] != 3 || got[4] != 7 {
		t.Fatalf("unexpected tail %v", got)
	}
	short := []float64{1, 2}
	if got := tail(short, 5); len(got) != 2 {
		t.Fatalf("tail should not pad, got %v", got)
	}
}

func dec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}
