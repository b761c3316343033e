package usecase

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/toi500/Hyper-Alpha-Arena/internal/domain/models"
	domrepo "github.com/toi500/Hyper-Alpha-Arena/internal/domain/repository"
)

// fakeFlowStore serves canned rows with the same symbol/range contract as
// the real store: exact symbol match, inclusive bounds, ascending input.
type fakeFlowStore struct {
	trades     []models.TradeFlow
	metricRows []models.AssetMetric
	books      []models.OrderbookSnapshot

	tradesErr error
	metricErr error
	booksErr  error
}

func (f *fakeFlowStore) GetTradeFlows(_ context.Context, symbol string, fromMS, toMS int64) ([]models.TradeFlow, error) {
	if f.tradesErr != nil {
		return nil, f.tradesErr
	}
	out := []models.TradeFlow{}
	for _, r := range f.trades {
		if r.Symbol == symbol && r.Timestamp >= fromMS && r.Timestamp <= toMS {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFlowStore) GetAssetMetrics(_ context.Context, symbol string, fromMS, toMS int64) ([]models.AssetMetric, error) {
	if f.metricErr != nil {
		return nil, f.metricErr
	}
	out := []models.AssetMetric{}
	for _, r := range f.metricRows {
		if r.Symbol == symbol && r.Timestamp >= fromMS && r.Timestamp <= toMS {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFlowStore) GetOrderbookSnapshots(_ context.Context, symbol string, fromMS, toMS int64) ([]models.OrderbookSnapshot, error) {
	if f.booksErr != nil {
		return nil, f.booksErr
	}
	out := []models.OrderbookSnapshot{}
	for _, r := range f.books {
		if r.Symbol == symbol && r.Timestamp >= fromMS && r.Timestamp <= toMS {
			out = append(out, r)
		}
	}
	return out, nil
}

var _ domrepo.FlowStore = (*fakeFlowStore)(nil)

func nf(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCVDScenario(t *testing.T) {
	store := &fakeFlowStore{trades: []models.TradeFlow{
		{Timestamp: 0, Symbol: "BTC", TakerBuyNotional: dec("100"), TakerSellNotional: dec("40")},
		{Timestamp: 60_000, Symbol: "BTC", TakerBuyNotional: dec("50"), TakerSellNotional: dec("50")},
	}}
	uc := NewFlowIndicators(store)

	res := uc.GetFlowIndicatorsForPrompt(context.Background(), "btc", "1m", []string{"CVD"}, 60_000)
	cvd, ok := res["CVD"].(*models.CVDData)
	if !ok || cvd == nil {
		t.Fatalf("expected CVD data, got %#v", res["CVD"])
	}
	if cvd.Current != 0 {
		t.Fatalf("current = %v, want 0", cvd.Current)
	}
	if !reflect.DeepEqual(cvd.Last5, []float64{60, 0}) {
		t.Fatalf("last_5 = %v, want [60 0]", cvd.Last5)
	}
	if cvd.Cumulative != 60 {
		t.Fatalf("cumulative = %v, want 60", cvd.Cumulative)
	}
	if cvd.Period != "1m" {
		t.Fatalf("period = %q", cvd.Period)
	}
}

func TestCVDIdempotent(t *testing.T) {
	store := &fakeFlowStore{trades: []models.TradeFlow{
		{Timestamp: 10_000, Symbol: "BTC", TakerBuyNotional: dec("7.5"), TakerSellNotional: dec("2.5")},
		{Timestamp: 70_000, Symbol: "BTC", TakerBuyNotional: dec("1"), TakerSellNotional: dec("4")},
	}}
	uc := NewFlowIndicators(store)

	first := uc.GetFlowIndicatorsForPrompt(context.Background(), "BTC", "1m", []string{"CVD"}, 120_000)
	second := uc.GetFlowIndicatorsForPrompt(context.Background(), "BTC", "1m", []string{"CVD"}, 120_000)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calls differ: %#v vs %#v", first, second)
	}
}

func TestCVDLookbackWindowExcludesOldRows(t *testing.T) {
	// 1m lookback covers [now-600000, now]; the first row sits outside.
	store := &fakeFlowStore{trades: []models.TradeFlow{
		{Timestamp: 0, Symbol: "BTC", TakerBuyNotional: dec("1000"), TakerSellNotional: dec("0")},
		{Timestamp: 700_000, Symbol: "BTC", TakerBuyNotional: dec("10"), TakerSellNotional: dec("4")},
	}}
	uc := NewFlowIndicators(store)

	res := uc.GetFlowIndicatorsForPrompt(context.Background(), "BTC", "1m", []string{"CVD"}, 700_000)
	cvd := res["CVD"].(*models.CVDData)
	if cvd.Cumulative != 6 {
		t.Fatalf("cumulative = %v, want 6 (old row must be excluded)", cvd.Cumulative)
	}
}

func TestTakerZeroSellRatio(t *testing.T) {
	store := &fakeFlowStore{trades: []models.TradeFlow{
		{Timestamp: 5_000, Symbol: "ETH", TakerBuyNotional: dec("42"), TakerSellNotional: dec("0")},
	}}
	uc := NewFlowIndicators(store)

	res := uc.GetFlowIndicatorsForPrompt(context.Background(), "ETH", "1m", []string{"taker"}, 60_000)
	taker, ok := res["TAKER"].(*models.TakerData)
	if !ok || taker == nil {
		t.Fatalf("expected TAKER data, got %#v", res["TAKER"])
	}
	if taker.Ratio != 1.0 {
		t.Fatalf("ratio = %v, want 1.0 for zero sell", taker.Ratio)
	}
	if taker.Buy != 42 || taker.Sell != 0 {
		t.Fatalf("buy/sell = %v/%v", taker.Buy, taker.Sell)
	}
}

func TestOILastValueWinsAndNullsSkipped(t *testing.T) {
	store := &fakeFlowStore{metricRows: []models.AssetMetric{
		{Timestamp: 1_000, Symbol: "BTC", OpenInterest: nf(100)},
		{Timestamp: 59_000, Symbol: "BTC", OpenInterest: nf(110)},
		{Timestamp: 61_000, Symbol: "BTC", OpenInterest: sql.NullFloat64{}},
	}}
	uc := NewFlowIndicators(store)

	res := uc.GetFlowIndicatorsForPrompt(context.Background(), "BTC", "1m", []string{"OI"}, 120_000)
	oi, ok := res["OI"].(*models.OIData)
	if !ok || oi == nil {
		t.Fatalf("expected OI data, got %#v", res["OI"])
	}
	// bucket 0 keeps the later sample; the null-only bucket is dropped
	if oi.Current != 110 {
		t.Fatalf("current = %v, want 110", oi.Current)
	}
	if !reflect.DeepEqual(oi.Last5, []float64{110}) {
		t.Fatalf("last_5 = %v", oi.Last5)
	}
}

func TestOIDeltaNeedsTwoBuckets(t *testing.T) {
	store := &fakeFlowStore{metricRows: []models.AssetMetric{
		{Timestamp: 1_000, Symbol: "BTC", OpenInterest: nf(100)},
		{Timestamp: 2_000, Symbol: "BTC", OpenInterest: nf(105)},
	}}
	uc := NewFlowIndicators(store)

	res := uc.GetFlowIndicatorsForPrompt(context.Background(), "BTC", "1m", []string{"OI_DELTA"}, 60_000)
	if res["OI_DELTA"] != nil {
		t.Fatalf("single bucket should yield nil, got %#v", res["OI_DELTA"])
	}
}

func TestOIDeltaChangePercent(t *testing.T) {
	store := &fakeFlowStore{metricRows: []models.AssetMetric{
		{Timestamp: 1_000, Symbol: "BTC", OpenInterest: nf(200)},
		{Timestamp: 61_000, Symbol: "BTC", OpenInterest: nf(210)},
		{Timestamp: 121_000, Symbol: "BTC", OpenInterest: nf(189)},
	}}
	uc := NewFlowIndicators(store)

	res := uc.GetFlowIndicatorsForPrompt(context.Background(), "BTC", "1m", []string{"OI_DELTA"}, 180_000)
	od, ok := res["OI_DELTA"].(*models.OIDeltaData)
	if !ok || od == nil {
		t.Fatalf("expected OI_DELTA data, got %#v", res["OI_DELTA"])
	}
	if !almostEqual(od.Current, -10) {
		t.Fatalf("current = %v, want -10", od.Current)
	}
	if len(od.Last5) != 2 || !almostEqual(od.Last5[0], 5) {
		t.Fatalf("last_5 = %v, want [5 -10]", od.Last5)
	}
}

func TestOIDeltaSkipsZeroPrevious(t *testing.T) {
	store := &fakeFlowStore{metricRows: []models.AssetMetric{
		{Timestamp: 1_000, Symbol: "BTC", OpenInterest: nf(0)},
		{Timestamp: 61_000, Symbol: "BTC", OpenInterest: nf(50)},
		{Timestamp: 121_000, Symbol: "BTC", OpenInterest: nf(75)},
	}}
	uc := NewFlowIndicators(store)

	res := uc.GetFlowIndicatorsForPrompt(context.Background(), "BTC", "1m", []string{"OI_DELTA"}, 180_000)
	od := res["OI_DELTA"].(*models.OIDeltaData)
	if len(od.Last5) != 1 || !almostEqual(od.Last5[0], 50) {
		t.Fatalf("last_5 = %v, want only the 50->75 change", od.Last5)
	}
}

func TestFundingPercentAndAnnualized(t *testing.T) {
	store := &fakeFlowStore{metricRows: []models.AssetMetric{
		{Timestamp: 1_000, Symbol: "BTC", FundingRate: nf(0.0001)},
	}}
	uc := NewFlowIndicators(store)

	res := uc.GetFlowIndicatorsForPrompt(context.Background(), "BTC", "1m", []string{"FUNDING"}, 60_000)
	fd, ok := res["FUNDING"].(*models.FundingData)
	if !ok || fd == nil {
		t.Fatalf("expected FUNDING data, got %#v", res["FUNDING"])
	}
	if !almostEqual(fd.Current, 0.01) {
		t.Fatalf("current = %v, want 0.01", fd.Current)
	}
	if !almostEqual(fd.Annualized, 10.95) {
		t.Fatalf("annualized = %v, want 10.95", fd.Annualized)
	}
}

func TestDepthZeroAskRatio(t *testing.T) {
	store := &fakeFlowStore{books: []models.OrderbookSnapshot{
		{Timestamp: 1_000, Symbol: "BTC", BidDepth5: nf(500), AskDepth5: nf(0), Spread: nf(0.5)},
	}}
	uc := NewFlowIndicators(store)

	res := uc.GetFlowIndicatorsForPrompt(context.Background(), "BTC", "1m", []string{"DEPTH"}, 60_000)
	dd, ok := res["DEPTH"].(*models.DepthData)
	if !ok || dd == nil {
		t.Fatalf("expected DEPTH data, got %#v", res["DEPTH"])
	}
	if dd.Ratio != 1.0 {
		t.Fatalf("ratio = %v, want 1.0 for zero ask", dd.Ratio)
	}
	if dd.Spread == nil || *dd.Spread != 0.5 {
		t.Fatalf("spread = %v, want 0.5", dd.Spread)
	}
}

func TestImbalanceBoundsAndEmptyBook(t *testing.T) {
	store := &fakeFlowStore{books: []models.OrderbookSnapshot{
		{Timestamp: 1_000, Symbol: "BTC", BidDepth5: nf(0), AskDepth5: nf(0)},
		{Timestamp: 61_000, Symbol: "BTC", BidDepth5: nf(300), AskDepth5: nf(100)},
	}}
	uc := NewFlowIndicators(store)

	res := uc.GetFlowIndicatorsForPrompt(context.Background(), "BTC", "1m", []string{"IMBALANCE"}, 120_000)
	im, ok := res["IMBALANCE"].(*models.ImbalanceData)
	if !ok || im == nil {
		t.Fatalf("expected IMBALANCE data, got %#v", res["IMBALANCE"])
	}
	if im.Last5[0] != 0.0 {
		t.Fatalf("empty book imbalance = %v, want 0.0", im.Last5[0])
	}
	for _, v := range im.Last5 {
		if v < -1 || v > 1 {
			t.Fatalf("imbalance %v out of [-1, 1]", v)
		}
	}
	if !almostEqual(im.Current, 0.5) {
		t.Fatalf("current = %v, want 0.5", im.Current)
	}
}

func TestUnsupportedPeriodReturnsEmptyMapping(t *testing.T) {
	uc := NewFlowIndicators(&fakeFlowStore{})

	res := uc.GetFlowIndicatorsForPrompt(context.Background(), "BTC", "7m", []string{"CVD", "OI"}, 60_000)
	if len(res) != 0 {
		t.Fatalf("expected empty mapping, got %#v", res)
	}
}

func TestUnknownIndicatorOmitted(t *testing.T) {
	store := &fakeFlowStore{trades: []models.TradeFlow{
		{Timestamp: 1_000, Symbol: "BTC", TakerBuyNotional: dec("1"), TakerSellNotional: dec("2")},
	}}
	uc := NewFlowIndicators(store)

	res := uc.GetFlowIndicatorsForPrompt(context.Background(), "BTC", "1m", []string{"CVD", "BOGUS"}, 60_000)
	if _, ok := res["CVD"]; !ok {
		t.Fatalf("CVD missing from mapping")
	}
	if _, ok := res["BOGUS"]; ok {
		t.Fatalf("unknown indicator must be omitted, got %#v", res["BOGUS"])
	}
	if len(res) != 1 {
		t.Fatalf("unexpected mapping %#v", res)
	}
}

func TestEmptyDataYieldsNilEntry(t *testing.T) {
	uc := NewFlowIndicators(&fakeFlowStore{})

	res := uc.GetFlowIndicatorsForPrompt(context.Background(), "BTC", "1m", []string{"cvd", "funding"}, 60_000)
	for _, name := range []string{"CVD", "FUNDING"} {
		v, ok := res[name]
		if !ok {
			t.Fatalf("%s key must be present", name)
		}
		if v != nil {
			t.Fatalf("%s = %#v, want nil", name, v)
		}
	}
}

func TestStoreErrorDoesNotAbortSiblings(t *testing.T) {
	store := &fakeFlowStore{
		trades: []models.TradeFlow{
			{Timestamp: 1_000, Symbol: "BTC", TakerBuyNotional: dec("10"), TakerSellNotional: dec("3")},
		},
		booksErr: errors.New("replica unavailable"),
	}
	uc := NewFlowIndicators(store)

	res := uc.GetFlowIndicatorsForPrompt(context.Background(), "BTC", "1m", []string{"DEPTH", "CVD"}, 60_000)
	if res["DEPTH"] != nil {
		t.Fatalf("failing indicator must be nil, got %#v", res["DEPTH"])
	}
	cvd, ok := res["CVD"].(*models.CVDData)
	if !ok || cvd == nil || cvd.Cumulative != 7 {
		t.Fatalf("sibling CVD must still compute, got %#v", res["CVD"])
	}
}

func TestSymbolCaseNormalized(t *testing.T) {
	store := &fakeFlowStore{trades: []models.TradeFlow{
		{Timestamp: 1_000, Symbol: "BTC", TakerBuyNotional: dec("2"), TakerSellNotional: dec("1")},
	}}
	uc := NewFlowIndicators(store)

	res := uc.GetFlowIndicatorsForPrompt(context.Background(), "btc", "1m", []string{"CVD"}, 60_000)
	if res["CVD"] == nil {
		t.Fatalf("lowercase symbol should match uppercase rows")
	}
}
