package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/toi500/Hyper-Alpha-Arena/internal/domain/models"
	domrepo "github.com/toi500/Hyper-Alpha-Arena/internal/domain/repository"
	applogger "github.com/toi500/Hyper-Alpha-Arena/pkg/logger"
	"github.com/toi500/Hyper-Alpha-Arena/pkg/util"
)

const (
	// lookbackBuckets is how many candidate buckets the fetch window covers.
	lookbackBuckets = 10
	// historyLen is how many trailing bucket values the summary carries.
	historyLen = 5
	// fundingEventsPerDay assumes 8-hour funding intervals.
	fundingEventsPerDay = 3
)

// Indicator computation statuses recorded in metrics.
const (
	statusOK      = "ok"
	statusEmpty   = "empty"
	statusError   = "error"
	statusUnknown = "unknown"
)

// FlowIndicators computes per-period market flow summaries for prompt
// injection. Each calculator runs the same fetch -> bucketize -> derive
// pipeline and is isolated from its siblings: one failing indicator only
// nulls its own entry.
type FlowIndicators struct {
	store   domrepo.FlowStore
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewFlowIndicators(store domrepo.FlowStore) *FlowIndicators {
	return &FlowIndicators{store: store}
}

// SetLogger injects a structured logger.
func (uc *FlowIndicators) SetLogger(l *applogger.Logger) { uc.l = l }

// SetMetrics injects a metrics recorder.
func (uc *FlowIndicators) SetMetrics(m domrepo.Metrics) { uc.metrics = m }

// GetFlowIndicatorsForPrompt computes the requested indicators for
// (symbol, period) and returns a mapping from canonical indicator name to
// its summary, or nil when data is absent or the calculator failed.
// Unknown indicator names are logged and omitted. An unsupported period
// yields an empty mapping. currentTimeMS <= 0 means wall clock.
func (uc *FlowIndicators) GetFlowIndicatorsForPrompt(ctx context.Context, symbol, period string, indicators []string, currentTimeMS int64) map[string]interface{} {
	p := domrepo.Period(period)
	intervalMS, ok := domrepo.IntervalMS(p)
	if !ok {
		uc.warn("unsupported period", applogger.String("period", period))
		return map[string]interface{}{}
	}

	if currentTimeMS <= 0 {
		currentTimeMS = time.Now().UnixMilli()
	}
	symbol = strings.ToUpper(symbol)

	results := make(map[string]interface{}, len(indicators))
	for _, name := range indicators {
		upper := strings.ToUpper(name)
		switch upper {
		case domrepo.IndicatorCVD, domrepo.IndicatorTaker, domrepo.IndicatorOI,
			domrepo.IndicatorOIDelta, domrepo.IndicatorFunding,
			domrepo.IndicatorDepth, domrepo.IndicatorImbalance:
			results[upper] = uc.compute(ctx, upper, symbol, p, intervalMS, currentTimeMS)
		default:
			uc.warn("unknown flow indicator", applogger.String("indicator", name))
			uc.record(upper, statusUnknown)
		}
	}
	return results
}

// compute runs one calculator with panic isolation. Any error or panic is
// logged and collapses to a nil entry so siblings keep going.
func (uc *FlowIndicators) compute(ctx context.Context, indicator, symbol string, period domrepo.Period, intervalMS, nowMS int64) (result interface{}) {
	defer func() {
		if r := recover(); r != nil {
			uc.errorLog("flow indicator panic",
				applogger.String("indicator", indicator),
				applogger.String("symbol", symbol),
				applogger.Any("panic", r),
			)
			uc.record(indicator, statusError)
			result = nil
		}
	}()

	var (
		v   interface{}
		err error
	)
	switch indicator {
	case domrepo.IndicatorCVD:
		v, err = nilable(uc.cvd(ctx, symbol, period, intervalMS, nowMS))
	case domrepo.IndicatorTaker:
		v, err = nilable(uc.taker(ctx, symbol, period, intervalMS, nowMS))
	case domrepo.IndicatorOI:
		v, err = nilable(uc.openInterest(ctx, symbol, period, intervalMS, nowMS))
	case domrepo.IndicatorOIDelta:
		v, err = nilable(uc.openInterestDelta(ctx, symbol, period, intervalMS, nowMS))
	case domrepo.IndicatorFunding:
		v, err = nilable(uc.funding(ctx, symbol, period, intervalMS, nowMS))
	case domrepo.IndicatorDepth:
		v, err = nilable(uc.depth(ctx, symbol, period, intervalMS, nowMS))
	case domrepo.IndicatorImbalance:
		v, err = nilable(uc.imbalance(ctx, symbol, period, intervalMS, nowMS))
	}
	if err != nil {
		uc.errorLog("flow indicator error",
			applogger.String("indicator", indicator),
			applogger.String("symbol", symbol),
			applogger.String("period", string(period)),
			applogger.Error(err),
		)
		uc.record(indicator, statusError)
		return nil
	}
	if v == nil {
		uc.record(indicator, statusEmpty)
		return nil
	}
	uc.record(indicator, statusOK)
	return v
}

// nilable collapses a typed nil pointer to an untyped nil interface so the
// result mapping marshals missing data as JSON null.
func nilable[T any](v *T, err error) (interface{}, error) {
	if v == nil {
		return nil, err
	}
	return v, err
}

func (uc *FlowIndicators) window(intervalMS, nowMS int64) (int64, int64) {
	return nowMS - intervalMS*lookbackBuckets, nowMS
}

func (uc *FlowIndicators) cvd(ctx context.Context, symbol string, period domrepo.Period, intervalMS, nowMS int64) (*models.CVDData, error) {
	fromMS, toMS := uc.window(intervalMS, nowMS)
	rows, err := uc.store.GetTradeFlows(ctx, symbol, fromMS, toMS)
	if err != nil {
		return nil, fmt.Errorf("cvd fetch: %w", err)
	}
	if len(rows) == 0 {
		uc.warnNoData(domrepo.IndicatorCVD, symbol, period, fromMS, toMS, 0, 0)
		return nil, nil
	}

	keys, buckets := sumNotionalBuckets(rows, intervalMS)
	deltas := make([]float64, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		d, _ := b.buy.Sub(b.sell).Float64()
		deltas = append(deltas, d)
	}

	cumulative := 0.0
	for _, d := range deltas {
		cumulative += d
	}

	if uc.l != nil {
		uc.l.Debug("cvd computed",
			applogger.String("symbol", symbol),
			applogger.String("period", string(period)),
			applogger.Int("buckets", len(keys)),
			applogger.String("cumulative", util.FormatVolume(cumulative)),
		)
	}

	return &models.CVDData{
		Current:    deltas[len(deltas)-1],
		Last5:      tail(deltas, historyLen),
		Cumulative: cumulative,
		Period:     string(period),
	}, nil
}

func (uc *FlowIndicators) taker(ctx context.Context, symbol string, period domrepo.Period, intervalMS, nowMS int64) (*models.TakerData, error) {
	fromMS, toMS := uc.window(intervalMS, nowMS)
	rows, err := uc.store.GetTradeFlows(ctx, symbol, fromMS, toMS)
	if err != nil {
		return nil, fmt.Errorf("taker fetch: %w", err)
	}
	if len(rows) == 0 {
		uc.warnNoData(domrepo.IndicatorTaker, symbol, period, fromMS, toMS, 0, 0)
		return nil, nil
	}

	keys, buckets := sumNotionalBuckets(rows, intervalMS)
	ratios := make([]float64, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		buy, _ := b.buy.Float64()
		sell, _ := b.sell.Float64()
		ratios = append(ratios, buySellRatio(buy, sell))
	}

	current := buckets[keys[len(keys)-1]]
	buy, _ := current.buy.Float64()
	sell, _ := current.sell.Float64()

	return &models.TakerData{
		Buy:        buy,
		Sell:       sell,
		Ratio:      buySellRatio(buy, sell),
		RatioLast5: tail(ratios, historyLen),
		Period:     string(period),
	}, nil
}

func (uc *FlowIndicators) openInterest(ctx context.Context, symbol string, period domrepo.Period, intervalMS, nowMS int64) (*models.OIData, error) {
	fromMS, toMS := uc.window(intervalMS, nowMS)
	rows, err := uc.store.GetAssetMetrics(ctx, symbol, fromMS, toMS)
	if err != nil {
		return nil, fmt.Errorf("oi fetch: %w", err)
	}
	if len(rows) == 0 {
		uc.warnNoData(domrepo.IndicatorOI, symbol, period, fromMS, toMS, 0, 0)
		return nil, nil
	}

	keys, buckets := lastPerBucket(len(rows), intervalMS,
		func(i int) int64 { return rows[i].Timestamp },
		func(i int) models.AssetMetric { return rows[i] },
	)

	// Entirely-null samples carry no value for the bucket; drop them.
	values := make([]float64, 0, len(keys))
	for _, k := range keys {
		if oi := buckets[k].OpenInterest; oi.Valid {
			values = append(values, oi.Float64)
		}
	}
	if len(values) == 0 {
		uc.warnNoData(domrepo.IndicatorOI, symbol, period, fromMS, toMS, len(rows), len(keys))
		return nil, nil
	}

	return &models.OIData{
		Current: values[len(values)-1],
		Last5:   tail(values, historyLen),
		Period:  string(period),
	}, nil
}

func (uc *FlowIndicators) openInterestDelta(ctx context.Context, symbol string, period domrepo.Period, intervalMS, nowMS int64) (*models.OIDeltaData, error) {
	fromMS, toMS := uc.window(intervalMS, nowMS)
	rows, err := uc.store.GetAssetMetrics(ctx, symbol, fromMS, toMS)
	if err != nil {
		return nil, fmt.Errorf("oi_delta fetch: %w", err)
	}
	if len(rows) == 0 {
		uc.warnNoData(domrepo.IndicatorOIDelta, symbol, period, fromMS, toMS, 0, 0)
		return nil, nil
	}

	keys, buckets := lastPerBucket(len(rows), intervalMS,
		func(i int) int64 { return rows[i].Timestamp },
		func(i int) models.AssetMetric { return rows[i] },
	)
	if len(keys) < 2 {
		uc.warnNoData(domrepo.IndicatorOIDelta, symbol, period, fromMS, toMS, len(rows), len(keys))
		return nil, nil
	}

	// Percent change bucket over bucket; pairs with a null or zero
	// previous value cannot produce a change and are skipped.
	changes := make([]float64, 0, len(keys)-1)
	for i := 1; i < len(keys); i++ {
		cur := buckets[keys[i]].OpenInterest
		prev := buckets[keys[i-1]].OpenInterest
		if !cur.Valid || !prev.Valid || prev.Float64 == 0 {
			continue
		}
		changes = append(changes, (cur.Float64-prev.Float64)/prev.Float64*100)
	}
	if len(changes) == 0 {
		uc.warnNoData(domrepo.IndicatorOIDelta, symbol, period, fromMS, toMS, len(rows), len(keys))
		return nil, nil
	}

	return &models.OIDeltaData{
		Current: changes[len(changes)-1],
		Last5:   tail(changes, historyLen),
		Period:  string(period),
	}, nil
}

func (uc *FlowIndicators) funding(ctx context.Context, symbol string, period domrepo.Period, intervalMS, nowMS int64) (*models.FundingData, error) {
	fromMS, toMS := uc.window(intervalMS, nowMS)
	rows, err := uc.store.GetAssetMetrics(ctx, symbol, fromMS, toMS)
	if err != nil {
		return nil, fmt.Errorf("funding fetch: %w", err)
	}
	if len(rows) == 0 {
		uc.warnNoData(domrepo.IndicatorFunding, symbol, period, fromMS, toMS, 0, 0)
		return nil, nil
	}

	keys, buckets := lastPerBucket(len(rows), intervalMS,
		func(i int) int64 { return rows[i].Timestamp },
		func(i int) models.AssetMetric { return rows[i] },
	)

	// Fraction per funding interval -> percent.
	values := make([]float64, 0, len(keys))
	for _, k := range keys {
		if fr := buckets[k].FundingRate; fr.Valid {
			values = append(values, fr.Float64*100)
		}
	}
	if len(values) == 0 {
		uc.warnNoData(domrepo.IndicatorFunding, symbol, period, fromMS, toMS, len(rows), len(keys))
		return nil, nil
	}

	current := values[len(values)-1]
	return &models.FundingData{
		Current:    current,
		Last5:      tail(values, historyLen),
		Annualized: current * fundingEventsPerDay * 365,
		Period:     string(period),
	}, nil
}

func (uc *FlowIndicators) depth(ctx context.Context, symbol string, period domrepo.Period, intervalMS, nowMS int64) (*models.DepthData, error) {
	fromMS, toMS := uc.window(intervalMS, nowMS)
	rows, err := uc.store.GetOrderbookSnapshots(ctx, symbol, fromMS, toMS)
	if err != nil {
		return nil, fmt.Errorf("depth fetch: %w", err)
	}
	if len(rows) == 0 {
		uc.warnNoData(domrepo.IndicatorDepth, symbol, period, fromMS, toMS, 0, 0)
		return nil, nil
	}

	keys, buckets := lastPerBucket(len(rows), intervalMS,
		func(i int) int64 { return rows[i].Timestamp },
		func(i int) models.OrderbookSnapshot { return rows[i] },
	)

	ratios := make([]float64, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		ratios = append(ratios, buySellRatio(b.BidDepth5.Float64, b.AskDepth5.Float64))
	}

	current := buckets[keys[len(keys)-1]]
	var spread *float64
	if current.Spread.Valid {
		v := current.Spread.Float64
		spread = &v
	}

	return &models.DepthData{
		Bid:        current.BidDepth5.Float64,
		Ask:        current.AskDepth5.Float64,
		Ratio:      buySellRatio(current.BidDepth5.Float64, current.AskDepth5.Float64),
		RatioLast5: tail(ratios, historyLen),
		Spread:     spread,
		Period:     string(period),
	}, nil
}

func (uc *FlowIndicators) imbalance(ctx context.Context, symbol string, period domrepo.Period, intervalMS, nowMS int64) (*models.ImbalanceData, error) {
	fromMS, toMS := uc.window(intervalMS, nowMS)
	rows, err := uc.store.GetOrderbookSnapshots(ctx, symbol, fromMS, toMS)
	if err != nil {
		return nil, fmt.Errorf("imbalance fetch: %w", err)
	}
	if len(rows) == 0 {
		uc.warnNoData(domrepo.IndicatorImbalance, symbol, period, fromMS, toMS, 0, 0)
		return nil, nil
	}

	keys, buckets := lastPerBucket(len(rows), intervalMS,
		func(i int) int64 { return rows[i].Timestamp },
		func(i int) models.OrderbookSnapshot { return rows[i] },
	)

	values := make([]float64, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		values = append(values, depthImbalance(b.BidDepth5.Float64, b.AskDepth5.Float64))
	}

	return &models.ImbalanceData{
		Current: values[len(values)-1],
		Last5:   tail(values, historyLen),
		Period:  string(period),
	}, nil
}

// buySellRatio resolves a zero denominator to the neutral ratio 1.0.
func buySellRatio(num, den float64) float64 {
	if den > 0 {
		return num / den
	}
	return 1.0
}

// depthImbalance is (bid-ask)/(bid+ask), 0.0 when the book is empty.
func depthImbalance(bid, ask float64) float64 {
	total := bid + ask
	if total > 0 {
		return (bid - ask) / total
	}
	return 0.0
}

func (uc *FlowIndicators) warnNoData(indicator, symbol string, period domrepo.Period, fromMS, toMS int64, records, buckets int) {
	if uc.l == nil {
		return
	}
	uc.l.Warn("flow indicator insufficient data",
		applogger.String("indicator", indicator),
		applogger.String("symbol", symbol),
		applogger.String("period", string(period)),
		applogger.Int64("from_ms", fromMS),
		applogger.Int64("to_ms", toMS),
		applogger.Int("records", records),
		applogger.Int("buckets", buckets),
	)
}

func (uc *FlowIndicators) warn(msg string, fields ...applogger.Field) {
	if uc.l != nil {
		uc.l.Warn(msg, fields...)
	}
}

func (uc *FlowIndicators) errorLog(msg string, fields ...applogger.Field) {
	if uc.l != nil {
		uc.l.Error(msg, fields...)
	}
}

func (uc *FlowIndicators) record(indicator, status string) {
	if uc.metrics != nil {
		uc.metrics.RecordIndicator(indicator, status)
	}
}
