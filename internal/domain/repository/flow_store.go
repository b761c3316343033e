package repository

import (
	"context"

	"github.com/toi500/Hyper-Alpha-Arena/internal/domain/models"
)

// Indicator names understood by the flow engine.
const (
	IndicatorCVD       = "CVD"
	IndicatorTaker     = "TAKER"
	IndicatorOI        = "OI"
	IndicatorOIDelta   = "OI_DELTA"
	IndicatorFunding   = "FUNDING"
	IndicatorDepth     = "DEPTH"
	IndicatorImbalance = "IMBALANCE"
)

// Indicators returns the full set of supported indicator names.
func Indicators() []string {
	return []string{
		IndicatorCVD,
		IndicatorTaker,
		IndicatorOI,
		IndicatorOIDelta,
		IndicatorFunding,
		IndicatorDepth,
		IndicatorImbalance,
	}
}

// FlowStore provides read-only access to the three market time-series
// sources. Timestamps are unix milliseconds; both range bounds are
// inclusive and rows come back ascending by timestamp.
type FlowStore interface {
	GetTradeFlows(ctx context.Context, symbol string, fromMS, toMS int64) ([]models.TradeFlow, error)
	GetAssetMetrics(ctx context.Context, symbol string, fromMS, toMS int64) ([]models.AssetMetric, error)
	GetOrderbookSnapshots(ctx context.Context, symbol string, fromMS, toMS int64) ([]models.OrderbookSnapshot, error)
}

// Metrics records flow engine observability signals.
type Metrics interface {
	RecordIndicator(indicator, status string)
	RecordQueryDuration(source string, seconds float64)
}
