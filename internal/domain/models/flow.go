package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// TradeFlow is one row of the aggregated taker trade source. Notionals
// are decimal so per-bucket sums stay exact until derivation.
type TradeFlow struct {
	Timestamp         int64
	Symbol            string
	TakerBuyNotional  decimal.NullDecimal
	TakerSellNotional decimal.NullDecimal
}

// AssetMetric is one row of the asset metrics source.
type AssetMetric struct {
	Timestamp    int64
	Symbol       string
	OpenInterest sql.NullFloat64
	FundingRate  sql.NullFloat64
}

// OrderbookSnapshot is one row of the order book snapshot source.
// Depths aggregate the top five price levels per side.
type OrderbookSnapshot struct {
	Timestamp int64
	Symbol    string
	BidDepth5 sql.NullFloat64
	AskDepth5 sql.NullFloat64
	Spread    sql.NullFloat64
}

// CVDData summarizes cumulative volume delta over the lookback window.
type CVDData struct {
	Current    float64   `json:"current"`
	Last5      []float64 `json:"last_5"`
	Cumulative float64   `json:"cumulative"`
	Period     string    `json:"period"`
}

// TakerData summarizes taker buy/sell volume and ratio.
type TakerData struct {
	Buy        float64   `json:"buy"`
	Sell       float64   `json:"sell"`
	Ratio      float64   `json:"ratio"`
	RatioLast5 []float64 `json:"ratio_last_5"`
	Period     string    `json:"period"`
}

// OIData summarizes absolute open interest.
type OIData struct {
	Current float64   `json:"current"`
	Last5   []float64 `json:"last_5"`
	Period  string    `json:"period"`
}

// OIDeltaData summarizes open interest change percentage per bucket.
type OIDeltaData struct {
	Current float64   `json:"current"`
	Last5   []float64 `json:"last_5"`
	Period  string    `json:"period"`
}

// FundingData summarizes funding rate in percent per funding interval.
type FundingData struct {
	Current    float64   `json:"current"`
	Last5      []float64 `json:"last_5"`
	Annualized float64   `json:"annualized"`
	Period     string    `json:"period"`
}

// DepthData summarizes order book depth ratio and spread.
type DepthData struct {
	Bid        float64   `json:"bid"`
	Ask        float64   `json:"ask"`
	Ratio      float64   `json:"ratio"`
	RatioLast5 []float64 `json:"ratio_last_5"`
	Spread     *float64  `json:"spread"`
	Period     string    `json:"period"`
}

// ImbalanceData summarizes normalized bid/ask depth imbalance in [-1, 1].
type ImbalanceData struct {
	Current float64   `json:"current"`
	Last5   []float64 `json:"last_5"`
	Period  string    `json:"period"`
}
