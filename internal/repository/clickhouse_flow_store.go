package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/toi500/Hyper-Alpha-Arena/internal/domain/models"
	domrepo "github.com/toi500/Hyper-Alpha-Arena/internal/domain/repository"
	pkgch "github.com/toi500/Hyper-Alpha-Arena/pkg/clickhouse"
	applogger "github.com/toi500/Hyper-Alpha-Arena/pkg/logger"
)

// Source table names (without database prefix).
const (
	TableTradesAggregated   = "market_trades_aggregated"
	TableAssetMetrics       = "market_asset_metrics"
	TableOrderbookSnapshots = "market_orderbook_snapshots"
)

// CHFlowStore implements FlowStore backed by ClickHouse.
type CHFlowStore struct {
	db       *sql.DB
	database string
	metrics  domrepo.Metrics
	l        *applogger.Logger
}

func NewCHFlowStore(ch *pkgch.Client, database string) *CHFlowStore {
	return &CHFlowStore{db: ch.DB(), database: database}
}

// SetLogger injects a structured logger.
func (s *CHFlowStore) SetLogger(l *applogger.Logger) { s.l = l }

// SetMetrics injects a metrics recorder.
func (s *CHFlowStore) SetMetrics(m domrepo.Metrics) { s.metrics = m }

func (s *CHFlowStore) GetTradeFlows(ctx context.Context, symbol string, fromMS, toMS int64) ([]models.TradeFlow, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT timestamp, symbol, taker_buy_notional, taker_sell_notional
        FROM %s
        WHERE symbol = ? AND timestamp >= ? AND timestamp <= ?
        ORDER BY timestamp ASC
    `, s.table(TableTradesAggregated))
	rows, err := s.db.QueryContext(ctx, q, strings.ToUpper(symbol), fromMS, toMS)
	if err != nil {
		s.logQueryError(TableTradesAggregated, symbol, fromMS, toMS, err)
		return nil, fmt.Errorf("get trade flows: %w", err)
	}
	defer rows.Close()

	out := make([]models.TradeFlow, 0, 256)
	for rows.Next() {
		var r models.TradeFlow
		if err := rows.Scan(&r.Timestamp, &r.Symbol, &r.TakerBuyNotional, &r.TakerSellNotional); err != nil {
			s.logQueryError(TableTradesAggregated, symbol, fromMS, toMS, err)
			return nil, fmt.Errorf("scan trade flow: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		s.logQueryError(TableTradesAggregated, symbol, fromMS, toMS, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.logQueryOK(TableTradesAggregated, symbol, len(out), start)
	return out, nil
}

func (s *CHFlowStore) GetAssetMetrics(ctx context.Context, symbol string, fromMS, toMS int64) ([]models.AssetMetric, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT timestamp, symbol, open_interest, funding_rate
        FROM %s
        WHERE symbol = ? AND timestamp >= ? AND timestamp <= ?
        ORDER BY timestamp ASC
    `, s.table(TableAssetMetrics))
	rows, err := s.db.QueryContext(ctx, q, strings.ToUpper(symbol), fromMS, toMS)
	if err != nil {
		s.logQueryError(TableAssetMetrics, symbol, fromMS, toMS, err)
		return nil, fmt.Errorf("get asset metrics: %w", err)
	}
	defer rows.Close()

	out := make([]models.AssetMetric, 0, 64)
	for rows.Next() {
		var r models.AssetMetric
		if err := rows.Scan(&r.Timestamp, &r.Symbol, &r.OpenInterest, &r.FundingRate); err != nil {
			s.logQueryError(TableAssetMetrics, symbol, fromMS, toMS, err)
			return nil, fmt.Errorf("scan asset metric: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		s.logQueryError(TableAssetMetrics, symbol, fromMS, toMS, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.logQueryOK(TableAssetMetrics, symbol, len(out), start)
	return out, nil
}

func (s *CHFlowStore) GetOrderbookSnapshots(ctx context.Context, symbol string, fromMS, toMS int64) ([]models.OrderbookSnapshot, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT timestamp, symbol, bid_depth_5, ask_depth_5, spread
        FROM %s
        WHERE symbol = ? AND timestamp >= ? AND timestamp <= ?
        ORDER BY timestamp ASC
    `, s.table(TableOrderbookSnapshots))
	rows, err := s.db.QueryContext(ctx, q, strings.ToUpper(symbol), fromMS, toMS)
	if err != nil {
		s.logQueryError(TableOrderbookSnapshots, symbol, fromMS, toMS, err)
		return nil, fmt.Errorf("get orderbook snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]models.OrderbookSnapshot, 0, 64)
	for rows.Next() {
		var r models.OrderbookSnapshot
		if err := rows.Scan(&r.Timestamp, &r.Symbol, &r.BidDepth5, &r.AskDepth5, &r.Spread); err != nil {
			s.logQueryError(TableOrderbookSnapshots, symbol, fromMS, toMS, err)
			return nil, fmt.Errorf("scan orderbook snapshot: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		s.logQueryError(TableOrderbookSnapshots, symbol, fromMS, toMS, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.logQueryOK(TableOrderbookSnapshots, symbol, len(out), start)
	return out, nil
}

func (s *CHFlowStore) table(name string) string {
	if s.database == "" {
		return name
	}
	return s.database + "." + name
}

func (s *CHFlowStore) logQueryError(table, symbol string, fromMS, toMS int64, err error) {
	if s.l == nil {
		return
	}
	s.l.Error("clickhouse flow query error",
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.Int64("from_ms", fromMS),
		applogger.Int64("to_ms", toMS),
		applogger.Error(err),
	)
}

func (s *CHFlowStore) logQueryOK(table, symbol string, rows int, start time.Time) {
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordQueryDuration(table, elapsed.Seconds())
	}
	if s.l == nil {
		return
	}
	s.l.Debug("clickhouse flow query ok",
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.Int("rows", rows),
		applogger.Duration("duration_ms", elapsed),
	)
}

var _ domrepo.FlowStore = (*CHFlowStore)(nil)
