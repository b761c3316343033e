package di

import (
	"context"
	"fmt"
	"time"

	domrepo "github.com/toi500/Hyper-Alpha-Arena/internal/domain/repository"
	"github.com/toi500/Hyper-Alpha-Arena/internal/handler/api"
	internalrepo "github.com/toi500/Hyper-Alpha-Arena/internal/repository"
	"github.com/toi500/Hyper-Alpha-Arena/internal/usecase"
	pkgch "github.com/toi500/Hyper-Alpha-Arena/pkg/clickhouse"
	"github.com/toi500/Hyper-Alpha-Arena/pkg/config"
	xhttp "github.com/toi500/Hyper-Alpha-Arena/pkg/http"
	applogger "github.com/toi500/Hyper-Alpha-Arena/pkg/logger"
	pkgmetrics "github.com/toi500/Hyper-Alpha-Arena/pkg/metrics"
	"github.com/toi500/Hyper-Alpha-Arena/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the
// source tables exist for local bootstrap. In production the ingestion
// pipeline owns this schema; the statements are idempotent.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            timestamp Int64,
            symbol String,
            taker_buy_notional Nullable(Decimal(38, 18)),
            taker_sell_notional Nullable(Decimal(38, 18))
        ) ENGINE = MergeTree ORDER BY (symbol, timestamp)`, db, internalrepo.TableTradesAggregated),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            timestamp Int64,
            symbol String,
            open_interest Nullable(Float64),
            funding_rate Nullable(Float64)
        ) ENGINE = MergeTree ORDER BY (symbol, timestamp)`, db, internalrepo.TableAssetMetrics),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            timestamp Int64,
            symbol String,
            bid_depth_5 Nullable(Float64),
            ask_depth_5 Nullable(Float64),
            spread Nullable(Float64)
        ) ENGINE = MergeTree ORDER BY (symbol, timestamp)`, db, internalrepo.TableOrderbookSnapshots),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return pkgmetrics.New()
}

// ProvideFlowStore creates the ClickHouse-backed flow store.
func ProvideFlowStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger, m domrepo.Metrics) domrepo.FlowStore {
	store := internalrepo.NewCHFlowStore(chClient, cfg.ClickHouse.Database)
	store.SetLogger(l)
	store.SetMetrics(m)
	return store
}

// ProvideFlowIndicators creates the flow indicator engine.
func ProvideFlowIndicators(store domrepo.FlowStore, l *applogger.Logger, m domrepo.Metrics) *usecase.FlowIndicators {
	flow := usecase.NewFlowIndicators(store)
	flow.SetLogger(l)
	flow.SetMetrics(m)
	return flow
}

// ProvideFlowHandler creates the Echo handler for the flow API.
func ProvideFlowHandler(cfg *config.Config, l *applogger.Logger, flow *usecase.FlowIndicators) xhttp.Handler {
	return api.NewFlowEchoHandler(l, flow, cfg.Flow.RequestTimeout)
}

// ProvideApp creates the application.
func ProvideApp(cfg *config.Config, l *applogger.Logger, chClient *pkgch.Client, handler xhttp.Handler) *server.App {
	return server.New(cfg, l, chClient, handler)
}
