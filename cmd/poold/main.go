package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"

	wpool "github.com/compilepool/poold"
	"github.com/compilepool/poold/helper"
	"github.com/compilepool/poold/internal"
	"github.com/compilepool/poold/sloghelper"
)

func main() {
	appMode := "debug"
	if len(os.Args) > 1 {
		appMode = os.Args[1]
	}

	ctx := context.Background()
	os.Exit(run(ctx, appMode))
}

func run(ctx context.Context, appMode string) int {
	cfg, err := LoadConfig(appMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := helper.InitLog(cfg.App.Name, &cfg.Log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ctx = sloghelper.Init(ctx)
	logger := sloghelper.FromContext(ctx, sloghelper.PoolLoggerKey)

	tp, err := wpool.NewTracerProvider(ctx, cfg.App.Name, cfg.Trace)
	if err != nil {
		logger.ErrorContext(ctx, "NewTracerProvider", slog.Any("err", err))
		return 1
	}
	if shutdownable, ok := tp.(interface{ Shutdown(context.Context) error }); ok {
		defer func() { _ = shutdownable.Shutdown(context.Background()) }()
	}
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	pool, err := buildPool(ctx, cfg)
	if err != nil {
		logger.ErrorContext(ctx, "buildPool", slog.Any("err", err))
		return 1
	}

	ctx, cancel := context.WithCancel(ctx)
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return wpool.AdminServerProcess(egCtx, pool, cfg.MetricsServer.Port, cfg.MetricsServer.GracefulShutdownTimeSec)
	})
	eg.Go(func() error {
		defer cancel()
		return helper.SignalWatchProcess(egCtx)
	})

	err = eg.Wait()
	pool.Close()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "eg.Wait", slog.Any("err", err))
		return 1
	}
	return 0
}

func buildPool(ctx context.Context, cfg *helper.Config) (*wpool.WPool, error) {
	secretKey, err := decodeSecretKey(cfg.Pool.SecretKeyBase64)
	if err != nil {
		return nil, internal.Errorf("decodeSecretKey. err: %w", err)
	}

	client := wpool.NewHTTPWorkerClient(time.Duration(cfg.WorkerClient.TimeoutSec) * time.Second)
	cache, err := buildResultCache(cfg.ResultCache)
	if err != nil {
		return nil, internal.Errorf("buildResultCache. err: %w", err)
	}
	audit, err := buildAuditPublisher(cfg.Audit)
	if err != nil {
		return nil, internal.Errorf("buildAuditPublisher. err: %w", err)
	}

	pool := wpool.NewPool(ctx, secretKey, cfg.Pool.MaxQueuedJobs, client, cache, audit, nil)

	for _, w := range cfg.Pool.Workers {
		addr, err := decodeWorkerAddr(w)
		if err != nil {
			return nil, internal.Errorf("decodeWorkerAddr. host: %s, err: %w", w.Host, err)
		}
		if err := pool.AddWorker(addr); err != nil {
			return nil, internal.Errorf("pool.AddWorker. host: %s, err: %w", w.Host, err)
		}
	}

	return pool, nil
}

func decodeSecretKey(b64 string) ([64]byte, error) {
	var key [64]byte
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return key, internal.Errorf("base64.StdEncoding.DecodeString. err: %w", err)
	}
	if len(raw) != len(key) {
		return key, internal.Errorf("secret key must be %d bytes, got %d", len(key), len(raw))
	}
	copy(key[:], raw)
	return key, nil
}

func decodeWorkerAddr(w helper.WorkerConfig) (wpool.WorkerAddr, error) {
	var addr wpool.WorkerAddr
	raw, err := base64.StdEncoding.DecodeString(w.PubkeyBase64)
	if err != nil {
		return addr, internal.Errorf("base64.StdEncoding.DecodeString. err: %w", err)
	}
	if len(raw) != len(addr.Pubkey) {
		return addr, internal.Errorf("pubkey must be %d bytes, got %d", len(addr.Pubkey), len(raw))
	}
	addr.Host = w.Host
	copy(addr.Pubkey[:], raw)
	return addr, nil
}
