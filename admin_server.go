package wpool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/compilepool/poold/sloghelper"
)

const readHeaderTimeout = 30 * time.Second

// AdminServerProcess runs the operational HTTP surface for a pool:
// /healthcheck, /metrics (Prometheus), and /status (this pool's §6.3 JSON
// snapshot). Grounded on bamboo's metrics_server.go, which this adapts by
// adding the /status route and pointing it at a live *WPool instead of a
// process-wide Prometheus handler alone.
func AdminServerProcess(ctx context.Context, pool *WPool, port int, gracefulShutdownTimeSec int) error {
	logger := sloghelper.FromContext(ctx, sloghelper.MetricsServerLoggerKey)
	router := gin.New()
	router.Use(gin.Recovery())

	httpServer := http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	router.GET("/healthcheck", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/status", func(c *gin.Context) {
		status, err := pool.GetPoolStatus(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json", mustMarshal(status))
	})

	logger.InfoContext(ctx, fmt.Sprintf("admin server listening at %v", httpServer.Addr))

	errCh := make(chan error)
	go func() {
		defer close(errCh)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.InfoContext(ctx, "httpServer.ListenAndServe", slog.Any("err", err))
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(gracefulShutdownTimeSec)*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.InfoContext(ctx, "httpServer.Shutdown", slog.Any("err", err))
			return err
		}
		return nil
	case err := <-errCh:
		return err
	}
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(`{}`)
	}
	return b
}
