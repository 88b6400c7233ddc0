package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"moviedash/internal/catalog"
	"moviedash/internal/logger"
	"moviedash/internal/movies"
	"moviedash/internal/source"
	"moviedash/pkg/utils"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		envFile    = flag.String("env", ".env", "dotenv file")
	)
	flag.Parse()

	if err := utils.LoadEnvFile(*envFile); err != nil {
		logger.Fatal("env file", "err", err)
	}
	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("config", "err", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.JSON = cfg.Logging.JSON
	logger.Init(logCfg)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	src, err := source.New(cfg.Source.Kind, cfg.Source.Path, cfg.Source.Table)
	if err != nil {
		logger.Fatal("source", "err", err)
	}
	cat, err := catalog.New(cfg.Cache.Size)
	if err != nil {
		logger.Fatal("catalog", "err", err)
	}
	repo := movies.NewRepo(cat, src)

	// Warm the cache; an unavailable source is reported by /ready, not fatal.
	if _, err := repo.Table(context.Background()); err != nil {
		logger.Warn("initial load failed", "source", src.Identity(), "err", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "source": src.Identity()})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		t, err := repo.Table(ctx)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":       "not_ready",
				"source_error": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"rows":      t.Len(),
			"load_id":   t.LoadID,
			"loaded_at": t.LoadedAt,
			"degraded":  t.Degraded,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler := movies.NewHandler(repo, cfg.Views.TopN, cfg.Views.HistogramBins)
	handler.RegisterRoutes(router.Group("/movies"))

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API server listening", "addr", cfg.Server.Addr, "source", src.Identity())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "err", err)
	}
	logger.Info("server stopped")
}
