package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/projectsync/projectsync/internal/config"
	"github.com/projectsync/projectsync/internal/infrastructure/otel"
	"github.com/projectsync/projectsync/internal/server"
	"github.com/projectsync/projectsync/internal/transport/http/router"
	"github.com/projectsync/projectsync/pkg/logger"
)

func main() {
	srv := server.New()
	cfg := srv.Config

	initLogger(cfg)
	defer logger.Close()

	log := logger.Get().WithFields(logger.Component("server"))

	if err := srv.DB.RunMigrations(); err != nil {
		log.Fatal("failed to run database migrations", logger.Error(err))
	}

	r := router.NewRouter(srv)
	r.RegisterRoutes()

	if cfg.Sweeper.Enabled {
		if err := r.Deps.SweeperService.Start(); err != nil {
			log.Fatal("failed to start artifact sweeper", logger.Error(err))
		}
	}

	httpServer := &http.Server{
		Addr:    cfg.ServerAddress(),
		Handler: srv.Engine,
	}

	go func() {
		log.Info("http server listening", logger.String("addr", cfg.ServerAddress()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server error", logger.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if cfg.Sweeper.Enabled {
		r.Deps.SweeperService.Stop()
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown error", logger.Error(err))
	}

	if err := srv.DB.Close(); err != nil {
		log.Warn("database close error", logger.Error(err))
	}
}

// initLogger builds the global logger from configuration. When OTEL log
// export is enabled the local core is combined with an OTLP core so every
// entry is both written locally and shipped to the collector.
func initLogger(cfg *config.Config) {
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Development = cfg.IsDevelopment()
	if path := cfg.Logging.OutputPath; path != "" && path != "stdout" && path != "stderr" {
		logCfg.Output = logger.OutputFile
		logCfg.FilePath = path
	}

	base, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	if !cfg.OTEL.Enabled {
		logger.SetGlobal(base)
		return
	}

	otelCfg := otel.DefaultConfig()
	otelCfg.Enabled = true
	otelCfg.Endpoint = cfg.OTEL.Endpoint
	otelCfg.UseHTTP = cfg.OTEL.UseHTTP
	otelCfg.Insecure = cfg.OTEL.Insecure
	if cfg.OTEL.Environment != "" {
		otelCfg.Environment = cfg.OTEL.Environment
	}

	provider, err := otel.NewProvider(otelCfg)
	if err != nil {
		base.Warn("otel provider unavailable, using local logging only", logger.Error(err))
		logger.SetGlobal(base)
		return
	}

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	combined := otel.NewCombinedCore(base.Core(), provider, level)
	logger.SetGlobal(logger.NewWithCore(logCfg, combined, provider))
}
