package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/vitos/trade_journal/internal/config"
	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/infrastructure/logger"
	"github.com/vitos/trade_journal/internal/infrastructure/metrics"
	"github.com/vitos/trade_journal/internal/infrastructure/storage"
	"github.com/vitos/trade_journal/internal/infrastructure/tabular"
	"github.com/vitos/trade_journal/internal/mcp"
	"github.com/vitos/trade_journal/internal/usecase"
	"github.com/vitos/trade_journal/internal/web"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Load Config (.env first so envconfig sees it)
	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Storage
	repo, closeRepo, err := newRepository(cfg.Storage)
	if err != nil {
		log.Fatal("Failed to init dataset store", zap.Error(err))
	}
	defer closeRepo()

	// 4. Init Service
	m := metrics.New()
	reader := tabular.NewReader(cfg.Load.BaseDir, cfg.Load.MaxBytes)
	svc := usecase.NewJournalService(repo, reader, m, log)
	rpc := mcp.NewServer(svc, m, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Init Web Server
	var server *web.Server
	if cfg.Server.Port > 0 {
		// network callers may name files only inside load.base_dir
		fileLoads := cfg.Load.BaseDir != ""
		wsRPC := rpc
		if !fileLoads {
			wsRPC = mcp.NewServer(svc, m, log, mcp.WithoutFileLoads())
		}
		server = web.NewServer(cfg.Server.Port, cfg.Server.AllowedOrigins, fileLoads, svc, wsRPC, m, log)
		go func() {
			if err := server.Start(); err != nil {
				log.Error("Server failed", zap.Error(err))
				stop()
			}
		}()
	}

	// 6. Serve stdio until the host closes stdin
	if cfg.Transport.Stdio {
		go func() {
			if err := rpc.Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
				log.Error("Stdio transport failed", zap.Error(err))
			}
			log.Info("Stdin closed")
			stop()
		}()
	}

	// 7. Wait for Shutdown
	<-ctx.Done()

	log.Info("Shutting down...")
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", zap.Error(err))
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	if cfg.File != "" {
		return logger.NewFileLogger(cfg.File, cfg.Level)
	}
	return logger.NewLogger(cfg.Level)
}

func newRepository(cfg config.StorageConfig) (domain.DatasetRepository, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		store, err := storage.NewSQLiteStore(cfg.Name)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return storage.NewMemoryStore(), func() {}, nil
	}
}
