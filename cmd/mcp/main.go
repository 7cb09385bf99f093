package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/kirillkom/graphrag-compare/internal/adapters/mcp"
	"github.com/kirillkom/graphrag-compare/internal/bootstrap"
	"github.com/kirillkom/graphrag-compare/internal/config"
	"github.com/kirillkom/graphrag-compare/internal/observability/logging"
)

const (
	serviceName = "graphrag-mcp"
	version     = "1.0.0"
)

func main() {
	dotenvErr := config.LoadDotEnv()
	cfg := config.Load()
	// stdout carries the protocol
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, serviceName, cfg.LogLevel))
	if dotenvErr != nil {
		slog.Warn("dotenv_load_failed", "error", dotenvErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, nil)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := mcpadapter.NewServer(app.Comparator, version, cfg.RAGTopKMax)
	slog.Info("mcp_serving_stdio", "graph_backend", cfg.GraphBackend)
	if err := srv.ServeStdio(); err != nil {
		slog.Error("mcp_server_failed", "error", err)
	}
}
