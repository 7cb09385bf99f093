package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/graphrag-compare/internal/adapters/report"
	"github.com/kirillkom/graphrag-compare/internal/bootstrap"
	"github.com/kirillkom/graphrag-compare/internal/config"
	"github.com/kirillkom/graphrag-compare/internal/observability/logging"
)

const serviceName = "graphrag-evaluate"

func main() {
	questionsPath := flag.String("questions", "", "YAML question set")
	outPath := flag.String("out", "comparison.xlsx", "xlsx report path")
	flag.Parse()

	dotenvErr := config.LoadDotEnv()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, serviceName, cfg.LogLevel))
	if dotenvErr != nil {
		slog.Warn("dotenv_load_failed", "error", dotenvErr)
	}

	if err := run(cfg, *questionsPath, *outPath); err != nil {
		slog.Error("evaluate_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, questionsPath, outPath string) error {
	if questionsPath == "" {
		return fmt.Errorf("-questions is required")
	}
	set, err := report.LoadQuestionSetFile(questionsPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	results, err := app.Evaluator.Run(ctx, set)
	if err != nil && len(results) == 0 {
		return err
	}
	if err != nil {
		slog.Warn("evaluate_interrupted", "completed", len(results), "total", len(set.Questions), "error", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.WriteXLSX(out, set.Name, results); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Vector.Failed() || r.VectorCypher.Failed() {
			failed++
		}
	}
	slog.Info("evaluate_done", "questions", len(results), "with_failures", failed, "report", outPath)
	return nil
}
