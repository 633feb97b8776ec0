// Kestrel - Fraud analysis desk for card-not-present transactions.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/opensource-finance/kestrel/internal/api"
	"github.com/opensource-finance/kestrel/internal/bus"
	"github.com/opensource-finance/kestrel/internal/cache"
	"github.com/opensource-finance/kestrel/internal/domain"
	"github.com/opensource-finance/kestrel/internal/features"
	"github.com/opensource-finance/kestrel/internal/form"
	"github.com/opensource-finance/kestrel/internal/present"
	"github.com/opensource-finance/kestrel/internal/report"
	"github.com/opensource-finance/kestrel/internal/repository"
	"github.com/opensource-finance/kestrel/internal/scoring"
	"github.com/opensource-finance/kestrel/internal/session"
	"github.com/opensource-finance/kestrel/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	root := &cobra.Command{
		Use:   "kestrel",
		Short: "Fraud analysis desk backed by a remote scoring model",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Local overrides; absence is not an error.
			_ = godotenv.Load()
		},
	}

	root.AddCommand(serveCommand())
	root.AddCommand(analyzeCommand())
	root.AddCommand(versionCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(cfg domain.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis desk API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := domain.ConfigFromEnv()
			logger := setupLogger(cfg.Logging)

			slog.Info("starting kestrel",
				"version", Version,
				"commit", Commit,
				"build_date", BuildDate,
			)
			slog.Info("configuration loaded",
				"repository", cfg.Repository.Driver,
				"cache", cfg.Cache.Type,
				"eventbus", cfg.EventBus.Type,
				"scoring_url", cfg.Scoring.BaseURL,
			)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-sigCh
				slog.Info("received shutdown signal", "signal", sig)
				cancel()
			}()

			repo, err := repository.New(cfg.Repository)
			if err != nil {
				return fmt.Errorf("initializing repository: %w", err)
			}
			defer repo.Close()
			slog.Info("repository initialized", "driver", cfg.Repository.Driver)

			cacheImpl, err := cache.New(cfg.Cache)
			if err != nil {
				return fmt.Errorf("initializing cache: %w", err)
			}
			defer cacheImpl.Close()
			slog.Info("cache initialized", "type", cfg.Cache.Type)

			busImpl, err := bus.New(cfg.EventBus)
			if err != nil {
				return fmt.Errorf("initializing event bus: %w", err)
			}
			defer busImpl.Close()
			slog.Info("event bus initialized", "type", cfg.EventBus.Type)

			client := scoring.NewClient(cfg.Scoring, logger)
			register := scoring.NewRegister(client, logger)

			sessions := session.NewStore(repo, logger)
			if err := sessions.Load(ctx); err != nil {
				slog.Warn("failed to restore session", "error", err)
			}

			reviewWorker := worker.NewWorker(busImpl, repo, logger)
			if err := reviewWorker.Start(); err != nil {
				return fmt.Errorf("starting review worker: %w", err)
			}

			srv := api.NewServer(cfg, repo, cacheImpl, busImpl, register, client, sessions, Version, logger)

			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					slog.Error("server failed", "error", err)
					cancel()
				}
			}()

			slog.Info("kestrel is ready",
				"host", cfg.Server.Host,
				"port", cfg.Server.Port,
			)
			printBanner(cfg, Version)

			<-ctx.Done()
			slog.Info("shutting down...")

			reviewWorker.Stop()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("server forced to shutdown", "error", err)
			}

			slog.Info("kestrel shutdown complete")
			return nil
		},
	}
}

func analyzeCommand() *cobra.Command {
	var raw form.RawInput
	var analyst, reportPath string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score a single transaction from the command line",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := domain.ConfigFromEnv()
			logger := setupLogger(domain.LoggingConfig{Level: "warn", Format: "text"})

			input, err := form.Coerce(raw)
			if err != nil {
				return err
			}

			feats := features.Derive(input)
			req := features.BuildRequest(input, feats)

			client := scoring.NewClient(cfg.Scoring, logger)
			resp, err := client.Score(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("scoring transaction: %w", err)
			}

			vm := present.Present(resp)
			printViewModel(vm)

			if reportPath != "" {
				a := &domain.Assessment{
					Analyst:   analyst,
					Input:     *input,
					Request:   req,
					Response:  *resp,
					CreatedAt: time.Now().UTC(),
				}
				doc := report.NewSynthesizer().Synthesize(a, analyst)
				if err := os.WriteFile(reportPath, doc.Bytes(), 0o644); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
				fmt.Printf("\nReport written to %s\n", reportPath)
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&raw.Amount, "amount", "", "transaction amount")
	flags.StringVar(&raw.Hour, "hour", "", "hour of day (0-23)")
	flags.StringVar(&raw.DayOfWeek, "day-of-week", "", "day of week (0=Sunday)")
	flags.StringVar(&raw.Category, "category", "", "purchase category")
	flags.StringVar(&raw.Age, "age", "", "customer age")
	flags.StringVar(&raw.Gender, "gender", "", "customer gender (M/F)")
	flags.StringVar(&raw.City, "city", "", "customer city")
	flags.StringVar(&raw.Device, "device", "", "device type")
	flags.StringVar(&raw.PaymentMethod, "payment-method", "", "payment method")
	flags.StringVar(&raw.ItemQuantity, "quantity", "1", "item quantity")
	flags.StringVar(&raw.ShippingAddress, "shipping", domain.ShippingSameAsBilling, "shipping address option")
	flags.StringVar(&raw.Browser, "browser", "", "browser")
	flags.StringVar(&analyst, "analyst", "", "analyst name for the report header")
	flags.StringVar(&reportPath, "report", "", "write the analysis report to this file")

	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kestrel %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		},
	}
}

func printViewModel(vm present.ViewModel) {
	fmt.Println()
	fmt.Printf("  Verdict:      %s\n", vm.Verdict)
	fmt.Printf("  Probability:  %s (model: %s)\n", vm.Probability, vm.ModelProbability)
	fmt.Printf("  Risk level:   %s\n", vm.RiskLevel)
	fmt.Printf("  Transaction:  %s\n", vm.TransactionID)
	if vm.NoRiskFactors {
		fmt.Println("  Risk factors: none identified")
	} else {
		fmt.Println("  Risk factors:")
		for _, f := range vm.RiskFactors {
			fmt.Printf("    - %s\n", f)
		}
	}
	fmt.Println("  Recommendations:")
	for _, r := range vm.Recommendations {
		fmt.Printf("    - %s\n", r)
	}
	fmt.Println()
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  KESTREL - Fraud Analysis Desk")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST   /api/analyze                  - Score a transaction")
	fmt.Println("    GET    /api/result                   - Current scoring register state")
	fmt.Println("    GET    /api/assessments              - Recent assessments")
	fmt.Println("    GET    /api/assessments/{id}         - Assessment by ID")
	fmt.Println("    GET    /api/assessments/{id}/report  - Download analysis report")
	fmt.Println("    GET    /api/stats                    - Dashboard aggregates")
	fmt.Println("    GET    /api/transactions             - Flagged transaction review list")
	fmt.Println("    GET    /api/users                    - User review list")
	fmt.Println("    POST   /api/session                  - Sign in")
	fmt.Println("    GET    /health                       - Health check")
	fmt.Println("    GET    /metrics                      - Prometheus metrics")
	fmt.Println()
}
