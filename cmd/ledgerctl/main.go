// Command ledgerctl rebuilds derived ledger state outside the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/bizledger/internal/app"
	"github.com/SscSPs/bizledger/internal/platform/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case cmdRecomputeBalances, cmdRecomputeGoals, cmdSweepAlerts:
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage(os.Stderr)
		os.Exit(2)
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	companyID := fs.String("company", "", "Only process this company ID (default: every active company)")
	_ = fs.Parse(os.Args[2:])

	if err := run(cmd, *companyID, logger); err != nil {
		logger.Error("Command failed", slog.String("command", cmd), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "BizLedger operator CLI")
	fmt.Fprintln(w, "\nUsage:")
	fmt.Fprintln(w, "  ledgerctl <command> [-company <id>]")
	fmt.Fprintln(w, "\nCommands:")
	fmt.Fprintln(w, "  recompute-balances   Recompute every account balance from completed transactions")
	fmt.Fprintln(w, "  recompute-goals      Recompute progress for every active goal")
	fmt.Fprintln(w, "  sweep-alerts         Run the alert rules once")
}

func run(cmd, companyID string, logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	services := infra.Services(cfg)

	ids := []string{companyID}
	if companyID == "" {
		if ids, err = services.Company.ListActiveCompanyIDs(ctx); err != nil {
			return fmt.Errorf("failed to list companies: %w", err)
		}
	}
	logger.Info("Starting", slog.String("command", cmd), slog.Int("companies", len(ids)))

	r := &runner{
		maintenance: services.Maintenance,
		alerts:      services.Alert,
		concurrency: cfg.AlertSweepConcurrency,
		out:         os.Stdout,
		logger:      logger,
	}
	return r.execute(ctx, cmd, ids)
}
