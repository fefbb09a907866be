package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/scheduler"
)

const (
	cmdRecomputeBalances = "recompute-balances"
	cmdRecomputeGoals    = "recompute-goals"
	cmdSweepAlerts       = "sweep-alerts"
)

type companyMaintainer interface {
	RecomputeCompanyBalances(ctx context.Context, companyID string) (*domain.BalanceRecomputeReport, error)
	RecomputeCompanyGoals(ctx context.Context, companyID string) (*domain.GoalRecomputeReport, error)
}

// runner fans a command out over companies and prints one line per change.
type runner struct {
	maintenance companyMaintainer
	alerts      scheduler.CompanySweeper
	concurrency int
	logger      *slog.Logger

	mu  sync.Mutex
	out io.Writer
}

func (r *runner) execute(ctx context.Context, cmd string, companyIDs []string) error {
	var job func(ctx context.Context, companyID string) error
	switch cmd {
	case cmdRecomputeBalances:
		job = r.recomputeBalances
	case cmdRecomputeGoals:
		job = r.recomputeGoals
	case cmdSweepAlerts:
		job = r.sweepAlerts
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return scheduler.ForEachCompany(ctx, companyIDs, r.concurrency, job)
}

func (r *runner) recomputeBalances(ctx context.Context, companyID string) error {
	report, err := r.maintenance.RecomputeCompanyBalances(ctx, companyID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range report.Changes {
		fmt.Fprintf(r.out, "%s\taccount %s (%s)\t%s -> %s\n", companyID, c.AccountName, c.AccountID, c.OldBalance.StringFixed(2), c.NewBalance.StringFixed(2))
	}
	fmt.Fprintf(r.out, "%s\tchecked %d accounts, %d changed\n", companyID, report.Checked, len(report.Changes))
	r.logger.Info("Recomputed balances",
		slog.String("company_id", companyID),
		slog.Int("checked", report.Checked),
		slog.Int("changed", len(report.Changes)))
	return nil
}

func (r *runner) recomputeGoals(ctx context.Context, companyID string) error {
	report, err := r.maintenance.RecomputeCompanyGoals(ctx, companyID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range report.Changes {
		line := fmt.Sprintf("%s\tgoal %s (%s)\t%s -> %s", companyID, c.GoalName, c.GoalID, c.OldAmount.StringFixed(2), c.NewAmount.StringFixed(2))
		if c.IsAchieved && !c.WasAchieved {
			line += "\tachieved"
		}
		fmt.Fprintln(r.out, line)
	}
	fmt.Fprintf(r.out, "%s\tchecked %d goals, %d changed\n", companyID, report.Checked, len(report.Changes))
	r.logger.Info("Recomputed goals",
		slog.String("company_id", companyID),
		slog.Int("checked", report.Checked),
		slog.Int("changed", len(report.Changes)))
	return nil
}

func (r *runner) sweepAlerts(ctx context.Context, companyID string) error {
	created, err := r.alerts.SweepCompany(ctx, companyID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range created {
		fmt.Fprintf(r.out, "%s\t%s\t%s\t%s\n", companyID, a.Severity, a.AlertType, a.Title)
	}
	fmt.Fprintf(r.out, "%s\tcreated %d alerts\n", companyID, len(created))
	return nil
}
