// Package scheduler runs the background jobs that keep derived state fresh.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// CompanyLister provides the companies a job should visit.
type CompanyLister interface {
	ListActiveCompanyIDs(ctx context.Context) ([]string, error)
}

// CompanySweeper runs the alert rules for one company.
type CompanySweeper interface {
	SweepCompany(ctx context.Context, companyID string) ([]domain.Alert, error)
}

// AlertSweeperConfig holds configuration for the sweeper.
type AlertSweeperConfig struct {
	Interval    time.Duration
	Concurrency int
}

// SweepResult summarises one pass over all companies.
type SweepResult struct {
	Companies int
	Created   int
	Failed    int
}

// AlertSweeper periodically sweeps every active company.
type AlertSweeper struct {
	config    AlertSweeperConfig
	companies CompanyLister
	sweeper   CompanySweeper
	logger    *slog.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewAlertSweeper creates a new sweeper. It does nothing until Start is called.
func NewAlertSweeper(config AlertSweeperConfig, companies CompanyLister, sweeper CompanySweeper, logger *slog.Logger) *AlertSweeper {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &AlertSweeper{
		config:    config,
		companies: companies,
		sweeper:   sweeper,
		logger:    logger,
	}
}

// Start starts the ticker loop. Calling it twice is a no-op.
func (s *AlertSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Alert sweeper started",
		slog.Duration("interval", s.config.Interval),
		slog.Int("concurrency", s.config.Concurrency))
}

// Stop cancels the loop and waits for an in-flight pass, or for ctx to expire.
func (s *AlertSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Alert sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AlertSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("Alert sweep pass failed", slog.String("error", err.Error()))
			}
		}
	}
}

// SweepAll sweeps every active company once. A failing company is logged and counted but does
// not stop the others.
func (s *AlertSweeper) SweepAll(ctx context.Context) (SweepResult, error) {
	ids, err := s.companies.ListActiveCompanyIDs(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("failed to list companies: %w", err)
	}

	var (
		mu     sync.Mutex
		result = SweepResult{Companies: len(ids)}
	)
	err = ForEachCompany(ctx, ids, s.config.Concurrency, func(ctx context.Context, companyID string) error {
		created, err := s.sweeper.SweepCompany(ctx, companyID)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Failed++
			s.logger.Error("Alert sweep failed for company", slog.String("company_id", companyID), slog.String("error", err.Error()))
			return err
		}
		result.Created += len(created)
		return nil
	})

	s.logger.Info("Alert sweep pass finished",
		slog.Int("companies", result.Companies),
		slog.Int("created", result.Created),
		slog.Int("failed", result.Failed))
	return result, err
}

// ForEachCompany runs fn for every company with at most limit calls in flight. Every company is
// visited even when some fail; the failures are joined into the returned error.
func ForEachCompany(ctx context.Context, companyIDs []string, limit int, fn func(ctx context.Context, companyID string) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))

	var (
		mu   sync.Mutex
		errs []error
	)
	for _, id := range companyIDs {
		g.Go(func() error {
			if err := fn(gctx, id); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("company %s: %w", id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		errs = append(errs, ctx.Err())
	}
	return errors.Join(errs...)
}
