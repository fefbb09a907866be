package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/platform/telemetry"
	"github.com/jackc/pgx/v5"
)

type maintenanceService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	accountRepo portsrepo.AccountReader
	goalRepo    portsrepo.GoalRepositoryFacade
	recompute   *ledgerRecomputer
}

func NewMaintenanceService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.MaintenanceSvc {
	svc := &maintenanceService{
		txManager:   repos.TxManager,
		accountRepo: repos.AccountRepo,
		goalRepo:    repos.GoalRepo,
		recompute:   newLedgerRecomputer(repos),
	}
	svc.apply(options)
	return svc
}

var _ portssvc.MaintenanceSvc = (*maintenanceService)(nil)

func (s *maintenanceService) RecomputeBalances(ctx context.Context, companyID string, userID string) (*domain.BalanceRecomputeReport, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.recomputeBalances(ctx, companyID, userID)
}

func (s *maintenanceService) RecomputeGoals(ctx context.Context, companyID string, userID string) (*domain.GoalRecomputeReport, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.recomputeGoals(ctx, companyID, userID)
}

func (s *maintenanceService) RecomputeCompanyBalances(ctx context.Context, companyID string) (*domain.BalanceRecomputeReport, error) {
	return s.recomputeBalances(ctx, companyID, SystemActor)
}

func (s *maintenanceService) RecomputeCompanyGoals(ctx context.Context, companyID string) (*domain.GoalRecomputeReport, error) {
	return s.recomputeGoals(ctx, companyID, SystemActor)
}

// recomputeBalances rebuilds every account of the company, active or not, in one transaction.
// The report lists only the accounts whose cached balance was wrong.
func (s *maintenanceService) recomputeBalances(ctx context.Context, companyID, actor string) (*domain.BalanceRecomputeReport, error) {
	ctx, span := s.StartSpan(ctx, "MaintenanceService", "RecomputeBalances", companyID)
	defer span.End()

	accounts, err := s.accountRepo.ListAccounts(ctx, companyID, false)
	if err != nil {
		telemetry.RecordError(span, err)
		s.LogError(ctx, err, "Failed to list accounts for recompute", slog.String("company_id", companyID))
		return nil, err
	}
	ids := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		ids = append(ids, acc.AccountID)
	}

	report := &domain.BalanceRecomputeReport{Checked: len(ids), Changes: []domain.BalanceChange{}}
	if len(ids) == 0 {
		return report, nil
	}

	err = runInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		changes, err := s.recompute.accounts(ctx, tx, ids, actor, s.Now())
		if err != nil {
			return apperrors.NewConsistencyError("failed to recompute balances", err)
		}
		for _, c := range changes {
			if c.Changed() {
				report.Changes = append(report.Changes, c)
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.LogError(ctx, err, "Balance recompute failed", slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Balances recomputed",
		slog.String("company_id", companyID),
		slog.Int("checked", report.Checked),
		slog.Int("corrected", len(report.Changes)))
	return report, nil
}

// recomputeGoals refreshes every active goal of the company in one transaction.
func (s *maintenanceService) recomputeGoals(ctx context.Context, companyID, actor string) (*domain.GoalRecomputeReport, error) {
	ctx, span := s.StartSpan(ctx, "MaintenanceService", "RecomputeGoals", companyID)
	defer span.End()

	active, err := s.goalRepo.ListGoals(ctx, companyID, true)
	if err != nil {
		telemetry.RecordError(span, err)
		s.LogError(ctx, err, "Failed to list goals for recompute", slog.String("company_id", companyID))
		return nil, err
	}
	ids := make([]string, 0, len(active))
	for _, g := range active {
		ids = append(ids, g.GoalID)
	}

	report := &domain.GoalRecomputeReport{Checked: len(ids), Changes: []domain.GoalProgressChange{}}
	if len(ids) == 0 {
		return report, nil
	}

	err = runInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		locked, err := s.goalRepo.FindGoalsByIDsForUpdate(ctx, tx, ids)
		if err != nil {
			return err
		}
		changes, err := s.recompute.goals(ctx, tx, locked, actor, s.Now())
		if err != nil {
			return apperrors.NewConsistencyError("failed to recompute goals", err)
		}
		for _, c := range changes {
			if c.Changed() {
				report.Changes = append(report.Changes, c)
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.LogError(ctx, err, "Goal recompute failed", slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Goals recomputed",
		slog.String("company_id", companyID),
		slog.Int("checked", report.Checked),
		slog.Int("updated", len(report.Changes)))
	return report, nil
}
