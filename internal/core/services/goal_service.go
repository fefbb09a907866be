package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type goalService struct {
	BaseService
	txManager    portsrepo.TransactionManager
	goalRepo     portsrepo.GoalRepositoryFacade
	categoryRepo portsrepo.CategoryReader
	recompute    *ledgerRecomputer
}

func NewGoalService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.GoalSvcFacade {
	svc := &goalService{
		txManager:    repos.TxManager,
		goalRepo:     repos.GoalRepo,
		categoryRepo: repos.CategoryRepo,
		recompute:    newLedgerRecomputer(repos),
	}
	svc.apply(options)
	return svc
}

var _ portssvc.GoalSvcFacade = (*goalService)(nil)

// CreateGoal stores a goal with its progress already computed from the ledger.
func (s *goalService) CreateGoal(ctx context.Context, companyID string, req dto.CreateGoalRequest, userID string) (*domain.Goal, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleManager); err != nil {
		return nil, err
	}

	now := s.Now()
	goal := domain.Goal{
		GoalID:        uuid.NewString(),
		CompanyID:     companyID,
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		GoalType:      req.GoalType,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: decimal.Zero,
		StartDate:     domain.DateOnly(req.StartDate),
		TargetDate:    domain.DateOnly(req.TargetDate),
		CategoryID:    req.CategoryID,
		IsActive:      true,
		AuditFields:   domain.NewAuditFields(userID, now),
	}
	if err := s.validate(ctx, companyID, &goal); err != nil {
		return nil, err
	}
	if _, _, err := s.recompute.refreshGoal(ctx, nil, &goal, domain.DateOnly(now), now); err != nil {
		s.LogError(ctx, err, "Failed to compute initial goal progress", slog.String("company_id", companyID))
		return nil, err
	}

	if err := s.goalRepo.SaveGoal(ctx, goal); err != nil {
		s.LogError(ctx, err, "Failed to save goal", slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Goal created",
		slog.String("goal_id", goal.GoalID),
		slog.String("company_id", companyID))
	return &goal, nil
}

// validate checks the goal fields and its category. An empty category id unbinds the goal.
func (s *goalService) validate(ctx context.Context, companyID string, goal *domain.Goal) error {
	if goal.Name == "" {
		return apperrors.NewValidationFailedError("goal name is required")
	}
	if !goal.GoalType.IsValid() {
		return apperrors.NewValidationFailedError(fmt.Sprintf("invalid goal type %q", goal.GoalType))
	}
	if !goal.TargetAmount.IsPositive() {
		return apperrors.NewValidationFailedError("target amount must be greater than zero")
	}
	if !domain.HasMoneyPrecision(goal.TargetAmount) {
		return apperrors.NewValidationFailedError("target " + domain.ErrAmountPrecision.Error())
	}
	if !goal.StartDate.Before(goal.TargetDate) {
		return apperrors.NewValidationFailedError("start date must be before target date")
	}
	if goal.CategoryID != nil && *goal.CategoryID == "" {
		goal.CategoryID = nil
	}
	if goal.CategoryID == nil {
		return nil
	}
	category, err := s.categoryRepo.FindCategoryByID(ctx, *goal.CategoryID)
	if err != nil {
		return err
	}
	if category.CompanyID != companyID {
		return notFoundIn("category", *goal.CategoryID)
	}
	return nil
}

func (s *goalService) findInCompany(ctx context.Context, companyID, goalID string) (*domain.Goal, error) {
	goal, err := s.goalRepo.FindGoalByID(ctx, goalID)
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to find goal by ID", slog.String("goal_id", goalID))
		return nil, err
	}
	if goal.CompanyID != companyID {
		return nil, notFoundIn("goal", goalID)
	}
	return goal, nil
}

func (s *goalService) GetGoalByID(ctx context.Context, companyID string, goalID string, userID string) (*domain.Goal, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	return s.findInCompany(ctx, companyID, goalID)
}

func (s *goalService) ListGoals(ctx context.Context, companyID string, userID string, activeOnly bool) ([]domain.Goal, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	goals, err := s.goalRepo.ListGoals(ctx, companyID, activeOnly)
	if err != nil {
		s.LogError(ctx, err, "Failed to list goals", slog.String("company_id", companyID))
		return nil, err
	}
	if goals == nil {
		return []domain.Goal{}, nil
	}
	return goals, nil
}

// lockGoal locks one goal row and hides goals of other companies.
func (s *goalService) lockGoal(ctx context.Context, tx pgx.Tx, companyID, goalID string) (domain.Goal, error) {
	goals, err := s.goalRepo.FindGoalsByIDsForUpdate(ctx, tx, []string{goalID})
	if err != nil {
		return domain.Goal{}, err
	}
	if len(goals) == 0 || goals[0].CompanyID != companyID {
		return domain.Goal{}, notFoundIn("goal", goalID)
	}
	return goals[0], nil
}

// UpdateGoal edits a goal and recomputes its progress in the same transaction.
func (s *goalService) UpdateGoal(ctx context.Context, companyID string, goalID string, req dto.UpdateGoalRequest, userID string) (*domain.Goal, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleManager); err != nil {
		return nil, err
	}

	var goal domain.Goal
	err := runInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		var err error
		goal, err = s.lockGoal(ctx, tx, companyID, goalID)
		if err != nil {
			return err
		}
		wasBound := goal.CategoryID != nil
		applyGoalUpdate(&goal, req)
		if err := s.validate(ctx, companyID, &goal); err != nil {
			return err
		}
		// an unbound goal tracks nothing; achievement stays sticky
		if wasBound && goal.CategoryID == nil {
			goal.CurrentAmount = decimal.Zero
		}

		now := s.Now()
		goal.Touch(userID, now)
		if _, _, err := s.recompute.refreshGoal(ctx, tx, &goal, domain.DateOnly(now), now); err != nil {
			return apperrors.NewConsistencyError("failed to recompute goal progress", err)
		}
		return s.goalRepo.UpdateGoalInTx(ctx, tx, goal)
	})
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to update goal", slog.String("goal_id", goalID))
		return nil, err
	}

	s.LogInfo(ctx, "Goal updated",
		slog.String("goal_id", goalID),
		slog.String("company_id", companyID))
	return &goal, nil
}

func applyGoalUpdate(goal *domain.Goal, req dto.UpdateGoalRequest) {
	if req.Name != nil {
		goal.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		goal.Description = *req.Description
	}
	if req.GoalType != nil {
		goal.GoalType = *req.GoalType
	}
	if req.TargetAmount != nil {
		goal.TargetAmount = *req.TargetAmount
	}
	if req.StartDate != nil {
		goal.StartDate = domain.DateOnly(*req.StartDate)
	}
	if req.TargetDate != nil {
		goal.TargetDate = domain.DateOnly(*req.TargetDate)
	}
	if req.CategoryID != nil {
		goal.CategoryID = req.CategoryID
	}
	if req.IsActive != nil {
		goal.IsActive = *req.IsActive
	}
}

func (s *goalService) DeleteGoal(ctx context.Context, companyID string, goalID string, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleManager); err != nil {
		return err
	}
	if _, err := s.findInCompany(ctx, companyID, goalID); err != nil {
		return err
	}
	if err := s.goalRepo.DeleteGoal(ctx, goalID); err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to delete goal", slog.String("goal_id", goalID))
		return err
	}
	s.LogInfo(ctx, "Goal deleted",
		slog.String("goal_id", goalID),
		slog.String("company_id", companyID))
	return nil
}

// RefreshGoalProgress recomputes one goal under its row lock. Goals without a category keep
// their stored amount.
func (s *goalService) RefreshGoalProgress(ctx context.Context, companyID string, goalID string, userID string) (*domain.Goal, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}

	var goal domain.Goal
	err := runInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		locked, err := s.lockGoal(ctx, tx, companyID, goalID)
		if err != nil {
			return err
		}
		goals := []domain.Goal{locked}
		if _, err := s.recompute.goals(ctx, tx, goals, userID, s.Now()); err != nil {
			return apperrors.NewConsistencyError("failed to recompute goal progress", err)
		}
		goal = goals[0]
		return nil
	})
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to refresh goal progress", slog.String("goal_id", goalID))
		return nil, err
	}
	return &goal, nil
}

// GoalProgressForPeriod aggregates like the goal's own progress but over [start, end] and
// without writing anything. A goal without a category reports zero.
func (s *goalService) GoalProgressForPeriod(ctx context.Context, companyID string, goalID string, start, end time.Time, userID string) (decimal.Decimal, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return decimal.Zero, err
	}
	start, end = domain.DateOnly(start), domain.DateOnly(end)
	if start.After(end) {
		return decimal.Zero, apperrors.NewValidationFailedError("start must not be after end")
	}
	goal, err := s.findInCompany(ctx, companyID, goalID)
	if err != nil {
		return decimal.Zero, err
	}
	amount, err := s.recompute.periodAmount(ctx, nil, *goal, start, end)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate goal period", slog.String("goal_id", goalID))
		return decimal.Zero, err
	}
	return amount, nil
}
