package services

import (
	"context"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/shopspring/decimal"
)

// GoalSvcFacade defines goal management and progress tracking.
type GoalSvcFacade interface {
	CreateGoal(ctx context.Context, companyID string, req dto.CreateGoalRequest, userID string) (*domain.Goal, error)
	GetGoalByID(ctx context.Context, companyID string, goalID string, userID string) (*domain.Goal, error)
	ListGoals(ctx context.Context, companyID string, userID string, activeOnly bool) ([]domain.Goal, error)
	UpdateGoal(ctx context.Context, companyID string, goalID string, req dto.UpdateGoalRequest, userID string) (*domain.Goal, error)
	DeleteGoal(ctx context.Context, companyID string, goalID string, userID string) error

	// RefreshGoalProgress recomputes the goal's current amount from the ledger.
	RefreshGoalProgress(ctx context.Context, companyID string, goalID string, userID string) (*domain.Goal, error)

	// GoalProgressForPeriod aggregates the goal's category over [start, end] without writing.
	GoalProgressForPeriod(ctx context.Context, companyID string, goalID string, start, end time.Time, userID string) (decimal.Decimal, error)
}
