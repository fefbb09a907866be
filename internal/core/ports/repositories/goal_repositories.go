package repositories

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// GoalReader defines read operations for goal data
type GoalReader interface {
	FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error)
	ListGoals(ctx context.Context, companyID string, activeOnly bool) ([]domain.Goal, error)
}

// GoalWriter defines write operations for goal data
type GoalWriter interface {
	SaveGoal(ctx context.Context, goal domain.Goal) error

	// UpdateGoalInTx writes every field of the goal, progress included.
	UpdateGoalInTx(ctx context.Context, tx pgx.Tx, goal domain.Goal) error

	DeleteGoal(ctx context.Context, goalID string) error
}

// GoalTransactionSupport defines the locking reads used by the progress recompute.
type GoalTransactionSupport interface {
	// FindActiveGoalsByCategoriesForUpdate locks every active goal bound to one of the categories.
	FindActiveGoalsByCategoriesForUpdate(ctx context.Context, tx pgx.Tx, categoryIDs []string) ([]domain.Goal, error)

	// FindGoalsByIDsForUpdate locks the listed goals. Missing ids are absent from the result.
	FindGoalsByIDsForUpdate(ctx context.Context, tx pgx.Tx, goalIDs []string) ([]domain.Goal, error)

	// UpdateGoalProgressInTx writes current_amount, is_achieved and achieved_at for each goal.
	UpdateGoalProgressInTx(ctx context.Context, tx pgx.Tx, goals []domain.Goal) error
}

// GoalRepositoryFacade combines all goal-related repository interfaces
type GoalRepositoryFacade interface {
	GoalReader
	GoalWriter
	GoalTransactionSupport
}
