package repositories

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// BudgetRepositoryFacade covers budget persistence. Spend is never stored.
type BudgetRepositoryFacade interface {
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)
	ListBudgets(ctx context.Context, companyID string, activeOnly bool) ([]domain.Budget, error)
	SaveBudget(ctx context.Context, budget domain.Budget) error
	UpdateBudget(ctx context.Context, budget domain.Budget) error
	DeleteBudget(ctx context.Context, budgetID string) error
}
