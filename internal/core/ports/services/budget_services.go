package services

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
)

// BudgetSvcFacade manages budgets. Every read derives spend from the ledger.
type BudgetSvcFacade interface {
	CreateBudget(ctx context.Context, companyID string, req dto.CreateBudgetRequest, userID string) (*domain.BudgetUsage, error)
	GetBudgetByID(ctx context.Context, companyID string, budgetID string, userID string) (*domain.BudgetUsage, error)
	ListBudgets(ctx context.Context, companyID string, userID string, activeOnly bool) ([]domain.BudgetUsage, error)
	UpdateBudget(ctx context.Context, companyID string, budgetID string, req dto.UpdateBudgetRequest, userID string) (*domain.BudgetUsage, error)
	DeleteBudget(ctx context.Context, companyID string, budgetID string, userID string) error
}
