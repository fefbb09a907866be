package services

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// MaintenanceSvc rebuilds derived ledger state for a whole company.
// The Company* variants skip authorization and are meant for operator tooling.
type MaintenanceSvc interface {
	RecomputeBalances(ctx context.Context, companyID string, userID string) (*domain.BalanceRecomputeReport, error)
	RecomputeGoals(ctx context.Context, companyID string, userID string) (*domain.GoalRecomputeReport, error)
	RecomputeCompanyBalances(ctx context.Context, companyID string) (*domain.BalanceRecomputeReport, error)
	RecomputeCompanyGoals(ctx context.Context, companyID string) (*domain.GoalRecomputeReport, error)
}
