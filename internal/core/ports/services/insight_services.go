package services

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// InsightSvc computes read-only analytics over the ledger.
type InsightSvc interface {
	GetInsights(ctx context.Context, companyID string, userID string) (*domain.Insights, error)
}
