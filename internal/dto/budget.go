package dto

import (
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

type CreateBudgetRequest struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description"`
	StartDate   time.Time       `json:"startDate" binding:"required"`
	EndDate     time.Time       `json:"endDate" binding:"required"`
	TotalBudget decimal.Decimal `json:"totalBudget" binding:"decimal_gt0,money"`
	CategoryID  *string         `json:"categoryID" binding:"omitempty,uuid"`
}

type UpdateBudgetRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=200"`
	Description *string          `json:"description"`
	StartDate   *time.Time       `json:"startDate"`
	EndDate     *time.Time       `json:"endDate"`
	TotalBudget *decimal.Decimal `json:"totalBudget" binding:"omitempty,decimal_gt0,money"`
	CategoryID  *string          `json:"categoryID" binding:"omitempty,uuid"`
	IsActive    *bool            `json:"isActive"`
}

type ListBudgetsResponse struct {
	Budgets []domain.BudgetUsage `json:"budgets"`
}
