package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps completed expenses over a period, optionally for a single category.
type Budget struct {
	BudgetID    string          `json:"budgetID"`
	CompanyID   string          `json:"companyID"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	TotalBudget decimal.Decimal `json:"totalBudget"`
	CategoryID  *string         `json:"categoryID,omitempty"`
	IsActive    bool            `json:"isActive"`
	AuditFields
}

// Covers reports whether day falls inside the budget period.
func (b Budget) Covers(day time.Time) bool {
	d := DateOnly(day)
	return !d.Before(DateOnly(b.StartDate)) && !d.After(DateOnly(b.EndDate))
}

// BudgetUsage is a budget with its spend derived from the ledger.
type BudgetUsage struct {
	Budget
	SpentAmount     decimal.Decimal `json:"spentAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	UsagePercentage decimal.Decimal `json:"usagePercentage"`
}

// Exceeded reports whether spend went over the total.
func (u BudgetUsage) Exceeded() bool {
	return u.SpentAmount.GreaterThan(u.TotalBudget)
}
