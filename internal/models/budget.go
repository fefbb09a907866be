package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Budget struct {
	BudgetID    string          `db:"budget_id"`
	CompanyID   string          `db:"company_id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	StartDate   time.Time       `db:"start_date"`
	EndDate     time.Time       `db:"end_date"`
	TotalBudget decimal.Decimal `db:"total_budget"`
	CategoryID  *string         `db:"category_id"`
	IsActive    bool            `db:"is_active"`
	AuditFields
}
