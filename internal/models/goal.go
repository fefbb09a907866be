package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal represents a row of the goals table.
type Goal struct {
	GoalID        string          `db:"goal_id"`
	CompanyID     string          `db:"company_id"`
	Name          string          `db:"name"`
	Description   string          `db:"description"`
	GoalType      string          `db:"goal_type"`
	TargetAmount  decimal.Decimal `db:"target_amount"`
	CurrentAmount decimal.Decimal `db:"current_amount"`
	StartDate     time.Time       `db:"start_date"`
	TargetDate    time.Time       `db:"target_date"`
	CategoryID    *string         `db:"category_id"`
	IsActive      bool            `db:"is_active"`
	IsAchieved    bool            `db:"is_achieved"`
	AchievedAt    *time.Time      `db:"achieved_at"`
	AuditFields
}
