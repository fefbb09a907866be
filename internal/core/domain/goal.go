package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalType selects which transactions feed a goal's progress.
type GoalType string

const (
	GoalSavings          GoalType = "savings"
	GoalExpenseReduction GoalType = "expense_reduction"
	GoalIncomeIncrease   GoalType = "income_increase"
	GoalDebtPayment      GoalType = "debt_payment"
	GoalCustom           GoalType = "custom"
)

func (t GoalType) IsValid() bool {
	switch t {
	case GoalSavings, GoalExpenseReduction, GoalIncomeIncrease, GoalDebtPayment, GoalCustom:
		return true
	}
	return false
}

// Goal is a target amount accumulated over [StartDate, TargetDate] from the transactions
// of one category. CurrentAmount is a cache; IsAchieved never reverts once set.
type Goal struct {
	GoalID        string          `json:"goalID"`
	CompanyID     string          `json:"companyID"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	GoalType      GoalType        `json:"goalType"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	StartDate     time.Time       `json:"startDate"`
	TargetDate    time.Time       `json:"targetDate"`
	CategoryID    *string         `json:"categoryID,omitempty"`
	IsActive      bool            `json:"isActive"`
	IsAchieved    bool            `json:"isAchieved"`
	AchievedAt    *time.Time      `json:"achievedAt,omitempty"`
	AuditFields
}

// CategoryFlows are completed income and expense sums for one category over a window.
type CategoryFlows struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// GoalProgressChange reports the outcome of recomputing one goal.
type GoalProgressChange struct {
	GoalID      string          `json:"goalID"`
	GoalName    string          `json:"goalName"`
	OldAmount   decimal.Decimal `json:"oldAmount"`
	NewAmount   decimal.Decimal `json:"newAmount"`
	WasAchieved bool            `json:"wasAchieved"`
	IsAchieved  bool            `json:"isAchieved"`
}

func (c GoalProgressChange) Changed() bool {
	return !c.OldAmount.Equal(c.NewAmount) || c.WasAchieved != c.IsAchieved
}

// GoalRecomputeReport summarises a progress recompute over many goals.
type GoalRecomputeReport struct {
	Checked int                  `json:"checked"`
	Changes []GoalProgressChange `json:"changes"`
}
