package dto

import (
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

type CreateGoalRequest struct {
	Name         string          `json:"name" binding:"required,max=200"`
	Description  string          `json:"description"`
	GoalType     domain.GoalType `json:"goalType" binding:"required,oneof=savings expense_reduction income_increase debt_payment custom"`
	TargetAmount decimal.Decimal `json:"targetAmount" binding:"decimal_gt0,money"`
	StartDate    time.Time       `json:"startDate" binding:"required"`
	TargetDate   time.Time       `json:"targetDate" binding:"required"`
	CategoryID   *string         `json:"categoryID" binding:"omitempty,uuid"`
}

// UpdateGoalRequest edits a goal. Changes to the category, type, window or target
// recompute progress right away. An empty CategoryID unbinds the goal.
type UpdateGoalRequest struct {
	Name         *string          `json:"name" binding:"omitempty,max=200"`
	Description  *string          `json:"description"`
	GoalType     *domain.GoalType `json:"goalType" binding:"omitempty,oneof=savings expense_reduction income_increase debt_payment custom"`
	TargetAmount *decimal.Decimal `json:"targetAmount" binding:"omitempty,decimal_gt0,money"`
	StartDate    *time.Time       `json:"startDate"`
	TargetDate   *time.Time       `json:"targetDate"`
	CategoryID   *string          `json:"categoryID" binding:"omitempty,uuid"`
	IsActive     *bool            `json:"isActive"`
}

// GoalProgressParams bounds an ad-hoc progress query.
type GoalProgressParams struct {
	Start time.Time `form:"start" binding:"required" time_format:"2006-01-02" time_utc:"1"`
	End   time.Time `form:"end" binding:"required" time_format:"2006-01-02" time_utc:"1"`
}

// GoalPeriodProgressResponse is the amount a goal accumulated between two days.
type GoalPeriodProgressResponse struct {
	GoalID string          `json:"goalID"`
	Start  time.Time       `json:"start"`
	End    time.Time       `json:"end"`
	Amount decimal.Decimal `json:"amount"`
}

// GoalResponse is a goal plus the read-side numbers derived from it.
type GoalResponse struct {
	domain.Goal
	ProgressPercentage decimal.Decimal `json:"progressPercentage"`
	DaysRemaining      int             `json:"daysRemaining"`
}

type ListGoalsResponse struct {
	Goals []GoalResponse `json:"goals"`
}

func ToGoalResponse(g *domain.Goal, today time.Time) GoalResponse {
	return GoalResponse{
		Goal:               *g,
		ProgressPercentage: accounting.ProgressPercentage(g.CurrentAmount, g.TargetAmount),
		DaysRemaining:      accounting.DaysRemaining(g.TargetDate, today),
	}
}

func ToListGoalsResponse(goals []domain.Goal, today time.Time) ListGoalsResponse {
	res := make([]GoalResponse, len(goals))
	for i := range goals {
		res[i] = ToGoalResponse(&goals[i], today)
	}
	return ListGoalsResponse{Goals: res}
}
