package accounting

import (
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeBalance derives an account balance from its initial balance and the completed flows
// touching it: initial + income - expense - transfers out + transfers in.
// Services and the maintenance recompute both go through here so the formula lives in one place.
func ComputeBalance(initial decimal.Decimal, flows domain.AccountFlows) decimal.Decimal {
	return initial.
		Add(flows.Income).
		Sub(flows.Expense).
		Sub(flows.TransfersOut).
		Add(flows.TransfersIn)
}

// GoalWindow returns the inclusive day range that counts toward a goal as of today:
// [start_date, min(today, target_date)]. ok is false when the window is empty
// (the goal has not started yet).
func GoalWindow(goal domain.Goal, today time.Time) (start, end time.Time, ok bool) {
	start = domain.DateOnly(goal.StartDate)
	end = domain.DateOnly(goal.TargetDate)
	if t := domain.DateOnly(today); t.Before(end) {
		end = t
	}
	return start, end, !end.Before(start)
}

// GoalAmount picks the flows that count for the goal type.
// Custom and debt payment goals add the magnitudes of both directions.
func GoalAmount(goalType domain.GoalType, flows domain.CategoryFlows) decimal.Decimal {
	switch goalType {
	case domain.GoalSavings, domain.GoalIncomeIncrease:
		return flows.Income
	case domain.GoalExpenseReduction:
		return flows.Expense
	default:
		return flows.Income.Abs().Add(flows.Expense.Abs())
	}
}

// ApplyGoalProgress stores amount as the goal's current amount. Achievement is sticky:
// once reached it is never cleared, and AchievedAt is stamped only on the first flip.
func ApplyGoalProgress(goal *domain.Goal, amount decimal.Decimal, now time.Time) domain.GoalProgressChange {
	change := domain.GoalProgressChange{
		GoalID:      goal.GoalID,
		GoalName:    goal.Name,
		OldAmount:   goal.CurrentAmount,
		NewAmount:   amount,
		WasAchieved: goal.IsAchieved,
	}
	goal.CurrentAmount = amount
	if !goal.IsAchieved && goal.TargetAmount.IsPositive() && amount.GreaterThanOrEqual(goal.TargetAmount) {
		goal.IsAchieved = true
		goal.AchievedAt = &now
	}
	change.IsAchieved = goal.IsAchieved
	return change
}

// ProgressPercentage is current/target*100 clamped to [0, 100]; 0 when target is not positive.
func ProgressPercentage(current, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	pct := current.Div(target).Mul(hundred).Round(2)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	if pct.IsNegative() {
		return decimal.Zero
	}
	return pct
}

// DaysRemaining counts calendar days from today to target. Negative once the target has passed.
func DaysRemaining(target, today time.Time) int {
	return domain.DaysBetween(today, target)
}

// UsagePercentage is spent/total*100 without clamping so overspend shows above 100.
func UsagePercentage(spent, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return spent.Div(total).Mul(hundred).Round(2)
}

// ChangePercent is the relative change from previous to current in percent.
// A category with no previous activity reports 100 when it now has any.
func ChangePercent(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsZero() {
			return decimal.Zero
		}
		return hundred
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

// HealthScore grades cash flow from the income/expense ratio of a window.
func HealthScore(income, expense decimal.Decimal) int {
	if !expense.IsPositive() {
		if income.IsPositive() {
			return 100
		}
		return 50
	}
	ratio := income.Div(expense)
	switch {
	case ratio.GreaterThanOrEqual(decimal.NewFromFloat(1.5)):
		return 100
	case ratio.GreaterThanOrEqual(decimal.NewFromFloat(1.2)):
		return 85
	case ratio.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return 70
	case ratio.GreaterThanOrEqual(decimal.NewFromFloat(0.8)):
		return 50
	case ratio.GreaterThanOrEqual(decimal.NewFromFloat(0.6)):
		return 30
	default:
		return 10
	}
}
