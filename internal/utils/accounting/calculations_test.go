package accounting

import (
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func TestComputeBalance(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		flows   domain.AccountFlows
		want    string
	}{
		{"no transactions", "1000", domain.AccountFlows{}, "1000"},
		{
			name:    "all four flows",
			initial: "1000",
			flows: domain.AccountFlows{
				Income:       d("500"),
				Expense:      d("200"),
				TransfersOut: d("300"),
				TransfersIn:  d("50.25"),
			},
			want: "1050.25",
		},
		{"can go negative", "0", domain.AccountFlows{Expense: d("10.10")}, "-10.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalance(d(tt.initial), tt.flows)
			assert.True(t, d(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestGoalWindow(t *testing.T) {
	goal := domain.Goal{StartDate: day(2024, 1, 1), TargetDate: day(2024, 1, 31)}

	start, end, ok := GoalWindow(goal, day(2024, 1, 20))
	require.True(t, ok)
	assert.Equal(t, day(2024, 1, 1), start)
	assert.Equal(t, day(2024, 1, 20), end)

	_, end, ok = GoalWindow(goal, day(2024, 3, 1))
	require.True(t, ok)
	assert.Equal(t, day(2024, 1, 31), end, "window stops at target date")

	_, _, ok = GoalWindow(goal, day(2023, 12, 31))
	assert.False(t, ok, "goal has not started")
}

func TestGoalAmount(t *testing.T) {
	flows := domain.CategoryFlows{Income: d("400"), Expense: d("150")}
	assert.True(t, d("400").Equal(GoalAmount(domain.GoalSavings, flows)))
	assert.True(t, d("400").Equal(GoalAmount(domain.GoalIncomeIncrease, flows)))
	assert.True(t, d("150").Equal(GoalAmount(domain.GoalExpenseReduction, flows)))
	assert.True(t, d("550").Equal(GoalAmount(domain.GoalDebtPayment, flows)))
	assert.True(t, d("550").Equal(GoalAmount(domain.GoalCustom, flows)))
}

func TestApplyGoalProgress_StickyAchievement(t *testing.T) {
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	goal := domain.Goal{GoalID: "g1", TargetAmount: d("1000"), CurrentAmount: d("400")}

	change := ApplyGoalProgress(&goal, d("1000"), now)
	assert.True(t, change.Changed())
	assert.False(t, change.WasAchieved)
	assert.True(t, goal.IsAchieved)
	require.NotNil(t, goal.AchievedAt)
	assert.Equal(t, now, *goal.AchievedAt)

	later := now.Add(48 * time.Hour)
	change = ApplyGoalProgress(&goal, d("200"), later)
	assert.True(t, goal.IsAchieved, "achievement never reverts")
	assert.True(t, change.IsAchieved)
	assert.Equal(t, now, *goal.AchievedAt, "achieved_at keeps the first flip")
	assert.True(t, d("200").Equal(goal.CurrentAmount))
}

func TestProgressPercentage(t *testing.T) {
	assert.True(t, d("40").Equal(ProgressPercentage(d("400"), d("1000"))))
	assert.True(t, d("100").Equal(ProgressPercentage(d("1500"), d("1000"))), "clamped")
	assert.True(t, decimal.Zero.Equal(ProgressPercentage(d("10"), decimal.Zero)))
	assert.True(t, d("33.33").Equal(ProgressPercentage(d("1"), d("3"))))
}

func TestDaysRemaining(t *testing.T) {
	assert.Equal(t, 10, DaysRemaining(day(2024, 1, 11), day(2024, 1, 1)))
	assert.Equal(t, 0, DaysRemaining(day(2024, 1, 1), time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, -5, DaysRemaining(day(2024, 1, 1), day(2024, 1, 6)))
}

func TestUsageAndChangePercent(t *testing.T) {
	assert.True(t, d("125").Equal(UsagePercentage(d("1250"), d("1000"))))
	assert.True(t, decimal.Zero.Equal(UsagePercentage(d("5"), decimal.Zero)))
	assert.True(t, d("-50").Equal(ChangePercent(d("50"), d("100"))))
	assert.True(t, d("100").Equal(ChangePercent(d("10"), decimal.Zero)))
	assert.True(t, decimal.Zero.Equal(ChangePercent(decimal.Zero, decimal.Zero)))
}

func TestHealthScore(t *testing.T) {
	tests := []struct {
		income, expense string
		want            int
	}{
		{"0", "0", 50},
		{"10", "0", 100},
		{"150", "100", 100},
		{"120", "100", 85},
		{"100", "100", 70},
		{"80", "100", 50},
		{"60", "100", 30},
		{"10", "100", 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HealthScore(d(tt.income), d(tt.expense)), "income %s expense %s", tt.income, tt.expense)
	}
}
