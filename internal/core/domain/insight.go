package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryTrend compares a category's activity between two consecutive windows.
type CategoryTrend struct {
	CategoryID    string          `json:"categoryID"`
	CategoryName  string          `json:"categoryName"`
	CurrentTotal  decimal.Decimal `json:"currentTotal"`
	PreviousTotal decimal.Decimal `json:"previousTotal"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Increasing    bool            `json:"increasing"`
}

// Forecast projects the total active balance forward using trailing daily averages.
type Forecast struct {
	Days             int             `json:"days"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	AvgDailyIncome   decimal.Decimal `json:"avgDailyIncome"`
	AvgDailyExpense  decimal.Decimal `json:"avgDailyExpense"`
	ProjectedIncome  decimal.Decimal `json:"projectedIncome"`
	ProjectedExpense decimal.Decimal `json:"projectedExpense"`
	ProjectedBalance decimal.Decimal `json:"projectedBalance"`
	NetFlow          decimal.Decimal `json:"netFlow"`
}

// Insights bundles the read-only analytics shown next to alerts.
type Insights struct {
	HealthScore    int             `json:"healthScore"`
	CategoryTrends []CategoryTrend `json:"categoryTrends"`
	Forecast       Forecast        `json:"forecast"`
	GeneratedAt    time.Time       `json:"generatedAt"`
}
