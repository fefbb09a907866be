package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// alertCandidate is an alert a rule wants to raise. subjectKey and subjectID feed the dedup
// lookup; an empty subjectKey makes the whole company the subject.
type alertCandidate struct {
	alert      domain.Alert
	subjectKey string
	subjectID  string
	cooldown   time.Duration
}

// sweepRun carries what every rule of one sweep shares.
type sweepRun struct {
	companyID string
	now       time.Time
	today     time.Time
}

func (r sweepRun) daysAgo(n int) time.Time {
	return r.today.AddDate(0, 0, -n)
}

type alertRule struct {
	name string
	eval func(ctx context.Context, run sweepRun) ([]alertCandidate, error)
}

func (s *alertService) rules() []alertRule {
	return []alertRule{
		{name: string(domain.AlertLowBalance), eval: s.lowBalanceRule},
		{name: string(domain.AlertOverdue), eval: s.overdueRule},
		{name: string(domain.AlertGoalDeadline), eval: s.goalDeadlineRule},
		{name: string(domain.AlertUnusualExpense), eval: s.unusualExpenseRule},
		{name: string(domain.AlertCashFlowNegative), eval: s.cashFlowRule},
		{name: string(domain.AlertBudgetExceeded), eval: s.budgetExceededRule},
	}
}

func newCandidate(run sweepRun, alertType domain.AlertType, severity domain.AlertSeverity, title, message string, related map[string]any) domain.Alert {
	return domain.Alert{
		CompanyID:   run.companyID,
		AlertType:   alertType,
		Severity:    severity,
		Status:      domain.AlertActive,
		Title:       title,
		Message:     message,
		RelatedData: related,
		TriggeredAt: run.now,
		CreatedBy:   SystemActor,
	}
}

// upcomingExpenses sums pending expenses of the account dated up to today plus the horizon.
func (s *alertService) upcomingExpenses(ctx context.Context, run sweepRun, accountID string) (decimal.Decimal, error) {
	expense, pending := domain.TransactionExpense, domain.StatusPending
	until := run.today.AddDate(0, 0, s.thresholds.LowBalanceHorizonDays)
	agg, err := s.txnRepo.AggregateTransactions(ctx, run.companyID, domain.TransactionFilter{
		AccountID:       &accountID,
		TransactionType: &expense,
		Status:          &pending,
		ToDate:          &until,
	})
	if err != nil {
		return decimal.Zero, err
	}
	return agg.Total, nil
}

func (s *alertService) lowBalanceRule(ctx context.Context, run sweepRun) ([]alertCandidate, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, run.companyID, true)
	if err != nil {
		return nil, err
	}

	var out []alertCandidate
	for _, acc := range accounts {
		upcoming, err := s.upcomingExpenses(ctx, run, acc.AccountID)
		if err != nil {
			return nil, err
		}
		threshold := decimal.Max(s.thresholds.LowBalanceMin, upcoming.Mul(s.thresholds.LowBalanceUpcomingFactor))
		if !acc.CurrentBalance.LessThan(threshold) {
			continue
		}
		severity := domain.SeverityHigh
		if acc.CurrentBalance.LessThan(upcoming) {
			severity = domain.SeverityCritical
		}
		out = append(out, alertCandidate{
			alert: newCandidate(run, domain.AlertLowBalance, severity,
				"Low balance - "+acc.Name,
				fmt.Sprintf("Account %s has a balance of %s. Pending expenses: %s.",
					acc.Name, acc.CurrentBalance.StringFixed(2), upcoming.StringFixed(2)),
				map[string]any{
					domain.SubjectAccount: acc.AccountID,
					"balance":             acc.CurrentBalance.StringFixed(2),
					"threshold":           threshold.StringFixed(2),
					"upcoming":            upcoming.StringFixed(2),
				}),
			subjectKey: domain.SubjectAccount,
			subjectID:  acc.AccountID,
			cooldown:   s.thresholds.LowBalanceCooldown,
		})
	}
	return out, nil
}

// overdue aggregates pending transactions dated before today.
func (s *alertService) overdue(ctx context.Context, run sweepRun) (domain.TransactionAggregate, error) {
	pending := domain.StatusPending
	yesterday := run.daysAgo(1)
	return s.txnRepo.AggregateTransactions(ctx, run.companyID, domain.TransactionFilter{
		Status: &pending,
		ToDate: &yesterday,
	})
}

func (s *alertService) overdueRule(ctx context.Context, run sweepRun) ([]alertCandidate, error) {
	agg, err := s.overdue(ctx, run)
	if err != nil {
		return nil, err
	}
	if agg.Count == 0 {
		return nil, nil
	}
	severity := domain.SeverityHigh
	if agg.Count > int64(s.thresholds.OverdueCriticalCount) {
		severity = domain.SeverityCritical
	}
	return []alertCandidate{{
		alert: newCandidate(run, domain.AlertOverdue, severity,
			"Overdue transactions",
			fmt.Sprintf("%d overdue transaction(s) totalling %s.", agg.Count, agg.Total.StringFixed(2)),
			map[string]any{
				"count":        agg.Count,
				"total_amount": agg.Total.StringFixed(2),
			}),
		cooldown: s.thresholds.OverdueCooldown,
	}}, nil
}

// expectedProgress is the progress a goal should have with days left before its deadline.
func (s *alertService) expectedProgress(days int) decimal.Decimal {
	stepped := decimal.NewFromInt(100).Sub(s.thresholds.GoalDailyStep.Mul(decimal.NewFromInt(int64(days))))
	return decimal.Max(s.thresholds.GoalBaseProgress, stepped)
}

func (s *alertService) goalDeadlineRule(ctx context.Context, run sweepRun) ([]alertCandidate, error) {
	goals, err := s.goalRepo.ListGoals(ctx, run.companyID, true)
	if err != nil {
		return nil, err
	}

	horizon := run.today.AddDate(0, 0, s.thresholds.GoalDeadlineDays)
	var out []alertCandidate
	for _, goal := range goals {
		if goal.TargetDate.After(horizon) {
			continue
		}
		days := accounting.DaysRemaining(goal.TargetDate, run.today)
		if days <= 0 {
			continue
		}
		progress := accounting.ProgressPercentage(goal.CurrentAmount, goal.TargetAmount)
		if !progress.LessThan(s.expectedProgress(days)) {
			continue
		}

		severity := domain.SeverityLow
		switch {
		case days <= s.thresholds.GoalHighSeverityDays:
			severity = domain.SeverityHigh
		case days <= s.thresholds.GoalMediumSeverityDay:
			severity = domain.SeverityMedium
		}
		out = append(out, alertCandidate{
			alert: newCandidate(run, domain.AlertGoalDeadline, severity,
				"Goal at risk",
				fmt.Sprintf("Goal %q is at %s%% with %d day(s) remaining.", goal.Name, progress.StringFixed(1), days),
				map[string]any{
					domain.SubjectGoal: goal.GoalID,
					"progress":         progress.StringFixed(2),
					"days_remaining":   days,
				}),
			subjectKey: domain.SubjectGoal,
			subjectID:  goal.GoalID,
			cooldown:   s.thresholds.GoalDeadlineCooldown,
		})
	}
	return out, nil
}

// unusualExpenseRule compares recent expenses with the average of their own category over the
// baseline window. Uncategorised expenses have their own baseline under the empty key.
func (s *alertService) unusualExpenseRule(ctx context.Context, run sweepRun) ([]alertCandidate, error) {
	recentFrom := run.daysAgo(s.thresholds.SpikeRecentDays)
	baselines, err := s.txnRepo.AverageExpenseByCategory(ctx, run.companyID, run.daysAgo(s.thresholds.SpikeBaselineDays), recentFrom)
	if err != nil {
		return nil, err
	}
	if len(baselines) == 0 {
		return nil, nil
	}

	expense, completed := domain.TransactionExpense, domain.StatusCompleted
	recent, err := s.txnRepo.ListTransactionsByFilter(ctx, run.companyID, domain.TransactionFilter{
		TransactionType: &expense,
		Status:          &completed,
		FromDate:        &recentFrom,
		ToDate:          &run.today,
	})
	if err != nil {
		return nil, err
	}

	var out []alertCandidate
	for _, txn := range recent {
		key := ""
		if txn.CategoryID != nil {
			key = *txn.CategoryID
		}
		avg, ok := baselines[key]
		if !ok || !avg.IsPositive() {
			continue
		}
		if !txn.Amount.GreaterThan(avg.Mul(s.thresholds.SpikeMultiplier)) {
			continue
		}
		out = append(out, alertCandidate{
			alert: newCandidate(run, domain.AlertUnusualExpense, domain.SeverityHigh,
				"Unusual expense",
				fmt.Sprintf("Expense %q of %s is well above the usual %s for its category.",
					txn.Description, txn.Amount.StringFixed(2), avg.StringFixed(2)),
				map[string]any{
					domain.SubjectTransaction: txn.TransactionID,
					"amount":                  txn.Amount.StringFixed(2),
					"baseline":                avg.StringFixed(2),
				}),
			subjectKey: domain.SubjectTransaction,
			subjectID:  txn.TransactionID,
			cooldown:   s.thresholds.SpikeCooldown,
		})
	}
	return out, nil
}

// runway estimates how many days the account balance lasts at the recent spending rate.
// spending is false when the account had no completed expenses in the window.
func (s *alertService) runway(ctx context.Context, run sweepRun, acc domain.Account) (days decimal.Decimal, spending bool, err error) {
	expense, completed := domain.TransactionExpense, domain.StatusCompleted
	window := s.thresholds.CashFlowWindowDays
	from := run.daysAgo(window)
	agg, err := s.txnRepo.AggregateTransactions(ctx, run.companyID, domain.TransactionFilter{
		AccountID:       &acc.AccountID,
		TransactionType: &expense,
		Status:          &completed,
		FromDate:        &from,
		ToDate:          &run.today,
	})
	if err != nil {
		return decimal.Zero, false, err
	}
	if !agg.Total.IsPositive() || window <= 0 {
		return decimal.Zero, false, nil
	}
	avgDaily := agg.Total.Div(decimal.NewFromInt(int64(window)))
	return acc.CurrentBalance.Div(avgDaily), true, nil
}

func (s *alertService) cashFlowRule(ctx context.Context, run sweepRun) ([]alertCandidate, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, run.companyID, true)
	if err != nil {
		return nil, err
	}

	warn := decimal.NewFromInt(int64(s.thresholds.CashFlowWarnDays))
	critical := decimal.NewFromInt(int64(s.thresholds.CashFlowCriticalDays))
	var out []alertCandidate
	for _, acc := range accounts {
		days, spending, err := s.runway(ctx, run, acc)
		if err != nil {
			return nil, err
		}
		if !spending || !days.LessThan(warn) {
			continue
		}
		severity := domain.SeverityMedium
		if days.LessThan(critical) {
			severity = domain.SeverityCritical
		}
		out = append(out, alertCandidate{
			alert: newCandidate(run, domain.AlertCashFlowNegative, severity,
				"Cash flow risk - "+acc.Name,
				fmt.Sprintf("At the current spending rate account %s lasts about %s day(s).", acc.Name, days.StringFixed(0)),
				map[string]any{
					domain.SubjectAccount: acc.AccountID,
					"days_remaining":      days.StringFixed(1),
				}),
			subjectKey: domain.SubjectAccount,
			subjectID:  acc.AccountID,
			cooldown:   s.thresholds.CashFlowCooldown,
		})
	}
	return out, nil
}

func (s *alertService) budgetExceededRule(ctx context.Context, run sweepRun) ([]alertCandidate, error) {
	budgets, err := s.budgetRepo.ListBudgets(ctx, run.companyID, true)
	if err != nil {
		return nil, err
	}

	var out []alertCandidate
	for _, b := range budgets {
		if !b.Covers(run.today) {
			continue
		}
		usage, err := budgetUsage(ctx, s.txnRepo, b)
		if err != nil {
			return nil, err
		}
		if !usage.Exceeded() {
			continue
		}
		out = append(out, alertCandidate{
			alert: newCandidate(run, domain.AlertBudgetExceeded, domain.SeverityHigh,
				"Budget exceeded - "+b.Name,
				fmt.Sprintf("Budget %s spent %s of %s (%s%%).", b.Name,
					usage.SpentAmount.StringFixed(2), b.TotalBudget.StringFixed(2), usage.UsagePercentage.StringFixed(1)),
				map[string]any{
					domain.SubjectBudget: b.BudgetID,
					"spent":              usage.SpentAmount.StringFixed(2),
					"total":              b.TotalBudget.StringFixed(2),
				}),
			subjectKey: domain.SubjectBudget,
			subjectID:  b.BudgetID,
			cooldown:   s.thresholds.BudgetCooldown,
		})
	}
	return out, nil
}

// shouldResolve decides whether an open alert no longer applies.
func (s *alertService) shouldResolve(ctx context.Context, run sweepRun, alert domain.Alert) (bool, error) {
	switch alert.AlertType {
	case domain.AlertLowBalance:
		acc, gone, err := s.subjectAccount(ctx, run, alert)
		if err != nil || gone || acc == nil {
			return gone, err
		}
		return acc.CurrentBalance.GreaterThan(s.thresholds.LowBalanceResolveAbove), nil

	case domain.AlertOverdue:
		agg, err := s.overdue(ctx, run)
		if err != nil {
			return false, err
		}
		return agg.Count == 0, nil

	case domain.AlertGoalDeadline:
		id, ok := alert.SubjectID(domain.SubjectGoal)
		if !ok {
			return false, nil
		}
		goal, err := s.goalRepo.FindGoalByID(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if goal.CompanyID != run.companyID || goal.IsAchieved {
			return true, nil
		}
		progress := accounting.ProgressPercentage(goal.CurrentAmount, goal.TargetAmount)
		return progress.GreaterThanOrEqual(s.thresholds.GoalResolveProgress), nil

	case domain.AlertCashFlowNegative:
		acc, gone, err := s.subjectAccount(ctx, run, alert)
		if err != nil || gone || acc == nil {
			return gone, err
		}
		days, spending, err := s.runway(ctx, run, *acc)
		if err != nil {
			return false, err
		}
		return !spending || days.GreaterThanOrEqual(decimal.NewFromInt(int64(s.thresholds.CashFlowWarnDays))), nil

	case domain.AlertBudgetExceeded:
		id, ok := alert.SubjectID(domain.SubjectBudget)
		if !ok {
			return false, nil
		}
		budget, err := s.budgetRepo.FindBudgetByID(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if budget.CompanyID != run.companyID || !budget.IsActive {
			return true, nil
		}
		usage, err := budgetUsage(ctx, s.txnRepo, *budget)
		if err != nil {
			return false, err
		}
		return !usage.Exceeded(), nil
	}
	return false, nil
}

// subjectAccount loads the account an alert points at. gone is true when it no longer exists.
func (s *alertService) subjectAccount(ctx context.Context, run sweepRun, alert domain.Alert) (*domain.Account, bool, error) {
	id, ok := alert.SubjectID(domain.SubjectAccount)
	if !ok {
		return nil, false, nil
	}
	acc, err := s.accountRepo.FindAccountByID(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	if acc.CompanyID != run.companyID {
		return nil, true, nil
	}
	return acc, false, nil
}
