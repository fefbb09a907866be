package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/SscSPs/bizledger/internal/utils/accounting"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ledgerRecomputer rebuilds cached balances and goal progress from the transaction rows.
// It never applies deltas: every value it writes is a full aggregate.
type ledgerRecomputer struct {
	accountRepo portsrepo.AccountTransactionSupport
	goalRepo    portsrepo.GoalTransactionSupport
	txnRepo     portsrepo.TransactionAggregator
}

func newLedgerRecomputer(repos portsrepo.RepositoryProvider) *ledgerRecomputer {
	return &ledgerRecomputer{
		accountRepo: repos.AccountRepo,
		goalRepo:    repos.GoalRepo,
		txnRepo:     repos.TransactionRepo,
	}
}

// balances recomputes accounts the caller already holds locked and writes the ones that moved.
// The returned changes cover every account, sorted by id.
func (r *ledgerRecomputer) balances(ctx context.Context, tx pgx.Tx, locked map[string]domain.Account, userID string, now time.Time) ([]domain.BalanceChange, error) {
	ids := make([]string, 0, len(locked))
	for id := range locked {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	changes := make([]domain.BalanceChange, 0, len(ids))
	moved := make(map[string]decimal.Decimal)
	for _, id := range ids {
		acc := locked[id]
		flows, err := r.txnRepo.SumAccountFlows(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate flows of account %s: %w", id, err)
		}
		change := domain.BalanceChange{
			AccountID:   id,
			AccountName: acc.Name,
			OldBalance:  acc.CurrentBalance,
			NewBalance:  accounting.ComputeBalance(acc.InitialBalance, flows),
		}
		if change.Changed() {
			moved[id] = change.NewBalance
		}
		changes = append(changes, change)
	}

	if err := r.accountRepo.SetAccountBalancesInTx(ctx, tx, moved, userID, now); err != nil {
		return nil, fmt.Errorf("failed to store recomputed balances: %w", err)
	}
	return changes, nil
}

// accounts locks the listed accounts in id order and recomputes them.
func (r *ledgerRecomputer) accounts(ctx context.Context, tx pgx.Tx, accountIDs []string, userID string, now time.Time) ([]domain.BalanceChange, error) {
	locked, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts for recompute: %w", err)
	}
	return r.balances(ctx, tx, locked, userID, now)
}

// goalsForCategories locks and refreshes every active goal bound to one of the categories.
func (r *ledgerRecomputer) goalsForCategories(ctx context.Context, tx pgx.Tx, categoryIDs []string, userID string, now time.Time) ([]domain.GoalProgressChange, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	goals, err := r.goalRepo.FindActiveGoalsByCategoriesForUpdate(ctx, tx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock goals for recompute: %w", err)
	}
	return r.goals(ctx, tx, goals, userID, now)
}

// goals refreshes goals the caller already holds locked. Goals without a category are skipped.
func (r *ledgerRecomputer) goals(ctx context.Context, tx pgx.Tx, goals []domain.Goal, userID string, now time.Time) ([]domain.GoalProgressChange, error) {
	today := domain.DateOnly(now)
	changes := make([]domain.GoalProgressChange, 0, len(goals))
	var dirty []domain.Goal

	for i := range goals {
		goal := goals[i]
		change, applied, err := r.refreshGoal(ctx, tx, &goal, today, now)
		if err != nil {
			return nil, err
		}
		if !applied {
			continue
		}
		changes = append(changes, change)
		if change.Changed() {
			goal.Touch(userID, now)
			dirty = append(dirty, goal)
		}
		goals[i] = goal
	}

	if err := r.goalRepo.UpdateGoalProgressInTx(ctx, tx, dirty); err != nil {
		return nil, fmt.Errorf("failed to store goal progress: %w", err)
	}
	return changes, nil
}

// refreshGoal recomputes goal in memory. applied is false when the goal has no category.
func (r *ledgerRecomputer) refreshGoal(ctx context.Context, tx pgx.Tx, goal *domain.Goal, today, now time.Time) (domain.GoalProgressChange, bool, error) {
	if goal.CategoryID == nil {
		return domain.GoalProgressChange{}, false, nil
	}
	amount := decimal.Zero
	if start, end, ok := accounting.GoalWindow(*goal, today); ok {
		var err error
		amount, err = r.periodAmount(ctx, tx, *goal, start, end)
		if err != nil {
			return domain.GoalProgressChange{}, false, err
		}
	}
	return accounting.ApplyGoalProgress(goal, amount, now), true, nil
}

// periodAmount aggregates the goal's category over [start, end] as the goal type dictates.
func (r *ledgerRecomputer) periodAmount(ctx context.Context, tx pgx.Tx, goal domain.Goal, start, end time.Time) (decimal.Decimal, error) {
	if goal.CategoryID == nil {
		return decimal.Zero, nil
	}
	flows, err := r.txnRepo.SumCategoryFlows(ctx, tx, *goal.CategoryID, start, end)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to aggregate category %s for goal %s: %w", *goal.CategoryID, goal.GoalID, err)
	}
	return accounting.GoalAmount(goal.GoalType, flows), nil
}

// refs collects distinct non-empty ids preserving first-seen order.
func refs(ids ...*string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == nil || *id == "" {
			continue
		}
		if _, ok := seen[*id]; ok {
			continue
		}
		seen[*id] = struct{}{}
		out = append(out, *id)
	}
	return out
}
