package services_test

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// memTx stands in for a database transaction. The store never calls its methods.
type memTx struct {
	pgx.Tx
}

type memState struct {
	accounts   map[string]domain.Account
	categories map[string]domain.Category
	txns       map[string]domain.Transaction
	goals      map[string]domain.Goal
	budgets    map[string]domain.Budget
	alerts     map[string]domain.Alert
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s memState) clone() memState {
	return memState{
		accounts:   cloneMap(s.accounts),
		categories: cloneMap(s.categories),
		txns:       cloneMap(s.txns),
		goals:      cloneMap(s.goals),
		budgets:    cloneMap(s.budgets),
		alerts:     cloneMap(s.alerts),
	}
}

// memStore implements the repository ports in memory. Begin snapshots the state and Rollback
// restores it, so rolled back writes disappear like they would in PostgreSQL.
type memStore struct {
	memState
	snapshot  *memState
	commits   int
	rollbacks int

	// failCategoryFlows makes SumCategoryFlows fail, to exercise recompute rollbacks.
	failCategoryFlows error
}

var (
	_ portsrepo.TransactionManager          = (*memStore)(nil)
	_ portsrepo.AccountRepositoryFacade     = (*memStore)(nil)
	_ portsrepo.CategoryRepositoryFacade    = (*memStore)(nil)
	_ portsrepo.TransactionRepositoryFacade = (*memStore)(nil)
	_ portsrepo.GoalRepositoryFacade        = (*memStore)(nil)
	_ portsrepo.BudgetRepositoryFacade      = (*memStore)(nil)
	_ portsrepo.AlertRepositoryFacade       = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{memState: memState{
		accounts:   map[string]domain.Account{},
		categories: map[string]domain.Category{},
		txns:       map[string]domain.Transaction{},
		goals:      map[string]domain.Goal{},
		budgets:    map[string]domain.Budget{},
		alerts:     map[string]domain.Alert{},
	}}
}

func (m *memStore) provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:       m,
		AccountRepo:     m,
		CategoryRepo:    m,
		TransactionRepo: m,
		GoalRepo:        m,
		BudgetRepo:      m,
		AlertRepo:       m,
	}
}

func notFound(what string) error {
	return apperrors.NewNotFoundError(what + " not found")
}

// --- TransactionManager ---

func (m *memStore) Begin(ctx context.Context) (pgx.Tx, error) {
	snap := m.memState.clone()
	m.snapshot = &snap
	return &memTx{}, nil
}

func (m *memStore) Commit(ctx context.Context, tx pgx.Tx) error {
	m.snapshot = nil
	m.commits++
	return nil
}

func (m *memStore) Rollback(ctx context.Context, tx pgx.Tx) error {
	if m.snapshot != nil {
		m.memState = *m.snapshot
		m.snapshot = nil
		m.rollbacks++
	}
	return nil
}

// --- accounts ---

func (m *memStore) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	acc, ok := m.accounts[accountID]
	if !ok {
		return nil, notFound("account")
	}
	return &acc, nil
}

func (m *memStore) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := map[string]domain.Account{}
	for _, id := range accountIDs {
		if acc, ok := m.accounts[id]; ok {
			out[id] = acc
		}
	}
	return out, nil
}

func (m *memStore) ListAccounts(ctx context.Context, companyID string, activeOnly bool) ([]domain.Account, error) {
	var out []domain.Account
	for _, acc := range m.accounts {
		if acc.CompanyID == companyID && (!activeOnly || acc.IsActive) {
			out = append(out, acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) SaveAccount(ctx context.Context, account domain.Account) error {
	m.accounts[account.AccountID] = account
	return nil
}

func (m *memStore) UpdateAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	stored, ok := m.accounts[account.AccountID]
	if !ok {
		return notFound("account")
	}
	account.CurrentBalance = stored.CurrentBalance
	m.accounts[account.AccountID] = account
	return nil
}

func (m *memStore) DeleteAccount(ctx context.Context, accountID string) error {
	for _, t := range m.txns {
		for _, ref := range t.AccountRefs() {
			if ref == accountID {
				return apperrors.NewConflictError("account is referenced by transactions")
			}
		}
	}
	delete(m.accounts, accountID)
	return nil
}

func (m *memStore) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	return m.FindAccountsByIDs(ctx, accountIDs)
}

func (m *memStore) SetAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balances map[string]decimal.Decimal, userID string, now time.Time) error {
	for id, balance := range balances {
		acc := m.accounts[id]
		acc.CurrentBalance = balance
		acc.Touch(userID, now)
		m.accounts[id] = acc
	}
	return nil
}

// --- categories ---

func (m *memStore) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	c, ok := m.categories[categoryID]
	if !ok {
		return nil, notFound("category")
	}
	return &c, nil
}

func (m *memStore) FindCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]domain.Category, error) {
	out := map[string]domain.Category{}
	for _, id := range categoryIDs {
		if c, ok := m.categories[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *memStore) ListCategories(ctx context.Context, companyID string, categoryType *domain.CategoryType, activeOnly bool) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range m.categories {
		if c.CompanyID != companyID || (activeOnly && !c.IsActive) {
			continue
		}
		if categoryType != nil && c.CategoryType != *categoryType && c.CategoryType != domain.CategoryBoth {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) HasChildCategories(ctx context.Context, categoryID string) (bool, error) {
	for _, c := range m.categories {
		if c.ParentID != nil && *c.ParentID == categoryID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) SaveCategory(ctx context.Context, category domain.Category) error {
	m.categories[category.CategoryID] = category
	return nil
}

func (m *memStore) UpdateCategory(ctx context.Context, category domain.Category) error {
	if _, ok := m.categories[category.CategoryID]; !ok {
		return notFound("category")
	}
	m.categories[category.CategoryID] = category
	return nil
}

func (m *memStore) DeleteCategory(ctx context.Context, categoryID string) error {
	if _, ok := m.categories[categoryID]; !ok {
		return notFound("category")
	}
	delete(m.categories, categoryID)
	for id, t := range m.txns {
		if t.CategoryID != nil && *t.CategoryID == categoryID {
			t.CategoryID = nil
			m.txns[id] = t
		}
	}
	return nil
}

// --- transactions ---

func matchesFilter(t domain.Transaction, companyID string, f domain.TransactionFilter) bool {
	if t.CompanyID != companyID {
		return false
	}
	if f.AccountID != nil && t.AccountID != *f.AccountID &&
		(t.TransferToAccountID == nil || *t.TransferToAccountID != *f.AccountID) {
		return false
	}
	if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
		return false
	}
	if f.Uncategorized && t.CategoryID != nil {
		return false
	}
	if f.TransactionType != nil && t.TransactionType != *f.TransactionType {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.FromDate != nil && t.TransactionDate.Before(domain.DateOnly(*f.FromDate)) {
		return false
	}
	if f.ToDate != nil && t.TransactionDate.After(domain.DateOnly(*f.ToDate)) {
		return false
	}
	return true
}

func (m *memStore) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	t, ok := m.txns[transactionID]
	if !ok {
		return nil, notFound("transaction")
	}
	return &t, nil
}

func (m *memStore) ListTransactions(ctx context.Context, companyID string, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	all, _ := m.ListTransactionsByFilter(ctx, companyID, filter)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil, nil
}

func (m *memStore) ListTransactionsByFilter(ctx context.Context, companyID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, t := range m.txns {
		if matchesFilter(t, companyID, filter) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate) {
			return out[i].TransactionDate.After(out[j].TransactionDate)
		}
		return out[i].TransactionID > out[j].TransactionID
	})
	return out, nil
}

func (m *memStore) FindTransactionsByIDsForUpdate(ctx context.Context, tx pgx.Tx, transactionIDs []string) (map[string]domain.Transaction, error) {
	out := map[string]domain.Transaction{}
	for _, id := range transactionIDs {
		if t, ok := m.txns[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

func (m *memStore) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m.txns[txn.TransactionID] = txn
	return nil
}

func (m *memStore) UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	if _, ok := m.txns[txn.TransactionID]; !ok {
		return notFound("transaction")
	}
	m.txns[txn.TransactionID] = txn
	return nil
}

func (m *memStore) DeleteTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string) error {
	if _, ok := m.txns[transactionID]; !ok {
		return notFound("transaction")
	}
	delete(m.txns, transactionID)
	return nil
}

func (m *memStore) UpdateTransactionStatusesInTx(ctx context.Context, tx pgx.Tx, txns []domain.Transaction) error {
	for _, t := range txns {
		stored, ok := m.txns[t.TransactionID]
		if !ok {
			return notFound("transaction")
		}
		stored.Status = t.Status
		stored.PaidDate = t.PaidDate
		stored.AuditFields = t.AuditFields
		m.txns[t.TransactionID] = stored
	}
	return nil
}

func (m *memStore) SumAccountFlows(ctx context.Context, tx pgx.Tx, accountID string) (domain.AccountFlows, error) {
	var f domain.AccountFlows
	for _, t := range m.txns {
		if !t.IsCompleted() {
			continue
		}
		switch {
		case t.TransactionType == domain.TransactionIncome && t.AccountID == accountID:
			f.Income = f.Income.Add(t.Amount)
		case t.TransactionType == domain.TransactionExpense && t.AccountID == accountID:
			f.Expense = f.Expense.Add(t.Amount)
		case t.IsTransfer() && t.AccountID == accountID:
			f.TransfersOut = f.TransfersOut.Add(t.Amount)
		case t.IsTransfer() && t.TransferToAccountID != nil && *t.TransferToAccountID == accountID:
			f.TransfersIn = f.TransfersIn.Add(t.Amount)
		}
	}
	return f, nil
}

func (m *memStore) SumCategoryFlows(ctx context.Context, tx pgx.Tx, categoryID string, from, to time.Time) (domain.CategoryFlows, error) {
	if m.failCategoryFlows != nil {
		return domain.CategoryFlows{}, m.failCategoryFlows
	}
	var f domain.CategoryFlows
	for _, t := range m.txns {
		if !t.IsCompleted() || t.CategoryID == nil || *t.CategoryID != categoryID {
			continue
		}
		if t.TransactionDate.Before(from) || t.TransactionDate.After(to) {
			continue
		}
		switch t.TransactionType {
		case domain.TransactionIncome:
			f.Income = f.Income.Add(t.Amount)
		case domain.TransactionExpense:
			f.Expense = f.Expense.Add(t.Amount)
		}
	}
	return f, nil
}

func (m *memStore) AggregateTransactions(ctx context.Context, companyID string, filter domain.TransactionFilter) (domain.TransactionAggregate, error) {
	agg := domain.TransactionAggregate{Total: decimal.Zero}
	for _, t := range m.txns {
		if matchesFilter(t, companyID, filter) {
			agg.Count++
			agg.Total = agg.Total.Add(t.Amount)
		}
	}
	return agg, nil
}

func (m *memStore) AverageExpenseByCategory(ctx context.Context, companyID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	sums := map[string]decimal.Decimal{}
	counts := map[string]int64{}
	for _, t := range m.txns {
		if t.CompanyID != companyID || !t.IsCompleted() || t.TransactionType != domain.TransactionExpense {
			continue
		}
		if t.TransactionDate.Before(from) || !t.TransactionDate.Before(to) {
			continue
		}
		key := ""
		if t.CategoryID != nil {
			key = *t.CategoryID
		}
		sums[key] = sums[key].Add(t.Amount)
		counts[key]++
	}
	out := map[string]decimal.Decimal{}
	for k, sum := range sums {
		out[k] = sum.Div(decimal.NewFromInt(counts[k]))
	}
	return out, nil
}

func (m *memStore) SumActivityByCategory(ctx context.Context, companyID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	for _, t := range m.txns {
		if t.CompanyID != companyID || !t.IsCompleted() || t.IsTransfer() || t.CategoryID == nil {
			continue
		}
		if t.TransactionDate.Before(from) || t.TransactionDate.After(to) {
			continue
		}
		out[*t.CategoryID] = out[*t.CategoryID].Add(t.Amount)
	}
	return out, nil
}

// --- goals ---

func (m *memStore) FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error) {
	g, ok := m.goals[goalID]
	if !ok {
		return nil, notFound("goal")
	}
	return &g, nil
}

func (m *memStore) ListGoals(ctx context.Context, companyID string, activeOnly bool) ([]domain.Goal, error) {
	var out []domain.Goal
	for _, g := range m.goals {
		if g.CompanyID == companyID && (!activeOnly || g.IsActive) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GoalID < out[j].GoalID })
	return out, nil
}

func (m *memStore) SaveGoal(ctx context.Context, goal domain.Goal) error {
	m.goals[goal.GoalID] = goal
	return nil
}

func (m *memStore) UpdateGoalInTx(ctx context.Context, tx pgx.Tx, goal domain.Goal) error {
	if _, ok := m.goals[goal.GoalID]; !ok {
		return notFound("goal")
	}
	m.goals[goal.GoalID] = goal
	return nil
}

func (m *memStore) DeleteGoal(ctx context.Context, goalID string) error {
	if _, ok := m.goals[goalID]; !ok {
		return notFound("goal")
	}
	delete(m.goals, goalID)
	return nil
}

func (m *memStore) FindActiveGoalsByCategoriesForUpdate(ctx context.Context, tx pgx.Tx, categoryIDs []string) ([]domain.Goal, error) {
	wanted := map[string]bool{}
	for _, id := range categoryIDs {
		wanted[id] = true
	}
	var out []domain.Goal
	for _, g := range m.goals {
		if g.IsActive && g.CategoryID != nil && wanted[*g.CategoryID] {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GoalID < out[j].GoalID })
	return out, nil
}

func (m *memStore) FindGoalsByIDsForUpdate(ctx context.Context, tx pgx.Tx, goalIDs []string) ([]domain.Goal, error) {
	var out []domain.Goal
	for _, id := range goalIDs {
		if g, ok := m.goals[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memStore) UpdateGoalProgressInTx(ctx context.Context, tx pgx.Tx, goals []domain.Goal) error {
	for _, g := range goals {
		stored := m.goals[g.GoalID]
		stored.CurrentAmount = g.CurrentAmount
		stored.IsAchieved = g.IsAchieved
		stored.AchievedAt = g.AchievedAt
		stored.AuditFields = g.AuditFields
		m.goals[g.GoalID] = stored
	}
	return nil
}

// --- budgets ---

func (m *memStore) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	b, ok := m.budgets[budgetID]
	if !ok {
		return nil, notFound("budget")
	}
	return &b, nil
}

func (m *memStore) ListBudgets(ctx context.Context, companyID string, activeOnly bool) ([]domain.Budget, error) {
	var out []domain.Budget
	for _, b := range m.budgets {
		if b.CompanyID == companyID && (!activeOnly || b.IsActive) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BudgetID < out[j].BudgetID })
	return out, nil
}

func (m *memStore) SaveBudget(ctx context.Context, budget domain.Budget) error {
	m.budgets[budget.BudgetID] = budget
	return nil
}

func (m *memStore) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	if _, ok := m.budgets[budget.BudgetID]; !ok {
		return notFound("budget")
	}
	m.budgets[budget.BudgetID] = budget
	return nil
}

func (m *memStore) DeleteBudget(ctx context.Context, budgetID string) error {
	if _, ok := m.budgets[budgetID]; !ok {
		return notFound("budget")
	}
	delete(m.budgets, budgetID)
	return nil
}

// --- alerts ---

func (m *memStore) FindAlertByID(ctx context.Context, alertID string) (*domain.Alert, error) {
	a, ok := m.alerts[alertID]
	if !ok {
		return nil, notFound("alert")
	}
	return &a, nil
}

func (m *memStore) ListAlerts(ctx context.Context, companyID string, filter portsrepo.AlertFilter, limit, offset int) ([]domain.Alert, error) {
	var out []domain.Alert
	for _, a := range m.alerts {
		if a.CompanyID != companyID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.AlertType != nil && a.AlertType != *filter.AlertType {
			continue
		}
		if filter.Severity != nil && a.Severity != *filter.Severity {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TriggeredAt.After(out[j].TriggeredAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListOpenAlerts(ctx context.Context, companyID string) ([]domain.Alert, error) {
	var out []domain.Alert
	for _, a := range m.alerts {
		if a.CompanyID == companyID && a.Status.IsOpen() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) ExistsOpenAlert(ctx context.Context, companyID string, alertType domain.AlertType, subjectKey, subjectID string, since time.Time) (bool, error) {
	for _, a := range m.alerts {
		if a.CompanyID != companyID || a.AlertType != alertType || !a.Status.IsOpen() || a.TriggeredAt.Before(since) {
			continue
		}
		if subjectKey == "" {
			return true, nil
		}
		if id, ok := a.SubjectID(subjectKey); ok && id == subjectID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) SaveAlert(ctx context.Context, alert domain.Alert) error {
	m.alerts[alert.AlertID] = alert
	return nil
}

func (m *memStore) UpdateAlertStatus(ctx context.Context, alert domain.Alert) error {
	if _, ok := m.alerts[alert.AlertID]; !ok {
		return notFound("alert")
	}
	m.alerts[alert.AlertID] = alert
	return nil
}

func (m *memStore) DeleteAlertsTriggeredBefore(ctx context.Context, companyID string, before time.Time) (int64, error) {
	var n int64
	for id, a := range m.alerts {
		if a.CompanyID == companyID && a.TriggeredAt.Before(before) {
			delete(m.alerts, id)
			n++
		}
	}
	return n, nil
}

// allowAll authorizes every user for every company.
type allowAll struct{}

func (allowAll) AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.CompanyRole) error {
	return nil
}
