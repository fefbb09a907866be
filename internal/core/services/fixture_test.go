package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/core/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/platform/cache"
	"github.com/SscSPs/bizledger/internal/platform/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// ledgerFixture wires every company scoped service over one in-memory store.
// Suites embed it and call setup from their SetupTest.
type ledgerFixture struct {
	suite.Suite
	ctx       context.Context
	store     *memStore
	now       time.Time
	companyID string
	userID    string

	accounts    portssvc.AccountSvcFacade
	ledger      portssvc.LedgerSvcFacade
	goals       portssvc.GoalSvcFacade
	budgets     portssvc.BudgetSvcFacade
	alerts      portssvc.AlertSvcFacade
	insights    portssvc.InsightSvc
	maintenance portssvc.MaintenanceSvc
}

func (f *ledgerFixture) setup(now time.Time) {
	f.ctx = context.Background()
	f.store = newMemStore()
	f.now = now
	f.companyID = uuid.NewString()
	f.userID = uuid.NewString()

	repos := f.store.provider()
	opts := f.options()
	f.accounts = services.NewAccountService(repos, opts...)
	f.ledger = services.NewLedgerService(repos, opts...)
	f.goals = services.NewGoalService(repos, opts...)
	f.budgets = services.NewBudgetService(repos, opts...)
	f.alerts = f.alertService(cache.NewLocalLocker())
	f.insights = services.NewInsightService(repos, opts...)
	f.maintenance = services.NewMaintenanceService(repos, opts...)
}

func (f *ledgerFixture) options() []services.ServiceOption {
	return []services.ServiceOption{
		services.WithCompanyAuthorizer(allowAll{}),
		services.WithClock(func() time.Time { return f.now }),
	}
}

func (f *ledgerFixture) alertService(locker portsrepo.DistributedLocker) portssvc.AlertSvcFacade {
	return services.NewAlertService(f.store.provider(), config.DefaultAlertRules(), locker, f.options()...)
}

// day is midnight UTC of the given date in 2024.
func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func ptr[T any](v T) *T {
	return &v
}

func (f *ledgerFixture) newAccount(name, initial string) string {
	acc, err := f.accounts.CreateAccount(f.ctx, f.companyID, dto.CreateAccountRequest{
		Name:           name,
		AccountType:    domain.AccountChecking,
		InitialBalance: dec(initial),
	}, f.userID)
	f.Require().NoError(err)
	return acc.AccountID
}

func (f *ledgerFixture) newCategory(name string, categoryType domain.CategoryType) string {
	c := domain.Category{
		CategoryID:   uuid.NewString(),
		CompanyID:    f.companyID,
		Name:         name,
		CategoryType: categoryType,
		IsActive:     true,
	}
	f.store.categories[c.CategoryID] = c
	return c.CategoryID
}

func (f *ledgerFixture) record(req dto.CreateTransactionRequest) *domain.Transaction {
	txn, err := f.ledger.CreateTransaction(f.ctx, f.companyID, req, f.userID)
	f.Require().NoError(err)
	return txn
}

func (f *ledgerFixture) completed(txnType domain.TransactionType, accountID, amount string) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		Description:     string(txnType),
		Amount:          dec(amount),
		TransactionType: txnType,
		Status:          domain.StatusCompleted,
		AccountID:       accountID,
	}
}

// completedOn is a completed, categorised transaction dated on.
func (f *ledgerFixture) completedOn(txnType domain.TransactionType, accountID, categoryID, amount string, on time.Time) dto.CreateTransactionRequest {
	req := f.completed(txnType, accountID, amount)
	req.CategoryID = &categoryID
	req.TransactionDate = &on
	return req
}

func (f *ledgerFixture) assertBalance(accountID, want string) {
	f.T().Helper()
	got := f.store.accounts[accountID].CurrentBalance
	f.True(dec(want).Equal(got), "balance of %s: want %s, got %s", accountID, want, got)
}
