//go:build integration

package pgsql

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/SscSPs/bizledger/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RepositoryIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	repos     portsrepo.RepositoryProvider

	userID    string
	companyID string
	now       time.Time
}

func TestRepositoryIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RepositoryIntegrationSuite))
}

func (s *RepositoryIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	container, err := tcpostgres.Run(s.ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("bizledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(dsn, "file://../../../../migrations", slog.Default()))

	s.pool, err = database.NewPgxPool(s.ctx, dsn, true)
	s.Require().NoError(err)
	s.repos = NewRepositoryProvider(s.pool)
}

func (s *RepositoryIntegrationSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(s.ctx))
	}
}

func (s *RepositoryIntegrationSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE alerts, budgets, goals, transactions, categories, accounts, company_members, companies, users CASCADE;`)
	s.Require().NoError(err)

	s.now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s.userID = uuid.NewString()
	s.companyID = uuid.NewString()

	s.Require().NoError(s.repos.UserRepo.SaveUser(s.ctx, domain.User{
		UserID: s.userID, Email: "owner@example.com", Name: "Owner", PasswordHash: "x",
		AuditFields: domain.NewAuditFields(s.userID, s.now),
	}))
	s.Require().NoError(s.repos.CompanyRepo.SaveCompany(s.ctx,
		domain.Company{CompanyID: s.companyID, Name: "Acme", CurrencyCode: "BRL", IsActive: true, AuditFields: domain.NewAuditFields(s.userID, s.now)},
		domain.CompanyMember{UserID: s.userID, CompanyID: s.companyID, Role: domain.RoleOwner, IsActive: true, JoinedAt: s.now},
	))
}

func (s *RepositoryIntegrationSuite) newAccount(name string, initial int64) domain.Account {
	acc := domain.Account{
		AccountID: uuid.NewString(), CompanyID: s.companyID, Name: name, AccountType: domain.AccountChecking,
		InitialBalance: decimal.NewFromInt(initial), CurrentBalance: decimal.NewFromInt(initial), IsActive: true,
		AuditFields: domain.NewAuditFields(s.userID, s.now),
	}
	s.Require().NoError(s.repos.AccountRepo.SaveAccount(s.ctx, acc))
	return acc
}

func (s *RepositoryIntegrationSuite) saveTxn(t domain.Transaction) domain.Transaction {
	if t.TransactionID == "" {
		t.TransactionID = uuid.NewString()
	}
	t.CompanyID = s.companyID
	t.Recurrence = domain.RecurrenceNone
	t.AuditFields = domain.NewAuditFields(s.userID, s.now)
	tx, err := s.repos.TxManager.Begin(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.repos.TransactionRepo.SaveTransactionInTx(s.ctx, tx, t))
	s.Require().NoError(s.repos.TxManager.Commit(s.ctx, tx))
	return t
}

func (s *RepositoryIntegrationSuite) TestMembershipQueries() {
	member, err := s.repos.CompanyRepo.FindCompanyMember(s.ctx, s.userID, s.companyID)
	s.Require().NoError(err)
	s.Equal(domain.RoleOwner, member.Role)
	s.Equal("owner@example.com", member.UserEmail)

	owners, err := s.repos.CompanyRepo.CountActiveOwners(s.ctx, s.companyID)
	s.Require().NoError(err)
	s.Equal(1, owners)

	companies, err := s.repos.CompanyRepo.ListCompaniesByUserID(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Len(companies, 1)

	ids, err := s.repos.CompanyRepo.ListActiveCompanyIDs(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{s.companyID}, ids)

	u, err := s.repos.UserRepo.FindUserByEmail(s.ctx, "OWNER@example.com")
	s.Require().NoError(err)
	s.Equal(s.userID, u.UserID)
}

func (s *RepositoryIntegrationSuite) TestSumAccountFlowsCountsCompletedLegsOnly() {
	a := s.newAccount("A", 1000)
	b := s.newAccount("B", 0)
	day := domain.DateOnly(s.now)
	bID := b.AccountID

	s.saveTxn(domain.Transaction{Description: "sale", Amount: decimal.NewFromInt(500), TransactionType: domain.TransactionIncome, Status: domain.StatusCompleted, TransactionDate: day, AccountID: a.AccountID})
	s.saveTxn(domain.Transaction{Description: "rent", Amount: decimal.NewFromInt(200), TransactionType: domain.TransactionExpense, Status: domain.StatusCompleted, TransactionDate: day, AccountID: a.AccountID})
	s.saveTxn(domain.Transaction{Description: "move", Amount: decimal.NewFromInt(300), TransactionType: domain.TransactionTransfer, Status: domain.StatusCompleted, TransactionDate: day, AccountID: a.AccountID, TransferToAccountID: &bID})
	s.saveTxn(domain.Transaction{Description: "pending", Amount: decimal.NewFromInt(999), TransactionType: domain.TransactionIncome, Status: domain.StatusPending, TransactionDate: day, AccountID: a.AccountID})

	flowsA, err := s.repos.TransactionRepo.SumAccountFlows(s.ctx, nil, a.AccountID)
	s.Require().NoError(err)
	s.True(flowsA.Income.Equal(decimal.NewFromInt(500)))
	s.True(flowsA.Expense.Equal(decimal.NewFromInt(200)))
	s.True(flowsA.TransfersOut.Equal(decimal.NewFromInt(300)))
	s.True(flowsA.TransfersIn.IsZero())

	flowsB, err := s.repos.TransactionRepo.SumAccountFlows(s.ctx, nil, b.AccountID)
	s.Require().NoError(err)
	s.True(flowsB.TransfersIn.Equal(decimal.NewFromInt(300)))

	err = s.repos.AccountRepo.DeleteAccount(s.ctx, b.AccountID)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *RepositoryIntegrationSuite) TestSetBalancesAndLockedRead() {
	a := s.newAccount("A", 1000)
	tx, err := s.repos.TxManager.Begin(s.ctx)
	s.Require().NoError(err)
	defer func() { _ = s.repos.TxManager.Rollback(s.ctx, tx) }()

	locked, err := s.repos.AccountRepo.FindAccountsByIDsForUpdate(s.ctx, tx, []string{a.AccountID})
	s.Require().NoError(err)
	s.Contains(locked, a.AccountID)

	s.Require().NoError(s.repos.AccountRepo.SetAccountBalancesInTx(s.ctx, tx, map[string]decimal.Decimal{a.AccountID: decimal.NewFromInt(1234)}, s.userID, s.now))
	s.Require().NoError(s.repos.TxManager.Commit(s.ctx, tx))

	got, err := s.repos.AccountRepo.FindAccountByID(s.ctx, a.AccountID)
	s.Require().NoError(err)
	s.True(got.CurrentBalance.Equal(decimal.NewFromInt(1234)))

	_, err = s.repos.AccountRepo.FindAccountsByIDsForUpdate(s.ctx, nil, []string{uuid.NewString()})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *RepositoryIntegrationSuite) TestListTransactionsPaginates() {
	a := s.newAccount("A", 0)
	for i := 0; i < 5; i++ {
		s.saveTxn(domain.Transaction{
			Description: "t", Amount: decimal.NewFromInt(int64(10 + i)), TransactionType: domain.TransactionIncome,
			Status: domain.StatusCompleted, TransactionDate: domain.DateOnly(s.now).AddDate(0, 0, -i), AccountID: a.AccountID,
		})
	}

	seen := map[string]bool{}
	var token *string
	pages := 0
	for {
		page, next, err := s.repos.TransactionRepo.ListTransactions(s.ctx, s.companyID, domain.TransactionFilter{}, 2, token)
		s.Require().NoError(err)
		for _, t := range page {
			s.False(seen[t.TransactionID], "transaction listed twice")
			seen[t.TransactionID] = true
		}
		pages++
		if next == nil {
			break
		}
		token = next
	}
	s.Len(seen, 5)
	s.Equal(3, pages)

	bad := "%%%"
	_, _, err := s.repos.TransactionRepo.ListTransactions(s.ctx, s.companyID, domain.TransactionFilter{}, 2, &bad)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *RepositoryIntegrationSuite) TestDeletingCategoryUncategorisesTransactions() {
	a := s.newAccount("A", 0)
	cat := domain.Category{CategoryID: uuid.NewString(), CompanyID: s.companyID, Name: "Sales", CategoryType: domain.CategoryIncome,
		Color: domain.DefaultCategoryColor, Icon: domain.DefaultCategoryIcon, IsActive: true, AuditFields: domain.NewAuditFields(s.userID, s.now)}
	s.Require().NoError(s.repos.CategoryRepo.SaveCategory(s.ctx, cat))
	catID := cat.CategoryID
	t := s.saveTxn(domain.Transaction{Description: "sale", Amount: decimal.NewFromInt(40), TransactionType: domain.TransactionIncome,
		Status: domain.StatusCompleted, TransactionDate: domain.DateOnly(s.now), AccountID: a.AccountID, CategoryID: &catID})

	flows, err := s.repos.TransactionRepo.SumCategoryFlows(s.ctx, nil, catID, s.now.AddDate(0, 0, -1), s.now)
	s.Require().NoError(err)
	s.True(flows.Income.Equal(decimal.NewFromInt(40)))

	s.Require().NoError(s.repos.CategoryRepo.DeleteCategory(s.ctx, catID))
	got, err := s.repos.TransactionRepo.FindTransactionByID(s.ctx, t.TransactionID)
	s.Require().NoError(err)
	s.Nil(got.CategoryID)
}

func (s *RepositoryIntegrationSuite) TestExistsOpenAlertMatchesSubject() {
	accountID := uuid.NewString()
	alert := domain.Alert{
		AlertID: uuid.NewString(), CompanyID: s.companyID, AlertType: domain.AlertLowBalance, Severity: domain.SeverityHigh,
		Status: domain.AlertActive, Title: "Low", Message: "low", RelatedData: map[string]any{domain.SubjectAccount: accountID},
		TriggeredAt: s.now, CreatedBy: "system",
	}
	s.Require().NoError(s.repos.AlertRepo.SaveAlert(s.ctx, alert))

	exists, err := s.repos.AlertRepo.ExistsOpenAlert(s.ctx, s.companyID, domain.AlertLowBalance, domain.SubjectAccount, accountID, s.now.Add(-time.Hour))
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.repos.AlertRepo.ExistsOpenAlert(s.ctx, s.companyID, domain.AlertLowBalance, domain.SubjectAccount, uuid.NewString(), s.now.Add(-time.Hour))
	s.Require().NoError(err)
	s.False(exists)

	exists, err = s.repos.AlertRepo.ExistsOpenAlert(s.ctx, s.companyID, domain.AlertLowBalance, "", "", s.now.Add(time.Hour))
	s.Require().NoError(err)
	s.False(exists, "outside the cooldown window")

	pruned, err := s.repos.AlertRepo.DeleteAlertsTriggeredBefore(s.ctx, s.companyID, s.now.Add(time.Minute))
	s.Require().NoError(err)
	s.EqualValues(1, pruned)
}
