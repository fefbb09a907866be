package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for ledger transactions
type TransactionReader interface {
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions returns one page ordered by transaction_date DESC, created_at DESC.
	// nextToken is nil on the last page.
	ListTransactions(ctx context.Context, companyID string, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// ListTransactionsByFilter returns every matching transaction without pagination.
	ListTransactionsByFilter(ctx context.Context, companyID string, filter domain.TransactionFilter) ([]domain.Transaction, error)
}

// TransactionWriter defines the mutations of ledger transactions. All of them run inside the
// caller's database transaction so the balance and goal recompute can commit with them.
type TransactionWriter interface {
	// FindTransactionsByIDsForUpdate locks the given rows. Missing ids are absent from the result.
	FindTransactionsByIDsForUpdate(ctx context.Context, tx pgx.Tx, transactionIDs []string) (map[string]domain.Transaction, error)

	SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error
	UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error
	DeleteTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string) error

	// UpdateTransactionStatusesInTx writes status, paid_date and the update audit fields of each row.
	UpdateTransactionStatusesInTx(ctx context.Context, tx pgx.Tx, txns []domain.Transaction) error
}

// TransactionAggregator defines the aggregate queries derived state is computed from.
// A nil tx runs the query on the pool.
type TransactionAggregator interface {
	// SumAccountFlows sums the completed income, expense and transfer legs touching accountID.
	SumAccountFlows(ctx context.Context, tx pgx.Tx, accountID string) (domain.AccountFlows, error)

	// SumCategoryFlows sums completed income and expense of a category over [from, to].
	SumCategoryFlows(ctx context.Context, tx pgx.Tx, categoryID string, from, to time.Time) (domain.CategoryFlows, error)

	// AggregateTransactions counts and sums the transactions matching filter.
	AggregateTransactions(ctx context.Context, companyID string, filter domain.TransactionFilter) (domain.TransactionAggregate, error)

	// AverageExpenseByCategory averages completed expense amounts per category over [from, to).
	// Uncategorised expenses are keyed by the empty string.
	AverageExpenseByCategory(ctx context.Context, companyID string, from, to time.Time) (map[string]decimal.Decimal, error)

	// SumActivityByCategory sums completed categorised income and expense per category over [from, to].
	SumActivityByCategory(ctx context.Context, companyID string, from, to time.Time) (map[string]decimal.Decimal, error)
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
	TransactionAggregator
}
