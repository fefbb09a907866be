package services

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
)

// LedgerReaderSvc defines read operations for transactions
type LedgerReaderSvc interface {
	GetTransactionByID(ctx context.Context, companyID string, transactionID string, userID string) (*domain.Transaction, error)

	// ListTransactions returns one page of transactions and the token for the next page.
	ListTransactions(ctx context.Context, companyID string, params dto.ListTransactionsParams, userID string) ([]domain.Transaction, *string, error)
}

// LedgerWriterSvc defines the transaction lifecycle. Every operation recomputes the balances
// of all accounts and the progress of all goals the change touches, in the same database
// transaction as the change itself.
type LedgerWriterSvc interface {
	CreateTransaction(ctx context.Context, companyID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, companyID string, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error)
	SetTransactionStatus(ctx context.Context, companyID string, transactionID string, status domain.TransactionStatus, userID string) (*domain.Transaction, error)

	// BulkSetTransactionStatus moves every listed transaction or none of them.
	BulkSetTransactionStatus(ctx context.Context, companyID string, req dto.BulkStatusRequest, userID string) (int, error)

	DeleteTransaction(ctx context.Context, companyID string, transactionID string, userID string) error
}

// LedgerSvcFacade combines all transaction-related service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
