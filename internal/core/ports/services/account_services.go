package services

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, companyID string, accountID string, userID string) (*domain.Account, error)

	// ListAccounts retrieves the accounts of a company.
	ListAccounts(ctx context.Context, companyID string, userID string, activeOnly bool) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account whose current balance starts at its initial balance.
	CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount edits an account. A changed initial balance is folded into the cached balance.
	UpdateAccount(ctx context.Context, companyID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeleteAccount removes an account that no transaction references.
	DeleteAccount(ctx context.Context, companyID string, accountID string, userID string) error
}

// AccountCalculatorSvc defines balance operations for account data
type AccountCalculatorSvc interface {
	// RecomputeAccountBalance rebuilds the cached balance of one account from the ledger.
	RecomputeAccountBalance(ctx context.Context, companyID string, accountID string, userID string) (*domain.BalanceChange, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountCalculatorSvc
}
