package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/platform/telemetry"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// accountService implements portssvc.AccountSvcFacade.
type accountService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	accountRepo portsrepo.AccountRepositoryFacade
	recompute   *ledgerRecomputer
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		txManager:   repos.TxManager,
		accountRepo: repos.AccountRepo,
		recompute:   newLedgerRecomputer(repos),
	}
	svc.apply(options)
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount creates an account whose cached balance starts at the initial balance.
func (s *accountService) CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleManager); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationFailedError("account name is required")
	}
	if !req.AccountType.IsValid() {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("invalid account type %q", req.AccountType))
	}
	if !domain.HasMoneyPrecision(req.InitialBalance) {
		return nil, apperrors.NewValidationFailedError("initial balance " + domain.ErrAmountPrecision.Error())
	}

	account := domain.Account{
		AccountID:      uuid.NewString(),
		CompanyID:      companyID,
		Name:           name,
		AccountType:    req.AccountType,
		BankName:       req.BankName,
		Description:    req.Description,
		InitialBalance: req.InitialBalance,
		CurrentBalance: req.InitialBalance,
		IsActive:       true,
		AuditFields:    domain.NewAuditFields(userID, s.Now()),
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account",
			slog.String("company_id", companyID),
			slog.String("name", name))
		return nil, err
	}

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("company_id", companyID))
	return &account, nil
}

// GetAccountByID returns an account of the company; accounts of other companies are not found.
func (s *accountService) GetAccountByID(ctx context.Context, companyID string, accountID string, userID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	return s.findInCompany(ctx, companyID, accountID)
}

func (s *accountService) findInCompany(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		return nil, err
	}
	if account.CompanyID != companyID {
		s.LogDebug(ctx, "Account found but belongs to different company",
			slog.String("account_id", accountID),
			slog.String("requested_company", companyID))
		return nil, notFoundIn("account", accountID)
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, companyID string, userID string, activeOnly bool) ([]domain.Account, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, companyID, activeOnly)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("company_id", companyID))
		return nil, err
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// UpdateAccount edits an account under its row lock. A new initial balance is folded into
// the cached balance by a recompute in the same transaction.
func (s *accountService) UpdateAccount(ctx context.Context, companyID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleManager); err != nil {
		return nil, err
	}

	var updated domain.Account
	err := runInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		locked, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{accountID})
		if err != nil {
			return err
		}
		account := locked[accountID]
		if account.CompanyID != companyID {
			return notFoundIn("account", accountID)
		}

		initialChanged, err := applyAccountUpdate(&account, req)
		if err != nil {
			return err
		}
		now := s.Now()
		account.Touch(userID, now)

		if err := s.accountRepo.UpdateAccountInTx(ctx, tx, account); err != nil {
			return err
		}
		if initialChanged {
			changes, err := s.recompute.balances(ctx, tx, map[string]domain.Account{accountID: account}, userID, now)
			if err != nil {
				s.LogError(ctx, err, "Balance recompute failed after initial balance change",
					slog.String("account_id", accountID))
				return apperrors.NewConsistencyError("failed to recompute account balance", err)
			}
			account.CurrentBalance = changes[0].NewBalance
		}
		updated = account
		return nil
	})
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to update account",
			slog.String("account_id", accountID),
			slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated",
		slog.String("account_id", accountID),
		slog.String("company_id", companyID))
	return &updated, nil
}

func applyAccountUpdate(account *domain.Account, req dto.UpdateAccountRequest) (initialChanged bool, err error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return false, apperrors.NewValidationFailedError("account name cannot be empty")
		}
		account.Name = name
	}
	if req.AccountType != nil {
		if !req.AccountType.IsValid() {
			return false, apperrors.NewValidationFailedError(fmt.Sprintf("invalid account type %q", *req.AccountType))
		}
		account.AccountType = *req.AccountType
	}
	if req.BankName != nil {
		account.BankName = *req.BankName
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	if req.InitialBalance != nil && !domain.HasMoneyPrecision(*req.InitialBalance) {
		return false, apperrors.NewValidationFailedError("initial balance " + domain.ErrAmountPrecision.Error())
	}
	if req.InitialBalance != nil && !req.InitialBalance.Equal(account.InitialBalance) {
		account.InitialBalance = *req.InitialBalance
		initialChanged = true
	}
	return initialChanged, nil
}

// DeleteAccount removes an account. Referenced accounts yield a conflict; deactivate them instead.
func (s *accountService) DeleteAccount(ctx context.Context, companyID string, accountID string, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleManager); err != nil {
		return err
	}
	if _, err := s.findInCompany(ctx, companyID, accountID); err != nil {
		return err
	}
	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return err
	}
	s.LogInfo(ctx, "Account deleted",
		slog.String("account_id", accountID),
		slog.String("company_id", companyID))
	return nil
}

// RecomputeAccountBalance rebuilds one cached balance from the ledger.
func (s *accountService) RecomputeAccountBalance(ctx context.Context, companyID string, accountID string, userID string) (*domain.BalanceChange, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleManager); err != nil {
		return nil, err
	}
	if _, err := s.findInCompany(ctx, companyID, accountID); err != nil {
		return nil, err
	}

	ctx, span := s.StartSpan(ctx, "AccountService", "RecomputeAccountBalance", companyID)
	defer span.End()

	var change domain.BalanceChange
	err := runInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		changes, err := s.recompute.accounts(ctx, tx, []string{accountID}, userID, s.Now())
		if err != nil {
			return apperrors.NewConsistencyError("failed to recompute account balance", err)
		}
		change = changes[0]
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.LogError(ctx, err, "Failed to recompute account balance", slog.String("account_id", accountID))
		return nil, err
	}

	if change.Changed() {
		s.LogInfo(ctx, "Account balance corrected",
			slog.String("account_id", accountID),
			slog.String("old_balance", change.OldBalance.String()),
			slog.String("new_balance", change.NewBalance.String()))
	}
	return &change, nil
}
