package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/platform/telemetry"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultPageSize = 20

// ledgerService owns the transaction lifecycle. Every write locks the rows it touches, then
// recomputes the balances of every account and the progress of every goal the write could
// have affected before committing.
type ledgerService struct {
	BaseService
	txManager    portsrepo.TransactionManager
	txnRepo      portsrepo.TransactionRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
	categoryRepo portsrepo.CategoryReader
	recompute    *ledgerRecomputer
}

// NewLedgerService creates the transaction lifecycle service.
func NewLedgerService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		txManager:    repos.TxManager,
		txnRepo:      repos.TransactionRepo,
		accountRepo:  repos.AccountRepo,
		categoryRepo: repos.CategoryRepo,
		recompute:    newLedgerRecomputer(repos),
	}
	svc.apply(options)
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// ledgerWrite is one row before and after a mutation. before is nil on create, after is nil
// on delete.
type ledgerWrite struct {
	before *domain.Transaction
	after  *domain.Transaction
}

func (s *ledgerService) GetTransactionByID(ctx context.Context, companyID string, transactionID string, userID string) (*domain.Transaction, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to find transaction by ID", slog.String("transaction_id", transactionID))
		return nil, err
	}
	if txn.CompanyID != companyID {
		return nil, notFoundIn("transaction", transactionID)
	}
	return txn, nil
}

// ListTransactions returns one page, newest first.
func (s *ledgerService) ListTransactions(ctx context.Context, companyID string, params dto.ListTransactionsParams, userID string) ([]domain.Transaction, *string, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, nil, err
	}
	if params.FromDate != nil && params.ToDate != nil && params.FromDate.After(*params.ToDate) {
		return nil, nil, apperrors.NewValidationFailedError("from date must not be after to date")
	}
	if params.Uncategorized && params.CategoryID != nil {
		return nil, nil, apperrors.NewValidationFailedError("uncategorized and categoryID are mutually exclusive")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	txns, next, err := s.txnRepo.ListTransactions(ctx, companyID, params.Filter(), limit, params.NextToken)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list transactions", slog.String("company_id", companyID))
		}
		return nil, nil, err
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return txns, next, nil
}

// CreateTransaction validates and stores a transaction, then recomputes its accounts and goals.
func (s *ledgerService) CreateTransaction(ctx context.Context, companyID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	ctx, span := s.StartSpan(ctx, "LedgerService", "CreateTransaction", companyID)
	defer span.End()

	now := s.Now()
	txn := domain.Transaction{
		TransactionID:       uuid.NewString(),
		CompanyID:           companyID,
		Description:         req.Description,
		Amount:              req.Amount,
		TransactionType:     req.TransactionType,
		Status:              req.Status,
		TransactionDate:     s.Today(),
		DueDate:             req.DueDate,
		PaidDate:            req.PaidDate,
		CategoryID:          req.CategoryID,
		AccountID:           req.AccountID,
		TransferToAccountID: req.TransferToAccountID,
		Recurrence:          req.Recurrence,
		RecurrenceEndDate:   req.RecurrenceEndDate,
		Reference:           req.Reference,
		Notes:               req.Notes,
		AuditFields:         domain.NewAuditFields(userID, now),
	}
	if req.TransactionDate != nil {
		txn.TransactionDate = *req.TransactionDate
	}
	if err := s.prepare(ctx, companyID, &txn); err != nil {
		return nil, err
	}

	err := runInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		return s.commitWrites(ctx, tx, companyID, []ledgerWrite{{after: &txn}}, userID, now, false)
	})
	if err != nil {
		return nil, s.failWrite(ctx, span, err, "Failed to create transaction", slog.String("company_id", companyID))
	}

	s.LogInfo(ctx, "Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("company_id", companyID),
		slog.String("type", string(txn.TransactionType)),
		slog.String("status", string(txn.Status)))
	return &txn, nil
}

// UpdateTransaction edits any field. Both the old and the new side of the row are recomputed.
func (s *ledgerService) UpdateTransaction(ctx context.Context, companyID string, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	ctx, span := s.StartSpan(ctx, "LedgerService", "UpdateTransaction", companyID)
	defer span.End()

	updated, err := s.edit(ctx, companyID, []string{transactionID}, userID, false, func(txn *domain.Transaction) {
		applyTransactionUpdate(txn, req)
	})
	if err != nil {
		return nil, s.failWrite(ctx, span, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
	}

	s.LogInfo(ctx, "Transaction updated",
		slog.String("transaction_id", transactionID),
		slog.String("company_id", companyID))
	return &updated[0], nil
}

func applyTransactionUpdate(txn *domain.Transaction, req dto.UpdateTransactionRequest) {
	if req.Description != nil {
		txn.Description = *req.Description
	}
	if req.Amount != nil {
		txn.Amount = *req.Amount
	}
	if req.TransactionType != nil {
		txn.TransactionType = *req.TransactionType
	}
	if req.TransactionDate != nil {
		txn.TransactionDate = *req.TransactionDate
	}
	if req.DueDate != nil {
		txn.DueDate = req.DueDate
	}
	if req.PaidDate != nil {
		txn.PaidDate = req.PaidDate
	}
	if req.CategoryID != nil {
		txn.CategoryID = req.CategoryID
	}
	if req.AccountID != nil {
		txn.AccountID = *req.AccountID
	}
	if req.TransferToAccountID != nil {
		txn.TransferToAccountID = req.TransferToAccountID
	}
	if req.Recurrence != nil {
		txn.Recurrence = *req.Recurrence
	}
	if req.RecurrenceEndDate != nil {
		txn.RecurrenceEndDate = req.RecurrenceEndDate
	}
	if req.Reference != nil {
		txn.Reference = *req.Reference
	}
	if req.Notes != nil {
		txn.Notes = *req.Notes
	}
	if req.Status != nil {
		txn.Status = *req.Status
		if *req.Status == domain.StatusPending && req.PaidDate == nil {
			txn.PaidDate = nil
		}
	}
}

// SetTransactionStatus moves one transaction to status. Any transition is allowed.
func (s *ledgerService) SetTransactionStatus(ctx context.Context, companyID string, transactionID string, status domain.TransactionStatus, userID string) (*domain.Transaction, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("invalid status %q", status))
	}
	ctx, span := s.StartSpan(ctx, "LedgerService", "SetTransactionStatus", companyID)
	defer span.End()

	today := s.Today()
	updated, err := s.edit(ctx, companyID, []string{transactionID}, userID, true, func(txn *domain.Transaction) {
		txn.SetStatus(status, today)
	})
	if err != nil {
		return nil, s.failWrite(ctx, span, err, "Failed to set transaction status",
			slog.String("transaction_id", transactionID),
			slog.String("status", string(status)))
	}

	s.LogInfo(ctx, "Transaction status changed",
		slog.String("transaction_id", transactionID),
		slog.String("status", string(status)))
	return &updated[0], nil
}

// BulkSetTransactionStatus moves every listed transaction in one database transaction.
// A single missing or foreign id fails the whole batch.
func (s *ledgerService) BulkSetTransactionStatus(ctx context.Context, companyID string, req dto.BulkStatusRequest, userID string) (int, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return 0, err
	}
	if !req.Status.IsValid() {
		return 0, apperrors.NewValidationFailedError(fmt.Sprintf("invalid status %q", req.Status))
	}
	ids := refs(stringPtrs(req.TransactionIDs)...)
	if len(ids) == 0 {
		return 0, apperrors.NewValidationFailedError("no transactions given")
	}
	ctx, span := s.StartSpan(ctx, "LedgerService", "BulkSetTransactionStatus", companyID)
	defer span.End()
	span.SetAttributes(attribute.Int("transaction_count", len(ids)))

	today := s.Today()
	updated, err := s.edit(ctx, companyID, ids, userID, true, func(txn *domain.Transaction) {
		txn.SetStatus(req.Status, today)
	})
	if err != nil {
		return 0, s.failWrite(ctx, span, err, "Failed to bulk update transaction status",
			slog.String("company_id", companyID),
			slog.Int("count", len(ids)))
	}

	s.LogInfo(ctx, "Transaction statuses changed",
		slog.String("company_id", companyID),
		slog.String("status", string(req.Status)),
		slog.Int("count", len(updated)))
	return len(updated), nil
}

// DeleteTransaction removes a row and recomputes what it used to feed.
func (s *ledgerService) DeleteTransaction(ctx context.Context, companyID string, transactionID string, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return err
	}
	ctx, span := s.StartSpan(ctx, "LedgerService", "DeleteTransaction", companyID)
	defer span.End()

	err := runInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		locked, err := s.lockTransactions(ctx, tx, companyID, []string{transactionID})
		if err != nil {
			return err
		}
		before := locked[transactionID]
		return s.commitWrites(ctx, tx, companyID, []ledgerWrite{{before: &before}}, userID, s.Now(), false)
	})
	if err != nil {
		return s.failWrite(ctx, span, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
	}

	s.LogInfo(ctx, "Transaction deleted",
		slog.String("transaction_id", transactionID),
		slog.String("company_id", companyID))
	return nil
}

// edit locks the rows, applies change to each and commits them with their recomputes.
func (s *ledgerService) edit(ctx context.Context, companyID string, ids []string, userID string, statusOnly bool, change func(*domain.Transaction)) ([]domain.Transaction, error) {
	now := s.Now()
	var updated []domain.Transaction
	err := runInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		locked, err := s.lockTransactions(ctx, tx, companyID, ids)
		if err != nil {
			return err
		}

		writes := make([]ledgerWrite, 0, len(ids))
		updated = make([]domain.Transaction, 0, len(ids))
		for _, id := range ids {
			before := locked[id]
			after := before
			change(&after)
			if err := s.prepare(ctx, companyID, &after); err != nil {
				return err
			}
			after.Touch(userID, now)
			updated = append(updated, after)
			writes = append(writes, ledgerWrite{before: &before})
		}
		for i := range writes {
			writes[i].after = &updated[i]
		}
		return s.commitWrites(ctx, tx, companyID, writes, userID, now, statusOnly)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// lockTransactions locks the rows and hides those of other companies.
func (s *ledgerService) lockTransactions(ctx context.Context, tx pgx.Tx, companyID string, ids []string) (map[string]domain.Transaction, error) {
	locked, err := s.txnRepo.FindTransactionsByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		txn, ok := locked[id]
		if !ok || txn.CompanyID != companyID {
			return nil, notFoundIn("transaction", id)
		}
	}
	return locked, nil
}

// prepare normalizes the row and runs every check that needs no lock: structural rules and
// the category's company and type.
func (s *ledgerService) prepare(ctx context.Context, companyID string, txn *domain.Transaction) error {
	txn.Normalize()
	if err := txn.Validate(); err != nil {
		return apperrors.NewValidationFailedError(err.Error())
	}
	if txn.CategoryID == nil {
		return nil
	}
	category, err := s.categoryRepo.FindCategoryByID(ctx, *txn.CategoryID)
	if err != nil {
		return err
	}
	if category.CompanyID != companyID {
		return notFoundIn("category", *txn.CategoryID)
	}
	if !category.CategoryType.Accepts(txn.TransactionType) {
		return apperrors.NewValidationFailedError(fmt.Sprintf(
			"category %q (%s) cannot classify a %s transaction", category.Name, category.CategoryType, txn.TransactionType))
	}
	return nil
}

// commitWrites locks every account on either side of the writes, checks the newly referenced
// ones, persists the rows and recomputes balances and goals. Recompute failures are reported
// as consistency errors so the caller's transaction rolls back.
func (s *ledgerService) commitWrites(ctx context.Context, tx pgx.Tx, companyID string, writes []ledgerWrite, userID string, now time.Time, statusOnly bool) error {
	var accountRefs, categoryRefs []*string
	newRefs := make(map[string]struct{})
	for _, w := range writes {
		old := map[string]struct{}{}
		if w.before != nil {
			for _, id := range w.before.AccountRefs() {
				old[id] = struct{}{}
				accountRefs = append(accountRefs, &id)
			}
			categoryRefs = append(categoryRefs, w.before.CategoryID)
		}
		if w.after != nil {
			for _, id := range w.after.AccountRefs() {
				if _, seen := old[id]; !seen {
					newRefs[id] = struct{}{}
				}
				accountRefs = append(accountRefs, &id)
			}
			categoryRefs = append(categoryRefs, w.after.CategoryID)
		}
	}

	accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, refs(accountRefs...))
	if err != nil {
		return err
	}
	for id := range newRefs {
		if _, ok := accounts[id]; !ok {
			return notFoundIn("account", id)
		}
	}
	for id, acc := range accounts {
		if acc.CompanyID != companyID {
			return notFoundIn("account", id)
		}
		if _, isNew := newRefs[id]; isNew && !acc.IsActive {
			return apperrors.NewValidationFailedError(fmt.Sprintf("account %q is inactive", acc.Name))
		}
	}

	if err := s.persist(ctx, tx, writes, statusOnly); err != nil {
		return err
	}

	changes, err := s.recompute.balances(ctx, tx, accounts, userID, now)
	if err != nil {
		s.LogError(ctx, err, "Balance recompute failed, rolling back", slog.String("company_id", companyID))
		return apperrors.NewConsistencyError("failed to recompute account balances", err)
	}
	if _, err := s.recompute.goalsForCategories(ctx, tx, refs(categoryRefs...), userID, now); err != nil {
		s.LogError(ctx, err, "Goal recompute failed, rolling back", slog.String("company_id", companyID))
		return apperrors.NewConsistencyError("failed to recompute goal progress", err)
	}

	for _, c := range changes {
		if c.Changed() {
			s.LogDebug(ctx, "Account balance recomputed",
				slog.String("account_id", c.AccountID),
				slog.String("balance", c.NewBalance.String()))
		}
	}
	return nil
}

func (s *ledgerService) persist(ctx context.Context, tx pgx.Tx, writes []ledgerWrite, statusOnly bool) error {
	if statusOnly {
		rows := make([]domain.Transaction, 0, len(writes))
		for _, w := range writes {
			rows = append(rows, *w.after)
		}
		return s.txnRepo.UpdateTransactionStatusesInTx(ctx, tx, rows)
	}
	for _, w := range writes {
		var err error
		switch {
		case w.before == nil:
			err = s.txnRepo.SaveTransactionInTx(ctx, tx, *w.after)
		case w.after == nil:
			err = s.txnRepo.DeleteTransactionInTx(ctx, tx, w.before.TransactionID)
		default:
			err = s.txnRepo.UpdateTransactionInTx(ctx, tx, *w.after)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// failWrite logs unexpected failures and marks the span.
func (s *ledgerService) failWrite(ctx context.Context, span trace.Span, err error, msg string, keyvals ...any) error {
	telemetry.RecordError(span, err)
	if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, msg, keyvals...)
	}
	return err
}

func stringPtrs(values []string) []*string {
	out := make([]*string, len(values))
	for i := range values {
		out[i] = &values[i]
	}
	return out
}
