package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/SscSPs/bizledger/internal/models"
	"github.com/SscSPs/bizledger/internal/utils/mapping"
	"github.com/SscSPs/bizledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const pgCheckViolation = "23514"

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for ledger transactions.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

var FULL_TRANSACTION_SELECT_QUERY = `
SELECT
	transaction_id, company_id, description, amount, transaction_type, status,
	transaction_date, due_date, paid_date, category_id, account_id, transfer_to_account_id,
	recurrence, recurrence_end_date, reference, notes,
	created_at, created_by, last_updated_at, last_updated_by
FROM transactions
`

func (r *PgxTransactionRepository) getTransactions(ctx context.Context, q querier, filterQuery string, args ...any) ([]domain.Transaction, error) {
	rows, err := q.Query(ctx, FULL_TRANSACTION_SELECT_QUERY+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	defer rows.Close()
	items, err := collect[models.Transaction](rows, "transaction")
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainTransactionSlice(items), nil
}

// whereBuilder accumulates AND-ed conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) String() string {
	return "WHERE " + strings.Join(w.conds, " AND ")
}

func transactionFilter(companyID string, f domain.TransactionFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("company_id = ?", companyID)
	if f.AccountID != nil {
		w.add("(account_id = ? OR transfer_to_account_id = ?)", *f.AccountID, *f.AccountID)
	}
	if f.Uncategorized {
		w.add("category_id IS NULL")
	} else if f.CategoryID != nil {
		w.add("category_id = ?", *f.CategoryID)
	}
	if f.TransactionType != nil {
		w.add("transaction_type = ?", string(*f.TransactionType))
	}
	if f.Status != nil {
		w.add("status = ?", string(*f.Status))
	}
	if f.FromDate != nil {
		w.add("transaction_date >= ?", domain.DateOnly(*f.FromDate))
	}
	if f.ToDate != nil {
		w.add("transaction_date <= ?", domain.DateOnly(*f.ToDate))
	}
	return w
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txns, err := r.getTransactions(ctx, r.Pool, `WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &txns[0], nil
}

// ListTransactions retrieves a page of transactions using token-based pagination.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, companyID string, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// One extra row tells us whether another page exists.
	fetchLimit := limit + 1

	w := transactionFilter(companyID, filter)
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		}
		w.add("(transaction_date, created_at, transaction_id) < (?, ?, ?)", cursor.Date, cursor.CreatedAt, cursor.ID)
	}
	args := append(w.args, fetchLimit)
	query := w.String() + " ORDER BY transaction_date DESC, created_at DESC, transaction_id DESC LIMIT $" + strconv.Itoa(len(args)) + ";"

	txns, err := r.getTransactions(ctx, r.Pool, query, args...)
	if err != nil {
		return nil, nil, err
	}

	var nextTokenVal *string
	if len(txns) > limit {
		last := txns[limit-1]
		token := pagination.EncodeCursor(pagination.Cursor{Date: last.TransactionDate, CreatedAt: last.CreatedAt, ID: last.TransactionID})
		nextTokenVal = &token
		txns = txns[:limit]
	}
	return txns, nextTokenVal, nil
}

func (r *PgxTransactionRepository) ListTransactionsByFilter(ctx context.Context, companyID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	w := transactionFilter(companyID, filter)
	return r.getTransactions(ctx, r.Pool, w.String()+" ORDER BY transaction_date, created_at;", w.args...)
}

// FindTransactionsByIDsForUpdate locks rows in id order. Must be called within a transaction.
func (r *PgxTransactionRepository) FindTransactionsByIDsForUpdate(ctx context.Context, tx pgx.Tx, transactionIDs []string) (map[string]domain.Transaction, error) {
	out := make(map[string]domain.Transaction, len(transactionIDs))
	if len(transactionIDs) == 0 {
		return out, nil
	}
	txns, err := r.getTransactions(ctx, r.db(tx), `
		WHERE transaction_id = ANY($1)
		ORDER BY transaction_id
		FOR UPDATE;`, transactionIDs)
	if err != nil {
		return nil, err
	}
	for _, t := range txns {
		out[t.TransactionID] = t
	}
	return out, nil
}

func transactionWriteError(err error, id string) error {
	switch pgErrorCode(err) {
	case pgForeignKeyViolation:
		return apperrors.NewValidationFailedError("transaction references an account or category that does not exist")
	case pgCheckViolation:
		return apperrors.NewValidationFailedError("transaction violates a ledger constraint")
	case pgUniqueViolation:
		return apperrors.NewConflictError("transaction ID " + id + " already exists")
	}
	return apperrors.NewAppError(500, "failed to write transaction "+id, err)
}

func (r *PgxTransactionRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	_, err := r.db(tx).Exec(ctx, `
		INSERT INTO transactions (
			transaction_id, company_id, description, amount, transaction_type, status,
			transaction_date, due_date, paid_date, category_id, account_id, transfer_to_account_id,
			recurrence, recurrence_end_date, reference, notes,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);`,
		m.TransactionID, m.CompanyID, m.Description, m.Amount, m.TransactionType, m.Status,
		m.TransactionDate, m.DueDate, m.PaidDate, m.CategoryID, m.AccountID, m.TransferToAccountID,
		m.Recurrence, m.RecurrenceEndDate, m.Reference, m.Notes,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return transactionWriteError(err, m.TransactionID)
	}
	return nil
}

func (r *PgxTransactionRepository) UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	tag, err := r.db(tx).Exec(ctx, `
		UPDATE transactions
		SET description = $2, amount = $3, transaction_type = $4, status = $5,
			transaction_date = $6, due_date = $7, paid_date = $8, category_id = $9, account_id = $10,
			transfer_to_account_id = $11, recurrence = $12, recurrence_end_date = $13, reference = $14,
			notes = $15, last_updated_at = $16, last_updated_by = $17
		WHERE transaction_id = $1;`,
		m.TransactionID, m.Description, m.Amount, m.TransactionType, m.Status,
		m.TransactionDate, m.DueDate, m.PaidDate, m.CategoryID, m.AccountID,
		m.TransferToAccountID, m.Recurrence, m.RecurrenceEndDate, m.Reference,
		m.Notes, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return transactionWriteError(err, m.TransactionID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxTransactionRepository) DeleteTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string) error {
	tag, err := r.db(tx).Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete transaction "+transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxTransactionRepository) UpdateTransactionStatusesInTx(ctx context.Context, tx pgx.Tx, txns []domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	query := `
		UPDATE transactions
		SET status = $2, paid_date = $3, last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $1;
	`
	batch := &pgx.Batch{}
	for _, t := range txns {
		batch.Queue(query, t.TransactionID, string(t.Status), t.PaidDate, t.LastUpdatedAt, t.LastUpdatedBy)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for _, t := range txns {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = apperrors.NewAppError(500, "failed to update status of transaction "+t.TransactionID, err)
			}
		} else if ct.RowsAffected() == 0 && batchErr == nil {
			batchErr = fmt.Errorf("%w: transaction %s not found during status update", apperrors.ErrNotFound, t.TransactionID)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = apperrors.NewAppError(500, "failed to close status update batch", err)
	}
	return batchErr
}

// SumAccountFlows returns the four completed aggregates an account balance is derived from.
func (r *PgxTransactionRepository) SumAccountFlows(ctx context.Context, tx pgx.Tx, accountID string) (domain.AccountFlows, error) {
	var f domain.AccountFlows
	err := r.db(tx).QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'income' AND account_id = $1), 0),
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'expense' AND account_id = $1), 0),
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'transfer' AND account_id = $1), 0),
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'transfer' AND transfer_to_account_id = $1), 0)
		FROM transactions
		WHERE status = 'completed' AND (account_id = $1 OR transfer_to_account_id = $1);`,
		accountID,
	).Scan(&f.Income, &f.Expense, &f.TransfersOut, &f.TransfersIn)
	if err != nil {
		return domain.AccountFlows{}, apperrors.NewAppError(500, "failed to sum flows of account "+accountID, err)
	}
	return f, nil
}

func (r *PgxTransactionRepository) SumCategoryFlows(ctx context.Context, tx pgx.Tx, categoryID string, from, to time.Time) (domain.CategoryFlows, error) {
	var f domain.CategoryFlows
	err := r.db(tx).QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'expense'), 0)
		FROM transactions
		WHERE status = 'completed' AND category_id = $1
			AND transaction_date >= $2 AND transaction_date <= $3;`,
		categoryID, domain.DateOnly(from), domain.DateOnly(to),
	).Scan(&f.Income, &f.Expense)
	if err != nil {
		return domain.CategoryFlows{}, apperrors.NewAppError(500, "failed to sum flows of category "+categoryID, err)
	}
	return f, nil
}

func (r *PgxTransactionRepository) AggregateTransactions(ctx context.Context, companyID string, filter domain.TransactionFilter) (domain.TransactionAggregate, error) {
	w := transactionFilter(companyID, filter)
	var agg domain.TransactionAggregate
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM transactions `+w.String()+`;`, w.args...).
		Scan(&agg.Count, &agg.Total)
	if err != nil {
		return domain.TransactionAggregate{}, apperrors.NewAppError(500, "failed to aggregate transactions", err)
	}
	return agg, nil
}

func (r *PgxTransactionRepository) AverageExpenseByCategory(ctx context.Context, companyID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	return r.amountByCategory(ctx, `
		SELECT COALESCE(category_id::text, ''), AVG(amount)
		FROM transactions
		WHERE company_id = $1 AND status = 'completed' AND transaction_type = 'expense'
			AND transaction_date >= $2 AND transaction_date < $3
		GROUP BY 1;`, companyID, domain.DateOnly(from), domain.DateOnly(to))
}

func (r *PgxTransactionRepository) SumActivityByCategory(ctx context.Context, companyID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	return r.amountByCategory(ctx, `
		SELECT category_id::text, SUM(amount)
		FROM transactions
		WHERE company_id = $1 AND status = 'completed' AND transaction_type IN ('income', 'expense')
			AND category_id IS NOT NULL
			AND transaction_date >= $2 AND transaction_date <= $3
		GROUP BY 1;`, companyID, domain.DateOnly(from), domain.DateOnly(to))
}

func (r *PgxTransactionRepository) amountByCategory(ctx context.Context, query string, args ...any) (map[string]decimal.Decimal, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query amounts by category", err)
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var categoryID string
		var amount decimal.Decimal
		if err := rows.Scan(&categoryID, &amount); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan amounts by category", err)
		}
		out[categoryID] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating amounts by category rows", err)
	}
	return out, nil
}
