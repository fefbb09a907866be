package pgsql

import (
	"context"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/SscSPs/bizledger/internal/models"
	"github.com/SscSPs/bizledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBudgetRepository struct {
	BaseRepository
}

func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepositoryFacade {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

var FULL_BUDGET_SELECT_QUERY = `
SELECT
	budget_id, company_id, name, description, start_date, end_date, total_budget, category_id, is_active,
	created_at, created_by, last_updated_at, last_updated_by
FROM budgets
`

func (r *PgxBudgetRepository) getBudgets(ctx context.Context, filterQuery string, args ...any) ([]domain.Budget, error) {
	rows, err := r.Pool.Query(ctx, FULL_BUDGET_SELECT_QUERY+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query budgets", err)
	}
	defer rows.Close()
	items, err := collect[models.Budget](rows, "budget")
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainBudgetSlice(items), nil
}

func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	budgets, err := r.getBudgets(ctx, `WHERE budget_id = $1;`, budgetID)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &budgets[0], nil
}

func (r *PgxBudgetRepository) ListBudgets(ctx context.Context, companyID string, activeOnly bool) ([]domain.Budget, error) {
	return r.getBudgets(ctx, `
		WHERE company_id = $1 AND ($2 = FALSE OR is_active = TRUE)
		ORDER BY start_date DESC, name;`, companyID, activeOnly)
}

func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	m := mapping.ToModelBudget(budget)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO budgets (
			budget_id, company_id, name, description, start_date, end_date, total_budget, category_id, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`,
		m.BudgetID, m.CompanyID, m.Name, m.Description, m.StartDate, m.EndDate, m.TotalBudget, m.CategoryID, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.NewValidationFailedError("budget category does not exist")
		}
		return apperrors.NewAppError(500, "failed to save budget "+m.BudgetID, err)
	}
	return nil
}

func (r *PgxBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	m := mapping.ToModelBudget(budget)
	tag, err := r.Pool.Exec(ctx, `
		UPDATE budgets
		SET name = $2, description = $3, start_date = $4, end_date = $5, total_budget = $6,
			category_id = $7, is_active = $8, last_updated_at = $9, last_updated_by = $10
		WHERE budget_id = $1;`,
		m.BudgetID, m.Name, m.Description, m.StartDate, m.EndDate, m.TotalBudget,
		m.CategoryID, m.IsActive, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.NewValidationFailedError("budget category does not exist")
		}
		return apperrors.NewAppError(500, "failed to update budget "+m.BudgetID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxBudgetRepository) DeleteBudget(ctx context.Context, budgetID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM budgets WHERE budget_id = $1;`, budgetID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete budget "+budgetID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
