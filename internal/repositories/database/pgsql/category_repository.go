package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/SscSPs/bizledger/internal/models"
	"github.com/SscSPs/bizledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCategoryRepository struct {
	BaseRepository
}

func newPgxCategoryRepository(pool *pgxpool.Pool) portsrepo.CategoryRepositoryFacade {
	return &PgxCategoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)

var FULL_CATEGORY_SELECT_QUERY = `
SELECT
	category_id, company_id, name, category_type, parent_id, color, icon, is_active,
	created_at, created_by, last_updated_at, last_updated_by
FROM categories
`

func (r *PgxCategoryRepository) getCategories(ctx context.Context, filterQuery string, args ...any) ([]domain.Category, error) {
	rows, err := r.Pool.Query(ctx, FULL_CATEGORY_SELECT_QUERY+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query categories", err)
	}
	defer rows.Close()
	items, err := collect[models.Category](rows, "category")
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainCategorySlice(items), nil
}

func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	categories, err := r.getCategories(ctx, `WHERE category_id = $1;`, categoryID)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &categories[0], nil
}

func (r *PgxCategoryRepository) FindCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]domain.Category, error) {
	out := make(map[string]domain.Category, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return out, nil
	}
	categories, err := r.getCategories(ctx, `WHERE category_id = ANY($1);`, categoryIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		out[c.CategoryID] = c
	}
	return out, nil
}

// ListCategories lists the categories of a company. A nil categoryType lists every type;
// otherwise "both" categories are included alongside the requested type.
func (r *PgxCategoryRepository) ListCategories(ctx context.Context, companyID string, categoryType *domain.CategoryType, activeOnly bool) ([]domain.Category, error) {
	var typeFilter *string
	if categoryType != nil {
		s := string(*categoryType)
		typeFilter = &s
	}
	return r.getCategories(ctx, `
		WHERE company_id = $1
			AND ($2::text IS NULL OR category_type = $2 OR category_type = 'both')
			AND ($3 = FALSE OR is_active = TRUE)
		ORDER BY name;`, companyID, typeFilter, activeOnly)
}

func (r *PgxCategoryRepository) HasChildCategories(ctx context.Context, categoryID string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE parent_id = $1);`, categoryID).Scan(&exists)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check child categories of "+categoryID, err)
	}
	return exists, nil
}

func (r *PgxCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	m := mapping.ToModelCategory(category)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO categories (
			category_id, company_id, name, category_type, parent_id, color, icon, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`,
		m.CategoryID, m.CompanyID, m.Name, m.CategoryType, m.ParentID, m.Color, m.Icon, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return categoryWriteError(err, m)
}

func (r *PgxCategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) error {
	m := mapping.ToModelCategory(category)
	tag, err := r.Pool.Exec(ctx, `
		UPDATE categories
		SET name = $2, category_type = $3, parent_id = $4, color = $5, icon = $6, is_active = $7,
			last_updated_at = $8, last_updated_by = $9
		WHERE category_id = $1;`,
		m.CategoryID, m.Name, m.CategoryType, m.ParentID, m.Color, m.Icon, m.IsActive,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return categoryWriteError(err, m)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func categoryWriteError(err error, m models.Category) error {
	if err == nil {
		return nil
	}
	switch pgErrorCode(err) {
	case pgUniqueViolation:
		return fmt.Errorf("%w: category named %q already exists", apperrors.ErrDuplicate, m.Name)
	case pgForeignKeyViolation:
		return apperrors.NewValidationFailedError("parent category does not exist")
	}
	return apperrors.NewAppError(500, "failed to write category "+m.CategoryID, err)
}

// DeleteCategory relies on ON DELETE SET NULL for transactions, goals, budgets and children.
func (r *PgxCategoryRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM categories WHERE category_id = $1;`, categoryID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete category "+categoryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
