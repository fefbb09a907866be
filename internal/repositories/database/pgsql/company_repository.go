package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/SscSPs/bizledger/internal/models"
	"github.com/SscSPs/bizledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCompanyRepository struct {
	BaseRepository
}

// newPgxCompanyRepository creates a new repository for company data.
func newPgxCompanyRepository(pool *pgxpool.Pool) portsrepo.CompanyRepositoryFacade {
	return &PgxCompanyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxCompanyRepository implements portsrepo.CompanyRepositoryFacade
var _ portsrepo.CompanyRepositoryFacade = (*PgxCompanyRepository)(nil)

var FULL_COMPANY_SELECT_QUERY = `
SELECT
	c.company_id, c.name, c.description, c.currency_code, c.is_active,
	c.created_at, c.created_by, c.last_updated_at, c.last_updated_by
FROM companies c
`

var FULL_MEMBER_SELECT_QUERY = `
SELECT
	m.user_id, u.name AS user_name, u.email AS user_email, m.company_id, m.role, m.is_active, m.joined_at
FROM company_members m
JOIN users u ON u.user_id = m.user_id
`

// getCompanies runs the company select with the given filter.
func (r *PgxCompanyRepository) getCompanies(ctx context.Context, filterQuery string, args ...any) ([]domain.Company, error) {
	rows, err := r.Pool.Query(ctx, FULL_COMPANY_SELECT_QUERY+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query companies", err)
	}
	defer rows.Close()
	items, err := collect[models.Company](rows, "company")
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainCompanySlice(items), nil
}

func (r *PgxCompanyRepository) getMembers(ctx context.Context, filterQuery string, args ...any) ([]domain.CompanyMember, error) {
	rows, err := r.Pool.Query(ctx, FULL_MEMBER_SELECT_QUERY+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query company members", err)
	}
	defer rows.Close()
	items, err := collect[models.CompanyMember](rows, "company member")
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainCompanyMemberSlice(items), nil
}

// SaveCompany inserts the company and its owner in one transaction.
func (r *PgxCompanyRepository) SaveCompany(ctx context.Context, company domain.Company, owner domain.CompanyMember) error {
	m := mapping.ToModelCompany(company)
	return pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO companies (
				company_id, name, description, currency_code, is_active,
				created_at, created_by, last_updated_at, last_updated_by
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
			m.CompanyID, m.Name, m.Description, m.CurrencyCode, m.IsActive,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			if pgErrorCode(err) == pgUniqueViolation {
				return apperrors.NewConflictError("company ID " + m.CompanyID + " already exists")
			}
			return apperrors.NewAppError(500, "failed to save company "+m.CompanyID, err)
		}
		return insertMember(ctx, tx, owner)
	})
}

func insertMember(ctx context.Context, q querier, member domain.CompanyMember) error {
	_, err := q.Exec(ctx, `
		INSERT INTO company_members (user_id, company_id, role, is_active, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, company_id) DO UPDATE SET role = EXCLUDED.role, is_active = EXCLUDED.is_active;`,
		member.UserID, member.CompanyID, string(member.Role), member.IsActive, member.JoinedAt,
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.NewNotFoundError("user or company does not exist")
		}
		return apperrors.NewAppError(500, "failed to add user "+member.UserID+" to company "+member.CompanyID, err)
	}
	return nil
}

func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	companies, err := r.getCompanies(ctx, `WHERE c.company_id = $1`, companyID)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &companies[0], nil
}

func (r *PgxCompanyRepository) ListCompaniesByUserID(ctx context.Context, userID string) ([]domain.Company, error) {
	return r.getCompanies(ctx, `
		JOIN company_members m ON m.company_id = c.company_id
		WHERE m.user_id = $1 AND m.is_active = TRUE AND c.is_active = TRUE
		ORDER BY c.name;`, userID)
}

func (r *PgxCompanyRepository) ListActiveCompanyIDs(ctx context.Context) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `SELECT company_id::text FROM companies WHERE is_active = TRUE ORDER BY company_id;`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query active companies", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect company ids", err)
	}
	return ids, nil
}

// AddCompanyMember adds a user or reactivates and re-roles an existing membership.
func (r *PgxCompanyRepository) AddCompanyMember(ctx context.Context, member domain.CompanyMember) error {
	return insertMember(ctx, r.Pool, member)
}

func (r *PgxCompanyRepository) FindCompanyMember(ctx context.Context, userID, companyID string) (*domain.CompanyMember, error) {
	members, err := r.getMembers(ctx, `WHERE m.user_id = $1 AND m.company_id = $2;`, userID, companyID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &members[0], nil
}

func (r *PgxCompanyRepository) ListCompanyMembers(ctx context.Context, companyID string) ([]domain.CompanyMember, error) {
	return r.getMembers(ctx, `WHERE m.company_id = $1 AND m.is_active = TRUE ORDER BY m.joined_at;`, companyID)
}

func (r *PgxCompanyRepository) UpdateCompanyMemberRole(ctx context.Context, companyID, userID string, role domain.CompanyRole) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE company_members SET role = $3
		WHERE company_id = $1 AND user_id = $2 AND is_active = TRUE;`,
		companyID, userID, string(role),
	)
	if err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to update role of %s in company %s", userID, companyID), err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxCompanyRepository) DeactivateCompanyMember(ctx context.Context, companyID, userID string) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE company_members SET is_active = FALSE
		WHERE company_id = $1 AND user_id = $2 AND is_active = TRUE;`,
		companyID, userID,
	)
	if err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to remove %s from company %s", userID, companyID), err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxCompanyRepository) CountActiveOwners(ctx context.Context, companyID string) (int, error) {
	var n int
	err := r.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM company_members
		WHERE company_id = $1 AND role = 'owner' AND is_active = TRUE;`, companyID).Scan(&n)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count owners of company "+companyID, err)
	}
	return n, nil
}
