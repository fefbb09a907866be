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

type PgxGoalRepository struct {
	BaseRepository
}

func newPgxGoalRepository(pool *pgxpool.Pool) portsrepo.GoalRepositoryFacade {
	return &PgxGoalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.GoalRepositoryFacade = (*PgxGoalRepository)(nil)

var FULL_GOAL_SELECT_QUERY = `
SELECT
	goal_id, company_id, name, description, goal_type, target_amount, current_amount,
	start_date, target_date, category_id, is_active, is_achieved, achieved_at,
	created_at, created_by, last_updated_at, last_updated_by
FROM goals
`

func (r *PgxGoalRepository) getGoals(ctx context.Context, q querier, filterQuery string, args ...any) ([]domain.Goal, error) {
	rows, err := q.Query(ctx, FULL_GOAL_SELECT_QUERY+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query goals", err)
	}
	defer rows.Close()
	items, err := collect[models.Goal](rows, "goal")
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainGoalSlice(items), nil
}

func (r *PgxGoalRepository) FindGoalByID(ctx context.Context, goalID string) (*domain.Goal, error) {
	goals, err := r.getGoals(ctx, r.Pool, `WHERE goal_id = $1;`, goalID)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &goals[0], nil
}

func (r *PgxGoalRepository) ListGoals(ctx context.Context, companyID string, activeOnly bool) ([]domain.Goal, error) {
	return r.getGoals(ctx, r.Pool, `
		WHERE company_id = $1 AND ($2 = FALSE OR is_active = TRUE)
		ORDER BY target_date, name;`, companyID, activeOnly)
}

func (r *PgxGoalRepository) SaveGoal(ctx context.Context, goal domain.Goal) error {
	m := mapping.ToModelGoal(goal)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO goals (
			goal_id, company_id, name, description, goal_type, target_amount, current_amount,
			start_date, target_date, category_id, is_active, is_achieved, achieved_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);`,
		m.GoalID, m.CompanyID, m.Name, m.Description, m.GoalType, m.TargetAmount, m.CurrentAmount,
		m.StartDate, m.TargetDate, m.CategoryID, m.IsActive, m.IsAchieved, m.AchievedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.NewValidationFailedError("goal category does not exist")
		}
		return apperrors.NewAppError(500, "failed to save goal "+m.GoalID, err)
	}
	return nil
}

func (r *PgxGoalRepository) UpdateGoalInTx(ctx context.Context, tx pgx.Tx, goal domain.Goal) error {
	m := mapping.ToModelGoal(goal)
	tag, err := r.db(tx).Exec(ctx, `
		UPDATE goals
		SET name = $2, description = $3, goal_type = $4, target_amount = $5, current_amount = $6,
			start_date = $7, target_date = $8, category_id = $9, is_active = $10, is_achieved = $11,
			achieved_at = $12, last_updated_at = $13, last_updated_by = $14
		WHERE goal_id = $1;`,
		m.GoalID, m.Name, m.Description, m.GoalType, m.TargetAmount, m.CurrentAmount,
		m.StartDate, m.TargetDate, m.CategoryID, m.IsActive, m.IsAchieved,
		m.AchievedAt, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.NewValidationFailedError("goal category does not exist")
		}
		return apperrors.NewAppError(500, "failed to update goal "+m.GoalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxGoalRepository) DeleteGoal(ctx context.Context, goalID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM goals WHERE goal_id = $1;`, goalID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete goal "+goalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindActiveGoalsByCategoriesForUpdate locks goals in goal_id order.
func (r *PgxGoalRepository) FindActiveGoalsByCategoriesForUpdate(ctx context.Context, tx pgx.Tx, categoryIDs []string) ([]domain.Goal, error) {
	if len(categoryIDs) == 0 {
		return []domain.Goal{}, nil
	}
	return r.getGoals(ctx, r.db(tx), `
		WHERE category_id = ANY($1) AND is_active = TRUE
		ORDER BY goal_id
		FOR UPDATE;`, categoryIDs)
}

func (r *PgxGoalRepository) FindGoalsByIDsForUpdate(ctx context.Context, tx pgx.Tx, goalIDs []string) ([]domain.Goal, error) {
	if len(goalIDs) == 0 {
		return []domain.Goal{}, nil
	}
	return r.getGoals(ctx, r.db(tx), `
		WHERE goal_id = ANY($1)
		ORDER BY goal_id
		FOR UPDATE;`, goalIDs)
}

func (r *PgxGoalRepository) UpdateGoalProgressInTx(ctx context.Context, tx pgx.Tx, goals []domain.Goal) error {
	if len(goals) == 0 {
		return nil
	}
	query := `
		UPDATE goals
		SET current_amount = $2, is_achieved = $3, achieved_at = $4, last_updated_at = $5, last_updated_by = $6
		WHERE goal_id = $1;
	`
	batch := &pgx.Batch{}
	for _, g := range goals {
		batch.Queue(query, g.GoalID, g.CurrentAmount, g.IsAchieved, g.AchievedAt, g.LastUpdatedAt, g.LastUpdatedBy)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for _, g := range goals {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = apperrors.NewAppError(500, "failed to update progress of goal "+g.GoalID, err)
			}
		} else if ct.RowsAffected() == 0 && batchErr == nil {
			batchErr = fmt.Errorf("%w: goal %s not found during progress update", apperrors.ErrNotFound, g.GoalID)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = apperrors.NewAppError(500, "failed to close goal progress batch", err)
	}
	return batchErr
}
