package pgsql

import (
	"context"
	"strconv"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/SscSPs/bizledger/internal/models"
	"github.com/SscSPs/bizledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAlertRepository struct {
	BaseRepository
}

func newPgxAlertRepository(pool *pgxpool.Pool) portsrepo.AlertRepositoryFacade {
	return &PgxAlertRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AlertRepositoryFacade = (*PgxAlertRepository)(nil)

var FULL_ALERT_SELECT_QUERY = `
SELECT
	alert_id, company_id, alert_type, severity, status, title, message, related_data,
	triggered_at, acknowledged_at, acknowledged_by, resolved_at, created_by
FROM alerts
`

func (r *PgxAlertRepository) getAlerts(ctx context.Context, filterQuery string, args ...any) ([]domain.Alert, error) {
	rows, err := r.Pool.Query(ctx, FULL_ALERT_SELECT_QUERY+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query alerts", err)
	}
	defer rows.Close()
	items, err := collect[models.Alert](rows, "alert")
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainAlertSlice(items), nil
}

func (r *PgxAlertRepository) FindAlertByID(ctx context.Context, alertID string) (*domain.Alert, error) {
	alerts, err := r.getAlerts(ctx, `WHERE alert_id = $1;`, alertID)
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &alerts[0], nil
}

func (r *PgxAlertRepository) ListAlerts(ctx context.Context, companyID string, filter portsrepo.AlertFilter, limit, offset int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	w := &whereBuilder{}
	w.add("company_id = ?", companyID)
	if filter.Status != nil {
		w.add("status = ?", string(*filter.Status))
	}
	if filter.AlertType != nil {
		w.add("alert_type = ?", string(*filter.AlertType))
	}
	if filter.Severity != nil {
		w.add("severity = ?", string(*filter.Severity))
	}
	args := append(w.args, limit, offset)
	query := w.String() + " ORDER BY triggered_at DESC, alert_id LIMIT $" + strconv.Itoa(len(args)-1) +
		" OFFSET $" + strconv.Itoa(len(args)) + ";"
	return r.getAlerts(ctx, query, args...)
}

func (r *PgxAlertRepository) ListOpenAlerts(ctx context.Context, companyID string) ([]domain.Alert, error) {
	return r.getAlerts(ctx, `
		WHERE company_id = $1 AND status IN ('active', 'acknowledged')
		ORDER BY triggered_at;`, companyID)
}

func (r *PgxAlertRepository) ExistsOpenAlert(ctx context.Context, companyID string, alertType domain.AlertType, subjectKey, subjectID string, since time.Time) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE company_id = $1 AND alert_type = $2
				AND status IN ('active', 'acknowledged')
				AND triggered_at >= $3
				AND ($4 = '' OR related_data ->> $4 = $5)
		);`,
		companyID, string(alertType), since, subjectKey, subjectID,
	).Scan(&exists)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check open "+string(alertType)+" alerts", err)
	}
	return exists, nil
}

func (r *PgxAlertRepository) SaveAlert(ctx context.Context, alert domain.Alert) error {
	m := mapping.ToModelAlert(alert)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO alerts (
			alert_id, company_id, alert_type, severity, status, title, message, related_data,
			triggered_at, acknowledged_at, acknowledged_by, resolved_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`,
		m.AlertID, m.CompanyID, m.AlertType, m.Severity, m.Status, m.Title, m.Message, m.RelatedData,
		m.TriggeredAt, m.AcknowledgedAt, m.AcknowledgedBy, m.ResolvedAt, m.CreatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save alert "+m.AlertID, err)
	}
	return nil
}

func (r *PgxAlertRepository) UpdateAlertStatus(ctx context.Context, alert domain.Alert) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE alerts
		SET status = $2, acknowledged_at = $3, acknowledged_by = $4, resolved_at = $5
		WHERE alert_id = $1;`,
		alert.AlertID, string(alert.Status), alert.AcknowledgedAt, alert.AcknowledgedBy, alert.ResolvedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update alert "+alert.AlertID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxAlertRepository) DeleteAlertsTriggeredBefore(ctx context.Context, companyID string, before time.Time) (int64, error) {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM alerts WHERE company_id = $1 AND triggered_at < $2;`, companyID, before)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to prune alerts of company "+companyID, err)
	}
	return tag.RowsAffected(), nil
}
