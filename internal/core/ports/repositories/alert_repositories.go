package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// AlertFilter narrows alert listings.
type AlertFilter struct {
	Status    *domain.AlertStatus
	AlertType *domain.AlertType
	Severity  *domain.AlertSeverity
}

// AlertReader defines read operations for alert data
type AlertReader interface {
	FindAlertByID(ctx context.Context, alertID string) (*domain.Alert, error)

	// ListAlerts returns alerts newest first.
	ListAlerts(ctx context.Context, companyID string, filter AlertFilter, limit, offset int) ([]domain.Alert, error)

	// ListOpenAlerts returns active and acknowledged alerts of the company.
	ListOpenAlerts(ctx context.Context, companyID string) ([]domain.Alert, error)

	// ExistsOpenAlert reports whether an open alert of alertType whose related data maps
	// subjectKey to subjectID was triggered at or after since. An empty subjectKey matches
	// any alert of the type.
	ExistsOpenAlert(ctx context.Context, companyID string, alertType domain.AlertType, subjectKey, subjectID string, since time.Time) (bool, error)
}

// AlertWriter defines write operations for alert data
type AlertWriter interface {
	SaveAlert(ctx context.Context, alert domain.Alert) error

	// UpdateAlertStatus persists the status and its timestamps.
	UpdateAlertStatus(ctx context.Context, alert domain.Alert) error

	// DeleteAlertsTriggeredBefore prunes old alerts of a company and returns how many went.
	DeleteAlertsTriggeredBefore(ctx context.Context, companyID string, before time.Time) (int64, error)
}

// AlertRepositoryFacade combines all alert-related repository interfaces
type AlertRepositoryFacade interface {
	AlertReader
	AlertWriter
}
