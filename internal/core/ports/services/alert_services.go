package services

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
)

// AlertSweeperSvc runs the rule engine for a company without a user in the loop.
type AlertSweeperSvc interface {
	// SweepCompany prunes, auto-resolves and evaluates every rule, returning the alerts it created.
	// It returns an empty list when another sweep of the same company is in flight.
	SweepCompany(ctx context.Context, companyID string) ([]domain.Alert, error)
}

// AlertSvcFacade combines the user-facing alert operations with the sweeper.
type AlertSvcFacade interface {
	AlertSweeperSvc

	RunAlertSweep(ctx context.Context, companyID string, userID string) ([]domain.Alert, error)
	ListAlerts(ctx context.Context, companyID string, params dto.ListAlertsParams, userID string) ([]domain.Alert, error)
	GetAlertByID(ctx context.Context, companyID string, alertID string, userID string) (*domain.Alert, error)
	CreateCustomAlert(ctx context.Context, companyID string, req dto.CreateAlertRequest, userID string) (*domain.Alert, error)

	// TransitionAlert acknowledges, resolves or dismisses an open alert.
	TransitionAlert(ctx context.Context, companyID string, alertID string, next domain.AlertStatus, userID string) (*domain.Alert, error)
}
