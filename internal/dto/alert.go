package dto

import (
	"github.com/SscSPs/bizledger/internal/core/domain"
)

// CreateAlertRequest raises a custom alert by hand.
type CreateAlertRequest struct {
	Title       string               `json:"title" binding:"required,max=200"`
	Message     string               `json:"message" binding:"required"`
	Severity    domain.AlertSeverity `json:"severity" binding:"omitempty,oneof=low medium high critical"`
	RelatedData map[string]any       `json:"relatedData"`
}

// ListAlertsParams defines query parameters for listing alerts.
type ListAlertsParams struct {
	Status    *domain.AlertStatus   `form:"status" binding:"omitempty,oneof=active acknowledged resolved dismissed"`
	AlertType *domain.AlertType     `form:"type"`
	Severity  *domain.AlertSeverity `form:"severity" binding:"omitempty,oneof=low medium high critical"`
	Limit     int                   `form:"limit,default=50" binding:"min=1,max=200"`
	Offset    int                   `form:"offset,default=0" binding:"min=0"`
}

type ListAlertsResponse struct {
	Alerts []domain.Alert `json:"alerts"`
}

// SweepResponse lists the alerts a sweep created.
type SweepResponse struct {
	Created []domain.Alert `json:"created"`
}
