package models

import "time"

// Alert represents a row of the alerts table. RelatedData is stored as JSONB.
type Alert struct {
	AlertID        string         `db:"alert_id"`
	CompanyID      string         `db:"company_id"`
	AlertType      string         `db:"alert_type"`
	Severity       string         `db:"severity"`
	Status         string         `db:"status"`
	Title          string         `db:"title"`
	Message        string         `db:"message"`
	RelatedData    map[string]any `db:"related_data"`
	TriggeredAt    time.Time      `db:"triggered_at"`
	AcknowledgedAt *time.Time     `db:"acknowledged_at"`
	AcknowledgedBy *string        `db:"acknowledged_by"`
	ResolvedAt     *time.Time     `db:"resolved_at"`
	CreatedBy      string         `db:"created_by"`
}
