package mapping

import (
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/models"
)

// ToModelAlert converts a domain Alert to a model Alert. A nil RelatedData is stored as {}.
func ToModelAlert(d domain.Alert) models.Alert {
	related := d.RelatedData
	if related == nil {
		related = map[string]any{}
	}
	return models.Alert{
		AlertID:        d.AlertID,
		CompanyID:      d.CompanyID,
		AlertType:      string(d.AlertType),
		Severity:       string(d.Severity),
		Status:         string(d.Status),
		Title:          d.Title,
		Message:        d.Message,
		RelatedData:    related,
		TriggeredAt:    d.TriggeredAt,
		AcknowledgedAt: d.AcknowledgedAt,
		AcknowledgedBy: d.AcknowledgedBy,
		ResolvedAt:     d.ResolvedAt,
		CreatedBy:      d.CreatedBy,
	}
}

// ToDomainAlert converts a model Alert to a domain Alert
func ToDomainAlert(m models.Alert) domain.Alert {
	return domain.Alert{
		AlertID:        m.AlertID,
		CompanyID:      m.CompanyID,
		AlertType:      domain.AlertType(m.AlertType),
		Severity:       domain.AlertSeverity(m.Severity),
		Status:         domain.AlertStatus(m.Status),
		Title:          m.Title,
		Message:        m.Message,
		RelatedData:    m.RelatedData,
		TriggeredAt:    m.TriggeredAt,
		AcknowledgedAt: m.AcknowledgedAt,
		AcknowledgedBy: m.AcknowledgedBy,
		ResolvedAt:     m.ResolvedAt,
		CreatedBy:      m.CreatedBy,
	}
}

func ToDomainAlertSlice(ms []models.Alert) []domain.Alert {
	return toDomainSlice(ms, ToDomainAlert)
}
