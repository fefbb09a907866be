package domain

import (
	"errors"
	"time"
)

type AlertType string

const (
	AlertLowBalance       AlertType = "low_balance"
	AlertGoalDeadline     AlertType = "goal_deadline"
	AlertOverdue          AlertType = "overdue_transaction"
	AlertBudgetExceeded   AlertType = "budget_exceeded"
	AlertUnusualExpense   AlertType = "unusual_expense"
	AlertCashFlowNegative AlertType = "cash_flow_negative"
	AlertCustom           AlertType = "custom"
)

func (t AlertType) IsValid() bool {
	switch t {
	case AlertLowBalance, AlertGoalDeadline, AlertOverdue, AlertBudgetExceeded,
		AlertUnusualExpense, AlertCashFlowNegative, AlertCustom:
		return true
	}
	return false
}

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

func (s AlertSeverity) IsValid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh || s == SeverityCritical
}

type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
	AlertDismissed    AlertStatus = "dismissed"
)

func (s AlertStatus) IsValid() bool {
	return s == AlertActive || s == AlertAcknowledged || s == AlertResolved || s == AlertDismissed
}

// OpenAlertStatuses are the states that still demand attention; dedup and auto-resolve
// only look at these.
var OpenAlertStatuses = []AlertStatus{AlertActive, AlertAcknowledged}

// IsOpen reports whether s is active or acknowledged.
func (s AlertStatus) IsOpen() bool {
	return s == AlertActive || s == AlertAcknowledged
}

// Keys used in Alert.RelatedData to name the alert's subject.
const (
	SubjectAccount     = "account_id"
	SubjectGoal        = "goal_id"
	SubjectTransaction = "transaction_id"
	SubjectBudget      = "budget_id"
)

var ErrInvalidAlertTransition = errors.New("invalid alert status transition")

// Alert is a derived, mutable notice produced by the alert sweep or created by a user.
type Alert struct {
	AlertID        string         `json:"alertID"`
	CompanyID      string         `json:"companyID"`
	AlertType      AlertType      `json:"alertType"`
	Severity       AlertSeverity  `json:"severity"`
	Status         AlertStatus    `json:"status"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	RelatedData    map[string]any `json:"relatedData"`
	TriggeredAt    time.Time      `json:"triggeredAt"`
	AcknowledgedAt *time.Time     `json:"acknowledgedAt,omitempty"`
	AcknowledgedBy *string        `json:"acknowledgedBy,omitempty"`
	ResolvedAt     *time.Time     `json:"resolvedAt,omitempty"`
	CreatedBy      string         `json:"createdBy"`
}

// SubjectID returns the string id stored under key in RelatedData, if any.
func (a Alert) SubjectID(key string) (string, bool) {
	if a.RelatedData == nil {
		return "", false
	}
	v, ok := a.RelatedData[key].(string)
	return v, ok && v != ""
}

// Transition moves the alert to next, stamping the matching timestamp.
// Only open alerts move: active -> acknowledged, open -> resolved, open -> dismissed.
func (a *Alert) Transition(next AlertStatus, userID string, now time.Time) error {
	if !a.Status.IsOpen() {
		return ErrInvalidAlertTransition
	}
	switch next {
	case AlertAcknowledged:
		if a.Status != AlertActive {
			return ErrInvalidAlertTransition
		}
		a.AcknowledgedAt = &now
		a.AcknowledgedBy = &userID
	case AlertResolved, AlertDismissed:
		a.ResolvedAt = &now
	default:
		return ErrInvalidAlertTransition
	}
	a.Status = next
	return nil
}
