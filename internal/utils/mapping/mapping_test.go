package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToModelAlertDefaultsRelatedData(t *testing.T) {
	m := ToModelAlert(domain.Alert{AlertID: "a1", Status: domain.AlertActive})
	assert.NotNil(t, m.RelatedData)
	assert.Empty(t, m.RelatedData)
}

func TestTransactionMappingKeepsNullableColumns(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	dest := "acc-2"
	d := domain.Transaction{
		TransactionID:       "t1",
		CompanyID:           "c1",
		Amount:              decimal.NewFromInt(300),
		TransactionType:     domain.TransactionTransfer,
		Status:              domain.StatusCompleted,
		TransactionDate:     domain.DateOnly(now),
		AccountID:           "acc-1",
		TransferToAccountID: &dest,
		Recurrence:          domain.RecurrenceNone,
		AuditFields:         domain.NewAuditFields("u1", now),
	}

	back := ToDomainTransaction(ToModelTransaction(d))
	assert.Equal(t, d, back)
	assert.Nil(t, back.CategoryID)
	assert.Nil(t, back.PaidDate)
}
