package mapping

import (
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:       d.TransactionID,
		CompanyID:           d.CompanyID,
		Description:         d.Description,
		Amount:              d.Amount,
		TransactionType:     string(d.TransactionType),
		Status:              string(d.Status),
		TransactionDate:     d.TransactionDate,
		DueDate:             d.DueDate,
		PaidDate:            d.PaidDate,
		CategoryID:          d.CategoryID,
		AccountID:           d.AccountID,
		TransferToAccountID: d.TransferToAccountID,
		Recurrence:          string(d.Recurrence),
		RecurrenceEndDate:   d.RecurrenceEndDate,
		Reference:           d.Reference,
		Notes:               d.Notes,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:       m.TransactionID,
		CompanyID:           m.CompanyID,
		Description:         m.Description,
		Amount:              m.Amount,
		TransactionType:     domain.TransactionType(m.TransactionType),
		Status:              domain.TransactionStatus(m.Status),
		TransactionDate:     m.TransactionDate,
		DueDate:             m.DueDate,
		PaidDate:            m.PaidDate,
		CategoryID:          m.CategoryID,
		AccountID:           m.AccountID,
		TransferToAccountID: m.TransferToAccountID,
		Recurrence:          domain.Recurrence(m.Recurrence),
		RecurrenceEndDate:   m.RecurrenceEndDate,
		Reference:           m.Reference,
		Notes:               m.Notes,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to a slice of domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	return toDomainSlice(ms, ToDomainTransaction)
}
