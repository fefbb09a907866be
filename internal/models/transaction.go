package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a ledger row. Date columns are DATE and scan as UTC midnight.
type Transaction struct {
	TransactionID       string          `db:"transaction_id"`
	CompanyID           string          `db:"company_id"`
	Description         string          `db:"description"`
	Amount              decimal.Decimal `db:"amount"`
	TransactionType     string          `db:"transaction_type"`
	Status              string          `db:"status"`
	TransactionDate     time.Time       `db:"transaction_date"`
	DueDate             *time.Time      `db:"due_date"`
	PaidDate            *time.Time      `db:"paid_date"`
	CategoryID          *string         `db:"category_id"`
	AccountID           string          `db:"account_id"`
	TransferToAccountID *string         `db:"transfer_to_account_id"`
	Recurrence          string          `db:"recurrence"`
	RecurrenceEndDate   *time.Time      `db:"recurrence_end_date"`
	Reference           string          `db:"reference"`
	Notes               string          `db:"notes"`
	AuditFields
}
