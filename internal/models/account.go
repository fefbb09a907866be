package models

import (
	"github.com/shopspring/decimal"
)

// AccountType is the stored kind of an account.
type AccountType string

// Account represents a money container within a company.
type Account struct {
	AccountID      string          `db:"account_id"`
	CompanyID      string          `db:"company_id"`
	Name           string          `db:"name"`
	AccountType    AccountType     `db:"account_type"`
	BankName       string          `db:"bank_name"`
	Description    string          `db:"description"`
	InitialBalance decimal.Decimal `db:"initial_balance"`
	CurrentBalance decimal.Decimal `db:"current_balance"` // Cached, rewritten by recompute only
	IsActive       bool            `db:"is_active"`
	AuditFields
}
