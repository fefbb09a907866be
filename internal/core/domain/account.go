package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType describes what kind of money container an account is.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountCash       AccountType = "cash"
	AccountInvestment AccountType = "investment"
	AccountOther      AccountType = "other"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountCredit, AccountCash, AccountInvestment, AccountOther:
		return true
	}
	return false
}

// Account is a money container within a company.
// CurrentBalance is a cache derived from InitialBalance and the completed transactions
// touching the account; it is only ever replaced by a full recompute.
type Account struct {
	AccountID      string          `json:"accountID"`
	CompanyID      string          `json:"companyID"`
	Name           string          `json:"name"`
	AccountType    AccountType     `json:"accountType"`
	BankName       string          `json:"bankName"`
	Description    string          `json:"description"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	IsActive       bool            `json:"isActive"`
	AuditFields
}

// AccountFlows are the four completed-transaction aggregates a balance is derived from.
type AccountFlows struct {
	Income       decimal.Decimal
	Expense      decimal.Decimal
	TransfersOut decimal.Decimal
	TransfersIn  decimal.Decimal
}

// BalanceChange reports the outcome of recomputing one account.
type BalanceChange struct {
	AccountID   string          `json:"accountID"`
	AccountName string          `json:"accountName"`
	OldBalance  decimal.Decimal `json:"oldBalance"`
	NewBalance  decimal.Decimal `json:"newBalance"`
}

// Changed reports whether the recompute moved the cached balance.
func (c BalanceChange) Changed() bool {
	return !c.OldBalance.Equal(c.NewBalance)
}

// BalanceRecomputeReport summarises a recompute over many accounts. Changes holds only the
// accounts whose cached balance moved.
type BalanceRecomputeReport struct {
	Checked int             `json:"checked"`
	Changes []BalanceChange `json:"changes"`
}
