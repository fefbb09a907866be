package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the economic nature of a transaction.
type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

func (t TransactionType) IsValid() bool {
	return t == TransactionIncome || t == TransactionExpense || t == TransactionTransfer
}

// TransactionStatus is the lifecycle state. Only completed transactions affect balances
// and goal progress. Any state may move to any other state.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusCancelled TransactionStatus = "cancelled"
)

func (s TransactionStatus) IsValid() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusCancelled
}

// Recurrence is informational only; nothing instantiates recurring rows.
type Recurrence string

const (
	RecurrenceNone      Recurrence = "none"
	RecurrenceDaily     Recurrence = "daily"
	RecurrenceWeekly    Recurrence = "weekly"
	RecurrenceMonthly   Recurrence = "monthly"
	RecurrenceQuarterly Recurrence = "quarterly"
	RecurrenceYearly    Recurrence = "yearly"
)

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceQuarterly, RecurrenceYearly:
		return true
	}
	return false
}

var (
	ErrAmountNotPositive       = errors.New("amount must be greater than zero")
	ErrInvalidTransactionType  = errors.New("invalid transaction type")
	ErrInvalidStatus           = errors.New("invalid transaction status")
	ErrInvalidRecurrence       = errors.New("invalid recurrence")
	ErrMissingAccount          = errors.New("account is required")
	ErrTransferNoDestination   = errors.New("transfer requires a destination account")
	ErrTransferSameAccount     = errors.New("transfer destination must differ from the origin account")
	ErrDueBeforeTransaction    = errors.New("due date cannot be before the transaction date")
	ErrRecurrenceEndBeforeDate = errors.New("recurrence end date cannot be before the transaction date")
)

// Transaction is the central fact record. A transfer is a single row: it debits AccountID
// and credits TransferToAccountID.
type Transaction struct {
	TransactionID       string            `json:"transactionID"`
	CompanyID           string            `json:"companyID"`
	Description         string            `json:"description"`
	Amount              decimal.Decimal   `json:"amount"`
	TransactionType     TransactionType   `json:"transactionType"`
	Status              TransactionStatus `json:"status"`
	TransactionDate     time.Time         `json:"transactionDate"`
	DueDate             *time.Time        `json:"dueDate,omitempty"`
	PaidDate            *time.Time        `json:"paidDate,omitempty"`
	CategoryID          *string           `json:"categoryID,omitempty"`
	AccountID           string            `json:"accountID"`
	TransferToAccountID *string           `json:"transferToAccountID,omitempty"`
	Recurrence          Recurrence        `json:"recurrence"`
	RecurrenceEndDate   *time.Time        `json:"recurrenceEndDate,omitempty"`
	Reference           string            `json:"reference"`
	Notes               string            `json:"notes"`
	AuditFields
}

// IsCompleted reports whether the transaction counts toward balances and goals.
func (t Transaction) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsTransfer reports whether the row moves money between two accounts.
func (t Transaction) IsTransfer() bool {
	return t.TransactionType == TransactionTransfer
}

// AccountRefs returns the accounts whose balance depends on this row.
func (t Transaction) AccountRefs() []string {
	refs := []string{t.AccountID}
	if t.TransferToAccountID != nil && *t.TransferToAccountID != "" {
		refs = append(refs, *t.TransferToAccountID)
	}
	return refs
}

// Normalize applies defaults and derived rules before validation:
// dates are truncated to calendar days, non-transfers lose any destination, and a
// pending transaction that carries a paid date becomes completed.
func (t *Transaction) Normalize() {
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Recurrence == "" {
		t.Recurrence = RecurrenceNone
	}
	t.TransactionDate = DateOnly(t.TransactionDate)
	if t.DueDate != nil {
		d := DateOnly(*t.DueDate)
		t.DueDate = &d
	}
	if t.RecurrenceEndDate != nil {
		d := DateOnly(*t.RecurrenceEndDate)
		t.RecurrenceEndDate = &d
	}
	if t.TransactionType != TransactionTransfer {
		t.TransferToAccountID = nil
	}
	if t.CategoryID != nil && *t.CategoryID == "" {
		t.CategoryID = nil
	}
	if t.PaidDate != nil && t.Status == StatusPending {
		t.Status = StatusCompleted
	}
}

// SetStatus moves the transaction to status. Completing stamps a paid date when none is set;
// going back to pending clears it so Normalize does not complete the row again.
func (t *Transaction) SetStatus(status TransactionStatus, today time.Time) {
	t.Status = status
	switch status {
	case StatusCompleted:
		if t.PaidDate == nil {
			d := DateOnly(today)
			t.PaidDate = &d
		}
	case StatusPending:
		t.PaidDate = nil
	}
}

// Validate checks the structural rules that need no storage lookups.
func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrAmountNotPositive
	}
	if !HasMoneyPrecision(t.Amount) {
		return ErrAmountPrecision
	}
	if !t.TransactionType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, t.TransactionType)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if !t.Recurrence.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrence, t.Recurrence)
	}
	if t.AccountID == "" {
		return ErrMissingAccount
	}
	if t.IsTransfer() {
		if t.TransferToAccountID == nil || *t.TransferToAccountID == "" {
			return ErrTransferNoDestination
		}
		if *t.TransferToAccountID == t.AccountID {
			return ErrTransferSameAccount
		}
	}
	if t.DueDate != nil && t.DueDate.Before(t.TransactionDate) {
		return ErrDueBeforeTransaction
	}
	if t.RecurrenceEndDate != nil && t.RecurrenceEndDate.Before(t.TransactionDate) {
		return ErrRecurrenceEndBeforeDate
	}
	return nil
}

// TransactionFilter narrows listings and aggregates. Dates are inclusive calendar days.
type TransactionFilter struct {
	AccountID       *string
	CategoryID      *string
	Uncategorized   bool
	TransactionType *TransactionType
	Status          *TransactionStatus
	FromDate        *time.Time
	ToDate          *time.Time
}

// TransactionAggregate is a count and sum over a filtered set.
type TransactionAggregate struct {
	Count int64
	Total decimal.Decimal
}
