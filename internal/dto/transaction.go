package dto

import (
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to record a transaction.
// TransactionDate defaults to today, Status to pending and Recurrence to none.
type CreateTransactionRequest struct {
	Description         string                   `json:"description" binding:"required,max=200"`
	Amount              decimal.Decimal          `json:"amount" binding:"decimal_gt0,money"`
	TransactionType     domain.TransactionType   `json:"transactionType" binding:"required,oneof=income expense transfer"`
	Status              domain.TransactionStatus `json:"status" binding:"omitempty,oneof=pending completed cancelled"`
	TransactionDate     *time.Time               `json:"transactionDate"`
	DueDate             *time.Time               `json:"dueDate"`
	PaidDate            *time.Time               `json:"paidDate"`
	CategoryID          *string                  `json:"categoryID" binding:"omitempty,uuid"`
	AccountID           string                   `json:"accountID" binding:"required,uuid"`
	TransferToAccountID *string                  `json:"transferToAccountID" binding:"omitempty,uuid"`
	Recurrence          domain.Recurrence        `json:"recurrence" binding:"omitempty,oneof=none daily weekly monthly quarterly yearly"`
	RecurrenceEndDate   *time.Time               `json:"recurrenceEndDate"`
	Reference           string                   `json:"reference" binding:"max=100"`
	Notes               string                   `json:"notes"`
}

// UpdateTransactionRequest edits any subset of fields. An empty CategoryID makes the
// transaction uncategorised.
type UpdateTransactionRequest struct {
	Description         *string                   `json:"description" binding:"omitempty,max=200"`
	Amount              *decimal.Decimal          `json:"amount" binding:"omitempty,decimal_gt0,money"`
	TransactionType     *domain.TransactionType   `json:"transactionType" binding:"omitempty,oneof=income expense transfer"`
	Status              *domain.TransactionStatus `json:"status" binding:"omitempty,oneof=pending completed cancelled"`
	TransactionDate     *time.Time                `json:"transactionDate"`
	DueDate             *time.Time                `json:"dueDate"`
	PaidDate            *time.Time                `json:"paidDate"`
	CategoryID          *string                   `json:"categoryID" binding:"omitempty,uuid"`
	AccountID           *string                   `json:"accountID" binding:"omitempty,uuid"`
	TransferToAccountID *string                   `json:"transferToAccountID" binding:"omitempty,uuid"`
	Recurrence          *domain.Recurrence        `json:"recurrence" binding:"omitempty,oneof=none daily weekly monthly quarterly yearly"`
	RecurrenceEndDate   *time.Time                `json:"recurrenceEndDate"`
	Reference           *string                   `json:"reference" binding:"omitempty,max=100"`
	Notes               *string                   `json:"notes"`
}

// UpdateTransactionStatusRequest moves a transaction to another status.
type UpdateTransactionStatusRequest struct {
	Status domain.TransactionStatus `json:"status" binding:"required,oneof=pending completed cancelled"`
}

// BulkStatusRequest moves many transactions at once, all or nothing.
type BulkStatusRequest struct {
	TransactionIDs []string                 `json:"transactionIDs" binding:"required,min=1,max=500,dive,uuid"`
	Status         domain.TransactionStatus `json:"status" binding:"required,oneof=pending completed cancelled"`
}

// BulkStatusResponse reports how many rows moved.
type BulkStatusResponse struct {
	Updated int `json:"updated"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit           int                       `form:"limit,default=20" binding:"min=1,max=200"`
	NextToken       *string                   `form:"nextToken"`
	AccountID       *string                   `form:"accountID" binding:"omitempty,uuid"`
	CategoryID      *string                   `form:"categoryID" binding:"omitempty,uuid"`
	Uncategorized   bool                      `form:"uncategorized"`
	TransactionType *domain.TransactionType   `form:"type" binding:"omitempty,oneof=income expense transfer"`
	Status          *domain.TransactionStatus `form:"status" binding:"omitempty,oneof=pending completed cancelled"`
	FromDate        *time.Time                `form:"from" time_format:"2006-01-02" time_utc:"1"`
	ToDate          *time.Time                `form:"to" time_format:"2006-01-02" time_utc:"1"`
}

// Filter converts the query parameters into a domain filter.
func (p ListTransactionsParams) Filter() domain.TransactionFilter {
	return domain.TransactionFilter{
		AccountID:       p.AccountID,
		CategoryID:      p.CategoryID,
		Uncategorized:   p.Uncategorized,
		TransactionType: p.TransactionType,
		Status:          p.Status,
		FromDate:        p.FromDate,
		ToDate:          p.ToDate,
	}
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID       string                   `json:"transactionID"`
	CompanyID           string                   `json:"companyID"`
	Description         string                   `json:"description"`
	Amount              decimal.Decimal          `json:"amount"`
	TransactionType     domain.TransactionType   `json:"transactionType"`
	Status              domain.TransactionStatus `json:"status"`
	TransactionDate     time.Time                `json:"transactionDate"`
	DueDate             *time.Time               `json:"dueDate,omitempty"`
	PaidDate            *time.Time               `json:"paidDate,omitempty"`
	CategoryID          *string                  `json:"categoryID,omitempty"`
	AccountID           string                   `json:"accountID"`
	TransferToAccountID *string                  `json:"transferToAccountID,omitempty"`
	Recurrence          domain.Recurrence        `json:"recurrence"`
	RecurrenceEndDate   *time.Time               `json:"recurrenceEndDate,omitempty"`
	Reference           string                   `json:"reference"`
	Notes               string                   `json:"notes"`
	CreatedAt           time.Time                `json:"createdAt"`
	CreatedBy           string                   `json:"createdBy"`
	LastUpdatedAt       time.Time                `json:"lastUpdatedAt"`
	LastUpdatedBy       string                   `json:"lastUpdatedBy"`
}

// ListTransactionsResponse wraps one page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:       txn.TransactionID,
		CompanyID:           txn.CompanyID,
		Description:         txn.Description,
		Amount:              txn.Amount,
		TransactionType:     txn.TransactionType,
		Status:              txn.Status,
		TransactionDate:     txn.TransactionDate,
		DueDate:             txn.DueDate,
		PaidDate:            txn.PaidDate,
		CategoryID:          txn.CategoryID,
		AccountID:           txn.AccountID,
		TransferToAccountID: txn.TransferToAccountID,
		Recurrence:          txn.Recurrence,
		RecurrenceEndDate:   txn.RecurrenceEndDate,
		Reference:           txn.Reference,
		Notes:               txn.Notes,
		CreatedAt:           txn.CreatedAt,
		CreatedBy:           txn.CreatedBy,
		LastUpdatedAt:       txn.LastUpdatedAt,
		LastUpdatedBy:       txn.LastUpdatedBy,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}
