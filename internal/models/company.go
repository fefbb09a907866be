package models

import "time"

// CompanyRole is the stored form of a membership role.
type CompanyRole string

// Company represents a row of the companies table.
type Company struct {
	CompanyID    string `db:"company_id"`
	Name         string `db:"name"`
	Description  string `db:"description"`
	CurrencyCode string `db:"currency_code"`
	IsActive     bool   `db:"is_active"`
	AuditFields
}

// CompanyMember is a company_members row joined with the member's user record.
type CompanyMember struct {
	UserID    string      `db:"user_id"`
	UserName  string      `db:"user_name"`
	UserEmail string      `db:"user_email"`
	CompanyID string      `db:"company_id"`
	Role      CompanyRole `db:"role"`
	IsActive  bool        `db:"is_active"`
	JoinedAt  time.Time   `db:"joined_at"`
}
