package domain

import "time"

// Company is the tenant root. Every account, category, transaction, goal, budget and
// alert belongs to exactly one company.
type Company struct {
	CompanyID    string `json:"companyID"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	CurrencyCode string `json:"currencyCode"`
	IsActive     bool   `json:"isActive"`
	AuditFields
}

// CompanyRole defines the possible roles a user can have within a company.
type CompanyRole string

const (
	RoleOwner   CompanyRole = "owner"
	RoleAdmin   CompanyRole = "admin"
	RoleManager CompanyRole = "manager"
	RoleUser    CompanyRole = "user"
)

var roleRank = map[CompanyRole]int{
	RoleUser:    1,
	RoleManager: 2,
	RoleAdmin:   3,
	RoleOwner:   4,
}

// IsValid reports whether r is one of the known roles.
func (r CompanyRole) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// Satisfies reports whether r meets or exceeds required.
func (r CompanyRole) Satisfies(required CompanyRole) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	need, ok := roleRank[required]
	if !ok {
		return false
	}
	return have >= need
}

// CanManageUsers reports whether r may add, re-role or remove members.
func (r CompanyRole) CanManageUsers() bool {
	return r.Satisfies(RoleAdmin)
}

// CompanyMember represents the membership of a User in a Company.
type CompanyMember struct {
	UserID    string      `json:"userID"`
	UserName  string      `json:"userName"`
	UserEmail string      `json:"userEmail"`
	CompanyID string      `json:"companyID"`
	Role      CompanyRole `json:"role"`
	IsActive  bool        `json:"isActive"`
	JoinedAt  time.Time   `json:"joinedAt"`
}
