package dto

import (
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// CreateCompanyRequest defines the data needed to create a new company.
type CreateCompanyRequest struct {
	Name         string `json:"name" binding:"required,max=200"`
	Description  string `json:"description"`
	CurrencyCode string `json:"currencyCode" binding:"omitempty,len=3,alpha"`
}

// AddMemberRequest adds an existing user to a company by email.
type AddMemberRequest struct {
	Email string             `json:"email" binding:"required,email"`
	Role  domain.CompanyRole `json:"role" binding:"required,oneof=owner admin manager user"`
}

// UpdateMemberRoleRequest changes a member's role.
type UpdateMemberRoleRequest struct {
	Role domain.CompanyRole `json:"role" binding:"required,oneof=owner admin manager user"`
}

// CompanyResponse defines the data returned for a company.
type CompanyResponse struct {
	CompanyID    string    `json:"companyID"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CurrencyCode string    `json:"currencyCode"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	CreatedBy    string    `json:"createdBy"`
}

// ListCompaniesResponse wraps the list of companies.
type ListCompaniesResponse struct {
	Companies []CompanyResponse `json:"companies"`
}

// MemberResponse is one membership row.
type MemberResponse struct {
	UserID    string             `json:"userID"`
	UserName  string             `json:"userName"`
	UserEmail string             `json:"userEmail"`
	Role      domain.CompanyRole `json:"role"`
	IsActive  bool               `json:"isActive"`
	JoinedAt  time.Time          `json:"joinedAt"`
}

// ListMembersResponse wraps the members of a company.
type ListMembersResponse struct {
	Members []MemberResponse `json:"members"`
}

func ToCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID:    c.CompanyID,
		Name:         c.Name,
		Description:  c.Description,
		CurrencyCode: c.CurrencyCode,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
		CreatedBy:    c.CreatedBy,
	}
}

func ToListCompaniesResponse(companies []domain.Company) ListCompaniesResponse {
	res := make([]CompanyResponse, len(companies))
	for i := range companies {
		res[i] = ToCompanyResponse(&companies[i])
	}
	return ListCompaniesResponse{Companies: res}
}

func ToMemberResponse(m *domain.CompanyMember) MemberResponse {
	return MemberResponse{
		UserID:    m.UserID,
		UserName:  m.UserName,
		UserEmail: m.UserEmail,
		Role:      m.Role,
		IsActive:  m.IsActive,
		JoinedAt:  m.JoinedAt,
	}
}

func ToListMembersResponse(members []domain.CompanyMember) ListMembersResponse {
	res := make([]MemberResponse, len(members))
	for i := range members {
		res[i] = ToMemberResponse(&members[i])
	}
	return ListMembersResponse{Members: res}
}
