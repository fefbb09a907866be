package services

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
)

// CompanyAuthorizerSvc defines authorization operations for companies
type CompanyAuthorizerSvc interface {
	// AuthorizeUserAction checks that userID is an active member of companyID holding at
	// least requiredRole. It returns ErrForbidden otherwise.
	AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.CompanyRole) error
}

// CompanyReaderSvc defines read operations for company data
type CompanyReaderSvc interface {
	GetCompanyByID(ctx context.Context, companyID string, userID string) (*domain.Company, error)

	// ListUserCompanies retrieves the companies the user is an active member of.
	ListUserCompanies(ctx context.Context, userID string) ([]domain.Company, error)

	// ListActiveCompanyIDs is used by operator tooling and background jobs; it does no authorization.
	ListActiveCompanyIDs(ctx context.Context) ([]string, error)
}

// CompanyWriterSvc defines write operations for company data
type CompanyWriterSvc interface {
	// CreateCompany persists a new company and makes the creator its owner.
	CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, creatorUserID string) (*domain.Company, error)
}

// CompanyMembershipSvc defines operations for managing company membership.
// Only admins and owners manage members and only owners grant ownership.
type CompanyMembershipSvc interface {
	AddMember(ctx context.Context, companyID string, req dto.AddMemberRequest, actorUserID string) (*domain.CompanyMember, error)
	ListMembers(ctx context.Context, companyID string, actorUserID string) ([]domain.CompanyMember, error)
	UpdateMemberRole(ctx context.Context, companyID, memberUserID string, role domain.CompanyRole, actorUserID string) error
	RemoveMember(ctx context.Context, companyID, memberUserID string, actorUserID string) error
}

// CompanySvcFacade combines all company-related service interfaces
type CompanySvcFacade interface {
	CompanyAuthorizerSvc
	CompanyReaderSvc
	CompanyWriterSvc
	CompanyMembershipSvc
}
