package repositories

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// CompanyReader defines read operations for company data
type CompanyReader interface {
	// FindCompanyByID retrieves a specific company by its ID.
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)

	// ListCompaniesByUserID retrieves all companies the user is an active member of.
	ListCompaniesByUserID(ctx context.Context, userID string) ([]domain.Company, error)

	// ListActiveCompanyIDs returns the ids of every active company. Used by background jobs.
	ListActiveCompanyIDs(ctx context.Context) ([]string, error)
}

// CompanyWriter defines write operations for company data
type CompanyWriter interface {
	// SaveCompany persists a new company together with its founding owner membership.
	SaveCompany(ctx context.Context, company domain.Company, owner domain.CompanyMember) error
}

// CompanyMembershipManager defines operations for managing company memberships
type CompanyMembershipManager interface {
	AddCompanyMember(ctx context.Context, member domain.CompanyMember) error

	// FindCompanyMember retrieves the membership of a user in a company, active or not.
	FindCompanyMember(ctx context.Context, userID, companyID string) (*domain.CompanyMember, error)

	ListCompanyMembers(ctx context.Context, companyID string) ([]domain.CompanyMember, error)

	UpdateCompanyMemberRole(ctx context.Context, companyID, userID string, role domain.CompanyRole) error

	// DeactivateCompanyMember revokes a membership without deleting its history.
	DeactivateCompanyMember(ctx context.Context, companyID, userID string) error

	// CountActiveOwners returns how many active owners the company has.
	CountActiveOwners(ctx context.Context, companyID string) (int, error)
}

// CompanyRepositoryFacade combines all company-related repository interfaces
type CompanyRepositoryFacade interface {
	CompanyReader
	CompanyWriter
	CompanyMembershipManager
}
