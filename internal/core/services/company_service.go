package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/google/uuid"
)

// DefaultCurrencyCode is used for companies created without an explicit currency.
const DefaultCurrencyCode = "BRL"

// companyService implements the CompanySvcFacade interface. It is also the authorizer the
// other services consult.
type companyService struct {
	BaseService
	companyRepo portsrepo.CompanyRepositoryFacade
	userRepo    portsrepo.UserReader
}

// NewCompanyService creates a new company service with the provided dependencies
func NewCompanyService(
	companyRepo portsrepo.CompanyRepositoryFacade,
	userRepo portsrepo.UserReader,
	options ...ServiceOption,
) portssvc.CompanySvcFacade {
	svc := &companyService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
	}
	svc.apply(options)
	return svc
}

// Ensure companyService implements the CompanySvcFacade interface
var _ portssvc.CompanySvcFacade = (*companyService)(nil)

// AuthorizeUserAction checks that the user is an active member holding at least requiredRole.
func (s *companyService) AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.CompanyRole) error {
	_, err := s.requireRole(ctx, userID, companyID, requiredRole)
	return err
}

func (s *companyService) requireRole(ctx context.Context, userID, companyID string, requiredRole domain.CompanyRole) (*domain.CompanyMember, error) {
	member, err := s.companyRepo.FindCompanyMember(ctx, userID, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "User is not a member of company",
				slog.String("user_id", userID),
				slog.String("company_id", companyID))
			return nil, apperrors.NewForbiddenError("user is not a member of this company")
		}
		s.LogError(ctx, err, "Failed to check company membership",
			slog.String("user_id", userID),
			slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to check company membership: %w", err)
	}

	if !member.IsActive {
		return nil, apperrors.NewForbiddenError("membership is not active")
	}

	if !member.Role.Satisfies(requiredRole) {
		s.LogDebug(ctx, "User role is insufficient",
			slog.String("user_id", userID),
			slog.String("company_id", companyID),
			slog.String("role", string(member.Role)),
			slog.String("required_role", string(requiredRole)))
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("requires %s role", requiredRole))
	}
	return member, nil
}

// GetCompanyByID returns the company to any of its members.
func (s *companyService) GetCompanyByID(ctx context.Context, companyID string, userID string) (*domain.Company, error) {
	if err := s.AuthorizeUserAction(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to find company by ID", slog.String("company_id", companyID))
		return nil, err
	}
	return company, nil
}

// ListUserCompanies retrieves all companies a user belongs to
func (s *companyService) ListUserCompanies(ctx context.Context, userID string) ([]domain.Company, error) {
	companies, err := s.companyRepo.ListCompaniesByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list companies for user", slog.String("user_id", userID))
		return nil, err
	}
	if companies == nil {
		return []domain.Company{}, nil
	}

	s.LogDebug(ctx, "Companies listed successfully",
		slog.Int("count", len(companies)),
		slog.String("user_id", userID))
	return companies, nil
}

func (s *companyService) ListActiveCompanyIDs(ctx context.Context) ([]string, error) {
	ids, err := s.companyRepo.ListActiveCompanyIDs(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list active companies")
		return nil, err
	}
	return ids, nil
}

// CreateCompany creates a new company and makes the creator its owner in the same write.
func (s *companyService) CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, creatorUserID string) (*domain.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationFailedError("company name is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if currency == "" {
		currency = DefaultCurrencyCode
	}

	now := s.Now()
	company := domain.Company{
		CompanyID:    uuid.NewString(),
		Name:         name,
		Description:  req.Description,
		CurrencyCode: currency,
		IsActive:     true,
		AuditFields:  domain.NewAuditFields(creatorUserID, now),
	}
	owner := domain.CompanyMember{
		UserID:    creatorUserID,
		CompanyID: company.CompanyID,
		Role:      domain.RoleOwner,
		IsActive:  true,
		JoinedAt:  now,
	}

	if err := s.companyRepo.SaveCompany(ctx, company, owner); err != nil {
		s.LogError(ctx, err, "Failed to save company",
			slog.String("company_id", company.CompanyID),
			slog.String("user_id", creatorUserID))
		return nil, err
	}

	s.LogInfo(ctx, "Company created",
		slog.String("company_id", company.CompanyID),
		slog.String("user_id", creatorUserID))
	return &company, nil
}

// AddMember adds (or re-activates) a registered user. Only owners may grant ownership.
func (s *companyService) AddMember(ctx context.Context, companyID string, req dto.AddMemberRequest, actorUserID string) (*domain.CompanyMember, error) {
	actor, err := s.requireRole(ctx, actorUserID, companyID, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !req.Role.IsValid() {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("invalid role %q", req.Role))
	}
	if req.Role == domain.RoleOwner && actor.Role != domain.RoleOwner {
		return nil, apperrors.NewForbiddenError("only owners can grant the owner role")
	}

	user, err := s.userRepo.FindUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to look up user by email", slog.String("company_id", companyID))
		return nil, err
	}

	existing, err := s.companyRepo.FindCompanyMember(ctx, user.UserID, companyID)
	switch {
	case err == nil && existing.IsActive:
		return nil, apperrors.NewAppError(http.StatusConflict, "user is already a member of this company", apperrors.ErrDuplicate)
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		s.LogError(ctx, err, "Failed to check existing membership",
			slog.String("company_id", companyID),
			slog.String("user_id", user.UserID))
		return nil, err
	}

	member := domain.CompanyMember{
		UserID:    user.UserID,
		UserName:  user.Name,
		UserEmail: user.Email,
		CompanyID: companyID,
		Role:      req.Role,
		IsActive:  true,
		JoinedAt:  s.Now(),
	}
	if err := s.companyRepo.AddCompanyMember(ctx, member); err != nil {
		s.LogError(ctx, err, "Failed to add company member",
			slog.String("company_id", companyID),
			slog.String("user_id", user.UserID))
		return nil, err
	}

	s.LogInfo(ctx, "Company member added",
		slog.String("company_id", companyID),
		slog.String("user_id", user.UserID),
		slog.String("role", string(req.Role)),
		slog.String("actor_id", actorUserID))
	return &member, nil
}

func (s *companyService) ListMembers(ctx context.Context, companyID string, actorUserID string) ([]domain.CompanyMember, error) {
	if err := s.AuthorizeUserAction(ctx, actorUserID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	members, err := s.companyRepo.ListCompanyMembers(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list company members", slog.String("company_id", companyID))
		return nil, err
	}
	if members == nil {
		return []domain.CompanyMember{}, nil
	}
	return members, nil
}

// UpdateMemberRole changes a member's role. Touching ownership requires an owner and the
// last active owner cannot be demoted.
func (s *companyService) UpdateMemberRole(ctx context.Context, companyID, memberUserID string, role domain.CompanyRole, actorUserID string) error {
	actor, err := s.requireRole(ctx, actorUserID, companyID, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if !role.IsValid() {
		return apperrors.NewValidationFailedError(fmt.Sprintf("invalid role %q", role))
	}

	target, err := s.activeMember(ctx, companyID, memberUserID)
	if err != nil {
		return err
	}
	if target.Role == role {
		return nil
	}
	if (role == domain.RoleOwner || target.Role == domain.RoleOwner) && actor.Role != domain.RoleOwner {
		return apperrors.NewForbiddenError("only owners can grant or revoke the owner role")
	}
	if target.Role == domain.RoleOwner {
		if err := s.ensureAnotherOwner(ctx, companyID); err != nil {
			return err
		}
	}

	if err := s.companyRepo.UpdateCompanyMemberRole(ctx, companyID, memberUserID, role); err != nil {
		s.LogError(ctx, err, "Failed to update member role",
			slog.String("company_id", companyID),
			slog.String("user_id", memberUserID))
		return err
	}

	s.LogInfo(ctx, "Company member role updated",
		slog.String("company_id", companyID),
		slog.String("user_id", memberUserID),
		slog.String("from", string(target.Role)),
		slog.String("to", string(role)),
		slog.String("actor_id", actorUserID))
	return nil
}

// RemoveMember deactivates a membership. Owners can only be removed by owners and never
// when they are the last one.
func (s *companyService) RemoveMember(ctx context.Context, companyID, memberUserID string, actorUserID string) error {
	actor, err := s.requireRole(ctx, actorUserID, companyID, domain.RoleAdmin)
	if err != nil {
		return err
	}

	target, err := s.activeMember(ctx, companyID, memberUserID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleOwner {
		if actor.Role != domain.RoleOwner {
			return apperrors.NewForbiddenError("only owners can remove an owner")
		}
		if err := s.ensureAnotherOwner(ctx, companyID); err != nil {
			return err
		}
	}

	if err := s.companyRepo.DeactivateCompanyMember(ctx, companyID, memberUserID); err != nil {
		s.LogError(ctx, err, "Failed to remove company member",
			slog.String("company_id", companyID),
			slog.String("user_id", memberUserID))
		return err
	}

	s.LogInfo(ctx, "Company member removed",
		slog.String("company_id", companyID),
		slog.String("user_id", memberUserID),
		slog.String("actor_id", actorUserID))
	return nil
}

func (s *companyService) activeMember(ctx context.Context, companyID, userID string) (*domain.CompanyMember, error) {
	member, err := s.companyRepo.FindCompanyMember(ctx, userID, companyID)
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to find company member",
			slog.String("company_id", companyID),
			slog.String("user_id", userID))
		return nil, err
	}
	if !member.IsActive {
		return nil, apperrors.NewNotFoundError("member not found")
	}
	return member, nil
}

func (s *companyService) ensureAnotherOwner(ctx context.Context, companyID string) error {
	owners, err := s.companyRepo.CountActiveOwners(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count company owners", slog.String("company_id", companyID))
		return err
	}
	if owners <= 1 {
		return apperrors.NewConflictError("a company must keep at least one owner")
	}
	return nil
}
