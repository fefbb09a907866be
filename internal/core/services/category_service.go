package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/google/uuid"
)

type categoryService struct {
	BaseService
	categoryRepo portsrepo.CategoryRepositoryFacade
}

func NewCategoryService(categoryRepo portsrepo.CategoryRepositoryFacade, options ...ServiceOption) portssvc.CategorySvcFacade {
	svc := &categoryService{categoryRepo: categoryRepo}
	svc.apply(options)
	return svc
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

func (s *categoryService) CreateCategory(ctx context.Context, companyID string, req dto.CreateCategoryRequest, userID string) (*domain.Category, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleManager); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationFailedError("category name is required")
	}
	if !req.CategoryType.IsValid() {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("invalid category type %q", req.CategoryType))
	}

	category := domain.Category{
		CategoryID:   uuid.NewString(),
		CompanyID:    companyID,
		Name:         name,
		CategoryType: req.CategoryType,
		Color:        req.Color,
		Icon:         req.Icon,
		IsActive:     true,
		AuditFields:  domain.NewAuditFields(userID, s.Now()),
	}
	if category.Color == "" {
		category.Color = domain.DefaultCategoryColor
	}
	if category.Icon == "" {
		category.Icon = domain.DefaultCategoryIcon
	}
	if req.ParentID != nil && *req.ParentID != "" {
		if err := s.checkParent(ctx, companyID, category.CategoryID, *req.ParentID); err != nil {
			return nil, err
		}
		category.ParentID = req.ParentID
	}

	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		s.LogError(ctx, err, "Failed to save category",
			slog.String("company_id", companyID),
			slog.String("name", name))
		return nil, err
	}

	s.LogInfo(ctx, "Category created",
		slog.String("category_id", category.CategoryID),
		slog.String("company_id", companyID))
	return &category, nil
}

// checkParent enforces the one-level hierarchy: the parent lives in the same company and
// is itself top level.
func (s *categoryService) checkParent(ctx context.Context, companyID, categoryID, parentID string) error {
	if parentID == categoryID {
		return apperrors.NewValidationFailedError("a category cannot be its own parent")
	}
	parent, err := s.findInCompany(ctx, companyID, parentID)
	if err != nil {
		return err
	}
	if parent.ParentID != nil {
		return apperrors.NewValidationFailedError("parent category cannot itself have a parent")
	}
	return nil
}

func (s *categoryService) findInCompany(ctx context.Context, companyID, categoryID string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to find category by ID", slog.String("category_id", categoryID))
		return nil, err
	}
	if category.CompanyID != companyID {
		return nil, notFoundIn("category", categoryID)
	}
	return category, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, companyID string, categoryID string, userID string) (*domain.Category, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	return s.findInCompany(ctx, companyID, categoryID)
}

func (s *categoryService) ListCategories(ctx context.Context, companyID string, params dto.ListCategoriesParams, userID string) ([]domain.Category, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.ListCategories(ctx, companyID, params.CategoryType, params.ActiveOnly)
	if err != nil {
		s.LogError(ctx, err, "Failed to list categories", slog.String("company_id", companyID))
		return nil, err
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}

// UpdateCategory edits a category. An empty ParentID detaches it from its parent.
func (s *categoryService) UpdateCategory(ctx context.Context, companyID string, categoryID string, req dto.UpdateCategoryRequest, userID string) (*domain.Category, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleManager); err != nil {
		return nil, err
	}
	category, err := s.findInCompany(ctx, companyID, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationFailedError("category name cannot be empty")
		}
		category.Name = name
	}
	if req.CategoryType != nil {
		if !req.CategoryType.IsValid() {
			return nil, apperrors.NewValidationFailedError(fmt.Sprintf("invalid category type %q", *req.CategoryType))
		}
		category.CategoryType = *req.CategoryType
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.ParentID != nil {
		if *req.ParentID == "" {
			category.ParentID = nil
		} else {
			if err := s.checkParent(ctx, companyID, categoryID, *req.ParentID); err != nil {
				return nil, err
			}
			hasChildren, err := s.categoryRepo.HasChildCategories(ctx, categoryID)
			if err != nil {
				s.LogError(ctx, err, "Failed to check child categories", slog.String("category_id", categoryID))
				return nil, err
			}
			if hasChildren {
				return nil, apperrors.NewValidationFailedError("a category with children cannot become a child")
			}
			parentID := *req.ParentID
			category.ParentID = &parentID
		}
	}
	category.Touch(userID, s.Now())

	if err := s.categoryRepo.UpdateCategory(ctx, *category); err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to update category", slog.String("category_id", categoryID))
		return nil, err
	}

	s.LogInfo(ctx, "Category updated",
		slog.String("category_id", categoryID),
		slog.String("company_id", companyID))
	return category, nil
}

// DeleteCategory removes the category; its transactions, goals and budgets become uncategorised.
func (s *categoryService) DeleteCategory(ctx context.Context, companyID string, categoryID string, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleManager); err != nil {
		return err
	}
	if _, err := s.findInCompany(ctx, companyID, categoryID); err != nil {
		return err
	}
	if err := s.categoryRepo.DeleteCategory(ctx, categoryID); err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to delete category", slog.String("category_id", categoryID))
		return err
	}
	s.LogInfo(ctx, "Category deleted",
		slog.String("category_id", categoryID),
		slog.String("company_id", companyID))
	return nil
}
