package services

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
)

// CategorySvcFacade defines category management.
type CategorySvcFacade interface {
	CreateCategory(ctx context.Context, companyID string, req dto.CreateCategoryRequest, userID string) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, companyID string, categoryID string, userID string) (*domain.Category, error)
	ListCategories(ctx context.Context, companyID string, params dto.ListCategoriesParams, userID string) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, companyID string, categoryID string, req dto.UpdateCategoryRequest, userID string) (*domain.Category, error)

	// DeleteCategory removes a category and leaves its transactions uncategorised.
	DeleteCategory(ctx context.Context, companyID string, categoryID string, userID string) error
}
