package repositories

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// CategoryReader defines read operations for category data
type CategoryReader interface {
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)

	// FindCategoriesByIDs returns the categories found, keyed by id. Missing ids are simply absent.
	FindCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]domain.Category, error)

	ListCategories(ctx context.Context, companyID string, categoryType *domain.CategoryType, activeOnly bool) ([]domain.Category, error)

	// HasChildCategories reports whether any category names categoryID as its parent.
	HasChildCategories(ctx context.Context, categoryID string) (bool, error)
}

// CategoryWriter defines write operations for category data
type CategoryWriter interface {
	SaveCategory(ctx context.Context, category domain.Category) error
	UpdateCategory(ctx context.Context, category domain.Category) error

	// DeleteCategory removes a category. Transactions, goals and budgets pointing at it
	// become uncategorised and child categories lose their parent.
	DeleteCategory(ctx context.Context, categoryID string) error
}

// CategoryRepositoryFacade combines all category-related repository interfaces
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
}
