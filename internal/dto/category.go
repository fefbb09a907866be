package dto

import (
	"github.com/SscSPs/bizledger/internal/core/domain"
)

type CreateCategoryRequest struct {
	Name         string              `json:"name" binding:"required,max=100"`
	CategoryType domain.CategoryType `json:"categoryType" binding:"required,oneof=income expense both"`
	ParentID     *string             `json:"parentID" binding:"omitempty,uuid"`
	Color        string              `json:"color" binding:"omitempty,hexcolor"`
	Icon         string              `json:"icon" binding:"max=50"`
}

// UpdateCategoryRequest: an empty ParentID detaches the category from its parent.
type UpdateCategoryRequest struct {
	Name         *string              `json:"name" binding:"omitempty,max=100"`
	CategoryType *domain.CategoryType `json:"categoryType" binding:"omitempty,oneof=income expense both"`
	ParentID     *string              `json:"parentID" binding:"omitempty,uuid"`
	Color        *string              `json:"color" binding:"omitempty,hexcolor"`
	Icon         *string              `json:"icon" binding:"omitempty,max=50"`
	IsActive     *bool                `json:"isActive"`
}

type ListCategoriesParams struct {
	CategoryType *domain.CategoryType `form:"type" binding:"omitempty,oneof=income expense both"`
	ActiveOnly   bool                 `form:"activeOnly,default=false"`
}

type ListCategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
}
