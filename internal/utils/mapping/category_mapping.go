package mapping

import (
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/models"
)

func ToModelCategory(d domain.Category) models.Category {
	return models.Category{
		CategoryID:   d.CategoryID,
		CompanyID:    d.CompanyID,
		Name:         d.Name,
		CategoryType: string(d.CategoryType),
		ParentID:     d.ParentID,
		Color:        d.Color,
		Icon:         d.Icon,
		IsActive:     d.IsActive,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainCategory(m models.Category) domain.Category {
	return domain.Category{
		CategoryID:   m.CategoryID,
		CompanyID:    m.CompanyID,
		Name:         m.Name,
		CategoryType: domain.CategoryType(m.CategoryType),
		ParentID:     m.ParentID,
		Color:        m.Color,
		Icon:         m.Icon,
		IsActive:     m.IsActive,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

func ToDomainCategorySlice(ms []models.Category) []domain.Category {
	return toDomainSlice(ms, ToDomainCategory)
}
