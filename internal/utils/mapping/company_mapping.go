package mapping

import (
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/models"
)

func ToModelCompany(d domain.Company) models.Company {
	return models.Company{
		CompanyID:    d.CompanyID,
		Name:         d.Name,
		Description:  d.Description,
		CurrencyCode: d.CurrencyCode,
		IsActive:     d.IsActive,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainCompany(m models.Company) domain.Company {
	return domain.Company{
		CompanyID:    m.CompanyID,
		Name:         m.Name,
		Description:  m.Description,
		CurrencyCode: m.CurrencyCode,
		IsActive:     m.IsActive,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

func ToDomainCompanySlice(ms []models.Company) []domain.Company {
	return toDomainSlice(ms, ToDomainCompany)
}

func ToDomainCompanyMember(m models.CompanyMember) domain.CompanyMember {
	return domain.CompanyMember{
		UserID:    m.UserID,
		UserName:  m.UserName,
		UserEmail: m.UserEmail,
		CompanyID: m.CompanyID,
		Role:      domain.CompanyRole(m.Role),
		IsActive:  m.IsActive,
		JoinedAt:  m.JoinedAt,
	}
}

func ToDomainCompanyMemberSlice(ms []models.CompanyMember) []domain.CompanyMember {
	return toDomainSlice(ms, ToDomainCompanyMember)
}
