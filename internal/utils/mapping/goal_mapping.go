package mapping

import (
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/models"
)

func ToModelGoal(d domain.Goal) models.Goal {
	return models.Goal{
		GoalID:        d.GoalID,
		CompanyID:     d.CompanyID,
		Name:          d.Name,
		Description:   d.Description,
		GoalType:      string(d.GoalType),
		TargetAmount:  d.TargetAmount,
		CurrentAmount: d.CurrentAmount,
		StartDate:     d.StartDate,
		TargetDate:    d.TargetDate,
		CategoryID:    d.CategoryID,
		IsActive:      d.IsActive,
		IsAchieved:    d.IsAchieved,
		AchievedAt:    d.AchievedAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainGoal(m models.Goal) domain.Goal {
	return domain.Goal{
		GoalID:        m.GoalID,
		CompanyID:     m.CompanyID,
		Name:          m.Name,
		Description:   m.Description,
		GoalType:      domain.GoalType(m.GoalType),
		TargetAmount:  m.TargetAmount,
		CurrentAmount: m.CurrentAmount,
		StartDate:     m.StartDate,
		TargetDate:    m.TargetDate,
		CategoryID:    m.CategoryID,
		IsActive:      m.IsActive,
		IsAchieved:    m.IsAchieved,
		AchievedAt:    m.AchievedAt,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

func ToDomainGoalSlice(ms []models.Goal) []domain.Goal {
	return toDomainSlice(ms, ToDomainGoal)
}
