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
	"github.com/SscSPs/bizledger/internal/utils/accounting"
	"github.com/google/uuid"
)

type budgetService struct {
	BaseService
	budgetRepo   portsrepo.BudgetRepositoryFacade
	categoryRepo portsrepo.CategoryReader
	txnRepo      portsrepo.TransactionAggregator
}

func NewBudgetService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.BudgetSvcFacade {
	svc := &budgetService{
		budgetRepo:   repos.BudgetRepo,
		categoryRepo: repos.CategoryRepo,
		txnRepo:      repos.TransactionRepo,
	}
	svc.apply(options)
	return svc
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

// budgetUsage derives spend from the completed expenses inside the budget period.
func budgetUsage(ctx context.Context, txnRepo portsrepo.TransactionAggregator, budget domain.Budget) (domain.BudgetUsage, error) {
	expense, completed := domain.TransactionExpense, domain.StatusCompleted
	start, end := domain.DateOnly(budget.StartDate), domain.DateOnly(budget.EndDate)
	filter := domain.TransactionFilter{
		TransactionType: &expense,
		Status:          &completed,
		FromDate:        &start,
		ToDate:          &end,
		CategoryID:      budget.CategoryID,
	}
	agg, err := txnRepo.AggregateTransactions(ctx, budget.CompanyID, filter)
	if err != nil {
		return domain.BudgetUsage{}, fmt.Errorf("failed to aggregate spend of budget %s: %w", budget.BudgetID, err)
	}
	return domain.BudgetUsage{
		Budget:          budget,
		SpentAmount:     agg.Total,
		RemainingAmount: budget.TotalBudget.Sub(agg.Total),
		UsagePercentage: accounting.UsagePercentage(agg.Total, budget.TotalBudget),
	}, nil
}

func (s *budgetService) CreateBudget(ctx context.Context, companyID string, req dto.CreateBudgetRequest, userID string) (*domain.BudgetUsage, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleManager); err != nil {
		return nil, err
	}

	budget := domain.Budget{
		BudgetID:    uuid.NewString(),
		CompanyID:   companyID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		StartDate:   domain.DateOnly(req.StartDate),
		EndDate:     domain.DateOnly(req.EndDate),
		TotalBudget: req.TotalBudget,
		CategoryID:  req.CategoryID,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(userID, s.Now()),
	}
	if err := s.validate(ctx, &budget); err != nil {
		return nil, err
	}

	if err := s.budgetRepo.SaveBudget(ctx, budget); err != nil {
		s.LogError(ctx, err, "Failed to save budget", slog.String("company_id", companyID))
		return nil, err
	}
	s.LogInfo(ctx, "Budget created",
		slog.String("budget_id", budget.BudgetID),
		slog.String("company_id", companyID))
	return s.withUsage(ctx, budget)
}

func (s *budgetService) validate(ctx context.Context, budget *domain.Budget) error {
	if budget.Name == "" {
		return apperrors.NewValidationFailedError("budget name is required")
	}
	if !budget.TotalBudget.IsPositive() {
		return apperrors.NewValidationFailedError("total budget must be greater than zero")
	}
	if !domain.HasMoneyPrecision(budget.TotalBudget) {
		return apperrors.NewValidationFailedError("total budget " + domain.ErrAmountPrecision.Error())
	}
	if budget.EndDate.Before(budget.StartDate) {
		return apperrors.NewValidationFailedError("end date cannot be before start date")
	}
	if budget.CategoryID != nil && *budget.CategoryID == "" {
		budget.CategoryID = nil
	}
	if budget.CategoryID == nil {
		return nil
	}
	category, err := s.categoryRepo.FindCategoryByID(ctx, *budget.CategoryID)
	if err != nil {
		return err
	}
	if category.CompanyID != budget.CompanyID {
		return notFoundIn("category", *budget.CategoryID)
	}
	if !category.CategoryType.Accepts(domain.TransactionExpense) {
		return apperrors.NewValidationFailedError("budget category must accept expenses")
	}
	return nil
}

func (s *budgetService) withUsage(ctx context.Context, budget domain.Budget) (*domain.BudgetUsage, error) {
	usage, err := budgetUsage(ctx, s.txnRepo, budget)
	if err != nil {
		s.LogError(ctx, err, "Failed to derive budget usage", slog.String("budget_id", budget.BudgetID))
		return nil, err
	}
	return &usage, nil
}

func (s *budgetService) findInCompany(ctx context.Context, companyID, budgetID string) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to find budget by ID", slog.String("budget_id", budgetID))
		return nil, err
	}
	if budget.CompanyID != companyID {
		return nil, notFoundIn("budget", budgetID)
	}
	return budget, nil
}

func (s *budgetService) GetBudgetByID(ctx context.Context, companyID string, budgetID string, userID string) (*domain.BudgetUsage, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	budget, err := s.findInCompany(ctx, companyID, budgetID)
	if err != nil {
		return nil, err
	}
	return s.withUsage(ctx, *budget)
}

func (s *budgetService) ListBudgets(ctx context.Context, companyID string, userID string, activeOnly bool) ([]domain.BudgetUsage, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	budgets, err := s.budgetRepo.ListBudgets(ctx, companyID, activeOnly)
	if err != nil {
		s.LogError(ctx, err, "Failed to list budgets", slog.String("company_id", companyID))
		return nil, err
	}

	usages := make([]domain.BudgetUsage, 0, len(budgets))
	for _, b := range budgets {
		usage, err := s.withUsage(ctx, b)
		if err != nil {
			return nil, err
		}
		usages = append(usages, *usage)
	}
	return usages, nil
}

func (s *budgetService) UpdateBudget(ctx context.Context, companyID string, budgetID string, req dto.UpdateBudgetRequest, userID string) (*domain.BudgetUsage, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleManager); err != nil {
		return nil, err
	}
	budget, err := s.findInCompany(ctx, companyID, budgetID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		budget.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		budget.Description = *req.Description
	}
	if req.StartDate != nil {
		budget.StartDate = domain.DateOnly(*req.StartDate)
	}
	if req.EndDate != nil {
		budget.EndDate = domain.DateOnly(*req.EndDate)
	}
	if req.TotalBudget != nil {
		budget.TotalBudget = *req.TotalBudget
	}
	if req.CategoryID != nil {
		budget.CategoryID = req.CategoryID
	}
	if req.IsActive != nil {
		budget.IsActive = *req.IsActive
	}
	if err := s.validate(ctx, budget); err != nil {
		return nil, err
	}
	budget.Touch(userID, s.Now())

	if err := s.budgetRepo.UpdateBudget(ctx, *budget); err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to update budget", slog.String("budget_id", budgetID))
		return nil, err
	}
	s.LogInfo(ctx, "Budget updated",
		slog.String("budget_id", budgetID),
		slog.String("company_id", companyID))
	return s.withUsage(ctx, *budget)
}

func (s *budgetService) DeleteBudget(ctx context.Context, companyID string, budgetID string, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleManager); err != nil {
		return err
	}
	if _, err := s.findInCompany(ctx, companyID, budgetID); err != nil {
		return err
	}
	if err := s.budgetRepo.DeleteBudget(ctx, budgetID); err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to delete budget", slog.String("budget_id", budgetID))
		return err
	}
	s.LogInfo(ctx, "Budget deleted",
		slog.String("budget_id", budgetID),
		slog.String("company_id", companyID))
	return nil
}
