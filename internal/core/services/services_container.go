package services

import (
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, locker portsrepo.DistributedLocker, options ...ServiceOption) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Company service first: every company scoped service authorizes through it
	container.Company = NewCompanyService(repos.CompanyRepo, repos.UserRepo, options...)
	scoped := append([]ServiceOption{WithCompanyAuthorizer(container.Company)}, options...)

	container.User = NewUserService(repos.UserRepo, options...)
	container.Token = NewTokenService(cfg, options...)
	container.Account = NewAccountService(repos, scoped...)
	container.Category = NewCategoryService(repos.CategoryRepo, scoped...)
	container.Ledger = NewLedgerService(repos, scoped...)
	container.Goal = NewGoalService(repos, scoped...)
	container.Budget = NewBudgetService(repos, scoped...)
	container.Alert = NewAlertService(repos, cfg.AlertRules, locker, scoped...)
	container.Insight = NewInsightService(repos, scoped...)
	container.Maintenance = NewMaintenanceService(repos, scoped...)

	return container
}
