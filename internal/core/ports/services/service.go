package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Company     CompanySvcFacade
	User        UserSvcFacade
	Token       TokenSvcFacade
	Account     AccountSvcFacade
	Category    CategorySvcFacade
	Ledger      LedgerSvcFacade
	Goal        GoalSvcFacade
	Budget      BudgetSvcFacade
	Alert       AlertSvcFacade
	Insight     InsightSvc
	Maintenance MaintenanceSvc
}
