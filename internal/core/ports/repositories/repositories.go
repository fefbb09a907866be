package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager       TransactionManager
	CompanyRepo     CompanyRepositoryFacade
	UserRepo        UserRepositoryFacade
	AccountRepo     AccountRepositoryFacade
	CategoryRepo    CategoryRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
	GoalRepo        GoalRepositoryFacade
	BudgetRepo      BudgetRepositoryFacade
	AlertRepo       AlertRepositoryFacade
}
