package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	healthWindowDays   = 30
	trendWindowDays    = 30
	forecastBasisDays  = 60
	forecastHorizonDay = 30
)

var trendThreshold = decimal.NewFromInt(20)

type insightService struct {
	BaseService
	accountRepo  portsrepo.AccountReader
	categoryRepo portsrepo.CategoryReader
	txnRepo      portsrepo.TransactionAggregator
}

func NewInsightService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.InsightSvc {
	svc := &insightService{
		accountRepo:  repos.AccountRepo,
		categoryRepo: repos.CategoryRepo,
		txnRepo:      repos.TransactionRepo,
	}
	svc.apply(options)
	return svc
}

var _ portssvc.InsightSvc = (*insightService)(nil)

// GetInsights computes the health score, category trends and forecast concurrently.
func (s *insightService) GetInsights(ctx context.Context, companyID string, userID string) (*domain.Insights, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}

	today := s.Today()
	insights := &domain.Insights{GeneratedAt: s.Now()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		score, err := s.healthScore(gctx, companyID, today)
		insights.HealthScore = score
		return err
	})
	g.Go(func() error {
		trends, err := s.categoryTrends(gctx, companyID, today)
		insights.CategoryTrends = trends
		return err
	})
	g.Go(func() error {
		forecast, err := s.forecast(gctx, companyID, today)
		insights.Forecast = forecast
		return err
	})
	if err := g.Wait(); err != nil {
		s.LogError(ctx, err, "Failed to compute insights", slog.String("company_id", companyID))
		return nil, err
	}
	return insights, nil
}

// completedTotal sums completed transactions of one type dated from `from` up to today.
func (s *insightService) completedTotal(ctx context.Context, companyID string, txnType domain.TransactionType, from, today time.Time) (decimal.Decimal, error) {
	completed := domain.StatusCompleted
	agg, err := s.txnRepo.AggregateTransactions(ctx, companyID, domain.TransactionFilter{
		TransactionType: &txnType,
		Status:          &completed,
		FromDate:        &from,
		ToDate:          &today,
	})
	if err != nil {
		return decimal.Zero, err
	}
	return agg.Total, nil
}

func (s *insightService) healthScore(ctx context.Context, companyID string, today time.Time) (int, error) {
	from := today.AddDate(0, 0, -healthWindowDays)
	income, err := s.completedTotal(ctx, companyID, domain.TransactionIncome, from, today)
	if err != nil {
		return 0, err
	}
	expense, err := s.completedTotal(ctx, companyID, domain.TransactionExpense, from, today)
	if err != nil {
		return 0, err
	}
	return accounting.HealthScore(income, expense), nil
}

// categoryTrends compares the last window with the one before and keeps the significant moves.
// Categories without previous activity are left out.
func (s *insightService) categoryTrends(ctx context.Context, companyID string, today time.Time) ([]domain.CategoryTrend, error) {
	currentFrom := today.AddDate(0, 0, -trendWindowDays)
	previousFrom := today.AddDate(0, 0, -2*trendWindowDays)

	current, err := s.txnRepo.SumActivityByCategory(ctx, companyID, currentFrom, today)
	if err != nil {
		return nil, err
	}
	previous, err := s.txnRepo.SumActivityByCategory(ctx, companyID, previousFrom, currentFrom.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(previous))
	for id := range previous {
		ids = append(ids, id)
	}
	categories, err := s.categoryRepo.FindCategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	trends := []domain.CategoryTrend{}
	for id, prev := range previous {
		if !prev.IsPositive() {
			continue
		}
		cur := current[id]
		change := accounting.ChangePercent(cur, prev)
		if !change.Abs().GreaterThan(trendThreshold) {
			continue
		}
		trends = append(trends, domain.CategoryTrend{
			CategoryID:    id,
			CategoryName:  categories[id].Name,
			CurrentTotal:  cur,
			PreviousTotal: prev,
			ChangePercent: change,
			Increasing:    change.IsPositive(),
		})
	}
	sort.Slice(trends, func(i, j int) bool {
		return trends[i].ChangePercent.Abs().GreaterThan(trends[j].ChangePercent.Abs())
	})
	return trends, nil
}

// forecast projects the total active balance with the daily averages of the basis window.
func (s *insightService) forecast(ctx context.Context, companyID string, today time.Time) (domain.Forecast, error) {
	from := today.AddDate(0, 0, -forecastBasisDays)
	income, err := s.completedTotal(ctx, companyID, domain.TransactionIncome, from, today)
	if err != nil {
		return domain.Forecast{}, err
	}
	expense, err := s.completedTotal(ctx, companyID, domain.TransactionExpense, from, today)
	if err != nil {
		return domain.Forecast{}, err
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, companyID, true)
	if err != nil {
		return domain.Forecast{}, err
	}

	balance := decimal.Zero
	for _, acc := range accounts {
		balance = balance.Add(acc.CurrentBalance)
	}

	basis := decimal.NewFromInt(forecastBasisDays)
	horizon := decimal.NewFromInt(forecastHorizonDay)
	avgIncome := income.Div(basis).Round(2)
	avgExpense := expense.Div(basis).Round(2)
	projectedIncome := avgIncome.Mul(horizon)
	projectedExpense := avgExpense.Mul(horizon)
	net := projectedIncome.Sub(projectedExpense)

	return domain.Forecast{
		Days:             forecastHorizonDay,
		CurrentBalance:   balance,
		AvgDailyIncome:   avgIncome,
		AvgDailyExpense:  avgExpense,
		ProjectedIncome:  projectedIncome,
		ProjectedExpense: projectedExpense,
		ProjectedBalance: balance.Add(net),
		NetFlow:          net,
	}, nil
}
