package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/stretchr/testify/suite"
)

type InsightServiceTestSuite struct {
	ledgerFixture
}

func (suite *InsightServiceTestSuite) SetupTest() {
	suite.setup(ledgerNow)
}

func TestInsightServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InsightServiceTestSuite))
}

func (suite *InsightServiceTestSuite) TestEmptyCompany() {
	insights, err := suite.insights.GetInsights(suite.ctx, suite.companyID, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(50, insights.HealthScore)
	suite.NotNil(insights.CategoryTrends)
	suite.Empty(insights.CategoryTrends)
	suite.True(insights.Forecast.CurrentBalance.IsZero())
	suite.Equal(ledgerNow, insights.GeneratedAt)
}

func (suite *InsightServiceTestSuite) TestTrendsHealthAndForecast() {
	account := suite.newAccount("Operating", "1000")
	sales := suite.newCategory("Sales", domain.CategoryIncome)
	supplies := suite.newCategory("Supplies", domain.CategoryExpense)
	rent := suite.newCategory("Rent", domain.CategoryExpense)

	// previous window
	suite.record(suite.completedOn(domain.TransactionIncome, account, sales, "1000", day(time.January, 20)))
	suite.record(suite.completedOn(domain.TransactionExpense, account, supplies, "200", day(time.January, 25)))
	suite.record(suite.completedOn(domain.TransactionExpense, account, rent, "500", day(time.February, 1)))
	// current window
	suite.record(suite.completedOn(domain.TransactionIncome, account, sales, "1500", day(time.March, 1)))
	suite.record(suite.completedOn(domain.TransactionExpense, account, supplies, "210", day(time.March, 2)))

	insights, err := suite.insights.GetInsights(suite.ctx, suite.companyID, suite.userID)
	suite.Require().NoError(err)

	suite.Equal(100, insights.HealthScore)

	suite.Require().Len(insights.CategoryTrends, 2)
	first, second := insights.CategoryTrends[0], insights.CategoryTrends[1]
	suite.Equal("Rent", first.CategoryName)
	suite.True(dec("-100").Equal(first.ChangePercent))
	suite.False(first.Increasing)
	suite.Equal("Sales", second.CategoryName)
	suite.True(dec("50").Equal(second.ChangePercent))
	suite.True(second.Increasing)

	f := insights.Forecast
	suite.Equal(30, f.Days)
	suite.True(dec("2590").Equal(f.CurrentBalance), f.CurrentBalance.String())
	suite.True(dec("41.67").Equal(f.AvgDailyIncome), f.AvgDailyIncome.String())
	suite.True(dec("15.17").Equal(f.AvgDailyExpense), f.AvgDailyExpense.String())
	suite.True(dec("795").Equal(f.NetFlow), f.NetFlow.String())
	suite.True(dec("3385").Equal(f.ProjectedBalance), f.ProjectedBalance.String())
}
