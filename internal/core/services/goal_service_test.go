package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

var goalNow = time.Date(2024, time.February, 10, 9, 30, 0, 0, time.UTC)

type GoalServiceTestSuite struct {
	ledgerFixture
	account  string
	sales    string
	expenses string
}

func (suite *GoalServiceTestSuite) SetupTest() {
	suite.setup(goalNow)
	suite.account = suite.newAccount("Operating", "0")
	suite.sales = suite.newCategory("Sales", domain.CategoryIncome)
	suite.expenses = suite.newCategory("Supplies", domain.CategoryExpense)
}

func TestGoalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GoalServiceTestSuite))
}

func (suite *GoalServiceTestSuite) createGoal(target string, start, end time.Time, categoryID *string) *domain.Goal {
	goal, err := suite.goals.CreateGoal(suite.ctx, suite.companyID, dto.CreateGoalRequest{
		Name:         "Q1 sales",
		GoalType:     domain.GoalIncomeIncrease,
		TargetAmount: dec(target),
		StartDate:    start,
		TargetDate:   end,
		CategoryID:   categoryID,
	}, suite.userID)
	suite.Require().NoError(err)
	return goal
}

func (suite *GoalServiceTestSuite) storedGoal(id string) domain.Goal {
	goal, ok := suite.store.goals[id]
	suite.Require().True(ok)
	return goal
}

func (suite *GoalServiceTestSuite) TestProgressFollowsWindow() {
	goal := suite.createGoal("1000", day(time.January, 1), day(time.January, 31), &suite.sales)
	suite.True(goal.CurrentAmount.IsZero())

	suite.record(suite.completedOn(domain.TransactionIncome, suite.account, suite.sales, "400", day(time.January, 15)))
	stored := suite.storedGoal(goal.GoalID)
	suite.True(dec("400").Equal(stored.CurrentAmount))
	suite.True(dec("40").Equal(accounting.ProgressPercentage(stored.CurrentAmount, stored.TargetAmount)))

	suite.record(suite.completedOn(domain.TransactionIncome, suite.account, suite.sales, "700", day(time.February, 5)))
	stored = suite.storedGoal(goal.GoalID)
	suite.True(dec("400").Equal(stored.CurrentAmount))
	suite.False(stored.IsAchieved)

	amount, err := suite.goals.GoalProgressForPeriod(suite.ctx, suite.companyID, goal.GoalID, day(time.January, 1), day(time.February, 28), suite.userID)
	suite.Require().NoError(err)
	suite.True(dec("1100").Equal(amount))
}

func (suite *GoalServiceTestSuite) TestAchievementIsSticky() {
	goal := suite.createGoal("500", day(time.February, 1), day(time.March, 31), &suite.sales)

	txn := suite.record(suite.completedOn(domain.TransactionIncome, suite.account, suite.sales, "700", day(time.February, 5)))
	stored := suite.storedGoal(goal.GoalID)
	suite.Require().True(stored.IsAchieved)
	suite.Require().NotNil(stored.AchievedAt)
	achievedAt := *stored.AchievedAt

	suite.Require().NoError(suite.ledger.DeleteTransaction(suite.ctx, suite.companyID, txn.TransactionID, suite.userID))
	stored = suite.storedGoal(goal.GoalID)
	suite.True(stored.CurrentAmount.IsZero())
	suite.True(stored.IsAchieved)
	suite.Equal(achievedAt, *stored.AchievedAt)
}

func (suite *GoalServiceTestSuite) TestCreateComputesExistingProgress() {
	suite.record(suite.completedOn(domain.TransactionIncome, suite.account, suite.sales, "250", day(time.January, 20)))

	goal := suite.createGoal("1000", day(time.January, 1), day(time.March, 31), &suite.sales)
	suite.True(dec("250").Equal(goal.CurrentAmount))
	suite.True(dec("250").Equal(suite.storedGoal(goal.GoalID).CurrentAmount))
}

func (suite *GoalServiceTestSuite) TestFutureWindowHasNoProgress() {
	suite.record(suite.completedOn(domain.TransactionIncome, suite.account, suite.sales, "250", day(time.February, 1)))

	goal := suite.createGoal("1000", day(time.March, 1), day(time.March, 31), &suite.sales)
	suite.True(goal.CurrentAmount.IsZero())
}

func (suite *GoalServiceTestSuite) TestUpdateRebindsCategory() {
	suite.record(suite.completedOn(domain.TransactionIncome, suite.account, suite.sales, "300", day(time.January, 10)))
	suite.record(suite.completedOn(domain.TransactionExpense, suite.account, suite.expenses, "120", day(time.January, 12)))
	goal := suite.createGoal("1000", day(time.January, 1), day(time.March, 31), &suite.sales)

	updated, err := suite.goals.UpdateGoal(suite.ctx, suite.companyID, goal.GoalID, dto.UpdateGoalRequest{
		GoalType:   ptr(domain.GoalExpenseReduction),
		CategoryID: &suite.expenses,
	}, suite.userID)
	suite.Require().NoError(err)
	suite.True(dec("120").Equal(updated.CurrentAmount))

	updated, err = suite.goals.UpdateGoal(suite.ctx, suite.companyID, goal.GoalID, dto.UpdateGoalRequest{CategoryID: ptr("")}, suite.userID)
	suite.Require().NoError(err)
	suite.Nil(updated.CategoryID)
	suite.True(updated.CurrentAmount.IsZero(), updated.CurrentAmount.String())
	suite.True(suite.storedGoal(goal.GoalID).CurrentAmount.IsZero())
}

func (suite *GoalServiceTestSuite) TestUnbindingKeepsAchievement() {
	suite.record(suite.completedOn(domain.TransactionIncome, suite.account, suite.sales, "1200", day(time.January, 10)))
	goal := suite.createGoal("1000", day(time.January, 1), day(time.March, 31), &suite.sales)
	suite.Require().True(goal.IsAchieved)

	updated, err := suite.goals.UpdateGoal(suite.ctx, suite.companyID, goal.GoalID, dto.UpdateGoalRequest{CategoryID: ptr("")}, suite.userID)
	suite.Require().NoError(err)
	suite.True(updated.CurrentAmount.IsZero())
	suite.True(updated.IsAchieved)
}

func (suite *GoalServiceTestSuite) TestRefreshRepairsCachedAmount() {
	goal := suite.createGoal("1000", day(time.January, 1), day(time.March, 31), &suite.sales)
	suite.record(suite.completedOn(domain.TransactionIncome, suite.account, suite.sales, "300", day(time.January, 10)))

	tampered := suite.storedGoal(goal.GoalID)
	tampered.CurrentAmount = dec("5")
	suite.store.goals[goal.GoalID] = tampered

	refreshed, err := suite.goals.RefreshGoalProgress(suite.ctx, suite.companyID, goal.GoalID, suite.userID)
	suite.Require().NoError(err)
	suite.True(dec("300").Equal(refreshed.CurrentAmount))
}

func (suite *GoalServiceTestSuite) TestValidation() {
	foreignCategory := domain.Category{
		CategoryID:   uuid.NewString(),
		CompanyID:    uuid.NewString(),
		Name:         "Elsewhere",
		CategoryType: domain.CategoryIncome,
		IsActive:     true,
	}
	suite.store.categories[foreignCategory.CategoryID] = foreignCategory

	testCases := []struct {
		name    string
		req     dto.CreateGoalRequest
		wantErr error
	}{
		{
			name:    "start after target",
			req:     dto.CreateGoalRequest{Name: "g", GoalType: domain.GoalSavings, TargetAmount: dec("10"), StartDate: day(time.March, 1), TargetDate: day(time.January, 1)},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "non positive target",
			req:     dto.CreateGoalRequest{Name: "g", GoalType: domain.GoalSavings, TargetAmount: dec("0"), StartDate: day(time.January, 1), TargetDate: day(time.March, 1)},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "target below a cent",
			req:     dto.CreateGoalRequest{Name: "g", GoalType: domain.GoalSavings, TargetAmount: dec("10.005"), StartDate: day(time.January, 1), TargetDate: day(time.March, 1)},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "unknown type",
			req:     dto.CreateGoalRequest{Name: "g", GoalType: "lottery", TargetAmount: dec("10"), StartDate: day(time.January, 1), TargetDate: day(time.March, 1)},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "category of another company",
			req:     dto.CreateGoalRequest{Name: "g", GoalType: domain.GoalSavings, TargetAmount: dec("10"), StartDate: day(time.January, 1), TargetDate: day(time.March, 1), CategoryID: &foreignCategory.CategoryID},
			wantErr: apperrors.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := suite.goals.CreateGoal(suite.ctx, suite.companyID, tc.req, suite.userID)
			suite.Require().Error(err)
			suite.True(errors.Is(err, tc.wantErr), "got %v", err)
		})
	}
	suite.Empty(suite.store.goals)
}

func (suite *GoalServiceTestSuite) TestPeriodProgressRejectsInvertedRange() {
	goal := suite.createGoal("1000", day(time.January, 1), day(time.March, 31), &suite.sales)

	_, err := suite.goals.GoalProgressForPeriod(suite.ctx, suite.companyID, goal.GoalID, day(time.February, 1), day(time.January, 1), suite.userID)
	suite.True(errors.Is(err, apperrors.ErrValidation))
}

func (suite *GoalServiceTestSuite) TestForeignGoalIsHidden() {
	goal := suite.createGoal("1000", day(time.January, 1), day(time.March, 31), &suite.sales)

	_, err := suite.goals.GetGoalByID(suite.ctx, uuid.NewString(), goal.GoalID, suite.userID)
	suite.True(errors.Is(err, apperrors.ErrNotFound))
}
