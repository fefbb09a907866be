package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/core/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

var alertNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

// stubLocker answers every TryLock with the configured outcome.
type stubLocker struct {
	acquired bool
	err      error
	unlocked []string
	tokens   []string
}

const stubLockToken = "stub-token"

func (l *stubLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if !l.acquired || l.err != nil {
		return "", false, l.err
	}
	return stubLockToken, true, nil
}

func (l *stubLocker) Unlock(ctx context.Context, key, token string) error {
	l.unlocked = append(l.unlocked, key)
	l.tokens = append(l.tokens, token)
	return nil
}

type AlertServiceTestSuite struct {
	ledgerFixture
}

func (suite *AlertServiceTestSuite) SetupTest() {
	suite.setup(alertNow)
}

func TestAlertServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AlertServiceTestSuite))
}

func (suite *AlertServiceTestSuite) sweep() []domain.Alert {
	created, err := suite.alerts.SweepCompany(suite.ctx, suite.companyID)
	suite.Require().NoError(err)
	return created
}

func (suite *AlertServiceTestSuite) stored(id string) domain.Alert {
	alert, ok := suite.store.alerts[id]
	suite.Require().True(ok)
	return alert
}

func (suite *AlertServiceTestSuite) TestLowBalanceLifecycle() {
	account := suite.newAccount("Petty cash", "100")

	created := suite.sweep()
	suite.Require().Len(created, 1)
	alert := created[0]
	suite.Equal(domain.AlertLowBalance, alert.AlertType)
	suite.Equal(domain.SeverityHigh, alert.Severity)
	suite.Equal(domain.AlertActive, alert.Status)
	suite.Equal(services.SystemActor, alert.CreatedBy)
	id, ok := alert.SubjectID(domain.SubjectAccount)
	suite.True(ok)
	suite.Equal(account, id)

	suite.Empty(suite.sweep(), "open alert within its cooldown must not be raised again")

	suite.record(suite.completed(domain.TransactionIncome, account, "2000"))
	suite.Empty(suite.sweep())
	resolved := suite.stored(alert.AlertID)
	suite.Equal(domain.AlertResolved, resolved.Status)
	suite.NotNil(resolved.ResolvedAt)
}

func (suite *AlertServiceTestSuite) TestLowBalanceCriticalWhenPendingExpensesExceedBalance() {
	account := suite.newAccount("Operating", "300")
	req := suite.completed(domain.TransactionExpense, account, "400")
	req.Status = domain.StatusPending
	req.TransactionDate = ptr(alertNow.AddDate(0, 0, 3))
	suite.record(req)

	created := suite.sweep()
	suite.Require().Len(created, 1)
	suite.Equal(domain.AlertLowBalance, created[0].AlertType)
	suite.Equal(domain.SeverityCritical, created[0].Severity)
	suite.Equal("400.00", created[0].RelatedData["upcoming"])
}

func (suite *AlertServiceTestSuite) TestOverdueResolvesOncePaid() {
	account := suite.newAccount("Operating", "5000")
	req := suite.completed(domain.TransactionExpense, account, "50")
	req.Status = domain.StatusPending
	req.TransactionDate = ptr(day(time.March, 1))
	txn := suite.record(req)

	created := suite.sweep()
	suite.Require().Len(created, 1)
	suite.Equal(domain.AlertOverdue, created[0].AlertType)
	suite.Equal(domain.SeverityHigh, created[0].Severity)

	_, err := suite.ledger.SetTransactionStatus(suite.ctx, suite.companyID, txn.TransactionID, domain.StatusCompleted, suite.userID)
	suite.Require().NoError(err)
	suite.sweep()
	suite.Equal(domain.AlertResolved, suite.stored(created[0].AlertID).Status)
}

func (suite *AlertServiceTestSuite) TestUnusualExpense() {
	account := suite.newAccount("Operating", "10000")
	supplies := suite.newCategory("Supplies", domain.CategoryExpense)
	suite.record(suite.completedOn(domain.TransactionExpense, account, supplies, "100", day(time.January, 15)))
	suite.record(suite.completedOn(domain.TransactionExpense, account, supplies, "100", day(time.February, 1)))
	spike := suite.record(suite.completedOn(domain.TransactionExpense, account, supplies, "300", day(time.March, 8)))

	created := suite.sweep()
	suite.Require().Len(created, 1)
	suite.Equal(domain.AlertUnusualExpense, created[0].AlertType)
	id, ok := created[0].SubjectID(domain.SubjectTransaction)
	suite.True(ok)
	suite.Equal(spike.TransactionID, id)
	suite.Equal("100.00", created[0].RelatedData["baseline"])
}

func (suite *AlertServiceTestSuite) TestCashFlowRunway() {
	account := suite.newAccount("Operating", "4200")
	suite.record(suite.completedOn(domain.TransactionExpense, account, suite.newCategory("Rent", domain.CategoryExpense), "3000", day(time.March, 1)))

	created := suite.sweep()
	suite.Require().Len(created, 1)
	suite.Equal(domain.AlertCashFlowNegative, created[0].AlertType)
	suite.Equal(domain.SeverityMedium, created[0].Severity)
	suite.Equal("12.0", created[0].RelatedData["days_remaining"])
}

func (suite *AlertServiceTestSuite) TestGoalDeadline() {
	goal := domain.Goal{
		GoalID:       uuid.NewString(),
		CompanyID:    suite.companyID,
		Name:         "Spring sales",
		GoalType:     domain.GoalIncomeIncrease,
		TargetAmount: dec("1000"),
		StartDate:    day(time.January, 1),
		TargetDate:   day(time.March, 15),
		IsActive:     true,
	}
	suite.store.goals[goal.GoalID] = goal

	created := suite.sweep()
	suite.Require().Len(created, 1)
	suite.Equal(domain.AlertGoalDeadline, created[0].AlertType)
	suite.Equal(domain.SeverityMedium, created[0].Severity)

	goal.CurrentAmount = dec("950")
	suite.store.goals[goal.GoalID] = goal
	suite.sweep()
	suite.Equal(domain.AlertResolved, suite.stored(created[0].AlertID).Status)
}

func (suite *AlertServiceTestSuite) TestBudgetExceeded() {
	account := suite.newAccount("Operating", "10000")
	supplies := suite.newCategory("Supplies", domain.CategoryExpense)
	budget, err := suite.budgets.CreateBudget(suite.ctx, suite.companyID, dto.CreateBudgetRequest{
		Name:        "March supplies",
		StartDate:   day(time.March, 1),
		EndDate:     day(time.March, 31),
		TotalBudget: dec("100"),
		CategoryID:  &supplies,
	}, suite.userID)
	suite.Require().NoError(err)
	suite.record(suite.completedOn(domain.TransactionExpense, account, supplies, "150", day(time.March, 5)))

	var raised *domain.Alert
	for _, a := range suite.sweep() {
		if a.AlertType == domain.AlertBudgetExceeded {
			raised = &a
		}
	}
	suite.Require().NotNil(raised)
	id, _ := raised.SubjectID(domain.SubjectBudget)
	suite.Equal(budget.BudgetID, id)

	_, err = suite.budgets.UpdateBudget(suite.ctx, suite.companyID, budget.BudgetID, dto.UpdateBudgetRequest{TotalBudget: ptr(dec("500"))}, suite.userID)
	suite.Require().NoError(err)
	suite.sweep()
	suite.Equal(domain.AlertResolved, suite.stored(raised.AlertID).Status)
}

func (suite *AlertServiceTestSuite) TestSweepPrunesExpiredAlerts() {
	old := domain.Alert{
		AlertID:     uuid.NewString(),
		CompanyID:   suite.companyID,
		AlertType:   domain.AlertCustom,
		Severity:    domain.SeverityLow,
		Status:      domain.AlertResolved,
		Title:       "old",
		TriggeredAt: alertNow.AddDate(0, 0, -40),
	}
	suite.store.alerts[old.AlertID] = old

	suite.sweep()
	suite.NotContains(suite.store.alerts, old.AlertID)
}

func (suite *AlertServiceTestSuite) TestSweepSkipsWhenLockHeld() {
	suite.newAccount("Petty cash", "100")
	locker := &stubLocker{acquired: false}

	created, err := suite.alertService(locker).SweepCompany(suite.ctx, suite.companyID)
	suite.Require().NoError(err)
	suite.NotNil(created)
	suite.Empty(created)
	suite.Empty(suite.store.alerts)
	suite.Empty(locker.unlocked)
}

func (suite *AlertServiceTestSuite) TestSweepFailsWhenLockUnavailable() {
	locker := &stubLocker{err: errors.New("redis: connection refused")}

	_, err := suite.alertService(locker).SweepCompany(suite.ctx, suite.companyID)
	suite.Error(err)
}

func (suite *AlertServiceTestSuite) TestSweepReleasesLock() {
	locker := &stubLocker{acquired: true}

	_, err := suite.alertService(locker).SweepCompany(suite.ctx, suite.companyID)
	suite.Require().NoError(err)
	suite.Equal([]string{"alert-sweep:" + suite.companyID}, locker.unlocked)
	suite.Equal([]string{stubLockToken}, locker.tokens)
}

func (suite *AlertServiceTestSuite) TestCustomAlertTransitions() {
	alert, err := suite.alerts.CreateCustomAlert(suite.ctx, suite.companyID, dto.CreateAlertRequest{
		Title:   "Renew insurance",
		Message: "Policy expires next month",
	}, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.SeverityMedium, alert.Severity)
	suite.NotNil(alert.RelatedData)

	acked, err := suite.alerts.TransitionAlert(suite.ctx, suite.companyID, alert.AlertID, domain.AlertAcknowledged, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.AlertAcknowledged, acked.Status)
	suite.Require().NotNil(acked.AcknowledgedBy)
	suite.Equal(suite.userID, *acked.AcknowledgedBy)

	_, err = suite.alerts.TransitionAlert(suite.ctx, suite.companyID, alert.AlertID, domain.AlertAcknowledged, suite.userID)
	suite.True(errors.Is(err, apperrors.ErrValidation))

	resolved, err := suite.alerts.TransitionAlert(suite.ctx, suite.companyID, alert.AlertID, domain.AlertResolved, suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.AlertResolved, resolved.Status)

	_, err = suite.alerts.TransitionAlert(suite.ctx, suite.companyID, alert.AlertID, domain.AlertDismissed, suite.userID)
	suite.True(errors.Is(err, apperrors.ErrValidation))

	_, err = suite.alerts.TransitionAlert(suite.ctx, uuid.NewString(), alert.AlertID, domain.AlertDismissed, suite.userID)
	suite.True(errors.Is(err, apperrors.ErrNotFound))
}

func (suite *AlertServiceTestSuite) TestListAlerts() {
	_, err := suite.alerts.CreateCustomAlert(suite.ctx, suite.companyID, dto.CreateAlertRequest{Title: "a", Message: "m", Severity: domain.SeverityLow}, suite.userID)
	suite.Require().NoError(err)
	suite.newAccount("Petty cash", "100")
	suite.sweep()

	all, err := suite.alerts.ListAlerts(suite.ctx, suite.companyID, dto.ListAlertsParams{}, suite.userID)
	suite.Require().NoError(err)
	suite.Len(all, 2)

	lowBalance := domain.AlertLowBalance
	filtered, err := suite.alerts.ListAlerts(suite.ctx, suite.companyID, dto.ListAlertsParams{AlertType: &lowBalance}, suite.userID)
	suite.Require().NoError(err)
	suite.Len(filtered, 1)

	bogus := domain.AlertType("meteor_strike")
	_, err = suite.alerts.ListAlerts(suite.ctx, suite.companyID, dto.ListAlertsParams{AlertType: &bogus}, suite.userID)
	suite.True(errors.Is(err, apperrors.ErrValidation))

	none, err := suite.alerts.ListAlerts(suite.ctx, uuid.NewString(), dto.ListAlertsParams{}, suite.userID)
	suite.Require().NoError(err)
	suite.NotNil(none)
	suite.Empty(none)
}
