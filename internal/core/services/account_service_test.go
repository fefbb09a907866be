package services_test

import (
	"errors"
	"testing"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	ledgerFixture
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.setup(ledgerNow)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (suite *AccountServiceTestSuite) TestInitialBalanceMustFitCents() {
	_, err := suite.accounts.CreateAccount(suite.ctx, suite.companyID, dto.CreateAccountRequest{
		Name:           "Till",
		AccountType:    domain.AccountCash,
		InitialBalance: dec("100.005"),
	}, suite.userID)
	suite.True(errors.Is(err, apperrors.ErrValidation), "got %v", err)
	suite.Empty(suite.store.accounts)

	accountID := suite.newAccount("Operating", "-250.50")
	_, err = suite.accounts.UpdateAccount(suite.ctx, suite.companyID, accountID, dto.UpdateAccountRequest{
		InitialBalance: ptr(dec("0.001")),
	}, suite.userID)
	suite.True(errors.Is(err, apperrors.ErrValidation), "got %v", err)
	suite.True(dec("-250.50").Equal(suite.store.accounts[accountID].InitialBalance))
}
