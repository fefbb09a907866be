package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/handlers"
	"github.com/SscSPs/bizledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, companyID string, accountID string, userID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, companyID string, userID string, activeOnly bool) ([]domain.Account, error) {
	args := m.Called(ctx, companyID, userID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, companyID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeleteAccount(ctx context.Context, companyID string, accountID string, userID string) error {
	args := m.Called(ctx, companyID, accountID, userID)
	return args.Error(0)
}
func (m *MockAccountService) RecomputeAccountBalance(ctx context.Context, companyID string, accountID string, userID string) (*domain.BalanceChange, error) {
	args := m.Called(ctx, companyID, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceChange), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetTransactionByID(ctx context.Context, companyID string, transactionID string, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, companyID, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) ListTransactions(ctx context.Context, companyID string, params dto.ListTransactionsParams, userID string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, companyID, params, userID)
	var next *string
	if v := args.Get(1); v != nil {
		next = v.(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), next, args.Error(2)
}
func (m *MockLedgerService) CreateTransaction(ctx context.Context, companyID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, companyID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) UpdateTransaction(ctx context.Context, companyID string, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, companyID, transactionID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) SetTransactionStatus(ctx context.Context, companyID string, transactionID string, status domain.TransactionStatus, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, companyID, transactionID, status, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) BulkSetTransactionStatus(ctx context.Context, companyID string, req dto.BulkStatusRequest, userID string) (int, error) {
	args := m.Called(ctx, companyID, req, userID)
	return args.Int(0), args.Error(1)
}
func (m *MockLedgerService) DeleteTransaction(ctx context.Context, companyID string, transactionID string, userID string) error {
	args := m.Called(ctx, companyID, transactionID, userID)
	return args.Error(0)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockAccounts      *MockAccountService
	mockLedger        *MockLedgerService
	cfg               *config.Config
	companyID, userID string
}

// generateTestToken creates a signed JWT the way the token service does.
func generateTestToken(s suite.TestingSuite, cfg *config.Config, userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    cfg.JWTIssuer,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		s.T().Fatalf("Failed to sign test token: %v", err)
	}
	return signed
}

func testConfig() *config.Config {
	return &config.Config{
		IsProduction:       true,
		JWTSecret:          "test-secret-key-that-is-long-enough",
		JWTIssuer:          "bizledger-test",
		JWTExpiryDuration:  time.Hour,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.cfg = testConfig()
	suite.mockAccounts = new(MockAccountService)
	suite.mockLedger = new(MockLedgerService)
	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()

	router, err := handlers.NewRouter(suite.cfg, discardLogger(), &portssvc.ServiceContainer{
		Account: suite.mockAccounts,
		Ledger:  suite.mockLedger,
	}, handlers.Limiters{})
	suite.Require().NoError(err)
	suite.router = router
}

func (suite *AccountHandlerTestSuite) TearDownTest() {
	suite.mockAccounts.AssertExpectations(suite.T())
	suite.mockLedger.AssertExpectations(suite.T())
}

func TestAccountHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}

func (suite *AccountHandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, "/api/v1/companies/"+suite.companyID+path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+generateTestToken(suite, suite.cfg, suite.userID))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	req := dto.CreateAccountRequest{Name: "Operating", AccountType: domain.AccountChecking, InitialBalance: decimal.NewFromInt(1000)}
	created := &domain.Account{
		AccountID:      uuid.NewString(),
		CompanyID:      suite.companyID,
		Name:           "Operating",
		AccountType:    domain.AccountChecking,
		InitialBalance: decimal.NewFromInt(1000),
		CurrentBalance: decimal.NewFromInt(1000),
		IsActive:       true,
	}
	suite.mockAccounts.On("CreateAccount", mock.Anything, suite.companyID, mock.MatchedBy(func(r dto.CreateAccountRequest) bool {
		return r.Name == req.Name && r.InitialBalance.Equal(req.InitialBalance)
	}), suite.userID).Return(created, nil).Once()

	w := suite.do(http.MethodPost, "/accounts", req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(created.AccountID, resp.AccountID)
	suite.True(decimal.NewFromInt(1000).Equal(resp.CurrentBalance))
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_BindingError() {
	w := suite.do(http.MethodPost, "/accounts", map[string]any{"name": "Operating", "accountType": "crypto"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccounts.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_ErrorMapping() {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperrors.NewNotFoundError("account not found"), http.StatusNotFound},
		{"forbidden", apperrors.NewForbiddenError("insufficient role"), http.StatusForbidden},
		{"unexpected", assertErr("db down"), http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			accountID := uuid.NewString()
			suite.mockAccounts.On("GetAccountByID", mock.Anything, suite.companyID, accountID, suite.userID).Return(nil, tc.err).Once()

			w := suite.do(http.MethodGet, "/accounts/"+accountID, nil)
			suite.Equal(tc.status, w.Code)
			if tc.status == http.StatusInternalServerError {
				suite.NotContains(w.Body.String(), "db down")
			}
		})
	}
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_StillReferenced() {
	accountID := uuid.NewString()
	suite.mockAccounts.On("DeleteAccount", mock.Anything, suite.companyID, accountID, suite.userID).
		Return(apperrors.NewConflictError("account is referenced by transactions")).Once()

	w := suite.do(http.MethodDelete, "/accounts/"+accountID, nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "referenced by transactions")
}

func (suite *AccountHandlerTestSuite) TestRecomputeAccountBalance() {
	accountID := uuid.NewString()
	suite.mockAccounts.On("RecomputeAccountBalance", mock.Anything, suite.companyID, accountID, suite.userID).
		Return(&domain.BalanceChange{AccountID: accountID, OldBalance: decimal.NewFromInt(1), NewBalance: decimal.NewFromInt(1500)}, nil).Once()

	w := suite.do(http.MethodPost, "/accounts/"+accountID+"/recompute", nil)

	suite.Equal(http.StatusOK, w.Code)
	var change domain.BalanceChange
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &change))
	suite.True(decimal.NewFromInt(1500).Equal(change.NewBalance))
}

func (suite *AccountHandlerTestSuite) TestCreateTransaction_RejectsInvalidAmount() {
	for _, amount := range []string{"0", "-10", "10.005", "0.004"} {
		w := suite.do(http.MethodPost, "/transactions", map[string]any{
			"description":     "Sale",
			"amount":          amount,
			"transactionType": "income",
			"accountID":       uuid.NewString(),
		})
		suite.Equal(http.StatusBadRequest, w.Code, amount)
	}
	suite.mockLedger.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestCreateTransaction_Success() {
	accountID := uuid.NewString()
	suite.mockLedger.On("CreateTransaction", mock.Anything, suite.companyID, mock.MatchedBy(func(r dto.CreateTransactionRequest) bool {
		return r.Amount.Equal(decimal.RequireFromString("150.50")) && r.AccountID == accountID
	}), suite.userID).Return(&domain.Transaction{
		TransactionID:   uuid.NewString(),
		CompanyID:       suite.companyID,
		Description:     "Sale",
		Amount:          decimal.RequireFromString("150.50"),
		TransactionType: domain.TransactionIncome,
		Status:          domain.StatusCompleted,
		AccountID:       accountID,
	}, nil).Once()

	w := suite.do(http.MethodPost, "/transactions", map[string]any{
		"description":     "Sale",
		"amount":          "150.50",
		"transactionType": "income",
		"status":          "completed",
		"accountID":       accountID,
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.StatusCompleted, resp.Status)
}

func (suite *AccountHandlerTestSuite) TestCreateTransaction_ConsistencyFailureIsHidden() {
	suite.mockLedger.On("CreateTransaction", mock.Anything, suite.companyID, mock.Anything, suite.userID).
		Return(nil, apperrors.NewConsistencyError("failed to recompute balances", assertErr("deadlock detected"))).Once()

	w := suite.do(http.MethodPost, "/transactions", map[string]any{
		"description":     "Rent",
		"amount":          "200",
		"transactionType": "expense",
		"accountID":       uuid.NewString(),
	})

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.NotContains(w.Body.String(), "deadlock")
}

func (suite *AccountHandlerTestSuite) TestListTransactions_Pagination() {
	next := "opaque-token"
	suite.mockLedger.On("ListTransactions", mock.Anything, suite.companyID, mock.MatchedBy(func(p dto.ListTransactionsParams) bool {
		return p.Limit == 2 && p.NextToken != nil && *p.NextToken == "previous" && p.Status != nil && *p.Status == domain.StatusPending
	}), suite.userID).Return([]domain.Transaction{{TransactionID: "t1"}, {TransactionID: "t2"}}, &next, nil).Once()

	w := suite.do(http.MethodGet, "/transactions?limit=2&nextToken=previous&status=pending", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListTransactionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Transactions, 2)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(next, *resp.NextToken)
}

func (suite *AccountHandlerTestSuite) TestBulkStatus() {
	ids := []string{uuid.NewString(), uuid.NewString()}
	suite.mockLedger.On("BulkSetTransactionStatus", mock.Anything, suite.companyID, dto.BulkStatusRequest{TransactionIDs: ids, Status: domain.StatusCompleted}, suite.userID).
		Return(2, nil).Once()

	w := suite.do(http.MethodPost, "/transactions/bulk-status", map[string]any{"transactionIDs": ids, "status": "completed"})

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"updated":2}`, w.Body.String())
}

func (suite *AccountHandlerTestSuite) TestSetStatus_InvalidValue() {
	w := suite.do(http.MethodPatch, "/transactions/"+uuid.NewString()+"/status", map[string]any{"status": "archived"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AccountHandlerTestSuite) TestRequiresBearerToken() {
	req, err := http.NewRequest(http.MethodGet, "/api/v1/companies/"+suite.companyID+"/accounts", strings.NewReader(""))
	suite.Require().NoError(err)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)

	other := *suite.cfg
	other.JWTIssuer = "someone-else"
	req.Header.Set("Authorization", "Bearer "+generateTestToken(suite, &other, suite.userID))
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *AccountHandlerTestSuite) TestHealth() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}
