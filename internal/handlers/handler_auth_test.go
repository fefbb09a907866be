package handlers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
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
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func assertErr(msg string) error {
	return errors.New(msg)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

var _ portssvc.TokenSvcFacade = (*MockTokenService)(nil)

func newAuthRouter(t *testing.T, users *MockUserService, tokens *MockTokenService, limiters handlers.Limiters) http.Handler {
	t.Helper()
	router, err := handlers.NewRouter(testConfig(), discardLogger(), &portssvc.ServiceContainer{User: users, Token: tokens}, limiters)
	require.NoError(t, err)
	return router
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	users := new(MockUserService)
	tokens := new(MockTokenService)
	router := newAuthRouter(t, users, tokens, handlers.Limiters{})

	user := &domain.User{UserID: "user-1", Email: "ana@example.com"}
	expires := time.Date(2024, time.March, 10, 13, 0, 0, 0, time.UTC)
	users.On("Authenticate", mock.Anything, "ana@example.com", "s3cret-pass").Return(user, nil).Once()
	users.On("Authenticate", mock.Anything, "ana@example.com", "wrong").
		Return(nil, apperrors.NewAppError(http.StatusUnauthorized, "invalid email or password", apperrors.ErrUnauthorized)).Once()
	tokens.On("GenerateAccessToken", mock.Anything, user).Return("signed-token", expires, nil).Once()

	t.Run("success", func(t *testing.T) {
		w := post(router, "/api/v1/auth/login", `{"email":"ana@example.com","password":"s3cret-pass"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"token":"signed-token","expiresAt":"2024-03-10T13:00:00Z"}`, w.Body.String())
	})

	t.Run("wrong password", func(t *testing.T) {
		w := post(router, "/api/v1/auth/login", `{"email":"ana@example.com","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid email or password")
	})

	t.Run("malformed body", func(t *testing.T) {
		w := post(router, "/api/v1/auth/login", `{"email":"not-an-email"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestLogin_RateLimited(t *testing.T) {
	users := new(MockUserService)
	loginLimiter, err := middleware.NewLimiter("1-M", nil, "test-login")
	require.NoError(t, err)
	router := newAuthRouter(t, users, new(MockTokenService), handlers.Limiters{Login: loginLimiter})

	users.On("Authenticate", mock.Anything, "ana@example.com", "x").
		Return(nil, apperrors.NewAppError(http.StatusUnauthorized, "invalid email or password", apperrors.ErrUnauthorized)).Once()

	first := post(router, "/api/v1/auth/login", `{"email":"ana@example.com","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := post(router, "/api/v1/auth/login", `{"email":"ana@example.com","password":"x"}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	users.AssertExpectations(t)
}

func TestRegister(t *testing.T) {
	users := new(MockUserService)
	router := newAuthRouter(t, users, new(MockTokenService), handlers.Limiters{})

	req := dto.RegisterRequest{Email: "ana@example.com", Name: "Ana", Password: "correct horse"}
	users.On("Register", mock.Anything, req).Return(&domain.User{UserID: "user-1", Email: req.Email, Name: req.Name}, nil).Once()
	dup := dto.RegisterRequest{Email: "bob@example.com", Name: "Bob", Password: "correct horse"}
	users.On("Register", mock.Anything, dup).Return(nil, apperrors.NewAppError(http.StatusConflict, "email already registered", apperrors.ErrDuplicate)).Once()

	w := post(router, "/api/v1/auth/register", `{"email":"ana@example.com","name":"Ana","password":"correct horse"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":"user-1"`)
	assert.NotContains(t, w.Body.String(), "password")

	w = post(router, "/api/v1/auth/register", `{"email":"bob@example.com","name":"Bob","password":"correct horse"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = post(router, "/api/v1/auth/register", `{"email":"carol@example.com","name":"Carol","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	users.AssertExpectations(t)
}
