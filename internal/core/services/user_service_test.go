package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/core/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/platform/config"
	"github.com/SscSPs/bizledger/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockUserRepository is a mock type for the UserRepositoryFacade interface
type MockUserRepository struct {
	MockUserReader
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type UserServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	userRepo *MockUserRepository
	service  portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.userRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.userRepo)
}

func (suite *UserServiceTestSuite) TearDownTest() {
	suite.userRepo.AssertExpectations(suite.T())
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (suite *UserServiceTestSuite) TestRegister_Success() {
	suite.userRepo.On("FindUserByEmail", suite.ctx, "ana@example.com").
		Return(nil, apperrors.NewNotFoundError("user not found")).Once()
	suite.userRepo.On("SaveUser", suite.ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == "ana@example.com" && u.PasswordHash != "" && u.PasswordHash != "correct horse"
	})).Return(nil).Once()

	user, err := suite.service.Register(suite.ctx, dto.RegisterRequest{
		Email:    "  Ana@Example.com ",
		Name:     "Ana",
		Password: "correct horse",
	})
	suite.Require().NoError(err)
	suite.Equal("ana@example.com", user.Email)
	suite.Equal(user.UserID, user.CreatedBy)
	suite.True(utils.CheckPasswordHash("correct horse", user.PasswordHash))
}

func (suite *UserServiceTestSuite) TestRegister_DuplicateEmail() {
	suite.userRepo.On("FindUserByEmail", suite.ctx, "ana@example.com").
		Return(&domain.User{UserID: "u1", Email: "ana@example.com"}, nil).Once()

	_, err := suite.service.Register(suite.ctx, dto.RegisterRequest{Email: "ana@example.com", Name: "Ana", Password: "password1"})
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *UserServiceTestSuite) TestRegister_PasswordTooLong() {
	suite.userRepo.On("FindUserByEmail", suite.ctx, "ana@example.com").
		Return(nil, apperrors.NewNotFoundError("user not found")).Once()

	_, err := suite.service.Register(suite.ctx, dto.RegisterRequest{
		Email:    "ana@example.com",
		Name:     "Ana",
		Password: strings.Repeat("p", 80),
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UserServiceTestSuite) TestAuthenticate() {
	hash, err := utils.HashPassword("s3cret-pass")
	suite.Require().NoError(err)
	stored := &domain.User{UserID: "u1", Email: "ana@example.com", PasswordHash: hash}
	suite.userRepo.On("FindUserByEmail", suite.ctx, "ana@example.com").Return(stored, nil)
	suite.userRepo.On("FindUserByEmail", suite.ctx, "nobody@example.com").
		Return(nil, apperrors.NewNotFoundError("user not found")).Once()

	user, err := suite.service.Authenticate(suite.ctx, "ANA@example.com", "s3cret-pass")
	suite.Require().NoError(err)
	suite.Equal("u1", user.UserID)

	_, err = suite.service.Authenticate(suite.ctx, "ana@example.com", "wrong")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)

	_, err = suite.service.Authenticate(suite.ctx, "nobody@example.com", "s3cret-pass")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *UserServiceTestSuite) TestAuthenticate_RepositoryError() {
	suite.userRepo.On("FindUserByEmail", suite.ctx, "ana@example.com").Return(nil, assert.AnError).Once()

	_, err := suite.service.Authenticate(suite.ctx, "ana@example.com", "x")
	suite.ErrorIs(err, assert.AnError)
}

func TestTokenService_GenerateAccessToken(t *testing.T) {
	issued := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiryDuration: time.Hour, JWTIssuer: "bizledger"}
	svc := services.NewTokenService(cfg, services.WithClock(func() time.Time { return issued }))

	signed, expiresAt, err := svc.GenerateAccessToken(context.Background(), &domain.User{UserID: "user-1"})
	assert.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), expiresAt)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithIssuer("bizledger"), jwt.WithTimeFunc(func() time.Time { return issued.Add(time.Minute) }))
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}
