package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/SscSPs/bizledger/internal/platform/telemetry"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BaseService provides common functionality for all services
type BaseService struct {
	CompanyAuthorizer portssvc.CompanyAuthorizerSvc
	Clock             func() time.Time
}

// ServiceOption is a functional option shared by the company scoped services.
type ServiceOption func(*BaseService)

// WithCompanyAuthorizer sets the membership check used by AuthorizeUser.
func WithCompanyAuthorizer(authorizer portssvc.CompanyAuthorizerSvc) ServiceOption {
	return func(s *BaseService) {
		s.CompanyAuthorizer = authorizer
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.Clock = clock
	}
}

func (s *BaseService) apply(options []ServiceOption) {
	for _, opt := range options {
		opt(s)
	}
}

// Now returns the current time in UTC.
func (s *BaseService) Now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// Today returns the current calendar day.
func (s *BaseService) Today() time.Time {
	return domain.DateOnly(s.Now())
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.ErrorContext(ctx, msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).InfoContext(ctx, msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).DebugContext(ctx, msg, keyvals...)
}

// AuthorizeUser checks if a user has the required role for a company.
// Without an authorizer every request is denied.
func (s *BaseService) AuthorizeUser(ctx context.Context, userID, companyID string, requiredRole domain.CompanyRole) error {
	if s.CompanyAuthorizer == nil {
		s.LogError(ctx, apperrors.ErrForbidden, "No company authorizer configured, denying access",
			slog.String("user_id", userID),
			slog.String("company_id", companyID),
			slog.String("required_role", string(requiredRole)))
		return apperrors.NewForbiddenError("company authorization unavailable")
	}
	return s.CompanyAuthorizer.AuthorizeUserAction(ctx, userID, companyID, requiredRole)
}

// StartSpan opens a service span tagged with the company.
func (s *BaseService) StartSpan(ctx context.Context, service, method, companyID string) (context.Context, trace.Span) {
	return telemetry.StartServiceSpan(ctx, service, method, attribute.String("company_id", companyID))
}

// runInTx runs fn inside a database transaction and commits when fn succeeds.
// Any error from fn rolls everything back.
func runInTx(ctx context.Context, txManager portsrepo.TransactionManager, fn func(tx pgx.Tx) error) error {
	tx, err := txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// no-op once committed
		_ = txManager.Rollback(context.WithoutCancel(ctx), tx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := txManager.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// notFoundIn hides entities of other companies behind a plain not found.
func notFoundIn(what, id string) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", what, id))
}

// logUnlessNotFound keeps expected misses out of the error log.
func (s *BaseService) logUnlessNotFound(ctx context.Context, err error, msg string, keyvals ...any) {
	if errors.Is(err, apperrors.ErrNotFound) {
		return
	}
	s.LogError(ctx, err, msg, keyvals...)
}
