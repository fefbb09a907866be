package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/platform/config"
	"github.com/SscSPs/bizledger/internal/platform/telemetry"
	"github.com/google/uuid"
)

// SystemActor is recorded as the creator of alerts raised by the sweep.
const SystemActor = "system"

const sweepLockPrefix = "alert-sweep:"

type alertService struct {
	BaseService
	thresholds  config.AlertRules
	locker      portsrepo.DistributedLocker
	alertRepo   portsrepo.AlertRepositoryFacade
	accountRepo portsrepo.AccountReader
	goalRepo    portsrepo.GoalReader
	budgetRepo  portsrepo.BudgetRepositoryFacade
	txnRepo     portsrepo.TransactionRepositoryFacade
}

// NewAlertService wires the alert engine. locker serialises sweeps of the same company.
func NewAlertService(repos portsrepo.RepositoryProvider, thresholds config.AlertRules, locker portsrepo.DistributedLocker, options ...ServiceOption) portssvc.AlertSvcFacade {
	svc := &alertService{
		thresholds:  thresholds,
		locker:      locker,
		alertRepo:   repos.AlertRepo,
		accountRepo: repos.AccountRepo,
		goalRepo:    repos.GoalRepo,
		budgetRepo:  repos.BudgetRepo,
		txnRepo:     repos.TransactionRepo,
	}
	svc.apply(options)
	return svc
}

var _ portssvc.AlertSvcFacade = (*alertService)(nil)

// RunAlertSweep is the user-triggered sweep, e.g. on dashboard load.
func (s *alertService) RunAlertSweep(ctx context.Context, companyID string, userID string) ([]domain.Alert, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	return s.SweepCompany(ctx, companyID)
}

// SweepCompany prunes old alerts, resolves the ones that no longer apply and evaluates every
// rule. A sweep already running for the company elsewhere makes this a no-op.
func (s *alertService) SweepCompany(ctx context.Context, companyID string) ([]domain.Alert, error) {
	ctx, span := s.StartSpan(ctx, "AlertService", "SweepCompany", companyID)
	defer span.End()

	lockKey := sweepLockPrefix + companyID
	token, acquired, err := s.locker.TryLock(ctx, lockKey, s.thresholds.SweepLockTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		s.LogError(ctx, err, "Failed to acquire alert sweep lock", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to acquire alert sweep lock: %w", err)
	}
	if !acquired {
		s.LogDebug(ctx, "Alert sweep already running", slog.String("company_id", companyID))
		return []domain.Alert{}, nil
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), lockKey, token); err != nil {
			s.LogError(ctx, err, "Failed to release alert sweep lock", slog.String("company_id", companyID))
		}
	}()

	now := s.Now()
	run := sweepRun{companyID: companyID, now: now, today: s.Today()}

	pruned, err := s.alertRepo.DeleteAlertsTriggeredBefore(ctx, companyID, now.Add(-s.thresholds.Retention))
	if err != nil {
		telemetry.RecordError(span, err)
		s.LogError(ctx, err, "Failed to prune old alerts", slog.String("company_id", companyID))
		return nil, err
	}

	resolved := s.autoResolve(ctx, run)

	created := []domain.Alert{}
	for _, rule := range s.rules() {
		candidates, err := s.evaluate(ctx, rule, run)
		if err != nil {
			s.LogError(ctx, err, "Alert rule failed",
				slog.String("rule", rule.name),
				slog.String("company_id", companyID))
			continue
		}
		for _, c := range candidates {
			alert, raised, err := s.raise(ctx, c)
			if err != nil {
				s.LogError(ctx, err, "Failed to raise alert",
					slog.String("rule", rule.name),
					slog.String("company_id", companyID))
				continue
			}
			if raised {
				created = append(created, alert)
			}
		}
	}

	s.LogInfo(ctx, "Alert sweep finished",
		slog.String("company_id", companyID),
		slog.Int64("pruned", pruned),
		slog.Int("resolved", resolved),
		slog.Int("created", len(created)))
	return created, nil
}

// evaluate runs one rule and turns a panic into an error so the other rules still run.
func (s *alertService) evaluate(ctx context.Context, rule alertRule, run sweepRun) (candidates []alertCandidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("alert rule %s panicked: %v", rule.name, r)
		}
	}()
	return rule.eval(ctx, run)
}

// raise stores the candidate unless an open alert for the same subject is still cooling down.
func (s *alertService) raise(ctx context.Context, c alertCandidate) (domain.Alert, bool, error) {
	since := c.alert.TriggeredAt.Add(-c.cooldown)
	exists, err := s.alertRepo.ExistsOpenAlert(ctx, c.alert.CompanyID, c.alert.AlertType, c.subjectKey, c.subjectID, since)
	if err != nil {
		return domain.Alert{}, false, err
	}
	if exists {
		return domain.Alert{}, false, nil
	}

	alert := c.alert
	alert.AlertID = uuid.NewString()
	if err := s.alertRepo.SaveAlert(ctx, alert); err != nil {
		return domain.Alert{}, false, err
	}
	return alert, true, nil
}

// autoResolve resolves open alerts whose condition cleared. Failures are logged per alert.
func (s *alertService) autoResolve(ctx context.Context, run sweepRun) int {
	open, err := s.alertRepo.ListOpenAlerts(ctx, run.companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list open alerts", slog.String("company_id", run.companyID))
		return 0
	}

	resolved := 0
	for _, alert := range open {
		ok, err := s.shouldResolve(ctx, run, alert)
		if err != nil {
			s.LogError(ctx, err, "Failed to evaluate alert for auto-resolve", slog.String("alert_id", alert.AlertID))
			continue
		}
		if !ok {
			continue
		}
		if err := alert.Transition(domain.AlertResolved, SystemActor, run.now); err != nil {
			continue
		}
		if err := s.alertRepo.UpdateAlertStatus(ctx, alert); err != nil {
			s.LogError(ctx, err, "Failed to auto-resolve alert", slog.String("alert_id", alert.AlertID))
			continue
		}
		resolved++
	}
	return resolved
}

func (s *alertService) ListAlerts(ctx context.Context, companyID string, params dto.ListAlertsParams, userID string) ([]domain.Alert, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	if params.AlertType != nil && !params.AlertType.IsValid() {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("invalid alert type %q", *params.AlertType))
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	filter := portsrepo.AlertFilter{
		Status:    params.Status,
		AlertType: params.AlertType,
		Severity:  params.Severity,
	}
	alerts, err := s.alertRepo.ListAlerts(ctx, companyID, filter, limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list alerts", slog.String("company_id", companyID))
		return nil, err
	}
	if alerts == nil {
		return []domain.Alert{}, nil
	}
	return alerts, nil
}

func (s *alertService) findInCompany(ctx context.Context, companyID, alertID string) (*domain.Alert, error) {
	alert, err := s.alertRepo.FindAlertByID(ctx, alertID)
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to find alert by ID", slog.String("alert_id", alertID))
		return nil, err
	}
	if alert.CompanyID != companyID {
		return nil, notFoundIn("alert", alertID)
	}
	return alert, nil
}

func (s *alertService) GetAlertByID(ctx context.Context, companyID string, alertID string, userID string) (*domain.Alert, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	return s.findInCompany(ctx, companyID, alertID)
}

func (s *alertService) CreateCustomAlert(ctx context.Context, companyID string, req dto.CreateAlertRequest, userID string) (*domain.Alert, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationFailedError("alert title is required")
	}
	severity := req.Severity
	if severity == "" {
		severity = domain.SeverityMedium
	}
	if !severity.IsValid() {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("invalid severity %q", severity))
	}
	related := req.RelatedData
	if related == nil {
		related = map[string]any{}
	}

	alert := domain.Alert{
		AlertID:     uuid.NewString(),
		CompanyID:   companyID,
		AlertType:   domain.AlertCustom,
		Severity:    severity,
		Status:      domain.AlertActive,
		Title:       title,
		Message:     req.Message,
		RelatedData: related,
		TriggeredAt: s.Now(),
		CreatedBy:   userID,
	}
	if err := s.alertRepo.SaveAlert(ctx, alert); err != nil {
		s.LogError(ctx, err, "Failed to save custom alert", slog.String("company_id", companyID))
		return nil, err
	}
	s.LogInfo(ctx, "Custom alert created",
		slog.String("alert_id", alert.AlertID),
		slog.String("company_id", companyID))
	return &alert, nil
}

// TransitionAlert applies a user action. Moves the status graph does not allow are validation errors.
func (s *alertService) TransitionAlert(ctx context.Context, companyID string, alertID string, next domain.AlertStatus, userID string) (*domain.Alert, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleUser); err != nil {
		return nil, err
	}
	alert, err := s.findInCompany(ctx, companyID, alertID)
	if err != nil {
		return nil, err
	}

	if err := alert.Transition(next, userID, s.Now()); err != nil {
		if errors.Is(err, domain.ErrInvalidAlertTransition) {
			return nil, apperrors.NewValidationFailedError(
				fmt.Sprintf("cannot move alert from %s to %s", alert.Status, next))
		}
		return nil, err
	}
	if err := s.alertRepo.UpdateAlertStatus(ctx, *alert); err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to update alert status", slog.String("alert_id", alertID))
		return nil, err
	}

	s.LogInfo(ctx, "Alert status changed",
		slog.String("alert_id", alertID),
		slog.String("status", string(next)))
	return alert, nil
}
