package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type alertHandler struct {
	alertService portssvc.AlertSvcFacade
}

func registerAlertRoutes(company *gin.RouterGroup, alertService portssvc.AlertSvcFacade) {
	h := &alertHandler{alertService: alertService}

	alerts := company.Group("/alerts")
	{
		alerts.GET("", h.listAlerts)
		alerts.POST("", h.createAlert)
		alerts.POST("/sweep", h.sweep)
		alerts.GET("/:alert_id", h.getAlert)
		alerts.POST("/:alert_id/acknowledge", h.transition(domain.AlertAcknowledged))
		alerts.POST("/:alert_id/resolve", h.transition(domain.AlertResolved))
		alerts.POST("/:alert_id/dismiss", h.transition(domain.AlertDismissed))
	}
}

// listAlerts godoc
// @Summary List alerts
// @Description Lists alerts newest first.
// @Tags alerts
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   status query string false "active, acknowledged, resolved or dismissed"
// @Param   type query string false "Alert type"
// @Param   severity query string false "low, medium, high or critical"
// @Param   limit query int false "Page size" default(50)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListAlertsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/alerts [get]
func (h *alertHandler) listAlerts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAlertsParams
	if !bindQuery(c, logger, &params) {
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	alerts, err := h.alertService.ListAlerts(c.Request.Context(), c.Param("company_id"), params, userID)
	if err != nil {
		respondError(c, logger, err, "list alerts")
		return
	}
	c.JSON(http.StatusOK, dto.ListAlertsResponse{Alerts: alerts})
}

// getAlert godoc
// @Summary Get an alert
// @Tags alerts
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   alert_id path string true "Alert ID"
// @Success 200 {object} domain.Alert
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/alerts/{alert_id} [get]
func (h *alertHandler) getAlert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	alert, err := h.alertService.GetAlertByID(c.Request.Context(), c.Param("company_id"), c.Param("alert_id"), userID)
	if err != nil {
		respondError(c, logger, err, "retrieve alert")
		return
	}
	c.JSON(http.StatusOK, alert)
}

// createAlert godoc
// @Summary Raise a custom alert
// @Tags alerts
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   alert body dto.CreateAlertRequest true "Alert details"
// @Success 201 {object} domain.Alert
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/alerts [post]
func (h *alertHandler) createAlert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAlertRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	alert, err := h.alertService.CreateCustomAlert(c.Request.Context(), c.Param("company_id"), req, userID)
	if err != nil {
		respondError(c, logger, err, "create alert")
		return
	}

	logger.Info("Custom alert created", slog.String("alert_id", alert.AlertID))
	c.JSON(http.StatusCreated, alert)
}

// transition builds the acknowledge, resolve and dismiss handlers.
//
// @Summary Move an alert to another status
// @Description Only active or acknowledged alerts can move; resolved and dismissed are final.
// @Tags alerts
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   alert_id path string true "Alert ID"
// @Success 200 {object} domain.Alert
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Invalid transition"
// @Security BearerAuth
// @Router /companies/{company_id}/alerts/{alert_id}/acknowledge [post]
// @Router /companies/{company_id}/alerts/{alert_id}/resolve [post]
// @Router /companies/{company_id}/alerts/{alert_id}/dismiss [post]
func (h *alertHandler) transition(next domain.AlertStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		userID, ok := requireUser(c, logger)
		if !ok {
			return
		}
		alertID := c.Param("alert_id")

		alert, err := h.alertService.TransitionAlert(c.Request.Context(), c.Param("company_id"), alertID, next, userID)
		if err != nil {
			respondError(c, logger, err, "update alert")
			return
		}

		logger.Info("Alert status changed", slog.String("alert_id", alertID), slog.String("status", string(next)))
		c.JSON(http.StatusOK, alert)
	}
}

// sweep godoc
// @Summary Run the alert rules now
// @Description Prunes old alerts, auto-resolves stale ones and evaluates every rule. Returns the alerts created; empty when a sweep is already running.
// @Tags alerts
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {object} dto.SweepResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/alerts/sweep [post]
func (h *alertHandler) sweep(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	created, err := h.alertService.RunAlertSweep(c.Request.Context(), c.Param("company_id"), userID)
	if err != nil {
		respondError(c, logger, err, "run alert sweep")
		return
	}

	logger.Info("Alert sweep finished", slog.Int("created", len(created)))
	c.JSON(http.StatusOK, dto.SweepResponse{Created: created})
}
