package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type insightHandler struct {
	insightService portssvc.InsightSvc
}

func registerInsightRoutes(company *gin.RouterGroup, insightService portssvc.InsightSvc) {
	h := &insightHandler{insightService: insightService}
	company.GET("/insights", h.getInsights)
}

// getInsights godoc
// @Summary Financial insights
// @Description Health score, 30 day category trends and a 30 day cash forecast.
// @Tags insights
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {object} domain.Insights
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/insights [get]
func (h *insightHandler) getInsights(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	insights, err := h.insightService.GetInsights(c.Request.Context(), c.Param("company_id"), userID)
	if err != nil {
		respondError(c, logger, err, "compute insights")
		return
	}
	c.JSON(http.StatusOK, insights)
}

type maintenanceHandler struct {
	maintenanceService portssvc.MaintenanceSvc
}

// registerMaintenanceRoutes exposes the admin-only recompute jobs.
func registerMaintenanceRoutes(company *gin.RouterGroup, maintenanceService portssvc.MaintenanceSvc) {
	h := &maintenanceHandler{maintenanceService: maintenanceService}

	maintenance := company.Group("/maintenance")
	{
		maintenance.POST("/recompute-balances", h.recomputeBalances)
		maintenance.POST("/recompute-goals", h.recomputeGoals)
	}
}

// recomputeBalances godoc
// @Summary Recompute every account balance
// @Description Rebuilds all cached balances of the company, inactive accounts included. Reports only the accounts that changed.
// @Tags maintenance
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {object} domain.BalanceRecomputeReport
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/maintenance/recompute-balances [post]
func (h *maintenanceHandler) recomputeBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	report, err := h.maintenanceService.RecomputeBalances(c.Request.Context(), c.Param("company_id"), userID)
	if err != nil {
		respondError(c, logger, err, "recompute balances")
		return
	}

	logger.Info("Balances recomputed", slog.Int("checked", report.Checked), slog.Int("changed", len(report.Changes)))
	c.JSON(http.StatusOK, report)
}

// recomputeGoals godoc
// @Summary Recompute every goal
// @Description Rebuilds the progress of all active goals. Reports only the goals that changed.
// @Tags maintenance
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {object} domain.GoalRecomputeReport
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/maintenance/recompute-goals [post]
func (h *maintenanceHandler) recomputeGoals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	report, err := h.maintenanceService.RecomputeGoals(c.Request.Context(), c.Param("company_id"), userID)
	if err != nil {
		respondError(c, logger, err, "recompute goals")
		return
	}

	logger.Info("Goals recomputed", slog.Int("checked", report.Checked), slog.Int("changed", len(report.Changes)))
	c.JSON(http.StatusOK, report)
}
