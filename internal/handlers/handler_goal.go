package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type goalHandler struct {
	goalService portssvc.GoalSvcFacade
	clock       func() time.Time
}

func registerGoalRoutes(company *gin.RouterGroup, goalService portssvc.GoalSvcFacade) {
	h := &goalHandler{goalService: goalService, clock: time.Now}

	goals := company.Group("/goals")
	{
		goals.POST("", h.createGoal)
		goals.GET("", h.listGoals)
		goals.GET("/:goal_id", h.getGoal)
		goals.PATCH("/:goal_id", h.updateGoal)
		goals.DELETE("/:goal_id", h.deleteGoal)
		goals.POST("/:goal_id/refresh", h.refreshGoal)
		goals.GET("/:goal_id/progress", h.goalProgress)
	}
}

func (h *goalHandler) today() time.Time {
	return domain.DateOnly(h.clock())
}

// createGoal godoc
// @Summary Create a goal
// @Description Progress is computed from the ledger before the goal is saved.
// @Tags goals
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   goal body dto.CreateGoalRequest true "Goal details"
// @Success 201 {object} dto.GoalResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Category not found"
// @Security BearerAuth
// @Router /companies/{company_id}/goals [post]
func (h *goalHandler) createGoal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateGoalRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	goal, err := h.goalService.CreateGoal(c.Request.Context(), c.Param("company_id"), req, userID)
	if err != nil {
		respondError(c, logger, err, "create goal")
		return
	}

	logger.Info("Goal created", slog.String("goal_id", goal.GoalID), slog.String("current_amount", goal.CurrentAmount.String()))
	c.JSON(http.StatusCreated, dto.ToGoalResponse(goal, h.today()))
}

// listGoals godoc
// @Summary List goals
// @Tags goals
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   activeOnly query bool false "Only active goals"
// @Success 200 {object} dto.ListGoalsResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/goals [get]
func (h *goalHandler) listGoals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params activeParams
	if !bindQuery(c, logger, &params) {
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	goals, err := h.goalService.ListGoals(c.Request.Context(), c.Param("company_id"), userID, params.ActiveOnly)
	if err != nil {
		respondError(c, logger, err, "list goals")
		return
	}
	c.JSON(http.StatusOK, dto.ToListGoalsResponse(goals, h.today()))
}

// getGoal godoc
// @Summary Get a goal
// @Tags goals
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   goal_id path string true "Goal ID"
// @Success 200 {object} dto.GoalResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/goals/{goal_id} [get]
func (h *goalHandler) getGoal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	goal, err := h.goalService.GetGoalByID(c.Request.Context(), c.Param("company_id"), c.Param("goal_id"), userID)
	if err != nil {
		respondError(c, logger, err, "retrieve goal")
		return
	}
	c.JSON(http.StatusOK, dto.ToGoalResponse(goal, h.today()))
}

// updateGoal godoc
// @Summary Update a goal
// @Description Changing the category, type, window or target recomputes progress. An empty categoryID unbinds the goal.
// @Tags goals
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   goal_id path string true "Goal ID"
// @Param   goal body dto.UpdateGoalRequest true "Fields to update"
// @Success 200 {object} dto.GoalResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/goals/{goal_id} [patch]
func (h *goalHandler) updateGoal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateGoalRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	goal, err := h.goalService.UpdateGoal(c.Request.Context(), c.Param("company_id"), c.Param("goal_id"), req, userID)
	if err != nil {
		respondError(c, logger, err, "update goal")
		return
	}
	c.JSON(http.StatusOK, dto.ToGoalResponse(goal, h.today()))
}

// deleteGoal godoc
// @Summary Delete a goal
// @Tags goals
// @Param   company_id path string true "Company ID"
// @Param   goal_id path string true "Goal ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/goals/{goal_id} [delete]
func (h *goalHandler) deleteGoal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	if err := h.goalService.DeleteGoal(c.Request.Context(), c.Param("company_id"), c.Param("goal_id"), userID); err != nil {
		respondError(c, logger, err, "delete goal")
		return
	}
	c.Status(http.StatusNoContent)
}

// refreshGoal godoc
// @Summary Refresh goal progress
// @Description Recomputes the goal's current amount from the ledger.
// @Tags goals
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   goal_id path string true "Goal ID"
// @Success 200 {object} dto.GoalResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/goals/{goal_id}/refresh [post]
func (h *goalHandler) refreshGoal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	goal, err := h.goalService.RefreshGoalProgress(c.Request.Context(), c.Param("company_id"), c.Param("goal_id"), userID)
	if err != nil {
		respondError(c, logger, err, "refresh goal progress")
		return
	}
	c.JSON(http.StatusOK, dto.ToGoalResponse(goal, h.today()))
}

// goalProgress godoc
// @Summary Goal progress for a period
// @Description Aggregates the goal's category between two days without changing the goal.
// @Tags goals
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   goal_id path string true "Goal ID"
// @Param   start query string true "First day (YYYY-MM-DD)"
// @Param   end query string true "Last day (YYYY-MM-DD)"
// @Success 200 {object} dto.GoalPeriodProgressResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/goals/{goal_id}/progress [get]
func (h *goalHandler) goalProgress(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.GoalProgressParams
	if !bindQuery(c, logger, &params) {
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	goalID := c.Param("goal_id")

	amount, err := h.goalService.GoalProgressForPeriod(c.Request.Context(), c.Param("company_id"), goalID, params.Start, params.End, userID)
	if err != nil {
		respondError(c, logger, err, "compute goal progress")
		return
	}
	c.JSON(http.StatusOK, dto.GoalPeriodProgressResponse{
		GoalID: goalID,
		Start:  params.Start,
		End:    params.End,
		Amount: amount,
	})
}
