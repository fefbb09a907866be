package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type budgetHandler struct {
	budgetService portssvc.BudgetSvcFacade
}

func registerBudgetRoutes(company *gin.RouterGroup, budgetService portssvc.BudgetSvcFacade) {
	h := &budgetHandler{budgetService: budgetService}

	budgets := company.Group("/budgets")
	{
		budgets.POST("", h.createBudget)
		budgets.GET("", h.listBudgets)
		budgets.GET("/:budget_id", h.getBudget)
		budgets.PATCH("/:budget_id", h.updateBudget)
		budgets.DELETE("/:budget_id", h.deleteBudget)
	}
}

// createBudget godoc
// @Summary Create a budget
// @Description Spend is derived from completed expenses in the budget window on every read.
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   budget body dto.CreateBudgetRequest true "Budget details"
// @Success 201 {object} domain.BudgetUsage
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Category not found"
// @Security BearerAuth
// @Router /companies/{company_id}/budgets [post]
func (h *budgetHandler) createBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBudgetRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	usage, err := h.budgetService.CreateBudget(c.Request.Context(), c.Param("company_id"), req, userID)
	if err != nil {
		respondError(c, logger, err, "create budget")
		return
	}

	logger.Info("Budget created", slog.String("budget_id", usage.BudgetID))
	c.JSON(http.StatusCreated, usage)
}

// listBudgets godoc
// @Summary List budgets
// @Tags budgets
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   activeOnly query bool false "Only active budgets"
// @Success 200 {object} dto.ListBudgetsResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/budgets [get]
func (h *budgetHandler) listBudgets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params activeParams
	if !bindQuery(c, logger, &params) {
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	budgets, err := h.budgetService.ListBudgets(c.Request.Context(), c.Param("company_id"), userID, params.ActiveOnly)
	if err != nil {
		respondError(c, logger, err, "list budgets")
		return
	}
	c.JSON(http.StatusOK, dto.ListBudgetsResponse{Budgets: budgets})
}

// getBudget godoc
// @Summary Get a budget
// @Tags budgets
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   budget_id path string true "Budget ID"
// @Success 200 {object} domain.BudgetUsage
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/budgets/{budget_id} [get]
func (h *budgetHandler) getBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	usage, err := h.budgetService.GetBudgetByID(c.Request.Context(), c.Param("company_id"), c.Param("budget_id"), userID)
	if err != nil {
		respondError(c, logger, err, "retrieve budget")
		return
	}
	c.JSON(http.StatusOK, usage)
}

// updateBudget godoc
// @Summary Update a budget
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   budget_id path string true "Budget ID"
// @Param   budget body dto.UpdateBudgetRequest true "Fields to update"
// @Success 200 {object} domain.BudgetUsage
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/budgets/{budget_id} [patch]
func (h *budgetHandler) updateBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateBudgetRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	usage, err := h.budgetService.UpdateBudget(c.Request.Context(), c.Param("company_id"), c.Param("budget_id"), req, userID)
	if err != nil {
		respondError(c, logger, err, "update budget")
		return
	}
	c.JSON(http.StatusOK, usage)
}

// deleteBudget godoc
// @Summary Delete a budget
// @Tags budgets
// @Param   company_id path string true "Company ID"
// @Param   budget_id path string true "Budget ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/budgets/{budget_id} [delete]
func (h *budgetHandler) deleteBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	if err := h.budgetService.DeleteBudget(c.Request.Context(), c.Param("company_id"), c.Param("budget_id"), userID); err != nil {
		respondError(c, logger, err, "delete budget")
		return
	}
	c.Status(http.StatusNoContent)
}
