package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type categoryHandler struct {
	categoryService portssvc.CategorySvcFacade
}

func registerCategoryRoutes(company *gin.RouterGroup, categoryService portssvc.CategorySvcFacade) {
	h := &categoryHandler{categoryService: categoryService}

	categories := company.Group("/categories")
	{
		categories.POST("", h.createCategory)
		categories.GET("", h.listCategories)
		categories.GET("/:category_id", h.getCategory)
		categories.PATCH("/:category_id", h.updateCategory)
		categories.DELETE("/:category_id", h.deleteCategory)
	}
}

// createCategory godoc
// @Summary Create a category
// @Description Categories nest one level deep.
// @Tags categories
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   category body dto.CreateCategoryRequest true "Category details"
// @Success 201 {object} domain.Category
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Parent not found"
// @Failure 409 {object} ErrorResponse "Name already used"
// @Security BearerAuth
// @Router /companies/{company_id}/categories [post]
func (h *categoryHandler) createCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCategoryRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), c.Param("company_id"), req, userID)
	if err != nil {
		respondError(c, logger, err, "create category")
		return
	}

	logger.Info("Category created successfully", slog.String("category_id", category.CategoryID))
	c.JSON(http.StatusCreated, category)
}

// listCategories godoc
// @Summary List categories
// @Description A type filter also returns categories of type both.
// @Tags categories
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   type query string false "income, expense or both"
// @Param   activeOnly query bool false "Only active categories"
// @Success 200 {object} dto.ListCategoriesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/categories [get]
func (h *categoryHandler) listCategories(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListCategoriesParams
	if !bindQuery(c, logger, &params) {
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	categories, err := h.categoryService.ListCategories(c.Request.Context(), c.Param("company_id"), params, userID)
	if err != nil {
		respondError(c, logger, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, dto.ListCategoriesResponse{Categories: categories})
}

// getCategory godoc
// @Summary Get a category
// @Tags categories
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   category_id path string true "Category ID"
// @Success 200 {object} domain.Category
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/categories/{category_id} [get]
func (h *categoryHandler) getCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategoryByID(c.Request.Context(), c.Param("company_id"), c.Param("category_id"), userID)
	if err != nil {
		respondError(c, logger, err, "retrieve category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// updateCategory godoc
// @Summary Update a category
// @Description An empty parentID detaches the category from its parent.
// @Tags categories
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   category_id path string true "Category ID"
// @Param   category body dto.UpdateCategoryRequest true "Fields to update"
// @Success 200 {object} domain.Category
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/categories/{category_id} [patch]
func (h *categoryHandler) updateCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateCategoryRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), c.Param("company_id"), c.Param("category_id"), req, userID)
	if err != nil {
		respondError(c, logger, err, "update category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// deleteCategory godoc
// @Summary Delete a category
// @Description Transactions in the category become uncategorised.
// @Tags categories
// @Param   company_id path string true "Company ID"
// @Param   category_id path string true "Category ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/categories/{category_id} [delete]
func (h *categoryHandler) deleteCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	categoryID := c.Param("category_id")

	if err := h.categoryService.DeleteCategory(c.Request.Context(), c.Param("company_id"), categoryID, userID); err != nil {
		respondError(c, logger, err, "delete category")
		return
	}

	logger.Info("Category deleted", slog.String("category_id", categoryID))
	c.Status(http.StatusNoContent)
}
