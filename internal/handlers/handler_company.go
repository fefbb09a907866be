package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// companyHandler handles HTTP requests related to companies and their members.
type companyHandler struct {
	companyService portssvc.CompanySvcFacade
}

// registerCompanyRoutes registers the routes that are not scoped to one company.
func registerCompanyRoutes(rg *gin.RouterGroup, companyService portssvc.CompanySvcFacade) {
	h := &companyHandler{companyService: companyService}

	companies := rg.Group("/companies")
	{
		companies.POST("", h.createCompany)
		companies.GET("", h.listUserCompanies)
		companies.GET("/:company_id", h.getCompany)
	}
}

// registerMemberRoutes registers membership management under a company group.
func registerMemberRoutes(company *gin.RouterGroup, companyService portssvc.CompanySvcFacade) {
	h := &companyHandler{companyService: companyService}

	members := company.Group("/members")
	{
		members.POST("", h.addMember)
		members.GET("", h.listMembers)
		members.PUT("/:user_id", h.updateMemberRole)
		members.DELETE("/:user_id", h.removeMember)
	}
}

// createCompany godoc
// @Summary Create a new company
// @Description Creates a new company and makes the creator its owner.
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   company body dto.CreateCompanyRequest true "Company details"
// @Success 201 {object} dto.CompanyResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to create company"
// @Security BearerAuth
// @Router /companies [post]
func (h *companyHandler) createCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCompanyRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	creatorUserID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create company", slog.String("company_name", req.Name))

	company, err := h.companyService.CreateCompany(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondError(c, logger, err, "create company")
		return
	}

	logger.Info("Company created successfully", slog.String("company_id", company.CompanyID))
	c.JSON(http.StatusCreated, dto.ToCompanyResponse(company))
}

// listUserCompanies godoc
// @Summary List companies for current user
// @Description Retrieves the companies the authenticated user is an active member of.
// @Tags companies
// @Produce  json
// @Success 200 {object} dto.ListCompaniesResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to list companies"
// @Security BearerAuth
// @Router /companies [get]
func (h *companyHandler) listUserCompanies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	companies, err := h.companyService.ListUserCompanies(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "list companies")
		return
	}

	logger.Info("Companies listed successfully", slog.Int("count", len(companies)))
	c.JSON(http.StatusOK, dto.ToListCompaniesResponse(companies))
}

// getCompany godoc
// @Summary Get a company
// @Tags companies
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {object} dto.CompanyResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id} [get]
func (h *companyHandler) getCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	company, err := h.companyService.GetCompanyByID(c.Request.Context(), c.Param("company_id"), userID)
	if err != nil {
		respondError(c, logger, err, "get company")
		return
	}
	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}

// addMember godoc
// @Summary Add a member to a company
// @Description Adds an existing user, found by email, with the given role. Requires admin; granting owner requires owner.
// @Tags members
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   member body dto.AddMemberRequest true "Member details"
// @Success 201 {object} dto.MemberResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 409 {object} ErrorResponse "Already a member"
// @Security BearerAuth
// @Router /companies/{company_id}/members [post]
func (h *companyHandler) addMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AddMemberRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	actorID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	companyID := c.Param("company_id")

	member, err := h.companyService.AddMember(c.Request.Context(), companyID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "add member")
		return
	}

	logger.Info("Member added", slog.String("company_id", companyID), slog.String("member_user_id", member.UserID), slog.String("role", string(member.Role)))
	c.JSON(http.StatusCreated, dto.ToMemberResponse(member))
}

// listMembers godoc
// @Summary List company members
// @Tags members
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {object} dto.ListMembersResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/members [get]
func (h *companyHandler) listMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	members, err := h.companyService.ListMembers(c.Request.Context(), c.Param("company_id"), actorID)
	if err != nil {
		respondError(c, logger, err, "list members")
		return
	}
	c.JSON(http.StatusOK, dto.ToListMembersResponse(members))
}

// updateMemberRole godoc
// @Summary Change a member's role
// @Description The last owner of a company cannot be demoted.
// @Tags members
// @Accept  json
// @Param   company_id path string true "Company ID"
// @Param   user_id path string true "Member user ID"
// @Param   role body dto.UpdateMemberRoleRequest true "New role"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Last owner"
// @Security BearerAuth
// @Router /companies/{company_id}/members/{user_id} [put]
func (h *companyHandler) updateMemberRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateMemberRoleRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	actorID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	if err := h.companyService.UpdateMemberRole(c.Request.Context(), c.Param("company_id"), c.Param("user_id"), req.Role, actorID); err != nil {
		respondError(c, logger, err, "update member role")
		return
	}
	c.Status(http.StatusNoContent)
}

// removeMember godoc
// @Summary Remove a member
// @Description The last owner of a company cannot be removed.
// @Tags members
// @Param   company_id path string true "Company ID"
// @Param   user_id path string true "Member user ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Last owner"
// @Security BearerAuth
// @Router /companies/{company_id}/members/{user_id} [delete]
func (h *companyHandler) removeMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	if err := h.companyService.RemoveMember(c.Request.Context(), c.Param("company_id"), c.Param("user_id"), actorID); err != nil {
		respondError(c, logger, err, "remove member")
		return
	}
	c.Status(http.StatusNoContent)
}
