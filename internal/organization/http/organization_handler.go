// Package http provides HTTP handlers for organization management.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodnet/analytics/internal/httputil"
	"github.com/foodnet/analytics/internal/organization/http/dto"
	orgUseCase "github.com/foodnet/analytics/internal/organization/usecase"
)

// OrganizationHandler handles HTTP requests for organization operations.
type OrganizationHandler struct {
	orgUseCase orgUseCase.OrganizationUseCase
	logger     *slog.Logger
}

// NewOrganizationHandler creates a new organization handler with required dependencies.
func NewOrganizationHandler(orgUseCase orgUseCase.OrganizationUseCase, logger *slog.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		orgUseCase: orgUseCase,
		logger:     logger,
	}
}

// CreateOrganizationHandler creates a new organization.
// POST /organizations - Admin role required.
// Returns 201 Created with the organization.
func (h *OrganizationHandler) CreateOrganizationHandler(c *gin.Context) {
	var req dto.CreateOrganizationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	org, err := h.orgUseCase.Create(c.Request.Context(), orgUseCase.CreateOrganizationInput{
		Name:       req.Name,
		IikoAPIKey: req.IikoAPIKey,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.NewOrganizationResponse(org))
}

// GetOrganizationHandler returns a single organization by ID.
// GET /organizations/:id - Admin or user role required.
func (h *OrganizationHandler) GetOrganizationHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid organization id: must be a valid UUID"), h.logger)
		return
	}

	org, err := h.orgUseCase.GetByID(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewOrganizationResponse(org))
}

// ListOrganizationsHandler returns a page of organizations.
// GET /organizations - Admin or user role required.
func (h *OrganizationHandler) ListOrganizationsHandler(c *gin.Context) {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	orgs, err := h.orgUseCase.List(c.Request.Context(), limit, offset)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewOrganizationListResponse(orgs, limit, offset))
}

// parseQueryInt reads an optional integer query parameter.
func parseQueryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
