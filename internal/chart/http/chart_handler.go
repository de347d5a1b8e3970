// Package http provides HTTP handlers for chart management and generation.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/foodnet/analytics/internal/auth/http"
	chartDomain "github.com/foodnet/analytics/internal/chart/domain"
	"github.com/foodnet/analytics/internal/chart/http/dto"
	chartService "github.com/foodnet/analytics/internal/chart/service"
	chartUseCase "github.com/foodnet/analytics/internal/chart/usecase"
	"github.com/foodnet/analytics/internal/httputil"
	customValidation "github.com/foodnet/analytics/internal/validation"
)

// ChartHandler handles HTTP requests for chart operations.
type ChartHandler struct {
	chartUseCase chartUseCase.ChartUseCase
	logger       *slog.Logger
}

// NewChartHandler creates a new chart handler with required dependencies.
func NewChartHandler(chartUseCase chartUseCase.ChartUseCase, logger *slog.Logger) *ChartHandler {
	return &ChartHandler{
		chartUseCase: chartUseCase,
		logger:       logger,
	}
}

// CreateChartHandler saves a new chart owned by the calling user.
// POST /charts - Admin or user role required.
// Returns 201 Created with the chart.
func (h *ChartHandler) CreateChartHandler(c *gin.Context) {
	var req dto.CreateChartRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid organization_id: must be a valid UUID"), h.logger)
		return
	}

	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, fmt.Errorf("no identity in context"), h.logger)
		return
	}

	chart, err := h.chartUseCase.Create(c.Request.Context(), chartUseCase.CreateChartInput{
		Title:          req.Title,
		Description:    req.Description,
		ChartType:      req.ChartType,
		UserID:         identity.ID,
		OrganizationID: orgID,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.NewChartResponse(chart))
}

// GetChartHandler returns a single chart by ID.
// GET /charts/:id - Admin or user role required.
func (h *ChartHandler) GetChartHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid chart id: must be a valid UUID"), h.logger)
		return
	}

	chart, err := h.chartUseCase.GetByID(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewChartResponse(chart))
}

// ListChartsHandler returns a page of charts, optionally scoped to one
// organization via the organization_id query parameter.
// GET /charts - Admin or user role required.
func (h *ChartHandler) ListChartsHandler(c *gin.Context) {
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

	var orgID *uuid.UUID
	if raw := c.Query("organization_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid organization_id: must be a valid UUID"), h.logger)
			return
		}
		orgID = &parsed
	}

	charts, err := h.chartUseCase.List(c.Request.Context(), orgID, limit, offset)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewChartListResponse(charts, limit, offset))
}

// GenerateChartHandler builds a chart document from inline rows without
// persisting anything.
// POST /charts/generate - Admin or user role required.
func (h *ChartHandler) GenerateChartHandler(c *gin.Context) {
	var req dto.GenerateChartRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	doc, err := h.chartUseCase.Generate(c.Request.Context(), chartService.GenerateInput{
		Data:       req.Data,
		ChartType:  chartDomain.ChartType(req.ChartType),
		XField:     req.XField,
		YField:     req.YField,
		ColorField: req.ColorField,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// parseQueryInt reads an optional integer query parameter.
func parseQueryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
