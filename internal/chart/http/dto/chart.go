// Package dto provides data transfer objects for chart HTTP handling.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/foodnet/analytics/internal/chart/domain"
	customValidation "github.com/foodnet/analytics/internal/validation"
)

// CreateChartRequest contains the parameters for saving a chart.
type CreateChartRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	ChartType      string `json:"chart_type"`
	OrganizationID string `json:"organization_id"`
}

// Validate checks if the create chart request is valid.
func (r *CreateChartRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.ChartType,
			validation.Required,
		),
		validation.Field(&r.OrganizationID,
			validation.Required,
		),
	)
}

// GenerateChartRequest contains the rows and field mapping for an ad-hoc
// chart document.
type GenerateChartRequest struct {
	Data       []map[string]any `json:"data"`
	ChartType  string           `json:"chart_type"`
	XField     string           `json:"x_field"`
	YField     string           `json:"y_field"`
	ColorField string           `json:"color_field"`
}

// Validate checks if the generate chart request is valid.
func (r *GenerateChartRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Data,
			validation.Required.Error("data is required"),
		),
		validation.Field(&r.ChartType,
			validation.Required,
		),
		validation.Field(&r.XField,
			validation.Required,
		),
		validation.Field(&r.YField,
			validation.Required,
		),
	)
}

// ChartResponse is the public shape of a saved chart.
type ChartResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	ChartType      string    `json:"chart_type"`
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewChartResponse maps a chart to its response shape.
func NewChartResponse(chart *domain.Chart) ChartResponse {
	return ChartResponse{
		ID:             chart.ID.String(),
		Title:          chart.Title,
		Description:    chart.Description,
		ChartType:      string(chart.ChartType),
		UserID:         chart.UserID.String(),
		OrganizationID: chart.OrganizationID.String(),
		CreatedAt:      chart.CreatedAt,
		UpdatedAt:      chart.UpdatedAt,
	}
}

// ChartListResponse wraps a page of charts.
type ChartListResponse struct {
	Charts []ChartResponse `json:"charts"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// NewChartListResponse maps a page of charts to its response shape.
func NewChartListResponse(charts []*domain.Chart, limit, offset int) ChartListResponse {
	items := make([]ChartResponse, 0, len(charts))
	for _, chart := range charts {
		items = append(items, NewChartResponse(chart))
	}
	return ChartListResponse{Charts: items, Limit: limit, Offset: offset}
}
