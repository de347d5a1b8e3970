// Package domain defines the chart entity and the chart specification
// generator used to render stored data as Vega-Lite documents.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/foodnet/analytics/internal/errors"
)

// ChartType is the kind of visualization a chart renders.
type ChartType string

const (
	ChartTypeLine    ChartType = "line"
	ChartTypeBar     ChartType = "bar"
	ChartTypeScatter ChartType = "scatter"
	ChartTypePie     ChartType = "pie"
)

// ParseChartType converts a stored chart type string into a ChartType.
// Unknown values report false.
func ParseChartType(s string) (ChartType, bool) {
	switch ChartType(s) {
	case ChartTypeLine, ChartTypeBar, ChartTypeScatter, ChartTypePie:
		return ChartType(s), true
	default:
		return "", false
	}
}

// Chart is a saved visualization owned by a user within an organization.
type Chart struct {
	ID             uuid.UUID
	Title          string
	Description    string
	ChartType      ChartType
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

var (
	// ErrChartNotFound indicates the chart does not exist.
	ErrChartNotFound = apperrors.Wrap(apperrors.ErrNotFound, "chart not found")

	// ErrUnsupportedChartType indicates the requested visualization kind is
	// not one of line, bar, scatter or pie.
	ErrUnsupportedChartType = apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported chart type")

	// ErrMissingChartField indicates a referenced field is absent from the
	// supplied data rows.
	ErrMissingChartField = apperrors.Wrap(apperrors.ErrInvalidInput, "missing chart field")
)
