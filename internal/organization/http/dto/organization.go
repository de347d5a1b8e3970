// Package dto provides data transfer objects for organization HTTP handling.
package dto

import (
	"time"

	"github.com/foodnet/analytics/internal/organization/domain"
)

// CreateOrganizationRequest contains the parameters for creating an organization.
type CreateOrganizationRequest struct {
	Name       string `json:"name"`
	IikoAPIKey string `json:"iiko_api_key"`
}

// OrganizationResponse is the public shape of an organization.
type OrganizationResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	IikoAPIKey string    `json:"iiko_api_key,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewOrganizationResponse maps an organization to its response shape.
func NewOrganizationResponse(org *domain.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:         org.ID.String(),
		Name:       org.Name,
		IikoAPIKey: org.IikoAPIKey,
		CreatedAt:  org.CreatedAt,
		UpdatedAt:  org.UpdatedAt,
	}
}

// OrganizationListResponse wraps a page of organizations.
type OrganizationListResponse struct {
	Organizations []OrganizationResponse `json:"organizations"`
	Limit         int                    `json:"limit"`
	Offset        int                    `json:"offset"`
}

// NewOrganizationListResponse maps a page of organizations to its response shape.
func NewOrganizationListResponse(orgs []*domain.Organization, limit, offset int) OrganizationListResponse {
	items := make([]OrganizationResponse, 0, len(orgs))
	for _, org := range orgs {
		items = append(items, NewOrganizationResponse(org))
	}
	return OrganizationListResponse{Organizations: items, Limit: limit, Offset: offset}
}
