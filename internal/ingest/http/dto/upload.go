// Package dto contains data transfer objects for the ingest HTTP layer.
package dto

import (
	"github.com/foodnet/analytics/internal/ingest/usecase"
)

// UploadResponse reports the dataset identifier and a preview of the
// ingested rows.
type UploadResponse struct {
	DataID  string              `json:"data_id"`
	Rows    int                 `json:"rows"`
	Preview []map[string]string `json:"preview"`
}

// NewUploadResponse builds an UploadResponse from the upload output.
func NewUploadResponse(output *usecase.UploadOutput) UploadResponse {
	return UploadResponse{
		DataID:  output.DataID,
		Rows:    output.Rows,
		Preview: output.Preview,
	}
}
