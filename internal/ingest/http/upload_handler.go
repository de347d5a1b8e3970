package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/foodnet/analytics/internal/auth/http"
	"github.com/foodnet/analytics/internal/httputil"
	ingestDomain "github.com/foodnet/analytics/internal/ingest/domain"
	"github.com/foodnet/analytics/internal/ingest/http/dto"
	ingestUseCase "github.com/foodnet/analytics/internal/ingest/usecase"
)

// UploadHandler handles HTTP requests for CSV dataset ingestion.
type UploadHandler struct {
	uploadUseCase ingestUseCase.UploadUseCase
	logger        *slog.Logger
}

// NewUploadHandler creates a new upload handler with required dependencies.
func NewUploadHandler(uploadUseCase ingestUseCase.UploadUseCase, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		uploadUseCase: uploadUseCase,
		logger:        logger,
	}
}

// UploadCSVHandler ingests a CSV file sent as multipart/form-data under the
// "file" field. The optional dataset name comes from the "name" form value
// or query parameter. The rows land in a fresh table linked to the caller.
// POST /upload/csv - Admin or user role required.
// Returns 200 OK with the dataset id, row count and a preview.
func (h *UploadHandler) UploadCSVHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("missing file: a CSV file must be sent in the \"file\" form field"), h.logger)
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = c.Query("name")
	}

	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, fmt.Errorf("no identity in context"), h.logger)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httputil.HandleErrorGin(c, ingestDomain.ErrMalformedCSV, h.logger)
		return
	}
	defer file.Close()

	output, err := h.uploadUseCase.Upload(c.Request.Context(), ingestUseCase.UploadInput{
		Name:        name,
		UserID:      identity.ID,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		File:        file,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewUploadResponse(output))
}
