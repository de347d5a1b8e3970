package usecase

import (
	"context"
	"time"

	"github.com/foodnet/analytics/internal/metrics"
)

// uploadUseCaseWithMetrics decorates UploadUseCase with metrics instrumentation.
type uploadUseCaseWithMetrics struct {
	next    UploadUseCase
	metrics metrics.BusinessMetrics
}

// NewUploadUseCaseWithMetrics wraps an UploadUseCase with metrics recording.
func NewUploadUseCaseWithMetrics(useCase UploadUseCase, m metrics.BusinessMetrics) UploadUseCase {
	return &uploadUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Upload records metrics for CSV ingest operations, including the number of
// rows loaded on success.
func (u *uploadUseCaseWithMetrics) Upload(ctx context.Context, input UploadInput) (*UploadOutput, error) {
	start := time.Now()
	output, err := u.next.Upload(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "ingest", "csv_upload", status)
	u.metrics.RecordDuration(ctx, "ingest", "csv_upload", time.Since(start), status)
	if err == nil {
		u.metrics.RecordRows(ctx, "csv_upload", output.Rows)
	}

	return output, err
}
