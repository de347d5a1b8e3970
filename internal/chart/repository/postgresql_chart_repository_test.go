package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodnet/analytics/internal/chart/domain"
)

func newMockDB(t *testing.T) (*PostgreSQLChartRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgreSQLChartRepository(db), mock
}

func chartColumns() []string {
	return []string{"id", "title", "description", "chart_type", "user_id", "organization_id", "created_at", "updated_at"}
}

func TestPostgreSQLChartRepository_Create(t *testing.T) {
	ctx := context.Background()

	repo, mock := newMockDB(t)
	chart := &domain.Chart{
		ID:             uuid.Must(uuid.NewV7()),
		Title:          "Calories over time",
		ChartType:      domain.ChartTypeLine,
		UserID:         uuid.Must(uuid.NewV7()),
		OrganizationID: uuid.Must(uuid.NewV7()),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO charts")).
		WithArgs(chart.ID, "Calories over time", sqlmock.AnyArg(), "line", chart.UserID, chart.OrganizationID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(ctx, chart))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLChartRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the stored chart", func(t *testing.T) {
		repo, mock := newMockDB(t)
		id := uuid.Must(uuid.NewV7())
		userID := uuid.Must(uuid.NewV7())
		orgID := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()

		mock.ExpectQuery(regexp.QuoteMeta("FROM charts WHERE id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(chartColumns()).
				AddRow(id, "Calories over time", "weekly intake", "line", userID, orgID, now, now))

		chart, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.ChartTypeLine, chart.ChartType)
		assert.Equal(t, "weekly intake", chart.Description)
		assert.Equal(t, orgID, chart.OrganizationID)
	})

	t.Run("missing chart returns not found", func(t *testing.T) {
		repo, mock := newMockDB(t)
		id := uuid.Must(uuid.NewV7())

		mock.ExpectQuery(regexp.QuoteMeta("FROM charts WHERE id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(chartColumns()))

		_, err := repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrChartNotFound)
	})
}

func TestPostgreSQLChartRepository_List(t *testing.T) {
	ctx := context.Background()

	repo, mock := newMockDB(t)
	now := time.Now().UTC()
	userID := uuid.Must(uuid.NewV7())
	orgID := uuid.Must(uuid.NewV7())

	mock.ExpectQuery(regexp.QuoteMeta("FROM charts ORDER BY created_at DESC LIMIT $1 OFFSET $2")).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(chartColumns()).
			AddRow(uuid.Must(uuid.NewV7()), "Newest", nil, "bar", userID, orgID, now, now).
			AddRow(uuid.Must(uuid.NewV7()), "Older", nil, "pie", userID, orgID, now.Add(-time.Hour), now))

	charts, err := repo.List(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, charts, 2)
	assert.Equal(t, "Newest", charts[0].Title)
	assert.Empty(t, charts[0].Description)
}

func TestPostgreSQLChartRepository_ListByOrganization(t *testing.T) {
	ctx := context.Background()

	repo, mock := newMockDB(t)
	now := time.Now().UTC()
	orgID := uuid.Must(uuid.NewV7())

	mock.ExpectQuery(regexp.QuoteMeta("FROM charts WHERE organization_id = $1")).
		WithArgs(orgID, 20, 0).
		WillReturnRows(sqlmock.NewRows(chartColumns()).
			AddRow(uuid.Must(uuid.NewV7()), "Org chart", nil, "scatter", uuid.Must(uuid.NewV7()), orgID, now, now))

	charts, err := repo.ListByOrganization(ctx, orgID, 20, 0)
	require.NoError(t, err)
	require.Len(t, charts, 1)
	assert.Equal(t, orgID, charts[0].OrganizationID)
}
