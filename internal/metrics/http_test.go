package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("http_test")
	require.NoError(t, err)

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "http_test"))
	router.GET("/charts/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})

	// Two hits on the same route pattern with different parameters.
	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/charts/"+id, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// One unmatched route.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	metricsResp := httptest.NewRecorder()
	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(metricsResp, metricsReq)

	output := metricsResp.Body.String()

	// The route pattern collapses parameterized paths into one series.
	assertBizMetricLine(
		t,
		output,
		`http_test_http_requests_total`,
		`method="GET".*path="/charts/:id".*status_code="200"`,
		`2`,
	)
	assertBizMetricLine(
		t,
		output,
		`http_test_http_requests_total`,
		`method="GET".*path="unknown".*status_code="404"`,
		`1`,
	)
}

func TestRoutePattern(t *testing.T) {
	assert.Equal(t, "/charts/:id", routePattern("/charts/:id"))
	assert.Equal(t, "unknown", routePattern(""))
}
