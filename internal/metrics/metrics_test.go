package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddlewareLabelsByRoute(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/games", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/api/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "loading")
	})

	for _, target := range []string{"/api/games?q=wii", "/api/games?q=mario", "/api/fail"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	out := scrape(t, m)
	assert.Contains(t, out, `gamesales_http_requests_total{method="GET",route="/api/games",status="200"} 2`)
	assert.Contains(t, out, `gamesales_http_requests_total{method="GET",route="/api/fail",status="503"} 1`)
	assert.Contains(t, out, `gamesales_http_request_duration_seconds_count{method="GET",route="/api/games"} 2`)
}

func TestDatasetMetrics(t *testing.T) {
	m := New()
	m.ObserveLoad(ResultSuccess, 120*time.Millisecond)
	m.ObserveLoad(ResultFailure, time.Second)
	m.SetDataset(3, 16598, 271)

	out := scrape(t, m)
	assert.Contains(t, out, `gamesales_dataset_loads_total{result="success"} 1`)
	assert.Contains(t, out, `gamesales_dataset_loads_total{result="failure"} 1`)
	assert.Contains(t, out, `gamesales_dataset_load_duration_seconds_count 2`)
	assert.Contains(t, out, "gamesales_dataset_records 16598")
	assert.Contains(t, out, "gamesales_dataset_invalid_fields 271")
	assert.Contains(t, out, "gamesales_dataset_generation 3")
}
