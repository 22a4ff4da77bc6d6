package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/pkg/logger"
)

func okProbe(ctx context.Context) error   { return nil }
func downProbe(ctx context.Context) error { return errors.New("connection refused") }

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) HealthStatus {
	t.Helper()
	var status HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	return status
}

func TestHandler_ReadinessAllHealthy(t *testing.T) {
	h := New(logger.Get(), "minerva", "test").
		AddCheck("postgres", true, okProbe).
		AddCheck("redis", true, okProbe)

	rec := httptest.NewRecorder()
	h.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	status := decodeStatus(t, rec)
	assert.Equal(t, "healthy", status.Status)
	assert.Len(t, status.Checks, 2)
}

func TestHandler_ReadinessFailsOnRequiredProbe(t *testing.T) {
	h := New(logger.Get(), "minerva", "test").
		AddCheck("postgres", true, downProbe).
		AddCheck("redis", true, okProbe)

	rec := httptest.NewRecorder()
	h.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	status := decodeStatus(t, rec)
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "unhealthy", status.Checks["postgres"].Status)
	assert.Contains(t, status.Checks["postgres"].Error, "connection refused")
}

func TestHandler_OptionalProbeOnlyDegrades(t *testing.T) {
	h := New(logger.Get(), "minerva", "test").
		AddCheck("postgres", true, okProbe).
		AddCheck("clickhouse", false, downProbe)

	rec := httptest.NewRecorder()
	h.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	status := decodeStatus(t, rec)
	assert.Equal(t, "degraded", status.Status)
}

func TestHandler_Liveness(t *testing.T) {
	h := New(logger.Get(), "minerva", "test")

	rec := httptest.NewRecorder()
	h.HandleLiveness(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}
