package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagavaishak/Celsius/internal/domain"
)

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestHealthz(t *testing.T) {
	s := NewServer(Config{Port: 0}, nil, nil, testLogger())
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatusEndpoint(t *testing.T) {
	status := func() *domain.RunStatus {
		return &domain.RunStatus{RunID: "run-1", State: "collecting", Day: 3, WindowDays: 14, Observations: 9}
	}
	s := NewServer(Config{Port: 0}, status, nil, testLogger())
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.RunStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Day)
	assert.Equal(t, "collecting", got.State)
}

func TestStatusEndpointNoRun(t *testing.T) {
	s := NewServer(Config{Port: 0}, func() *domain.RunStatus { return nil }, nil, testLogger())
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
