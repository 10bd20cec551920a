package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetHealth(t *testing.T) {
	t.Helper()
	healthChecker = NewHealthChecker()
}

func TestUpdateComponent(t *testing.T) {
	resetHealth(t)

	UpdateComponent("storage", true, "open")
	UpdateComponent("storage", false, "closed")

	require.Len(t, healthChecker.components, 1)
	comp := healthChecker.components["storage"]
	assert.False(t, comp.Healthy)
	assert.Equal(t, "closed", comp.Message)
}

func TestGetHealth(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]bool
		expected   string
	}{
		{name: "no components", components: nil, expected: "healthy"},
		{name: "all healthy", components: map[string]bool{"api": true, "monitor": true}, expected: "healthy"},
		{name: "one unhealthy", components: map[string]bool{"api": true, "monitor": false}, expected: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetHealth(t)
			for name, healthy := range tt.components {
				UpdateComponent(name, healthy, "msg")
			}

			health := GetHealth()
			assert.Equal(t, tt.expected, health.Status)
			assert.Len(t, health.Components, len(tt.components))
		})
	}
}

func TestGetReadiness(t *testing.T) {
	t.Run("all critical ready", func(t *testing.T) {
		resetHealth(t)
		UpdateComponent(ComponentStorage, true, "")
		UpdateComponent(ComponentMonitor, true, "")
		UpdateComponent(ComponentAPI, true, "")

		assert.Equal(t, "ready", GetReadiness().Status)
	})

	t.Run("missing critical component", func(t *testing.T) {
		resetHealth(t)
		UpdateComponent(ComponentAPI, true, "")

		readiness := GetReadiness()
		assert.Equal(t, "not_ready", readiness.Status)
		assert.Equal(t, "not registered", readiness.Components[ComponentStorage])
		assert.NotEmpty(t, readiness.Message)
	})

	t.Run("critical component unhealthy", func(t *testing.T) {
		resetHealth(t)
		UpdateComponent(ComponentStorage, true, "")
		UpdateComponent(ComponentMonitor, false, "stopped")
		UpdateComponent(ComponentAPI, true, "")

		readiness := GetReadiness()
		assert.Equal(t, "not_ready", readiness.Status)
		assert.Equal(t, "waiting for monitor", readiness.Message)
	})
}

func TestHealthHandler(t *testing.T) {
	resetHealth(t)
	SetVersion("test")
	UpdateComponent("monitor", false, "stopped")

	w := httptest.NewRecorder()
	HealthHandler()(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var health HealthStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&health))
	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "test", health.Version)
	assert.Equal(t, "unhealthy: stopped", health.Components["monitor"])
}

func TestReadyHandler(t *testing.T) {
	resetHealth(t)

	w := httptest.NewRecorder()
	ReadyHandler()(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	for _, name := range CriticalComponents {
		UpdateComponent(name, true, "")
	}

	w = httptest.NewRecorder()
	ReadyHandler()(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLivenessHandler(t *testing.T) {
	resetHealth(t)

	w := httptest.NewRecorder()
	LivenessHandler()(w, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "alive", body["status"])
}
