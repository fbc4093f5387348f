package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(context.Context) error {
	return p.err
}

func newEngine(db Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "readiness_checks_total", Help: "Readiness checks served."}))

	r := gin.New()
	NewHandler(db, reg).RegisterRoutes(r)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	r := newEngine(stubPinger{})

	w := get(r, "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())
}

func TestHealth_DatabaseDown(t *testing.T) {
	r := newEngine(stubPinger{err: errors.New("connection refused")})

	w := get(r, "/health/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "DOWN", body["status"])

	assert.Equal(t, http.StatusOK, get(r, "/health/live").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newEngine(stubPinger{})

	w := get(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "readiness_checks_total")
}
