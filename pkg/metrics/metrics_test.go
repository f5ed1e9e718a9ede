package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRecords(t *testing.T) {
	r := NewRegistry()

	r.Transition("leave", "Approved")
	r.Transition("leave", "Approved")
	r.Notification("push", "error")
	r.Sweep()
	r.CacheLookup(true)
	r.ObserveHTTP("GET", "GET /api/leaves", 200, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.WorkflowTransitions.WithLabelValues("leave", "Approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Notifications.WithLabelValues("push", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SweepRuns))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ReportCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.HTTPRequests.WithLabelValues("GET", "GET /api/leaves", "200")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.Sweep()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "workdesk_sweep_runs_total 1")
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.Transition("leave", "Rejected")
		r.Notification("db", "ok")
		r.Sweep()
		r.CacheLookup(false)
		r.ObserveHTTP("GET", "/", 200, time.Millisecond)
	})
}
