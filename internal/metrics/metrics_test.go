package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheus_ObserveOperation(t *testing.T) {
	var r Recorder = Prometheus{}

	before := testutil.ToFloat64(OperationsTotal.WithLabelValues(KindScan, OutcomeCompleted))
	r.ObserveOperation(KindScan, OutcomeCompleted, 150*time.Millisecond)
	r.ObserveOperation(KindScan, OutcomeCompleted, 50*time.Millisecond)

	after := testutil.ToFloat64(OperationsTotal.WithLabelValues(KindScan, OutcomeCompleted))
	assert.Equal(t, before+2, after)
}

func TestPrometheus_AddFreed(t *testing.T) {
	r := Prometheus{}

	before := testutil.ToFloat64(BytesFreedTotal)
	r.AddFreed(4096)
	r.AddFreed(0)
	r.AddFreed(-10)

	assert.Equal(t, before+4096, testutil.ToFloat64(BytesFreedTotal))
}

func TestPrometheus_SetReclaimable(t *testing.T) {
	r := Prometheus{}

	r.SetReclaimable(map[string]int64{"Logs": 4096, "Xcode": 8192})
	assert.Equal(t, 2, testutil.CollectAndCount(ReclaimableBytes))
	assert.Equal(t, float64(4096), testutil.ToFloat64(ReclaimableBytes.WithLabelValues("Logs")))

	r.SetReclaimable(map[string]int64{"Xcode": 1024})
	assert.Equal(t, 1, testutil.CollectAndCount(ReclaimableBytes))
	assert.Equal(t, float64(1024), testutil.ToFloat64(ReclaimableBytes.WithLabelValues("Xcode")))
}

func TestPrometheus_IncDeleteFailure(t *testing.T) {
	r := Prometheus{}

	before := testutil.ToFloat64(DeleteFailuresTotal.WithLabelValues("file_is_in_use"))
	r.IncDeleteFailure("file_is_in_use")
	assert.Equal(t, before+1, testutil.ToFloat64(DeleteFailuresTotal.WithLabelValues("file_is_in_use")))
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.ObserveOperation(KindClean, OutcomeCancelled, time.Second)
	r.AddFreed(1)
	r.SetReclaimable(nil)
	r.IncDeleteFailure("x")
}

func TestHandler(t *testing.T) {
	Prometheus{}.AddFreed(1)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cachecleaner_bytes_freed_total")
}

func TestObserveScheduledRun(t *testing.T) {
	before := testutil.ToFloat64(ScheduledRunsTotal.WithLabelValues("weekly", OutcomeSkipped))
	ObserveScheduledRun("weekly", OutcomeSkipped)
	assert.Equal(t, before+1, testutil.ToFloat64(ScheduledRunsTotal.WithLabelValues("weekly", OutcomeSkipped)))
}
