package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures emitted metrics for assertions.
type recordingSink struct {
	counts  []recordedMetric
	timings []recordedMetric
}

type recordedMetric struct {
	name string
	tags map[string]string
}

func (s *recordingSink) Count(name string, _ int64, tags map[string]string) {
	s.counts = append(s.counts, recordedMetric{name: name, tags: tags})
}

func (s *recordingSink) Gauge(string, float64, map[string]string) {}

func (s *recordingSink) Timing(name string, _ time.Duration, tags map[string]string) {
	s.timings = append(s.timings, recordedMetric{name: name, tags: tags})
}

func TestMetrics(t *testing.T) {
	sink := &recordingSink{}
	handler := Metrics(sink)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Len(t, sink.counts, 1)
	assert.Equal(t, "http.requests", sink.counts[0].name)
	assert.Equal(t, "POST", sink.counts[0].tags["method"])
	assert.Equal(t, "404", sink.counts[0].tags["status"])

	require.Len(t, sink.timings, 1)
	assert.Equal(t, "http.request_duration", sink.timings[0].name)
}

func TestMetrics_NilSink(t *testing.T) {
	handler := Metrics(nil)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
