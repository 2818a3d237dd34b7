package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordGoalConflict("time")
	c.RecordGoalConflict("time")
	c.RecordMediaLookupFailure("anilist")
	c.RecordLogsCreated("anime", 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.goalConflicts.WithLabelValues("time")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.mediaLookupFailures.WithLabelValues("anilist")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.logsCreated.WithLabelValues("anime")))
}

func TestCollector_Histograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveAggregation("daily", 10*time.Millisecond)
	c.RecordHTTPRequest("GET", "/api/stats", 200, 5*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(c.aggregationLatency))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/stats", "200")))
}

func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordGoalConflict("pages")

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `immersionhub_goal_conflicts_total{type="pages"} 1`))
}

func TestNop_SatisfiesRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.RecordGoalConflict("time")
	r.ObserveAggregation("stats", time.Second)
}
