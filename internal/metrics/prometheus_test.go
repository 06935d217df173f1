package metrics

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/portsweep/internal/logging"
)

func TestPrometheusMetrics_Initialization(t *testing.T) {
	pm := NewPrometheusMetrics()
	require.NotNil(t, pm)
	require.NotNil(t, pm.GetRegistry())

	before := pm.GetUptime()
	time.Sleep(5 * time.Millisecond)
	assert.Greater(t, pm.GetUptime(), before)
}

func TestPrometheusMetrics_Attempts(t *testing.T) {
	pm := NewPrometheusMetrics()

	pm.AttemptStarted()
	pm.AttemptStarted()
	pm.AttemptStarted()
	assert.Equal(t, 3.0, testutil.ToFloat64(pm.inFlight))

	pm.AttemptFinished("open", 10*time.Millisecond)
	pm.AttemptFinished("refused", time.Millisecond)
	pm.AttemptFinished("refused", 2*time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(pm.inFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.attemptsTotal.WithLabelValues("open")))
	assert.Equal(t, 2.0, testutil.ToFloat64(pm.attemptsTotal.WithLabelValues("refused")))
	assert.Equal(t, 2, testutil.CollectAndCount(pm.attemptDuration))
}

func TestPrometheusMetrics_TargetsAndScans(t *testing.T) {
	pm := NewPrometheusMetrics()

	pm.TargetsResolved(254, 2)
	pm.ScanCompleted("completed", 3*time.Second)
	pm.ScanCompleted("no_targets", time.Millisecond)

	assert.Equal(t, 254.0, testutil.ToFloat64(pm.targetsTotal.WithLabelValues("resolved")))
	assert.Equal(t, 2.0, testutil.ToFloat64(pm.targetsTotal.WithLabelValues("unresolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.scansTotal.WithLabelValues("completed")))
	assert.Equal(t, 2, testutil.CollectAndCount(pm.scansTotal))

	expected := `
# HELP portsweep_scan_total Total number of scans by completion status
# TYPE portsweep_scan_total counter
portsweep_scan_total{status="completed"} 1
portsweep_scan_total{status="no_targets"} 1
`
	require.NoError(t, testutil.CollectAndCompare(pm.scansTotal, strings.NewReader(expected)))
}

func TestPrometheusMetrics_GlobalInstance(t *testing.T) {
	assert.Same(t, GetGlobalMetrics(), GetGlobalMetrics())
}

func TestServer_ServesMetrics(t *testing.T) {
	pm := NewPrometheusMetrics()
	pm.AttemptStarted()
	pm.AttemptFinished("open", time.Millisecond)

	srv := NewServer("127.0.0.1:0", pm, nil)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `portsweep_connect_attempts_total{outcome="open"} 1`)
	assert.Contains(t, body, "portsweep_system_uptime_seconds")
	assert.Contains(t, body, "go_goroutines")
}

func TestServer_RejectsOtherMethods(t *testing.T) {
	srv := NewServer("127.0.0.1:0", NewPrometheusMetrics(), nil)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestServer_StartStop(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.NewWithWriter(logging.Config{Level: logging.LevelInfo, Format: logging.FormatText}, &logs)
	srv := NewServer("127.0.0.1:0", NewPrometheusMetrics(), logger)
	require.NoError(t, srv.Start())

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))
	assert.NoError(t, srv.Stop())
	assert.Contains(t, logs.String(), "Metrics server stopped")
	assert.Contains(t, logs.String(), "uptime=")
}

func TestServer_BindError(t *testing.T) {
	first := NewServer("127.0.0.1:0", NewPrometheusMetrics(), nil)
	require.NoError(t, first.Start())
	defer func() { _ = first.Stop() }()

	second := NewServer(first.Addr(), NewPrometheusMetrics(), nil)
	assert.Error(t, second.Start())
}
