package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryReturnsSameMetric(t *testing.T) {
	r := NewRegistry("goanthy")
	a := r.Counter("x_total", "x", Labels{"k": "v"})
	b := r.Counter("x_total", "x", Labels{"k": "v"})
	c := r.Counter("x_total", "x", Labels{"k": "w"})

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "goanthy_x_total", a.Name())
}

func TestHistogramBuckets(t *testing.T) {
	r := NewRegistry("")
	h := r.Histogram("lat", "latency", nil, []float64{1, 0.5})
	h.Observe(0.5)
	h.Observe(0.7)
	h.Observe(3)

	var b strings.Builder
	require.NoError(t, r.WritePrometheus(&b))
	out := b.String()
	assert.Contains(t, out, `lat_bucket{le="0.5"} 1`)
	assert.Contains(t, out, `lat_bucket{le="1"} 2`)
	assert.Contains(t, out, `lat_bucket{le="+Inf"} 3`)
	assert.Contains(t, out, "lat_sum 4.2\n")
	assert.Contains(t, out, "lat_count 3\n")
	assert.EqualValues(t, 3, h.Count())
}

func TestEngineMetrics(t *testing.T) {
	m := NewEngineMetrics(NewRegistry("goanthy"))
	m.KeyEvent(true, false, time.Millisecond)
	m.KeyEvent(false, false, time.Millisecond)
	m.KeyEvent(true, true, time.Millisecond)
	m.KeyEvent(true, false, time.Millisecond)
	m.Commit()
	m.Conversion()
	m.Prediction()
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	assert.EqualValues(t, 2, m.KeysHandled.Value())
	assert.EqualValues(t, 1, m.KeysPassed.Value())
	assert.EqualValues(t, 1, m.KeysFaulted.Value())
	assert.EqualValues(t, 1, m.ActiveSessions.Value())

	rec := httptest.NewRecorder()
	m.Registry().HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	assert.Equal(t, 1, strings.Count(body, "# TYPE goanthy_key_events_total counter"))
	assert.Contains(t, body, `goanthy_key_events_total{result="handled"} 2`)
	assert.Contains(t, body, `goanthy_key_events_total{result="faulted"} 1`)
	assert.Contains(t, body, "goanthy_commits_total 1\n")
	assert.Contains(t, body, "goanthy_active_sessions 1\n")
	assert.Contains(t, body, "# TYPE goanthy_uptime_seconds gauge")
	assert.Contains(t, body, `goanthy_key_handling_seconds_count 4`)
}

func TestNilEngineMetrics(t *testing.T) {
	var m *EngineMetrics
	assert.NotPanics(t, func() {
		m.KeyEvent(true, false, 0)
		m.Commit()
		m.Conversion()
		m.Prediction()
		m.SessionOpened()
		m.SessionClosed()
	})
	assert.Nil(t, m.Registry())
}
