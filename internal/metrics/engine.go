package metrics

import "time"

// EngineMetrics holds the input method counters. A nil *EngineMetrics
// records nothing.
type EngineMetrics struct {
	registry *Registry

	KeysHandled *Counter
	KeysPassed  *Counter
	KeysFaulted *Counter
	Commits     *Counter
	Conversions *Counter
	Predictions *Counter

	ActiveSessions *Gauge
	Uptime         *Gauge

	KeyLatency *Histogram
}

// NewEngineMetrics registers the engine metrics in registry.
func NewEngineMetrics(registry *Registry) *EngineMetrics {
	const keysHelp = "Key events by outcome"
	start := time.Now()
	m := &EngineMetrics{
		registry:    registry,
		KeysHandled: registry.Counter("key_events_total", keysHelp, Labels{"result": "handled"}),
		KeysPassed:  registry.Counter("key_events_total", keysHelp, Labels{"result": "passed"}),
		KeysFaulted: registry.Counter("key_events_total", keysHelp, Labels{"result": "faulted"}),
		Commits:     registry.Counter("commits_total", "Strings committed to clients", nil),
		Conversions: registry.Counter("conversions_total", "Conversions started", nil),
		Predictions: registry.Counter("predictions_total", "Predictions started", nil),
		ActiveSessions: registry.Gauge("active_sessions",
			"Input contexts with a live engine", nil),
		Uptime: registry.Gauge("uptime_seconds", "Seconds since the engine started", nil),
		KeyLatency: registry.Histogram("key_handling_seconds",
			"Time spent handling one key event", nil, LatencyBuckets),
	}
	registry.OnCollect(func() {
		m.Uptime.Set(int64(time.Since(start).Seconds()))
	})
	return m
}

// Registry returns the registry the metrics live in.
func (m *EngineMetrics) Registry() *Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// KeyEvent records the outcome and duration of one key event.
func (m *EngineMetrics) KeyEvent(handled, faulted bool, d time.Duration) {
	if m == nil {
		return
	}
	switch {
	case faulted:
		m.KeysFaulted.Inc()
	case handled:
		m.KeysHandled.Inc()
	default:
		m.KeysPassed.Inc()
	}
	m.KeyLatency.ObserveDuration(d)
}

func (m *EngineMetrics) Commit() {
	if m != nil {
		m.Commits.Inc()
	}
}

func (m *EngineMetrics) Conversion() {
	if m != nil {
		m.Conversions.Inc()
	}
}

func (m *EngineMetrics) Prediction() {
	if m != nil {
		m.Predictions.Inc()
	}
}

// SessionOpened and SessionClosed track the active-sessions gauge.
func (m *EngineMetrics) SessionOpened() {
	if m != nil {
		m.ActiveSessions.Inc()
	}
}

func (m *EngineMetrics) SessionClosed() {
	if m != nil {
		m.ActiveSessions.Dec()
	}
}
