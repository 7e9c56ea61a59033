// Package health reports whether the engine process can serve input:
// the bus connection, the learning store and recent crashes.
//
// Results are served next to the metrics endpoint:
//   - /livez always answers while the process runs
//   - /readyz answers 503 until the IBus service started or when a
//     critical component is unhealthy
//   - /healthz runs every check and reports per-component results
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"goanthy/internal/logging"
)

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// DefaultTimeout bounds a single check.
const DefaultTimeout = 2 * time.Second

// CheckResult represents the result of a health check.
type CheckResult struct {
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ns"`
	Error       string         `json:"error,omitempty"`
}

// Check is a function that performs a health check.
type Check func(ctx context.Context) CheckResult

// Component represents a health-checkable component.
type Component struct {
	Name string
	// Critical components make the overall status unhealthy when they fail.
	Critical bool
	Check    Check
	Timeout  time.Duration
}

// Checker manages health checks.
type Checker struct {
	mu         sync.RWMutex
	components map[string]*Component
	results    map[string]CheckResult
	startTime  time.Time
	ready      bool
	now        func() time.Time
}

// NewChecker creates a new Checker.
func NewChecker() *Checker {
	return &Checker{
		components: make(map[string]*Component),
		results:    make(map[string]CheckResult),
		startTime:  time.Now(),
		now:        time.Now,
	}
}

// Register adds or replaces a component.
func (c *Checker) Register(component *Component) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if component.Timeout == 0 {
		component.Timeout = DefaultTimeout
	}
	c.components[component.Name] = component
	c.results[component.Name] = CheckResult{Status: StatusUnknown}
}

// RegisterFunc registers a check function.
func (c *Checker) RegisterFunc(name string, critical bool, check Check) {
	c.Register(&Component{Name: name, Critical: critical, Check: check})
}

// SetReady sets the readiness state.
func (c *Checker) SetReady(ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = ready
}

// IsReady returns the readiness state.
func (c *Checker) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Check runs all registered checks concurrently.
func (c *Checker) Check(ctx context.Context) map[string]CheckResult {
	c.mu.RLock()
	components := make([]*Component, 0, len(c.components))
	for _, comp := range c.components {
		components = append(components, comp)
	}
	c.mu.RUnlock()

	results := make(map[string]CheckResult, len(components))
	var (
		wg  sync.WaitGroup
		rmu sync.Mutex
	)
	for _, comp := range components {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := c.run(ctx, comp)
			rmu.Lock()
			results[comp.Name] = result
			rmu.Unlock()
		}()
	}
	wg.Wait()
	return results
}

func (c *Checker) run(ctx context.Context, comp *Component) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, comp.Timeout)
	defer cancel()

	start := c.now()
	done := make(chan CheckResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- CheckResult{Status: StatusUnhealthy, Message: "check panicked", Error: fmt.Sprint(r)}
			}
		}()
		done <- comp.Check(checkCtx)
	}()

	var result CheckResult
	select {
	case result = <-done:
	case <-checkCtx.Done():
		result = CheckResult{Status: StatusUnhealthy, Message: "check timed out", Error: checkCtx.Err().Error()}
	}
	result.LastChecked = start
	result.Duration = c.now().Sub(start)

	c.mu.Lock()
	if _, ok := c.components[comp.Name]; ok {
		c.results[comp.Name] = result
	}
	c.mu.Unlock()
	return result
}

// OverallStatus aggregates the last results. A failing critical component
// is unhealthy; anything else failing only degrades.
func (c *Checker) OverallStatus() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var unknown, degraded bool
	for name, result := range c.results {
		comp := c.components[name]
		switch result.Status {
		case StatusUnhealthy:
			if comp.Critical {
				return StatusUnhealthy
			}
			degraded = true
		case StatusDegraded:
			degraded = true
		case StatusUnknown:
			unknown = unknown || comp.Critical
		}
	}
	switch {
	case unknown:
		return StatusUnknown
	case degraded:
		return StatusDegraded
	}
	return StatusHealthy
}

// Response is the body of the health endpoint.
type Response struct {
	Status     Status                 `json:"status"`
	Ready      bool                   `json:"ready"`
	Uptime     string                 `json:"uptime"`
	Components map[string]CheckResult `json:"components"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Response runs every check and reports the aggregate.
func (c *Checker) Response(ctx context.Context) Response {
	components := c.Check(ctx)
	return Response{
		Status:     c.OverallStatus(),
		Ready:      c.IsReady(),
		Uptime:     c.now().Sub(c.startTime).Round(time.Second).String(),
		Components: components,
		Timestamp:  c.now(),
	}
}

// Handler mounts /livez, /readyz and /healthz on mux.
func (c *Checker) Handler(mux *http.ServeMux) {
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "alive"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !c.IsReady() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready"})
			return
		}
		status := c.OverallStatus()
		code := http.StatusOK
		if status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]any{"status": status, "ready": true})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		resp := c.Response(r.Context())
		code := http.StatusOK
		if resp.Status == StatusUnhealthy || resp.Status == StatusUnknown {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// PingCheck reports a component healthy while ping succeeds.
func PingCheck(ping func(ctx context.Context) error) Check {
	return func(ctx context.Context) CheckResult {
		if err := ping(ctx); err != nil {
			return CheckResult{Status: StatusUnhealthy, Message: "ping failed", Error: err.Error()}
		}
		return CheckResult{Status: StatusHealthy}
	}
}

// DoneCheck reports a connection unhealthy once done is closed.
func DoneCheck(done <-chan struct{}) Check {
	return func(ctx context.Context) CheckResult {
		select {
		case <-done:
			return CheckResult{Status: StatusUnhealthy, Message: "connection closed"}
		default:
			return CheckResult{Status: StatusHealthy}
		}
	}
}

// CrashCheck degrades when crash reports were written within window.
func CrashCheck(reports func() ([]logging.CrashReport, error), window time.Duration) Check {
	return func(ctx context.Context) CheckResult {
		all, err := reports()
		if err != nil {
			return CheckResult{Status: StatusDegraded, Message: "crash reports unreadable", Error: err.Error()}
		}
		cutoff := time.Now().Add(-window)
		var recent []string
		for _, r := range all {
			if r.Timestamp.After(cutoff) {
				recent = append(recent, r.PanicValue)
			}
		}
		if len(recent) == 0 {
			return CheckResult{Status: StatusHealthy}
		}
		sort.Strings(recent)
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("%d faults in the last %s", len(recent), window),
			Details: map[string]any{"panics": recent},
		}
	}
}
