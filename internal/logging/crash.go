package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"sync"
	"time"
)

// CrashReport describes a recovered panic.
type CrashReport struct {
	Timestamp  time.Time         `json:"timestamp"`
	GOOS       string            `json:"goos"`
	GOARCH     string            `json:"goarch"`
	GoVersion  string            `json:"go_version"`
	Component  string            `json:"component,omitempty"`
	PanicValue string            `json:"panic_value"`
	StackTrace string            `json:"stack_trace"`
	Context    map[string]string `json:"context,omitempty"`
}

// CrashHandler logs recovered panics and writes them as JSON dumps to a
// directory. The context passed with a panic must not carry typed text.
type CrashHandler struct {
	mu        sync.Mutex
	dir       string
	component string
	log       *Logger
	now       func() time.Time
	seq       int
}

// DefaultCrashDir returns the crash dump directory under the data dir.
func DefaultCrashDir(dataDir string) string {
	return filepath.Join(dataDir, "crashes")
}

// NewCrashHandler creates a handler writing to dir. An empty dir only logs.
func NewCrashHandler(dir, component string, log *Logger) *CrashHandler {
	if log == nil {
		log = Default()
	}
	return &CrashHandler{dir: dir, component: component, log: log, now: time.Now}
}

// HandlePanic records v, the value returned by recover, with the current
// goroutine's stack.
func (h *CrashHandler) HandlePanic(v any, info map[string]string) CrashReport {
	h.mu.Lock()
	defer h.mu.Unlock()

	report := CrashReport{
		Timestamp:  h.now().UTC(),
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
		GoVersion:  runtime.Version(),
		Component:  h.component,
		PanicValue: fmt.Sprint(v),
		StackTrace: string(debug.Stack()),
		Context:    info,
	}

	path, err := h.write(report)
	if err != nil {
		h.log.Error("write crash report", "error", err)
	}
	h.log.Error("recovered panic",
		"panic", report.PanicValue,
		"report", path,
	)
	return report
}

func (h *CrashHandler) write(report CrashReport) (string, error) {
	if h.dir == "" {
		return "", nil
	}
	if err := os.MkdirAll(h.dir, 0700); err != nil {
		return "", fmt.Errorf("create crash dir: %w", err)
	}
	h.seq++
	name := fmt.Sprintf("crash-%s-%s-%d.json",
		report.Component, report.Timestamp.Format("20060102-150405"), h.seq)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal crash report: %w", err)
	}
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("write crash report: %w", err)
	}
	return path, nil
}

// Reports returns the stored crash reports, oldest first.
func (h *CrashHandler) Reports() ([]CrashReport, error) {
	if h.dir == "" {
		return nil, nil
	}
	files, err := filepath.Glob(filepath.Join(h.dir, "crash-*.json"))
	if err != nil {
		return nil, err
	}
	var reports []CrashReport
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		var r CrashReport
		if json.Unmarshal(data, &r) == nil {
			reports = append(reports, r)
		}
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Timestamp.Before(reports[j].Timestamp)
	})
	return reports, nil
}

// Cleanup removes reports older than maxAge.
func (h *CrashHandler) Cleanup(maxAge time.Duration) error {
	if h.dir == "" {
		return nil
	}
	files, err := filepath.Glob(filepath.Join(h.dir, "crash-*.json"))
	if err != nil {
		return err
	}
	cutoff := h.now().Add(-maxAge)
	for _, f := range files {
		info, err := os.Stat(f)
		if err == nil && info.ModTime().Before(cutoff) {
			os.Remove(f)
		}
	}
	return nil
}
