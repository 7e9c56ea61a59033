package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileRotator is an io.Writer over a log file that rotates when the file
// would exceed MaxSize megabytes or the day changes. Rotated files are
// named <name>-<timestamp><ext>, optionally gzipped, and pruned by
// MaxBackups and MaxAge.
type FileRotator struct {
	config *Config
	now    func() time.Time

	mu       sync.Mutex
	file     *os.File
	size     int64
	openedAt time.Time
	seq      int

	// background compression and pruning
	wg sync.WaitGroup
}

// NewFileRotator opens cfg.FilePath for appending, creating its directory.
func NewFileRotator(cfg *Config) (*FileRotator, error) {
	return newFileRotator(cfg, time.Now)
}

func newFileRotator(cfg *Config, now func() time.Time) (*FileRotator, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	r := &FileRotator{config: cfg, now: now}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRotator) open() error {
	file, err := os.OpenFile(r.config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	r.file = file
	r.size = info.Size()
	r.openedAt = r.now()
	return nil
}

// Write implements io.Writer.
func (r *FileRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}
	if r.due(int64(len(p))) {
		if err := r.rotate(); err != nil {
			return 0, fmt.Errorf("rotate log: %w", err)
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *FileRotator) due(next int64) bool {
	if r.size == 0 {
		return false
	}
	if max := r.config.MaxSize * 1024 * 1024; max > 0 && r.size+next > max {
		return true
	}
	y1, m1, d1 := r.openedAt.Date()
	y2, m2, d2 := r.now().Date()
	return y1 != y2 || m1 != m2 || d1 != d2
}

func (r *FileRotator) split() (dir, name, ext string) {
	dir = filepath.Dir(r.config.FilePath)
	base := filepath.Base(r.config.FilePath)
	ext = filepath.Ext(base)
	return dir, strings.TrimSuffix(base, ext), ext
}

func (r *FileRotator) rotate() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close current log: %w", err)
	}
	r.file = nil

	dir, name, ext := r.split()
	r.seq++
	stamp := r.now().Format("20060102-150405")
	rotated := filepath.Join(dir, fmt.Sprintf("%s-%s.%d%s", name, stamp, r.seq, ext))
	if err := os.Rename(r.config.FilePath, rotated); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rename log file: %w", err)
	}

	if err := r.open(); err != nil {
		return err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if r.config.Compress {
			compress(rotated)
		}
		r.prune()
	}()
	return nil
}

func compress(path string) {
	in, err := os.Open(path)
	if err != nil {
		return
	}
	defer in.Close()

	out, err := os.Create(path + ".gz")
	if err != nil {
		return
	}

	gz := gzip.NewWriter(out)
	gz.Name = filepath.Base(path)
	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		out.Close()
		os.Remove(path + ".gz")
		return
	}
	if err := gz.Close(); err != nil {
		out.Close()
		os.Remove(path + ".gz")
		return
	}
	if err := out.Close(); err != nil {
		os.Remove(path + ".gz")
		return
	}
	os.Remove(path)
}

// prune removes rotated files beyond MaxBackups or older than MaxAge days.
func (r *FileRotator) prune() {
	files := r.rotated()

	if r.config.MaxBackups > 0 && len(files) > r.config.MaxBackups {
		for _, f := range files[:len(files)-r.config.MaxBackups] {
			os.Remove(f)
		}
		files = files[len(files)-r.config.MaxBackups:]
	}

	if r.config.MaxAge > 0 {
		cutoff := r.now().AddDate(0, 0, -r.config.MaxAge)
		for _, f := range files {
			if info, err := os.Stat(f); err == nil && info.ModTime().Before(cutoff) {
				os.Remove(f)
			}
		}
	}
}

// rotated lists rotated files oldest first. Names embed the rotation time
// and sequence so lexical order is age order within one process.
func (r *FileRotator) rotated() []string {
	dir, name, ext := r.split()
	matches, err := filepath.Glob(filepath.Join(dir, name+"-*"+ext+"*"))
	if err != nil {
		return nil
	}
	sort.Slice(matches, func(i, j int) bool {
		ii, ei := os.Stat(matches[i])
		ij, ej := os.Stat(matches[j])
		if ei != nil || ej != nil || ii.ModTime().Equal(ij.ModTime()) {
			return matches[i] < matches[j]
		}
		return ii.ModTime().Before(ij.ModTime())
	})
	return matches
}

// Files returns the current log file followed by rotated files, oldest
// first.
func (r *FileRotator) Files() []string {
	r.wg.Wait()
	return append([]string{r.config.FilePath}, r.rotated()...)
}

// Close waits for background work and closes the current file.
func (r *FileRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.wg.Wait()
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// Sync flushes the current file.
func (r *FileRotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		return r.file.Sync()
	}
	return nil
}
