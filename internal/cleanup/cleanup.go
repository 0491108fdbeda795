package cleanup

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RemoveTransient deletes raw downloaded media and partial-download markers
// from downloadDir, bounding disk usage between queries. Chunk directories
// and their artifacts are untouched; only top-level files go.
func RemoveTransient(downloadDir string) {
	entries, err := os.ReadDir(downloadDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Failed to read download directory %s: %v", downloadDir, err)
		}
		return
	}

	var removed int
	var freed int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !isTransient(name) {
			continue
		}
		path := filepath.Join(downloadDir, name)
		info, err := entry.Info()
		if err == nil {
			freed += info.Size()
		}
		if err := os.Remove(path); err != nil {
			log.Printf("Failed to remove transient file %s: %v", path, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("Removed %d transient download files (%.2fMB freed)", removed, float64(freed)/(1024*1024))
	}
}

func isTransient(name string) bool {
	return strings.HasSuffix(name, ".part") ||
		strings.HasSuffix(name, ".ytdl") ||
		strings.HasSuffix(name, ".mp3") ||
		strings.HasSuffix(name, ".m4a") ||
		strings.HasSuffix(name, ".webm") ||
		strings.HasSuffix(name, ".opus")
}

// Scheduler periodically removes stale files from a directory; used to keep
// the download area bounded on long-lived runs under the status server.
type Scheduler struct {
	dir             string
	intervalMinutes int
	maxAgeHours     int
	stopChan        chan struct{}
}

// NewScheduler creates a cleanup scheduler for dir.
func NewScheduler(dir string, intervalMinutes, maxAgeHours int) *Scheduler {
	return &Scheduler{
		dir:             dir,
		intervalMinutes: intervalMinutes,
		maxAgeHours:     maxAgeHours,
		stopChan:        make(chan struct{}),
	}
}

// Start begins periodic cleanup.
func (s *Scheduler) Start() {
	s.sweep()

	ticker := time.NewTicker(time.Duration(s.intervalMinutes) * time.Minute)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	log.Printf("Cleanup scheduler started (interval: %dm, max age: %dh)", s.intervalMinutes, s.maxAgeHours)
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) sweep() {
	maxAge := time.Duration(s.maxAgeHours) * time.Hour
	now := time.Now()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isTransient(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > maxAge {
			path := filepath.Join(s.dir, entry.Name())
			if err := os.Remove(path); err != nil {
				log.Printf("Failed to remove stale file %s: %v", path, err)
			}
		}
	}
}

// EnsureDirExists creates dir (and parents) if absent.
func EnsureDirExists(dir string) error {
	return os.MkdirAll(dir, 0755)
}
