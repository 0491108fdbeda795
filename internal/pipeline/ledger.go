package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Ledger is the append-only record of fully completed queries. A query in
// the ledger is skipped outright on restart.
type Ledger struct {
	path string
	mu   sync.Mutex
	seen map[string]struct{}
}

// LoadLedger reads the ledger at path, one query per line. A missing file
// is an empty ledger.
func LoadLedger(path string) (*Ledger, error) {
	l := &Ledger{path: path, seen: make(map[string]struct{})}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("failed to open ledger %s: %v", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			l.seen[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %v", path, err)
	}
	return l, nil
}

// Contains reports whether the query completed in a previous run.
func (l *Ledger) Contains(query string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[query]
	return ok
}

// Append records a completed query, flushing the line immediately so a
// crash right after completion does not lose the marker.
func (l *Ledger) Append(query string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[query]; ok {
		return nil
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open ledger for append: %v", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, query); err != nil {
		return fmt.Errorf("failed to append to ledger: %v", err)
	}
	l.seen[query] = struct{}{}
	return nil
}
