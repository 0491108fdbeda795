package server

import "sync"

// LogBuffer captures log output in a bounded in-memory ring and fans new
// lines out to websocket subscribers. It implements io.Writer so it can tee
// the standard logger.
type LogBuffer struct {
	mu          sync.Mutex
	lines       []string
	subscribers map[chan string]struct{}
}

// NewLogBuffer creates a buffer keeping the last 1000 lines.
func NewLogBuffer() *LogBuffer {
	return &LogBuffer{
		lines:       make([]string, 0, 1000),
		subscribers: make(map[chan string]struct{}),
	}
}

func (lb *LogBuffer) Write(p []byte) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	line := string(p)
	lb.lines = append(lb.lines, line)
	if len(lb.lines) > 1000 {
		lb.lines = lb.lines[len(lb.lines)-1000:]
	}
	for ch := range lb.subscribers {
		select {
		case ch <- line:
		default: // slow subscriber, drop the line
		}
	}
	return len(p), nil
}

// Lines returns a copy of the buffered lines.
func (lb *LogBuffer) Lines() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lines := make([]string, len(lb.lines))
	copy(lines, lb.lines)
	return lines
}

// Subscribe registers a live tail channel. Call the returned cancel func
// when done.
func (lb *LogBuffer) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 64)
	lb.mu.Lock()
	lb.subscribers[ch] = struct{}{}
	lb.mu.Unlock()

	cancel := func() {
		lb.mu.Lock()
		delete(lb.subscribers, ch)
		lb.mu.Unlock()
	}
	return ch, cancel
}
