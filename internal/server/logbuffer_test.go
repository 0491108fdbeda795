package server

import "testing"

func TestLogBufferKeepsRecentLines(t *testing.T) {
	lb := NewLogBuffer()
	for i := 0; i < 1100; i++ {
		if _, err := lb.Write([]byte("line\n")); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(lb.Lines()); got != 1000 {
		t.Errorf("buffer holds %d lines, want 1000", got)
	}
}

func TestLogBufferSubscribe(t *testing.T) {
	lb := NewLogBuffer()
	ch, cancel := lb.Subscribe()
	defer cancel()

	lb.Write([]byte("hello\n"))
	select {
	case line := <-ch:
		if line != "hello\n" {
			t.Errorf("got %q", line)
		}
	default:
		t.Fatal("no line delivered to subscriber")
	}

	cancel()
	// Writes after cancel must not block or panic.
	lb.Write([]byte("after\n"))
}
