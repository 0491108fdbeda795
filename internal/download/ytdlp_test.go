package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDownloadSkipsExistingFile(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "vid1.mp3")
	if err := os.WriteFile(existing, []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}

	called := false
	d := New("mp3")
	d.run = func(context.Context, string, ...string) ([]byte, error) {
		called = true
		return nil, nil
	}

	path, err := d.Download(context.Background(), "https://youtube.com/watch?v=vid1", "vid1", dir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if path != existing {
		t.Errorf("path = %s, want %s", path, existing)
	}
	if called {
		t.Error("yt-dlp invoked despite existing file")
	}
}

func TestDownloadInvokesYtDlp(t *testing.T) {
	dir := t.TempDir()

	var gotArgs []string
	d := New("mp3")
	d.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = append([]string{name}, args...)
		return nil, os.WriteFile(filepath.Join(dir, "vid2.mp3"), []byte("audio"), 0644)
	}

	path, err := d.Download(context.Background(), "https://youtube.com/watch?v=vid2", "vid2", dir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if filepath.Base(path) != "vid2.mp3" {
		t.Errorf("path = %s", path)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.HasPrefix(joined, "yt-dlp ") || !strings.Contains(joined, "--audio-format mp3") {
		t.Errorf("unexpected invocation: %s", joined)
	}
}

func TestDownloadFailure(t *testing.T) {
	d := New("mp3")
	d.run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte("network error"), errors.New("exit status 1")
	}
	if _, err := d.Download(context.Background(), "u", "vid3", t.TempDir()); err == nil {
		t.Fatal("expected download error")
	}
}
