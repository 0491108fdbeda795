package segmenter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codebuildervaibhav/speech-corpus/internal/types"
)

// fakeRun records ffmpeg invocations and creates the output file named by
// the last argument, standing in for a real export.
type fakeRun struct {
	calls [][]string
	fail  func(args []string) error
}

func (f *fakeRun) run(_ context.Context, name string, args ...string) ([]byte, error) {
	call := append([]string{name}, args...)
	f.calls = append(f.calls, call)
	if f.fail != nil {
		if err := f.fail(args); err != nil {
			return []byte("ffmpeg error"), err
		}
	}
	out := args[len(args)-1]
	if err := os.WriteFile(out, []byte("audio"), 0644); err != nil {
		return nil, err
	}
	return nil, nil
}

func TestSegmentProducesExpectedChunks(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "video1", "manual")

	fake := &fakeRun{}
	s := New("mp3")
	s.run = fake.run

	segments := types.CaptionSet{
		{Text: "पहला", Start: 0, Duration: 5},
		{Text: "दूसरा", Start: 10, Duration: 5},
	}
	manifest, err := s.Segment(context.Background(), filepath.Join(dir, "track.mp3"), outDir, segments)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}

	if len(manifest) != 2 {
		t.Fatalf("manifest has %d entries, want 2", len(manifest))
	}
	if manifest["0_5.mp3"] != "पहला" {
		t.Errorf("manifest[0_5.mp3] = %q", manifest["0_5.mp3"])
	}
	if manifest["10_15.mp3"] != "दूसरा" {
		t.Errorf("manifest[10_15.mp3] = %q", manifest["10_15.mp3"])
	}

	// Downmix once plus one export per segment.
	if len(fake.calls) != 3 {
		t.Fatalf("ffmpeg called %d times, want 3", len(fake.calls))
	}
	downmix := strings.Join(fake.calls[0], " ")
	if !strings.Contains(downmix, "-ac 1") {
		t.Errorf("downmix call missing mono flag: %s", downmix)
	}

	for _, name := range []string{"0_5.mp3", "10_15.mp3"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("chunk %s not written: %v", name, err)
		}
	}
}

func TestSegmentFractionalBoundaries(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeRun{}
	s := New("mp3")
	s.run = fake.run

	segments := types.CaptionSet{
		{Text: "a", Start: 12.5, Duration: 3.7},
		{Text: "b", Start: 16.2, Duration: 1},
	}
	manifest, err := s.Segment(context.Background(), filepath.Join(dir, "t.mp3"), filepath.Join(dir, "out"), segments)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if _, ok := manifest["12.5_16.2.mp3"]; !ok {
		t.Errorf("missing fractional chunk, manifest: %v", manifest)
	}
	if _, ok := manifest["16.2_17.2.mp3"]; !ok {
		t.Errorf("missing chunk 16.2_17.2.mp3, manifest: %v", manifest)
	}
}

func TestSegmentWritesManifestLast(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	fake := &fakeRun{}
	fake.fail = func(args []string) error {
		// Fail the second chunk export (third call overall).
		if len(fake.calls) == 3 {
			return errors.New("boom")
		}
		return nil
	}
	s := New("mp3")
	s.run = fake.run

	segments := types.CaptionSet{
		{Text: "a", Start: 0, Duration: 5},
		{Text: "b", Start: 5, Duration: 5},
	}
	if _, err := s.Segment(context.Background(), filepath.Join(dir, "t.mp3"), outDir, segments); err == nil {
		t.Fatal("expected export failure")
	}
	if _, err := os.Stat(filepath.Join(outDir, ManifestFilename)); !os.IsNotExist(err) {
		t.Error("manifest written despite failed chunk export")
	}
}

func TestSegmentUndecodableSourceIsFatal(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeRun{fail: func(args []string) error { return errors.New("invalid data") }}
	s := New("mp3")
	s.run = fake.run

	_, err := s.Segment(context.Background(), filepath.Join(dir, "bad.mp3"), filepath.Join(dir, "out"), types.CaptionSet{{Text: "a", Start: 0, Duration: 1}})
	if err == nil {
		t.Fatal("expected decode failure")
	}
	if !strings.Contains(err.Error(), "failed to decode") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	manifest := types.ChunkManifest{
		"0_5.mp3":  "यह मैच अच्छा है",
		"5_10.mp3": "दूसरी पंक्ति",
	}
	if err := WriteManifest(dir, manifest); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	// Devanagari must be stored unescaped.
	raw, err := os.ReadFile(filepath.Join(dir, ManifestFilename))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if !strings.Contains(string(raw), "यह मैच अच्छा है") {
		t.Errorf("manifest not non-ASCII preserving: %s", raw)
	}

	loaded, err := LoadManifest(dir)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(loaded) != len(manifest) {
		t.Fatalf("loaded %d entries, want %d", len(loaded), len(manifest))
	}
	for k, v := range manifest {
		if loaded[k] != v {
			t.Errorf("loaded[%s] = %q, want %q", k, loaded[k], v)
		}
	}
}

func TestLoadManifestMissing(t *testing.T) {
	if _, err := LoadManifest(t.TempDir()); err == nil {
		t.Error("expected error for missing manifest")
	}
}
