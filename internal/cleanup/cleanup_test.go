package cleanup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRemoveTransient(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"vid1.mp3", "vid2.mp3.part", "vid3.webm.ytdl"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// Chunk directory with artifacts must survive.
	chunkDir := filepath.Join(dir, "vid1", "manual")
	if err := os.MkdirAll(chunkDir, 0755); err != nil {
		t.Fatal(err)
	}
	kept := filepath.Join(chunkDir, "0_5.mp3")
	if err := os.WriteFile(kept, []byte("chunk"), 0644); err != nil {
		t.Fatal(err)
	}

	RemoveTransient(dir)

	for _, name := range []string{"vid1.mp3", "vid2.mp3.part", "vid3.webm.ytdl"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("transient file %s not removed", name)
		}
	}
	if _, err := os.Stat(kept); err != nil {
		t.Errorf("chunk artifact removed: %v", err)
	}
}

func TestRemoveTransientMissingDir(t *testing.T) {
	// Must not panic or log spuriously for an absent directory.
	RemoveTransient(filepath.Join(t.TempDir(), "nope"))
}
