package segmenter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codebuildervaibhav/speech-corpus/internal/types"
)

// ManifestFilename is the per-directory chunk manifest artifact.
const ManifestFilename = "transcript.json"

// WriteManifest persists the chunk manifest into dir as transcript.json,
// UTF-8 with non-ASCII preserved, via temp file and rename so readers never
// observe a half-written manifest.
func WriteManifest(dir string, manifest types.ChunkManifest) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(manifest); err != nil {
		return fmt.Errorf("failed to marshal manifest: %v", err)
	}

	tmp, err := os.CreateTemp(dir, ManifestFilename+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create manifest temp file: %v", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write manifest: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close manifest temp file: %v", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, ManifestFilename)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to publish manifest: %v", err)
	}
	return nil
}

// LoadManifest reads transcript.json back from dir. The validator always
// reloads from disk rather than trusting an in-memory copy; the persisted
// manifest is the stage boundary.
func LoadManifest(dir string) (types.ChunkManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFilename))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest in %s: %v", dir, err)
	}
	var manifest types.ChunkManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest in %s: %v", dir, err)
	}
	return manifest, nil
}
