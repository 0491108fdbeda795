package segmenter

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/codebuildervaibhav/speech-corpus/internal/types"
)

// RunCommand executes an external command and returns its combined output.
// Injectable so slicing logic is testable without ffmpeg installed.
type RunCommand func(ctx context.Context, name string, args ...string) ([]byte, error)

func runWithExec(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Segmenter cuts one downloaded audio track into caption-aligned chunks.
type Segmenter struct {
	format string
	run    RunCommand
}

// New creates a segmenter producing chunks in the given audio format
// (extension without dot, e.g. "mp3").
func New(format string) *Segmenter {
	return &Segmenter{format: format, run: runWithExec}
}

// Segment downmixes audioPath to mono, cuts one chunk per caption segment
// into outDir, then writes the chunk manifest (transcript.json) in the same
// directory. The manifest is written only after every chunk export
// succeeded, so a present manifest is always complete; a missing one means
// an interrupted run and must be recomputed.
//
// An undecodable source fails the whole call; no partial manifest is left.
func (s *Segmenter) Segment(ctx context.Context, audioPath, outDir string, segments types.CaptionSet) (types.ChunkManifest, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chunk directory %s: %v", outDir, err)
	}

	monoPath := filepath.Join(outDir, fmt.Sprintf("mono_%s.%s", uuid.New().String(), s.format))
	defer os.Remove(monoPath)

	// Single-channel source regardless of the original channel count.
	output, err := s.run(ctx, "ffmpeg",
		"-y",
		"-i", audioPath,
		"-ac", "1",
		monoPath,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %v\nOutput: %s", audioPath, err, output)
	}

	manifest := make(types.ChunkManifest, len(segments))
	for _, seg := range segments {
		end := seg.Start + seg.Duration
		name := fmt.Sprintf("%s_%s.%s", formatSeconds(seg.Start), formatSeconds(end), s.format)
		chunkPath := filepath.Join(outDir, name)

		// -ss/-to after -i for sample-accurate boundaries.
		output, err := s.run(ctx, "ffmpeg",
			"-y",
			"-i", monoPath,
			"-ss", formatSeconds(seg.Start),
			"-to", formatSeconds(end),
			chunkPath,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to export chunk %s: %v\nOutput: %s", name, err, output)
		}
		manifest[name] = seg.Text
	}

	if err := WriteManifest(outDir, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// formatSeconds renders a boundary using the shortest decimal form of the
// original float, matching the chunk naming scheme (0_5.mp3, 12.5_16.2.mp3).
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
