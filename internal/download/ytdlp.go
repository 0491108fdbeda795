package download

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
)

// RunCommand executes an external command and returns its combined output.
type RunCommand func(ctx context.Context, name string, args ...string) ([]byte, error)

func runWithExec(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Downloader fetches a video's audio track with yt-dlp. Transport-level
// retries are yt-dlp's concern, not ours.
type Downloader struct {
	format string
	run    RunCommand
}

// New creates a downloader extracting audio in the given format (e.g. "mp3").
func New(format string) *Downloader {
	return &Downloader{format: format, run: runWithExec}
}

// Download extracts the audio of url into destDir as <videoID>.<format> and
// returns the file path. A pre-existing target file short-circuits the
// download, which makes interrupted runs resumable.
func (d *Downloader) Download(ctx context.Context, url, videoID, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %v", err)
	}

	audioPath := filepath.Join(destDir, videoID+"."+d.format)
	if _, err := os.Stat(audioPath); err == nil {
		log.Printf("Audio for %s already downloaded, skipping", videoID)
		return audioPath, nil
	}

	log.Printf("Downloading audio for %s", videoID)
	output, err := d.run(ctx, "yt-dlp",
		"-f", "m4a/bestaudio/best",
		"-x",
		"--audio-format", d.format,
		"-o", filepath.Join(destDir, videoID+".%(ext)s"),
		url,
	)
	if err != nil {
		return "", fmt.Errorf("yt-dlp failed for %s: %v\nOutput: %s", url, err, output)
	}

	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("yt-dlp reported success but %s is missing", audioPath)
	}
	return audioPath, nil
}
