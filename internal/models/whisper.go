package models

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"sync"
)

// WhisperIdentifier wraps OpenAI Whisper's language detection through a
// Python helper script (scripts/lang_id.py) that loads the model once per
// invocation and prints JSON on stdout.
type WhisperIdentifier struct {
	modelName string
	device    string
	python    string
	mu        sync.Mutex // one model instance, one compute device
}

// NewWhisperIdentifier creates the whisper language identifier. Model names
// follow whisper's sizes (tiny/base/small/medium/large); small is the
// default.
func NewWhisperIdentifier(cfg ModelConfig) *WhisperIdentifier {
	modelName := cfg.Model
	if modelName == "" {
		modelName = "small"
	}
	device := cfg.Device
	if device == "" {
		device = "cpu"
	}

	log.Printf("Initializing whisper language identifier (model: %s, device: %s)", modelName, device)

	return &WhisperIdentifier{
		modelName: modelName,
		device:    device,
		python:    pythonCmd(cfg),
	}
}

type langIDOutput struct {
	Language string `json:"language"`
}

// Detect returns the detected language code (e.g. "hi", "en") for the audio
// file. Calls are serialized; the wrapped model is not safe for concurrent
// invocation.
func (w *WhisperIdentifier) Detect(ctx context.Context, audioPath string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	cmd := exec.CommandContext(ctx, w.python, "scripts/lang_id.py",
		"--model", w.modelName,
		"--device", w.device,
		audioPath,
	)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("language detection failed for %s: %v\nStderr: %s", audioPath, err, exitErr.Stderr)
		}
		return "", fmt.Errorf("language detection failed for %s: %v", audioPath, err)
	}

	var result langIDOutput
	if err := json.Unmarshal(output, &result); err != nil {
		return "", fmt.Errorf("failed to parse language detection output: %v", err)
	}
	return result.Language, nil
}
