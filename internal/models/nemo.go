package models

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"sync"
)

// NemoTranscriber wraps an NVIDIA NeMo conformer CTC model through a Python
// helper script (scripts/nemo_asr.py), JSON on stdout.
type NemoTranscriber struct {
	modelName string
	device    string
	python    string
	mu        sync.Mutex
}

// NewNemoTranscriber creates the NeMo ASR wrapper. The default model is the
// Hindi conformer CTC medium checkpoint.
func NewNemoTranscriber(cfg ModelConfig) *NemoTranscriber {
	modelName := cfg.Model
	if modelName == "" {
		modelName = "stt_hi_conformer_ctc_medium"
	}
	device := cfg.Device
	if device == "" {
		device = "cpu"
	}

	log.Printf("Initializing NeMo transcriber (model: %s, device: %s)", modelName, device)

	return &NemoTranscriber{
		modelName: modelName,
		device:    device,
		python:    pythonCmd(cfg),
	}
}

type nemoOutput struct {
	Hypotheses []string `json:"hypotheses"`
}

// Transcribe returns the model's hypotheses for the audio file, best first.
// Calls are serialized for the same reason as WhisperIdentifier.Detect.
func (n *NemoTranscriber) Transcribe(ctx context.Context, audioPath string) ([]string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	cmd := exec.CommandContext(ctx, n.python, "scripts/nemo_asr.py",
		"--model", n.modelName,
		"--device", n.device,
		audioPath,
	)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("transcription failed for %s: %v\nStderr: %s", audioPath, err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("transcription failed for %s: %v", audioPath, err)
	}

	var result nemoOutput
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("failed to parse transcription output: %v", err)
	}
	if len(result.Hypotheses) == 0 {
		return nil, fmt.Errorf("transcriber returned no hypotheses for %s", audioPath)
	}
	return result.Hypotheses, nil
}
