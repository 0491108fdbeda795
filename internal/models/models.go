package models

import (
	"context"
	"fmt"
)

// LanguageIdentifier detects the spoken language of an audio file.
type LanguageIdentifier interface {
	Detect(ctx context.Context, audioPath string) (string, error)
}

// Transcriber produces transcription hypotheses for an audio file, best
// first. Callers use the first element.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]string, error)
}

// ModelConfig selects and parameterizes a model wrapper. Name picks the
// implementation; the rest is passed through to it.
type ModelConfig struct {
	Name   string `yaml:"name"`
	Model  string `yaml:"model"`
	Device string `yaml:"device"`
	Python string `yaml:"python"`
}

// NewLanguageIdentifier builds the identifier named in cfg. Implementations
// are selected by name, not by runtime type inspection.
func NewLanguageIdentifier(cfg ModelConfig) (LanguageIdentifier, error) {
	switch cfg.Name {
	case "whisper":
		return NewWhisperIdentifier(cfg), nil
	default:
		return nil, fmt.Errorf("unknown language identifier %q", cfg.Name)
	}
}

// NewTranscriber builds the transcriber named in cfg.
func NewTranscriber(cfg ModelConfig) (Transcriber, error) {
	switch cfg.Name {
	case "nemo":
		return NewNemoTranscriber(cfg), nil
	default:
		return nil, fmt.Errorf("unknown transcriber %q", cfg.Name)
	}
}

func pythonCmd(cfg ModelConfig) string {
	if cfg.Python != "" {
		return cfg.Python
	}
	return "python"
}
