package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codebuildervaibhav/speech-corpus/internal/models"
	"github.com/codebuildervaibhav/speech-corpus/internal/textproc"
	"github.com/codebuildervaibhav/speech-corpus/internal/types"
)

// ReportFilename is the per-directory similarity report artifact.
const ReportFilename = "text_similarity.json"

// MetadataStore is the slice of the persistent store the validator needs:
// check-then-insert of video metadata.
type MetadataStore interface {
	MetadataExists(videoID string) (bool, error)
	InsertMetadata(meta types.VideoMetadata) error
}

// Validator cross-checks audio chunks against their captions: language
// identification first, then a secondary transcription for chunks in the
// target language, scored with the LCS similarity.
type Validator struct {
	identifier  models.LanguageIdentifier
	transcriber models.Transcriber
	store       MetadataStore

	// TargetLanguage is the language code chunks must match (e.g. "hi").
	TargetLanguage string
	// Threshold is the percent-match a chunk must exceed to be retained.
	Threshold float64
}

// New creates a validator. store may be nil when metadata persistence is
// handled elsewhere.
func New(identifier models.LanguageIdentifier, transcriber models.Transcriber, store MetadataStore, targetLanguage string, threshold float64) *Validator {
	return &Validator{
		identifier:     identifier,
		transcriber:    transcriber,
		store:          store,
		TargetLanguage: targetLanguage,
		Threshold:      threshold,
	}
}

// Validate runs every chunk in the manifest through the identification and
// transcription gates and returns the accepted records. A non-empty report
// is written to audioDir as text_similarity.json; when meta is non-nil it is
// also inserted into the metadata store. Zero accepted chunks leave no
// report file and no metadata row.
//
// Per-chunk failures are logged and skipped; they never abort the remaining
// chunks of the video.
func (v *Validator) Validate(ctx context.Context, manifest types.ChunkManifest, audioDir string, meta *types.VideoMetadata) (types.SimilarityReport, error) {
	report := make(types.SimilarityReport)

	names := make([]string, 0, len(manifest))
	for name := range manifest {
		names = append(names, name)
	}
	sort.Strings(names)

	counts := make(map[string]int)
	for _, name := range names {
		caption := manifest[name]
		if strings.TrimSpace(caption) == "" {
			counts[types.ChunkSkipped]++
			continue
		}
		status, record, err := v.validateChunk(ctx, filepath.Join(audioDir, name), caption)
		if err != nil {
			log.Printf("Chunk %s/%s skipped: %v", filepath.Base(audioDir), name, err)
			counts[types.ChunkSkipped]++
			continue
		}
		counts[status]++
		if status == types.ChunkAccepted {
			report[name] = record
		}
	}
	log.Printf("Validated %s: %d accepted, %d below threshold, %d wrong language, %d skipped",
		audioDir, counts[types.ChunkAccepted], counts[types.ChunkBelowThreshold],
		counts[types.ChunkLanguageRejected], counts[types.ChunkSkipped])

	if len(report) == 0 {
		return report, nil
	}

	if err := writeReport(audioDir, report); err != nil {
		return nil, err
	}
	if meta != nil && v.store != nil {
		if err := v.persistMetadata(*meta); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// validateChunk walks one chunk through the state machine:
// Pending -> LanguageRejected | Scored -> Accepted | BelowThreshold.
func (v *Validator) validateChunk(ctx context.Context, audioPath, caption string) (string, types.SimilarityRecord, error) {
	language, err := v.identifier.Detect(ctx, audioPath)
	if err != nil {
		return "", types.SimilarityRecord{}, fmt.Errorf("language detection: %v", err)
	}
	if language != v.TargetLanguage {
		// Transcription is far more expensive than identification; a
		// rejected chunk never reaches the transcriber.
		return types.ChunkLanguageRejected, types.SimilarityRecord{}, nil
	}

	hypotheses, err := v.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return "", types.SimilarityRecord{}, fmt.Errorf("transcription: %v", err)
	}
	if len(hypotheses) == 0 {
		return "", types.SimilarityRecord{}, fmt.Errorf("transcription returned no hypotheses for %s", audioPath)
	}

	captionText := textproc.Normalize(caption)
	hypothesisText := textproc.Normalize(hypotheses[0])
	subString := textproc.LongestCommonSubstring(captionText, hypothesisText)
	percent := textproc.PercentMatch(captionText, hypothesisText, subString)

	record := types.SimilarityRecord{
		Normal:       captionText,
		Nemo:         hypothesisText,
		SubString:    subString,
		PercentMatch: percent,
	}
	if percent > v.Threshold {
		return types.ChunkAccepted, record, nil
	}
	return types.ChunkBelowThreshold, record, nil
}

func (v *Validator) persistMetadata(meta types.VideoMetadata) error {
	exists, err := v.store.MetadataExists(meta.VideoID)
	if err != nil {
		return fmt.Errorf("metadata lookup for %s: %v", meta.VideoID, err)
	}
	if exists {
		return nil
	}
	if err := v.store.InsertMetadata(meta); err != nil {
		return fmt.Errorf("metadata insert for %s: %v", meta.VideoID, err)
	}
	return nil
}

// writeReport persists the report atomically; readers never observe a
// partially computed report.
func writeReport(dir string, report types.SimilarityReport) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to marshal similarity report: %v", err)
	}

	tmp, err := os.CreateTemp(dir, ReportFilename+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create report temp file: %v", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write similarity report: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close report temp file: %v", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, ReportFilename)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to publish similarity report: %v", err)
	}
	return nil
}
