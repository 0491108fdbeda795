package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"

	"github.com/codebuildervaibhav/speech-corpus/internal/cleanup"
	"github.com/codebuildervaibhav/speech-corpus/internal/discovery"
	"github.com/codebuildervaibhav/speech-corpus/internal/segmenter"
	"github.com/codebuildervaibhav/speech-corpus/internal/textproc"
	"github.com/codebuildervaibhav/speech-corpus/internal/types"
)

// Discovery finds videos for a query or channel.
type Discovery interface {
	Search(ctx context.Context, query string, maxPages int) ([]types.VideoMetadata, error)
	ListByChannel(ctx context.Context, channelID string) ([]types.VideoMetadata, error)
}

// TranscriptSource fetches a video's caption tracks.
type TranscriptSource interface {
	FetchTranscripts(ctx context.Context, videoID string) (*discovery.TranscriptVariants, error)
}

// Downloader fetches a video's audio track.
type Downloader interface {
	Download(ctx context.Context, url, videoID, destDir string) (string, error)
}

// Segmenter cuts audio into caption-aligned chunks and writes the manifest.
type Segmenter interface {
	Segment(ctx context.Context, audioPath, outDir string, segments types.CaptionSet) (types.ChunkManifest, error)
}

// Validator cross-validates chunks against captions.
type Validator interface {
	Validate(ctx context.Context, manifest types.ChunkManifest, audioDir string, meta *types.VideoMetadata) (types.SimilarityReport, error)
}

// URLStore is the persistent dedup store for video URLs.
type URLStore interface {
	URLExists(url string) (bool, error)
	InsertURL(url string) error
}

// Archiver mirrors accepted reports off-box. Optional.
type Archiver interface {
	ArchiveReport(videoID, variant, dir string) error
}

// Config is the orchestrator's explicit configuration; no ambient globals.
type Config struct {
	DataDir         string
	MaxPages        int
	Workers         int
	RemoveDownloads bool
}

// Components are the collaborators the orchestrator drives.
type Components struct {
	Discovery   Discovery
	Transcripts TranscriptSource
	Downloader  Downloader
	Segmenter   Segmenter
	Purity      *textproc.PurityFilter
	Validator   Validator
	URLs        URLStore
	Archiver    Archiver
}

// Orchestrator drives the per-query, per-video pipeline: dedup, download,
// segmentation, cross-validation, resume bookkeeping and cleanup. One
// video's failure never crosses into another.
type Orchestrator struct {
	cfg    Config
	c      Components
	ledger *Ledger
}

// New creates an orchestrator.
func New(cfg Config, c Components, ledger *Ledger) *Orchestrator {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxPages < 1 {
		cfg.MaxPages = 1
	}
	return &Orchestrator{cfg: cfg, c: c, ledger: ledger}
}

// Run processes every search query, then every channel. Errors on one unit
// are logged; the batch keeps going.
func (o *Orchestrator) Run(ctx context.Context, queries, channels []string) error {
	for _, query := range queries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := o.runUnit(ctx, query, func() ([]types.VideoMetadata, error) {
			return o.c.Discovery.Search(ctx, query, o.cfg.MaxPages)
		}); err != nil {
			log.Printf("Query %q failed: %v", query, err)
		}
	}
	for _, channel := range channels {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := o.runUnit(ctx, channel, func() ([]types.VideoMetadata, error) {
			return o.c.Discovery.ListByChannel(ctx, channel)
		}); err != nil {
			log.Printf("Channel %q failed: %v", channel, err)
		}
	}
	return nil
}

// runUnit runs one batch unit (a query or channel id). The ledger advances
// only after every discovered video completed or was skipped normally.
func (o *Orchestrator) runUnit(ctx context.Context, unit string, discover func() ([]types.VideoMetadata, error)) error {
	if o.ledger.Contains(unit) {
		log.Printf("Skipping %q: already in resume ledger", unit)
		return nil
	}

	videos, err := discover()
	if err != nil {
		return fmt.Errorf("discovery failed: %v", err)
	}
	log.Printf("Processing %d videos for %q", len(videos), unit)

	jobs := make(chan types.VideoMetadata)
	var wg sync.WaitGroup
	for i := 0; i < o.cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for video := range jobs {
				o.processVideoSafe(ctx, id, unit, video)
			}
		}(i)
	}
	for _, video := range videos {
		if ctx.Err() != nil {
			// Stop starting new videos; in-flight ones run to completion.
			break
		}
		jobs <- video
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.ledger.Append(unit); err != nil {
		return err
	}
	if o.cfg.RemoveDownloads {
		cleanup.RemoveTransient(o.downloadDir())
	}
	return nil
}

// processVideoSafe isolates panics per video so one bad video cannot take
// out the batch.
func (o *Orchestrator) processVideoSafe(ctx context.Context, workerID int, unit string, video types.VideoMetadata) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Worker %d: PANIC processing video %s (unit %q): %v\n%s",
				workerID, video.VideoID, unit, r, string(debug.Stack()))
		}
	}()
	o.processVideo(ctx, workerID, unit, video)
}

func (o *Orchestrator) processVideo(ctx context.Context, workerID int, unit string, video types.VideoMetadata) {
	outDir := filepath.Join(o.cfg.DataDir, video.VideoID)
	if _, err := os.Stat(outDir); err == nil {
		log.Printf("Worker %d: %s already has an output directory, skipping", workerID, video.VideoID)
		return
	}

	exists, err := o.c.URLs.URLExists(video.URL)
	if err != nil {
		log.Printf("Worker %d: URL lookup failed for %s: %v", workerID, video.VideoID, err)
		return
	}
	if exists {
		log.Printf("Worker %d: %s already recorded, skipping", workerID, video.VideoID)
		return
	}
	variants, err := o.c.Transcripts.FetchTranscripts(ctx, video.VideoID)
	if err != nil {
		log.Printf("Worker %d: transcript fetch failed for %s: %v", workerID, video.VideoID, err)
		return
	}

	// Purity-filter each caption variant before the expensive download.
	accepted := make(map[string]types.CaptionSet)
	if set, ok := o.c.Purity.FilterCaptionSet(variants.Manual); ok {
		accepted[types.VariantManual] = set
	}
	if set, ok := o.c.Purity.FilterCaptionSet(variants.Auto); ok {
		accepted[types.VariantAuto] = set
	}
	if len(accepted) == 0 {
		log.Printf("Worker %d: no usable caption variant for %s, skipping", workerID, video.VideoID)
		return
	}

	audioPath, err := o.c.Downloader.Download(ctx, video.URL, video.VideoID, o.downloadDir())
	if err != nil {
		log.Printf("Worker %d: download failed for %s: %v", workerID, video.VideoID, err)
		return
	}

	// The URL is recorded only once the expensive work is committed; a
	// download failure leaves the video unmarked for the next run.
	if err := o.c.URLs.InsertURL(video.URL); err != nil {
		log.Printf("Worker %d: URL insert failed for %s: %v", workerID, video.VideoID, err)
		return
	}
	o.appendURLList(video.URL)

	for _, variant := range []string{types.VariantManual, types.VariantAuto} {
		set, ok := accepted[variant]
		if !ok {
			continue
		}
		variantDir := filepath.Join(outDir, variant)

		if _, err := o.c.Segmenter.Segment(ctx, audioPath, variantDir, set); err != nil {
			// Decode failure is fatal for the video, not just the variant.
			log.Printf("Worker %d: segmentation failed for %s/%s: %v", workerID, video.VideoID, variant, err)
			return
		}

		// The persisted manifest, not the in-memory one, is the handoff
		// between segmentation and validation.
		manifest, err := segmenter.LoadManifest(variantDir)
		if err != nil {
			log.Printf("Worker %d: manifest reload failed for %s/%s: %v", workerID, video.VideoID, variant, err)
			continue
		}

		report, err := o.c.Validator.Validate(ctx, manifest, variantDir, &video)
		if err != nil {
			log.Printf("Worker %d: validation failed for %s/%s: %v", workerID, video.VideoID, variant, err)
			continue
		}
		log.Printf("Worker %d: %s/%s validated, %d/%d chunks accepted",
			workerID, video.VideoID, variant, len(report), len(manifest))

		if len(report) > 0 && o.c.Archiver != nil {
			if err := o.c.Archiver.ArchiveReport(video.VideoID, variant, variantDir); err != nil {
				log.Printf("Worker %d: archive failed for %s/%s: %v", workerID, video.VideoID, variant, err)
			}
		}
	}
}

func (o *Orchestrator) downloadDir() string {
	return filepath.Join(o.cfg.DataDir, "downloads")
}

// appendURLList mirrors inserted URLs into urls_list.txt for operator use.
func (o *Orchestrator) appendURLList(url string) {
	path := filepath.Join(o.cfg.DataDir, "urls_list.txt")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("Failed to open urls list: %v", err)
		return
	}
	defer f.Close()
	fmt.Fprintln(f, url)
}
