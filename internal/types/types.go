package types

// Chunk validation outcomes
const (
	ChunkSkipped          = "SKIPPED"
	ChunkLanguageRejected = "LANGUAGE_REJECTED"
	ChunkBelowThreshold   = "BELOW_THRESHOLD"
	ChunkAccepted         = "ACCEPTED"
)

// Transcript variant constants
const (
	VariantManual = "manual"
	VariantAuto   = "auto"
)

// CaptionSegment is one timed caption line as fetched from the transcript
// source. Start and Duration are in seconds.
type CaptionSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// CaptionSet is the ordered caption track of one video, one variant.
// Segments arrive time-ordered and non-overlapping; never re-sorted here.
type CaptionSet []CaptionSegment

// VideoMetadata describes one discovered video. VideoID and URL are both
// unique keys in the persistent store.
type VideoMetadata struct {
	VideoID         string `json:"video_id"`
	URL             string `json:"url"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"duration"`
	PublishedTime   string `json:"published_time"`
	ChannelName     string `json:"channel_name"`
	PublishedYear   int    `json:"published_year"`
}

// ChunkManifest maps an audio chunk filename to its source caption text.
// Persisted as transcript.json next to the chunks; the durable join key
// between audio artifacts and captions.
type ChunkManifest map[string]string

// SimilarityRecord is the cross-validation result for one accepted chunk.
// Field names follow the on-disk report format.
type SimilarityRecord struct {
	Normal       string  `json:"normal"`
	Nemo         string  `json:"nemo"`
	SubString    string  `json:"sub_string"`
	PercentMatch float64 `json:"percent_match"`
}

// SimilarityReport collects accepted records for one video-variant, keyed by
// chunk filename. Persisted as text_similarity.json only when non-empty.
type SimilarityReport map[string]SimilarityRecord
