package textproc

import (
	"regexp"
	"strings"

	"github.com/codebuildervaibhav/speech-corpus/internal/types"
)

var latinRun = regexp.MustCompile(`[a-zA-Z]+`)

// TokenClassifier reports tokens of a caption line considered outside the
// target language. Pluggable: the default counts contiguous Latin-letter
// runs, which misclassifies loanwords written in Latin script, but is a
// serviceable proxy for Devanagari captions.
type TokenClassifier func(text string) []string

// LatinTokens is the default TokenClassifier.
func LatinTokens(text string) []string {
	return latinRun.FindAllString(text, -1)
}

// PurityFilter rejects caption sets dominated by out-of-target-language
// tokens or too short to be useful.
type PurityFilter struct {
	Threshold float64 // reject when percent of non-target tokens exceeds this
	Classify  TokenClassifier
}

// NewPurityFilter returns a filter with the given rejection threshold and
// the Latin-run classifier.
func NewPurityFilter(threshold float64) *PurityFilter {
	return &PurityFilter{Threshold: threshold, Classify: LatinTokens}
}

// FilterCaptionSet applies the set-level purity decision. It cleans every
// segment in place, drops segments that clean to empty, and tallies token
// counts in a full pass before deciding. Returns the filtered set and true,
// or nil and false when the whole set is rejected.
//
// An individual segment is never partially retained past emptiness removal;
// accept or reject applies to the caption set as a whole.
func (f *PurityFilter) FilterCaptionSet(segments types.CaptionSet) (types.CaptionSet, bool) {
	if len(segments) < 2 {
		return nil, false
	}

	classify := f.Classify
	if classify == nil {
		classify = LatinTokens
	}

	var (
		filtered      types.CaptionSet
		nonTargetLen  int
		totalWordsLen int
	)
	for _, seg := range segments {
		seg.Text = CleanSegmentText(seg.Text)
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		nonTargetLen += len(classify(seg.Text))
		totalWordsLen += len(strings.Fields(seg.Text))
		filtered = append(filtered, seg)
	}

	if len(filtered) < 2 {
		return nil, false
	}

	// Epsilon guards the zero-division when every word count is zero.
	percent := float64(nonTargetLen) / (float64(totalWordsLen) + 1e-9) * 100
	if percent > f.Threshold {
		return nil, false
	}
	return filtered, true
}
