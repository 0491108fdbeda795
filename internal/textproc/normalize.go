package textproc

import (
	"regexp"
	"strings"
)

// Non-speech markers that caption authors insert for sound events. Removed
// before any comparison so they never count as words.
var nonSpeechMarkers = []string{
	"[संगीत]",
	"[Music]",
	"[music]",
	"[Applause]",
	"[applause]",
}

// asciiPunctuation matches Python's string.punctuation; the target-language
// additions are the Devanagari danda and the rupee sign.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" + "।₹"

var whitespaceRun = regexp.MustCompile(`[\x{200b}\s]+`)

// Normalize prepares caption or hypothesis text for comparison: newlines and
// non-breaking spaces become spaces, non-speech markers are dropped,
// punctuation maps to spaces, zero-width characters and whitespace runs
// collapse to a single space, and the result is trimmed.
//
// Both sides of a comparison must pass through this identically; normalizing
// only one silently degrades match scores.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, " ", " ")
	for _, marker := range nonSpeechMarkers {
		text = strings.ReplaceAll(text, marker, " ")
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(punctuation, r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(b.String(), " "))
}

// CleanSegmentText is the light cleanup used ahead of the purity filter:
// newline and NBSP handling plus music-marker removal, without punctuation
// stripping.
func CleanSegmentText(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, " ", "")
	for _, marker := range nonSpeechMarkers {
		text = strings.ReplaceAll(text, marker, " ")
	}
	return text
}
