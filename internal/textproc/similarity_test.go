package textproc

import (
	"math"
	"testing"
)

func TestLongestCommonSubstringIdentity(t *testing.T) {
	phrases := []string{
		"यह मैच अच्छा है",
		"cricket match",
		"एक",
	}
	for _, p := range phrases {
		if got := LongestCommonSubstring(p, p); got != p {
			t.Errorf("LongestCommonSubstring(%q, %q) = %q, want the phrase itself", p, p, got)
		}
	}
}

func TestLongestCommonSubstringDropsPartialWords(t *testing.T) {
	// Character-level LCS of these stitches letters across word boundaries;
	// the whole-word re-filter must keep only words present in either input.
	a := "नमस्ते दुनिया"
	b := "नमस्कार दुनिया"
	got := LongestCommonSubstring(a, b)
	if got != "दुनिया" {
		t.Errorf("LongestCommonSubstring(%q, %q) = %q, want %q", a, b, got, "दुनिया")
	}
}

func TestLongestCommonSubstringEmpty(t *testing.T) {
	if got := LongestCommonSubstring("", "यह मैच"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
	if got := LongestCommonSubstring("यह मैच", ""); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestPercentMatchSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"यह मैच अच्छा है", "यह मैच अच्छा था"},
		{"एक दो तीन", "तीन दो एक"},
		{"hello world", "world"},
	}
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		subAB := LongestCommonSubstring(a, b)
		subBA := LongestCommonSubstring(b, a)
		pAB := PercentMatch(a, b, subAB)
		pBA := PercentMatch(b, a, subBA)
		if math.Abs(pAB-pBA) > 1e-9 {
			t.Errorf("PercentMatch not symmetric for (%q, %q): %f vs %f", a, b, pAB, pBA)
		}
	}
}

func TestPercentMatchEmptyInputs(t *testing.T) {
	if got := PercentMatch("", "", ""); got != 0 {
		t.Errorf("PercentMatch on empty inputs = %f, want 0", got)
	}
}

func TestHindiCaptionAgainstHypothesis(t *testing.T) {
	caption := "यह मैच अच्छा है"
	hypothesis := "यह मैच अच्छा था"

	sub := LongestCommonSubstring(caption, hypothesis)
	if sub != "यह मैच अच्छा" {
		t.Fatalf("common substring = %q, want %q", sub, "यह मैच अच्छा")
	}

	percent := PercentMatch(caption, hypothesis, sub)
	// 12 common runes against a mean length of 15 runes.
	want := 100 * 12.0 / 15.0
	if math.Abs(percent-want) > 1e-9 {
		t.Errorf("percent = %f, want %f", percent, want)
	}
	if percent <= 20 {
		t.Errorf("percent = %f, expected well above the retention threshold", percent)
	}
}
