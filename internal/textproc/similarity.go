package textproc

import "strings"

// LongestCommonSubstring computes the character-level longest common
// subsequence of a and b, then keeps only whole words from it.
//
// The DP table is the classic (len(a)+1) x (len(b)+1) LCS table over rune
// sequences; backtracking takes the diagonal on equality and otherwise moves
// toward the larger neighbor, preferring the first string's index on ties.
// Because character-level matching can stitch letters from unrelated words,
// the raw subsequence is re-filtered: only whole words that appear in either
// input's own word set survive.
//
// Quadratic in input length; callers operate on single caption-segment text.
func LongestCommonSubstring(a, b string) string {
	ra := []rune(a)
	rb := []rune(b)
	m := len(ra)
	n := len(rb)

	table := make([][]int, m+1)
	for i := range table {
		table[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if ra[i-1] == rb[j-1] {
				table[i][j] = table[i-1][j-1] + 1
			} else if table[i-1][j] >= table[i][j-1] {
				table[i][j] = table[i-1][j]
			} else {
				table[i][j] = table[i][j-1]
			}
		}
	}

	var common []rune
	i, j := m, n
	for i > 0 && j > 0 {
		switch {
		case ra[i-1] == rb[j-1]:
			common = append(common, ra[i-1])
			i--
			j--
		case table[i-1][j] > table[i][j-1]:
			i--
		default:
			j--
		}
	}
	for l, r := 0, len(common)-1; l < r; l, r = l+1, r-1 {
		common[l], common[r] = common[r], common[l]
	}

	allWords := make(map[string]struct{})
	for _, w := range strings.Fields(a) {
		allWords[w] = struct{}{}
	}
	for _, w := range strings.Fields(b) {
		allWords[w] = struct{}{}
	}

	var kept []string
	for _, w := range strings.Fields(string(common)) {
		if _, ok := allWords[w]; ok {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// PercentMatch scores a common substring against the mean character length
// of the two inputs, 0..100. Lengths are in runes. Symmetric in a and b.
func PercentMatch(a, b, substring string) float64 {
	meanLen := float64(len([]rune(a))+len([]rune(b))) / 2
	if meanLen == 0 {
		return 0
	}
	return float64(len([]rune(substring))) / meanLen * 100
}
