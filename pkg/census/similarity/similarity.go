// Package similarity provides the approximate string matching primitive used
// by the resolver's fallback tier.
//
// The score is a partial ratio: the shorter string is slid across every
// equal-length window of the longer string and the best indel similarity
// wins. This rewards a query that contains a near-match fragment of a
// candidate name amid extra words ("literates in keralla" vs "kerala").
//
// Properties:
//   - Score is in [0, 100]; 100 means one string contains the other exactly.
//   - Symmetric: PartialRatio(a, b) == PartialRatio(b, a).
//   - Operates on runes, so multi-byte input is compared per character.
package similarity

// Ratio returns the indel similarity of a and b on a 0-100 scale:
// 100 * 2*LCS(a,b) / (len(a)+len(b)), where LCS is the longest common
// subsequence. Identical strings score 100, disjoint ones 0. Two empty
// strings score 100.
func Ratio(a, b string) float64 {
	return ratioRunes([]rune(a), []rune(b))
}

// PartialRatio returns the best Ratio of the shorter string against every
// window of the longer string with the same rune length. Argument order does
// not matter.
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		if len(rb) == 0 {
			return 100
		}
		return 0
	}

	best := 0.0
	for i := 0; i+len(ra) <= len(rb); i++ {
		score := ratioRunes(ra, rb[i:i+len(ra)])
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

func ratioRunes(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 100 * float64(2*lcs(a, b)) / float64(total)
}

// lcs computes the longest common subsequence length with two-row dynamic
// programming.
func lcs(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for j := 1; j <= len(b); j++ {
		for i := 1; i <= len(a); i++ {
			if a[i-1] == b[j-1] {
				curr[i] = prev[i-1] + 1
			} else if prev[i] >= curr[i-1] {
				curr[i] = prev[i]
			} else {
				curr[i] = curr[i-1]
			}
		}
		prev, curr = curr, prev
		for i := range curr {
			curr[i] = 0
		}
	}
	return prev[len(a)]
}
