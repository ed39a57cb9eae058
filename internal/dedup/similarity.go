package dedup

import "strings"

// Similarity returns a Ratcliff-Obershelp ratio in [0, 1] between the two
// strings, case-insensitive. Two empty strings are identical (ratio 1).
func Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchLen(ra, rb)) / float64(total)
}

// matchLen counts matched runes by finding the longest common substring,
// then recursing into the unmatched pieces on either side of it.
func matchLen(a, b []rune) int {
	ai, bi, n := longestCommonSubstring(a, b)
	if n == 0 {
		return 0
	}
	return n + matchLen(a[:ai], b[:bi]) + matchLen(a[ai+n:], b[bi+n:])
}

// longestCommonSubstring returns the start offsets and length of the
// longest run of runes common to a and b, preferring the earliest
// occurrence on ties. Uses a rolling one-row table.
func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			if a[i] != b[j] {
				cur[j+1] = 0
				continue
			}
			k := prev[j] + 1
			cur[j+1] = k
			if k > size {
				size = k
				ai = i - k + 1
				bi = j - k + 1
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}
