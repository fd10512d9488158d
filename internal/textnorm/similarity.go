package textnorm

import "strings"

// DefaultNameThreshold is the word-match ratio above which two names are
// considered the same person.
const DefaultNameThreshold = 0.85

// Similarity scores two strings in [0,1] after comparison normalization.
// The score is 2*m/(len(a)+len(b)) where m is the number of matching
// characters found by recursive longest-common-substring decomposition.
func Similarity(a, b string) float64 {
	na := NormalizeForComparison(a)
	nb := NormalizeForComparison(b)
	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}
	m := similarChars(na, nb)
	return 2.0 * float64(m) / float64(len(na)+len(nb))
}

// similarChars counts matching characters: it locates the longest common
// substring, then recurses into the unmatched prefixes and suffixes.
func similarChars(a, b string) int {
	posA, posB, maxLen := 0, 0, 0
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			k := 0
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			if k > maxLen {
				posA, posB, maxLen = i, j, k
			}
		}
	}
	if maxLen == 0 {
		return 0
	}
	sum := maxLen
	if posA > 0 && posB > 0 {
		sum += similarChars(a[:posA], b[:posB])
	}
	if posA+maxLen < len(a) && posB+maxLen < len(b) {
		sum += similarChars(a[posA+maxLen:], b[posB+maxLen:])
	}
	return sum
}

// NamesMatch reports whether two person names plausibly refer to the same
// person. Exact normalized equality and containment (one name being a
// subset of the other, as with missing middle names) short-circuit to true;
// otherwise at least threshold of the longer name's words must find an
// identical or near-identical counterpart. Symmetric in its arguments.
func NamesMatch(name1, name2 string, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultNameThreshold
	}
	n1 := NormalizeName(name1)
	n2 := NormalizeName(name2)

	if n1 == n2 {
		return true
	}
	if n1 == "" || n2 == "" {
		return false
	}
	if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
		return true
	}

	longer := strings.Split(n1, " ")
	shorter := strings.Split(n2, " ")
	if len(shorter) > len(longer) {
		longer, shorter = shorter, longer
	}

	matches := 0
	for _, w1 := range longer {
		for _, w2 := range shorter {
			if w1 == w2 || Similarity(w1, w2) > threshold {
				matches++
				break
			}
		}
	}

	return float64(matches)/float64(len(longer)) >= threshold
}
