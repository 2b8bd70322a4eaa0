// Package moderation masks blocked terms in free-text review comments
// before they are persisted.
//
// Matching is deliberately substring-based rather than word-boundary-based:
// a blocked short term embedded in a longer legitimate word is still masked.
// That false positive is an accepted trade-off, not a bug. Punctuation is
// stripped before matching, so "b.a.d" matches a blocked "bad"; whitespace
// is preserved, so "b a d" does not.
package moderation

import (
	"strings"
	"unicode"
)

// punctuation stripped during normalization.
const punctuation = ".,!?;()&%$#@"

// mask replaces every matched span. Fixed length regardless of the term,
// so the stored text leaks nothing about which term was hit.
const mask = "****"

// Normalize lowercases s and strips the punctuation set. Used for matching
// only; the stored comment keeps its original punctuation outside masked
// spans.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(punctuation, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Sanitizer masks blocked-term occurrences in comments. It holds only the
// immutable term set and is safe for concurrent use.
type Sanitizer struct {
	terms *TermSet
}

func NewSanitizer(ts *TermSet) *Sanitizer { return &Sanitizer{terms: ts} }

// Mask returns comment with every blocked-term occurrence replaced by a
// fixed-length asterisk mask. Everything outside matched spans is returned
// byte-for-byte as submitted; a comment with zero matches comes back
// unchanged. Punctuation interleaved inside a match is swallowed by the
// mask together with the term itself.
func (s *Sanitizer) Mask(comment string) string {
	orig := []rune(comment)

	// Normalized view plus a back-reference from each normalized rune to
	// its position in the original.
	norm := make([]rune, 0, len(orig))
	backRef := make([]int, 0, len(orig))
	for i, r := range orig {
		if strings.ContainsRune(punctuation, r) {
			continue
		}
		norm = append(norm, unicode.ToLower(r))
		backRef = append(backRef, i)
	}

	masked := make([]bool, len(orig))
	found := false
	for _, term := range s.terms.terms {
		needle := []rune(term)
		for from := 0; ; {
			at := indexRunes(norm, needle, from)
			if at < 0 {
				break
			}
			lo, hi := backRef[at], backRef[at+len(needle)-1]
			for j := lo; j <= hi; j++ {
				masked[j] = true
			}
			found = true
			from = at + 1 // overlapping occurrences still get caught
		}
	}
	if !found {
		return comment
	}

	var b strings.Builder
	b.Grow(len(comment))
	for i := 0; i < len(orig); i++ {
		if !masked[i] {
			b.WriteRune(orig[i])
			continue
		}
		b.WriteString(mask)
		for i+1 < len(orig) && masked[i+1] {
			i++
		}
	}
	return b.String()
}

// indexRunes finds needle in haystack at or after from, in rune space.
// strings.Index is byte-oriented and would misalign the back-references
// for multi-byte input.
func indexRunes(haystack, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		ok := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}
