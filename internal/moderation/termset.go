package moderation

import "strings"

// TermSet is an immutable set of blocked terms. Terms are normalized
// (lowercased, punctuation stripped) once at construction; the set is
// read-only afterwards and safe for concurrent use.
type TermSet struct {
	terms []string
}

func NewTermSet(terms ...string) *TermSet {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		n := Normalize(t)
		if n == "" || strings.ContainsAny(n, " \t\n") {
			continue // whitespace is never stripped, so such a term can't match
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return &TermSet{terms: out}
}

func (ts *TermSet) Len() int { return len(ts.terms) }

// Terms returns a copy; the set itself is never mutated.
func (ts *TermSet) Terms() []string {
	return append([]string(nil), ts.terms...)
}

// DefaultTerms is the curated startup list: general profanity, Filipino
// terms, and common leetspeak spellings of both.
func DefaultTerms() []string {
	return []string{
		// general
		"ass", "bastard", "bitch", "crap", "damn", "dumbass",
		"fuck", "idiot", "moron", "shit", "stupid", "whore",
		// Filipino
		"bobo", "bwisit", "gago", "leche", "punyeta",
		"sarap", "tanga", "tarantado", "ulol",
		// obfuscated spellings
		"a55", "b1tch", "b0b0", "bw1sit", "fvck", "fck",
		"g4go", "pvnyeta", "s4rap", "sh1t", "5hit", "t4nga", "t4rantado",
	}
}

// Default builds the process-wide term set used when no custom list is
// configured.
func Default() *TermSet {
	return NewTermSet(DefaultTerms()...)
}
