package moderation

import (
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"
)

// TermScanner finds forbidden terms inside message content using an
// Aho-Corasick automaton built over the lowercased term list. Matching is a
// plain case-insensitive substring search: "bad" inside "badger" is a match.
type TermScanner struct {
	matcher *goahocorasick.Machine
	terms   []string
}

// NewTermScanner builds a scanner over the given terms. Empty and
// whitespace-only terms are skipped. A scanner built from an empty list is
// valid and never matches anything.
func NewTermScanner(terms []string) (*TermScanner, error) {
	kept := make([]string, 0, len(terms))
	patterns := make([][]rune, 0, len(terms))
	for _, t := range terms {
		if strings.TrimSpace(t) == "" {
			continue
		}
		kept = append(kept, t)
		patterns = append(patterns, []rune(strings.ToLower(t)))
	}

	s := &TermScanner{terms: kept}
	if len(patterns) == 0 {
		return s, nil
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	s.matcher = m
	return s, nil
}

// TermCount reports how many terms the scanner was built with.
func (s *TermScanner) TermCount() int {
	return len(s.terms)
}

// Scan returns the forbidden terms present in content, in term-list order,
// with each term's original casing and no duplicates. A nil result means the
// content is clean.
func (s *TermScanner) Scan(content string) []string {
	if s.matcher == nil || content == "" {
		return nil
	}

	haystack := []rune(strings.ToLower(content))
	spans := s.matcher.MultiPatternSearch(haystack, false)
	if len(spans) == 0 {
		return nil
	}

	found := make(map[string]bool, len(spans))
	for _, span := range spans {
		found[string(span.Word)] = true
	}

	var hits []string
	for _, term := range s.terms {
		if found[strings.ToLower(term)] {
			hits = append(hits, term)
		}
	}
	return hits
}

// ContainsAny reports whether content holds at least one forbidden term
// without allocating the full hit list.
func (s *TermScanner) ContainsAny(content string) bool {
	if s.matcher == nil || content == "" {
		return false
	}
	haystack := []rune(strings.ToLower(content))
	return len(s.matcher.MultiPatternSearch(haystack, true)) > 0
}
