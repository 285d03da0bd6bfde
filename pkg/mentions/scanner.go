// Package mentions finds entity mentions in prose with a single
// Aho-Corasick automaton compiled from entity names. It backs the
// mention statistics shown on entity cards and the related-entity
// links on pattern detail views.
package mentions

import (
	"strings"
	"unicode"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/kittclouds/mythos/pkg/catalog"
)

// stopWords filters degenerate single-word surfaces that would match
// everywhere ("the", "of", ...). Entity names that normalize to a
// stopword are skipped at compile time.
var stopWords = map[string]bool{
	"the": true, "of": true, "and": true, "a": true, "an": true,
	"to": true, "in": true, "on": true, "for": true, "at": true, "by": true,
	"is": true, "it": true, "as": true, "be": true, "was": true,
	"are": true, "with": true, "from": true, "into": true,
	"that": true, "this": true, "has": true, "have": true, "had": true,
	"god": true, "goddess": true, "king": true, "queen": true,
}

// Normalize cleans and lowercases a surface form for matching.
func Normalize(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	for _, ch := range s {
		c := unicode.ToLower(ch)
		if c == '’' { // curly apostrophe -> straight
			out.WriteRune('\'')
			continue
		}
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '\'' {
			out.WriteRune(c)
		} else {
			out.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(out.String()), " ")
}

// Mention is one detected entity occurrence in text.
type Mention struct {
	EntityName  string
	Start       int // byte offset
	End         int
	MatchedText string
}

// Scanner scans prose for known entity names.
type Scanner struct {
	ac           ahocorasick.AhoCorasick
	patternNames []string // pattern index -> entity name
}

// NewScanner compiles an automaton from the entity catalog. Names
// that normalize to a stopword or to nothing are skipped.
func NewScanner(entities []*catalog.Entity) *Scanner {
	var patterns []string
	var names []string
	seen := make(map[string]bool)

	for _, e := range entities {
		key := Normalize(e.Name)
		if key == "" || stopWords[key] || seen[key] {
			continue
		}
		seen[key] = true
		patterns = append(patterns, key)
		names = append(names, e.Name)
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})

	return &Scanner{
		ac:           builder.Build(patterns),
		patternNames: names,
	}
}

// Scan finds all entity mentions in text in one O(n) pass.
func (s *Scanner) Scan(text string) []Mention {
	normalized := strings.ToLower(text)
	matches := s.ac.FindAll(normalized)

	result := make([]Mention, 0, len(matches))
	for _, m := range matches {
		result = append(result, Mention{
			EntityName:  s.patternNames[m.Pattern()],
			Start:       m.Start(),
			End:         m.End(),
			MatchedText: text[m.Start():m.End()],
		})
	}
	return result
}

// Count aggregates mention counts per entity name across texts.
func (s *Scanner) Count(texts ...string) map[string]int {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, m := range s.Scan(text) {
			counts[m.EntityName]++
		}
	}
	return counts
}

// RelatedEntities returns the distinct entity names mentioned in a
// pattern's description, in first-mention order. Useful for checking
// the hand-authored related_entities list against the prose.
func (s *Scanner) RelatedEntities(p *catalog.Pattern) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range s.Scan(p.Description) {
		if !seen[m.EntityName] {
			seen[m.EntityName] = true
			names = append(names, m.EntityName)
		}
	}
	return names
}
