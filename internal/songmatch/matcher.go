// Package songmatch resolves script song names against audio-analysis
// records. Script names are messy: segue notation, nicknames, reprise
// suffixes, punctuation variants. All lookups degrade to not-found rather
// than erroring; callers decide whether a miss is fatal.
package songmatch

import (
	"regexp"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// SegueToken is the canonical segue separator every spelling collapses to.
const SegueToken = ">"

// segueSpellings are collapsed to SegueToken. Longest first so "-->" is not
// split by the "->" rule.
var segueSpellings = []string{"-->", "~>", "->", "→"}

var repriseSuffix = regexp.MustCompile(`\s*\(reprise\)\s*$`)

// Matcher fuzzy-matches song names using normalization rules plus a static
// alias table. The table is data handed in at construction so it can grow
// without code changes.
type Matcher struct {
	// canonical name -> aliases, all normalized
	aliases map[string][]string
	// reverse index: alias -> canonical
	reverse map[string]string
}

// NewMatcher builds a matcher over the given alias table. Keys and values
// are normalized on the way in.
func NewMatcher(aliases map[string][]string) *Matcher {
	m := &Matcher{
		aliases: make(map[string][]string, len(aliases)),
		reverse: make(map[string]string),
	}
	for canonical, list := range aliases {
		nc := Normalize(canonical)
		normalized := make([]string, 0, len(list))
		for _, alias := range list {
			na := Normalize(alias)
			normalized = append(normalized, na)
			m.reverse[na] = nc
		}
		m.aliases[nc] = normalized
	}
	return m
}

// Normalize lowercases, strips reprise suffixes, unifies apostrophes and
// segue separators, and collapses whitespace.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "’", "'")
	s = strings.ReplaceAll(s, "‘", "'")
	s = repriseSuffix.ReplaceAllString(s, "")
	for _, spelling := range segueSpellings {
		s = strings.ReplaceAll(s, spelling, SegueToken)
	}
	return strings.Join(strings.Fields(s), " ")
}

// HasSegue reports whether a (raw) song name contains segue notation.
func HasSegue(name string) bool {
	return strings.Contains(Normalize(name), SegueToken)
}

// SplitSegue splits a normalized name into its segued parts.
func SplitSegue(normalized string) []string {
	raw := strings.Split(normalized, SegueToken)
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// MatchSongName reports whether a script song name refers to the same song
// as a candidate analysis record name.
func (m *Matcher) MatchSongName(scriptName, candidateName string) bool {
	a := Normalize(scriptName)
	b := Normalize(candidateName)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}

	partsA := SplitSegue(a)
	partsB := SplitSegue(b)
	if len(partsA) > 1 || len(partsB) > 1 {
		for _, pa := range partsA {
			for _, pb := range partsB {
				if m.partMatch(pa, pb) {
					return true
				}
			}
		}
		return false
	}

	return m.partMatch(a, b)
}

// partMatch compares two single (non-segue) normalized names.
func (m *Matcher) partMatch(a, b string) bool {
	if a == b {
		return true
	}
	if m.aliasMatch(a, b) || m.aliasMatch(b, a) {
		return true
	}
	if prefixOrSubstringMatch(a, b) {
		return true
	}
	return typoMatch(a, b)
}

// aliasMatch reports whether a is (or aliases to) the canonical name of b.
func (m *Matcher) aliasMatch(a, b string) bool {
	if canonical, ok := m.reverse[a]; ok {
		if canonical == b {
			return true
		}
		if c2, ok2 := m.reverse[b]; ok2 && c2 == canonical {
			return true
		}
	}
	if list, ok := m.aliases[a]; ok {
		for _, alias := range list {
			if alias == b {
				return true
			}
		}
	}
	return false
}

// prefixOrSubstringMatch accepts when the shorter name (at least 5 chars)
// appears inside the longer one.
func prefixOrSubstringMatch(a, b string) bool {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) < 5 {
		return false
	}
	return strings.Contains(longer, shorter)
}

// typoMatch tolerates a single edit between reasonably long names.
func typoMatch(a, b string) bool {
	if len(a) < 6 || len(b) < 6 {
		return false
	}
	distance := levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	return distance <= 1
}
