// Package namevar generates normalized spelling variations of game
// names for fuzzy catalog matching.
//
// ROM naming in the wild mixes No-Intro, GoodTools, and TOSEC style
// tags with inconsistent separators, article placement, numerals, and
// abbreviations. Rather than trying to normalize perfectly in one
// pass, Generate produces every plausible derived spelling of a name
// and leaves precision to the match cascade.
package namevar

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	parenGroups    = regexp.MustCompile(`\([^)]*\)`)
	bracketGroups  = regexp.MustCompile(`\[[^\]]*\]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
	punctuation    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	trailingDigits = regexp.MustCompile(`\s*\d+\s*$`)
)

// separators seen across naming conventions. " - " last so the plain
// dash form has already been produced when it applies.
var separators = []string{"_", "-", ".", "+", "&", "'", "!", "?", ":", ";", " - "}

// romanNumerals maps numeral fragments to their Arabic form. Applied
// as plain text replacement, not boundary-safe: stray rewrites inside
// longer tokens produce variants that simply never match a catalog
// key, while the loose form catches "Street Fighter II" style names
// whatever their surrounding spacing.
var romanNumerals = []struct{ roman, arabic string }{
	{" II", " 2"}, {" III", " 3"}, {" IV", " 4"}, {" V", " 5"},
	{"II ", "2 "}, {"III ", "3 "}, {"IV ", "4 "}, {"V ", "5 "},
	{"II", "2"}, {"III", "3"}, {"IV", "4"}, {"V", "5"},
}

// abbreviations is applied in both directions.
var abbreviations = []struct{ short, long string }{
	{"Dr.", "Doctor"},
	{"Mr.", "Mister"},
	{"Bros.", "Brothers"},
	{"Co.", "Company"},
	{"&", "and"},
	{"vs.", "versus"},
	{"vs", "versus"},
}

// variantSet accumulates candidates, deduplicating while preserving
// first-insertion order. Order matters downstream: the exact-match
// strategy walks variations front to back, so earlier entries carry
// higher priority.
type variantSet struct {
	seen map[string]struct{}
	list []string
}

func newVariantSet() *variantSet {
	return &variantSet{seen: make(map[string]struct{})}
}

func (s *variantSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.list = append(s.list, v)
}

// snapshot returns a copy of the current contents so a pass can
// iterate while adding.
func (s *variantSet) snapshot() []string {
	out := make([]string, len(s.list))
	copy(out, s.list)
	return out
}

func collapse(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}

// Generate returns the spelling variations of name, most reliable
// first. Deterministic, and never empty for a non-empty name.
func Generate(name string) []string {
	original := strings.TrimSpace(name)
	if original == "" {
		return nil
	}

	set := newVariantSet()
	set.add(original)
	set.add(strings.ToLower(original))

	// Tag groups in parentheses or brackets carry region and release
	// info, never identity. The stripped string becomes the base for
	// everything after.
	current := original
	for _, re := range []*regexp.Regexp{parenGroups, bracketGroups} {
		cleaned := collapse(strings.TrimSpace(re.ReplaceAllString(current, "")))
		if cleaned != "" {
			set.add(cleaned)
			set.add(strings.ToLower(cleaned))
			current = cleaned
		}
	}

	// Separator forms: each separator present yields a
	// replaced-by-space and a deleted form.
	for _, v := range set.snapshot() {
		for _, sep := range separators {
			if !strings.Contains(v, sep) {
				continue
			}
			spaced := collapse(strings.TrimSpace(strings.ReplaceAll(v, sep, " ")))
			set.add(spaced)
			set.add(strings.ToLower(spaced))

			removed := collapse(strings.TrimSpace(strings.ReplaceAll(v, sep, "")))
			set.add(removed)
			set.add(strings.ToLower(removed))
		}
	}

	// Definite-article moves: "The X" <-> "X, The".
	for _, v := range set.snapshot() {
		lower := strings.ToLower(v)
		if strings.HasPrefix(lower, "the ") {
			rest := strings.TrimSpace(v[4:])
			set.add(rest)
			set.add(strings.ToLower(rest))
			moved := rest + ", The"
			set.add(moved)
			set.add(strings.ToLower(moved))
		}
		if strings.HasSuffix(lower, ", the") {
			rest := strings.TrimSpace(v[:len(v)-5])
			set.add(rest)
			set.add(strings.ToLower(rest))
			moved := "The " + rest
			set.add(moved)
			set.add(strings.ToLower(moved))
		}
	}

	// Punctuation-free forms.
	for _, v := range set.snapshot() {
		stripped := collapse(strings.TrimSpace(punctuation.ReplaceAllString(v, " ")))
		if stripped != "" {
			set.add(stripped)
			set.add(strings.ToLower(stripped))
		}
	}

	// Numeral forms: Roman to Arabic, plus a trailing-number-free form.
	for _, v := range set.snapshot() {
		lower := strings.ToLower(v)
		for _, rn := range romanNumerals {
			if strings.Contains(lower, strings.ToLower(rn.roman)) {
				converted := strings.ReplaceAll(v, rn.roman, rn.arabic)
				set.add(converted)
				set.add(strings.ToLower(converted))
			}
		}

		noTrailing := strings.TrimSpace(trailingDigits.ReplaceAllString(v, ""))
		if noTrailing != v {
			set.add(noTrailing)
			set.add(strings.ToLower(noTrailing))
		}
	}

	// Abbreviation forms, both directions.
	for _, v := range set.snapshot() {
		lower := strings.ToLower(v)
		for _, ab := range abbreviations {
			if strings.Contains(lower, strings.ToLower(ab.short)) {
				expanded := strings.ReplaceAll(v, ab.short, ab.long)
				set.add(expanded)
				set.add(strings.ToLower(expanded))
			}
			if strings.Contains(lower, strings.ToLower(ab.long)) {
				abbreviated := strings.ReplaceAll(v, ab.long, ab.short)
				set.add(abbreviated)
				set.add(strings.ToLower(abbreviated))
			}
		}
	}

	// Final cleanup: collapse whitespace, drop tiny candidates, dedupe
	// keeping first-seen order.
	out := make([]string, 0, len(set.list))
	seen := make(map[string]struct{}, len(set.list))
	for _, v := range set.list {
		cleaned := collapse(strings.TrimSpace(v))
		if utf8.RuneCountInString(cleaned) < 2 {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}

	// A single-character name filters down to nothing; keep the
	// original so short stems still get a chance at an exact match.
	if len(out) == 0 {
		out = append(out, original)
		if lower := strings.ToLower(original); lower != original {
			out = append(out, lower)
		}
	}
	return out
}
