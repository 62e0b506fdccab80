// Package match finds catalog entries for ROM filenames through a
// cascade of strategies ordered strict to loose. Earlier strategies
// are cheap and precise; later ones trade precision for recall and
// only run when everything stricter has failed.
package match

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/romstackapp/romstack/internal/catalog"
	"github.com/romstackapp/romstack/internal/namevar"
)

const (
	// Substring matching only applies to short stems, and the
	// variation must cover enough of the key to rule out tiny
	// fragments hitting long names.
	substringStemMax = 12
	substringMinLen  = 4
	substringRatio   = 0.6

	// Similarity compares the leading variations against the leading
	// canonical names.
	similarityVariations = 15
	similarityNames      = 300
	similarityThreshold  = 0.70

	overlapNames    = 500
	overlapCoverage = 0.5

	singleWordNames  = 200
	singleWordMinLen = 4
	singleWordRatio  = 0.3
)

// Strategy identifies which cascade stage produced a match.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyDirect
	StrategyCaseFold
	StrategySubstring
	StrategySimilarity
	StrategyWordOverlap
	StrategySingleWord
)

func (s Strategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyCaseFold:
		return "case-insensitive"
	case StrategySubstring:
		return "substring"
	case StrategySimilarity:
		return "similarity"
	case StrategyWordOverlap:
		return "word-overlap"
	case StrategySingleWord:
		return "single-word"
	default:
		return "none"
	}
}

// Matcher resolves ROM filename stems against a catalog index. The
// index is treated as read-only, so one Matcher is safe for
// concurrent use as long as its tracer is nil.
type Matcher struct {
	index *catalog.Index
	trace *Tracer
}

// NewMatcher creates a matcher over index. trace may be nil.
func NewMatcher(index *catalog.Index, trace *Tracer) *Matcher {
	return &Matcher{index: index, trace: trace}
}

// Match runs the cascade for one filename stem. It returns the entry
// and the strategy that found it, or a nil entry and StrategyNone
// when nothing fires. Match never fails: any input yields a result.
func (m *Matcher) Match(stem string) (*catalog.Entry, Strategy) {
	variations := namevar.Generate(stem)
	m.trace.start(stem, variations)

	// 1. Direct lookup of each variation against the variant index.
	for _, v := range variations {
		if e, ok := m.index.Lookup(v); ok {
			m.trace.hit(StrategyDirect, v, e.CleanName)
			return e, StrategyDirect
		}
	}

	// 2. Case-insensitive equality across every key.
	for _, v := range variations {
		for _, key := range m.index.Keys() {
			if strings.EqualFold(v, key) {
				if e, ok := m.index.Lookup(key); ok {
					m.trace.hit(StrategyCaseFold, v, key)
					return e, StrategyCaseFold
				}
			}
		}
	}

	// 3. Substring containment, short stems only.
	if utf8.RuneCountInString(stem) <= substringStemMax {
		for _, v := range variations {
			lower := strings.ToLower(v)
			if utf8.RuneCountInString(lower) < substringMinLen {
				continue
			}
			for _, key := range m.index.Keys() {
				keyLower := strings.ToLower(key)
				if !strings.Contains(keyLower, lower) {
					continue
				}
				if float64(utf8.RuneCountInString(lower)) >= float64(utf8.RuneCountInString(keyLower))*substringRatio {
					if e, ok := m.index.Lookup(key); ok {
						m.trace.hit(StrategySubstring, v, key)
						return e, StrategySubstring
					}
				}
			}
		}
	}

	names := m.index.Names()

	// 4. Edit-distance similarity over the leading variations and
	// canonical names. Strictly-greater comparison keeps the first
	// pair seen on ties.
	var (
		bestScore float64
		bestName  string
	)
	for _, v := range variations[:min(len(variations), similarityVariations)] {
		vLower := strings.ToLower(v)
		for _, name := range names[:min(len(names), similarityNames)] {
			score := stringSimilarity(vLower, strings.ToLower(name))
			if score > bestScore && score >= similarityThreshold {
				bestScore = score
				bestName = name
			}
		}
	}
	if bestName != "" {
		// The winning name can have had all its variant keys taken
		// over by a later record; fall through when no entry backs it.
		if e, ok := m.index.EntryForName(bestName); ok {
			m.trace.scored(StrategySimilarity, stem, bestName, bestScore)
			return e, StrategySimilarity
		}
	}

	// 5. Word overlap between the stem and tag-stripped names: accept
	// when the shared tokens cover at least half of either side.
	stemWords := significantWords(stem)
	if len(stemWords) >= 1 {
		for _, name := range names[:min(len(names), overlapNames)] {
			nameWords := significantWords(stripTags(name))
			if len(nameWords) == 0 {
				continue
			}
			common := intersection(stemWords, nameWords)
			if len(common) == 0 {
				continue
			}
			stemCoverage := float64(len(common)) / float64(len(stemWords))
			nameCoverage := float64(len(common)) / float64(len(nameWords))
			if stemCoverage >= overlapCoverage || nameCoverage >= overlapCoverage {
				if e, ok := m.index.EntryForName(name); ok {
					m.trace.hit(StrategyWordOverlap, strings.Join(common, " "), name)
					return e, StrategyWordOverlap
				}
			}
		}
	}

	// 6. Loose single-word containment, the last resort: one
	// significant token contained in a name that it covers by at
	// least thirty percent.
	if len(stemWords) == 1 {
		var word string
		for w := range stemWords {
			word = w
		}
		if utf8.RuneCountInString(word) >= singleWordMinLen {
			for _, name := range names[:min(len(names), singleWordNames)] {
				clean := stripTags(name)
				if !strings.Contains(clean, word) {
					continue
				}
				packed := strings.ReplaceAll(clean, " ", "")
				if float64(utf8.RuneCountInString(word)) >= float64(utf8.RuneCountInString(packed))*singleWordRatio {
					if e, ok := m.index.EntryForName(name); ok {
						m.trace.hit(StrategySingleWord, word, name)
						return e, StrategySingleWord
					}
				}
			}
		}
	}

	m.trace.miss(stem, names)
	return nil, StrategyNone
}

// Tokenizing and similarity helpers

var (
	parenGroup   = regexp.MustCompile(`\([^)]*\)`)
	nonWordChars = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// stripTags drops parenthesized tags and lowercases, the comparison
// form strategies 5 and 6 share.
func stripTags(name string) string {
	return strings.ToLower(strings.TrimSpace(parenGroup.ReplaceAllString(name, "")))
}

// significantWords tokenizes a name into its lowercase tokens longer
// than two characters.
func significantWords(s string) map[string]struct{} {
	cleaned := nonWordChars.ReplaceAllString(strings.ToLower(s), " ")
	words := make(map[string]struct{})
	for _, w := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(w) > 2 {
			words[w] = struct{}{}
		}
	}
	return words
}

func intersection(a, b map[string]struct{}) []string {
	var common []string
	for w := range a {
		if _, ok := b[w]; ok {
			common = append(common, w)
		}
	}
	// Sorted so trace output stays deterministic.
	sort.Strings(common)
	return common
}

// stringSimilarity calculates the similarity between two strings
// (0.0-1.0) as normalized edit distance.
func stringSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	distance := levenshteinDistance(a, b)
	maxLen := max(len(a), len(b))

	return 1.0 - float64(distance)/float64(maxLen)
}

// levenshteinDistance calculates the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
