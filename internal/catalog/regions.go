package catalog

import (
	"regexp"
	"strings"
)

// regionTagPatterns covers the region and release tags catalogs and
// ROM sets attach to names. Order matters only for the combined tag,
// which must go before its components.
var regionTagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(USA, Europe\)`),
	regexp.MustCompile(`(?i)\(USA\)`),
	regexp.MustCompile(`(?i)\(Europe\)`),
	regexp.MustCompile(`(?i)\(Japan\)`),
	regexp.MustCompile(`(?i)\(World\)`),
	regexp.MustCompile(`(?i)\(U\)`),
	regexp.MustCompile(`(?i)\(E\)`),
	regexp.MustCompile(`(?i)\(J\)`),
	regexp.MustCompile(`(?i)\(W\)`),
	regexp.MustCompile(`(?i)\(Beta\)`),
	regexp.MustCompile(`(?i)\(Alpha\)`),
	regexp.MustCompile(`(?i)\(Demo\)`),
	regexp.MustCompile(`(?i)\(Proto\)`),
	regexp.MustCompile(`(?i)\(Prototype\)`),
	regexp.MustCompile(`(?i)\(Unl\)`),
	regexp.MustCompile(`(?i)\(Unlicensed\)`),
}

var regionWhitespace = regexp.MustCompile(`\s+`)

// StripRegionTags removes every known region and release tag from a
// name, collapsing the whitespace left behind.
func StripRegionTags(name string) string {
	clean := name
	for _, re := range regionTagPatterns {
		clean = strings.TrimSpace(re.ReplaceAllString(clean, ""))
		clean = regionWhitespace.ReplaceAllString(clean, " ")
	}
	return clean
}

// regionNames maps tag spellings to the region they denote.
var regionNames = map[string]string{
	"usa":         "USA",
	"u":           "USA",
	"europe":      "Europe",
	"e":           "Europe",
	"japan":       "Japan",
	"j":           "Japan",
	"world":       "World",
	"w":           "World",
	"usa, europe": "USA, Europe",
}

var parenTag = regexp.MustCompile(`\(([^)]*)\)`)

// DetectRegion extracts the region a name's tags declare, or "" when
// none is recognized. The first recognized tag wins.
func DetectRegion(name string) string {
	for _, m := range parenTag.FindAllStringSubmatch(name, -1) {
		if region, ok := regionNames[strings.ToLower(strings.TrimSpace(m[1]))]; ok {
			return region
		}
	}
	return ""
}

// DetectYear extracts a four-digit year from a name's tags, or ""
// when none is present.
var yearTag = regexp.MustCompile(`\((19|20)\d{2}\)`)

func DetectYear(name string) string {
	m := yearTag.FindString(name)
	if m == "" {
		return ""
	}
	return strings.Trim(m, "()")
}
