package match

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const (
	tracePreview      = 8
	nearMissNames     = 20
	nearMissThreshold = 0.4
	nearMissShown     = 3
)

// Tracer writes a per-stem account of the cascade, used when debug
// mode traces the first batch of a run. A nil Tracer is valid and
// records nothing, so matchers can carry one unconditionally.
type Tracer struct {
	w io.Writer
}

// NewTracer creates a tracer writing to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

func (t *Tracer) active() bool {
	return t != nil && t.w != nil
}

func (t *Tracer) start(stem string, variations []string) {
	if !t.active() {
		return
	}
	preview := variations[:min(len(variations), tracePreview)]
	fmt.Fprintf(t.w, "matching %q\n  variations (%d): %s\n",
		stem, len(variations), strings.Join(preview, " | "))
}

func (t *Tracer) hit(s Strategy, via, resolved string) {
	if !t.active() {
		return
	}
	fmt.Fprintf(t.w, "  %s match: %q -> %q\n", s, via, resolved)
}

func (t *Tracer) scored(s Strategy, stem, name string, score float64) {
	if !t.active() {
		return
	}
	fmt.Fprintf(t.w, "  %s match: %q -> %q (score %.2f)\n", s, stem, name, score)
}

// miss reports a failed cascade along with the closest names from the
// front of the catalog, which is usually enough to see why a stem
// fell through.
func (t *Tracer) miss(stem string, names []string) {
	if !t.active() {
		return
	}
	fmt.Fprintf(t.w, "  no match for %q\n", stem)

	type nearMiss struct {
		name  string
		score float64
	}
	var near []nearMiss
	stemLower := strings.ToLower(stem)
	for _, name := range names[:min(len(names), nearMissNames)] {
		clean := strings.TrimSpace(parenGroup.ReplaceAllString(name, ""))
		score := stringSimilarity(stemLower, strings.ToLower(clean))
		if score > nearMissThreshold {
			near = append(near, nearMiss{name: name, score: score})
		}
	}
	if len(near) == 0 {
		return
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].score > near[j].score })
	for _, n := range near[:min(len(near), nearMissShown)] {
		fmt.Fprintf(t.w, "  near miss: %q (score %.2f)\n", n.name, n.score)
	}
}
