// Package report writes the summaries a matching run leaves behind: a
// human-readable results file, a JSON collection analysis, and a
// catalog name listing. Reports are diagnostic; every writer is
// best-effort and a failure never rolls back the run that produced the
// data.
package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/romstackapp/romstack/internal/catalog"
	"github.com/romstackapp/romstack/internal/errors"
	"github.com/romstackapp/romstack/internal/organize"
	"github.com/romstackapp/romstack/internal/scanner"
	"github.com/romstackapp/romstack/internal/util"
)

// Report file names, written into the writer's directory.
const (
	MatchingResultsFile = "matching_results.txt"
	AnalysisFile        = "rom_analysis.json"
	CatalogNamesFile    = "xml_games.txt"
)

// analysisSampleSize caps how many names feed the pattern analysis.
const analysisSampleSize = 50

// Writer writes report files into one directory.
type Writer struct {
	logger *slog.Logger
	dir    string
}

// NewWriter creates a report writer targeting dir.
func NewWriter(logger *slog.Logger, dir string) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger, dir: dir}
}

// Timing carries the phase durations and worker count of a run.
type Timing struct {
	Matching time.Duration
	Copying  time.Duration
	Workers  int
}

// Run carries everything one genre-organizing run produced.
type Run struct {
	Outcome      *organize.Outcome
	TotalROMs    int
	Timing       Timing
	Files        []scanner.File
	CatalogNames []string
}

// WriteAll writes every report for a run. Each report is independent;
// a failure is logged and the remaining reports are still written.
func (w *Writer) WriteAll(run Run) {
	if err := w.WriteMatchingResults(run.Outcome, run.TotalROMs, run.Timing); err != nil {
		w.logger.Error("failed to write matching results", "error", err)
	}
	if err := w.WriteAnalysis(Analyze(run.Files)); err != nil {
		w.logger.Error("failed to write collection analysis", "error", err)
	}
	if err := w.WriteCatalogNames(run.CatalogNames); err != nil {
		w.logger.Error("failed to write catalog listing", "error", err)
	}
}

// WriteMatchingResults writes the plain-text results file: timing and
// throughput, match totals, then the matched and unmatched names in
// sorted order.
func (w *Writer) WriteMatchingResults(outcome *organize.Outcome, total int, timing Timing) error {
	if outcome == nil {
		outcome = &organize.Outcome{}
	}

	var b strings.Builder
	b.WriteString("MULTI-THREADED ROM MATCHING RESULTS\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	elapsed := timing.Matching + timing.Copying
	fmt.Fprintf(&b, "Processing time: %.2f seconds\n", elapsed.Seconds())
	fmt.Fprintf(&b, "  - Matching: %.2fs\n", timing.Matching.Seconds())
	fmt.Fprintf(&b, "  - Copying: %.2fs\n", timing.Copying.Seconds())
	fmt.Fprintf(&b, "Processing rate: %.1f ROMs/second\n", throughput(total, elapsed))
	fmt.Fprintf(&b, "Parallel workers: %d\n\n", timing.Workers)

	fmt.Fprintf(&b, "Total ROMs: %d\n", total)
	fmt.Fprintf(&b, "Matched: %d\n", outcome.Stats.Matched)
	fmt.Fprintf(&b, "Unmatched: %d\n", outcome.Stats.Unmatched)
	fmt.Fprintf(&b, "Match rate: %.1f%%\n\n", matchRate(outcome.Stats.Matched, total))

	b.WriteString("MATCHED ROMS:\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")
	matched := slices.Clone(outcome.Matched)
	slices.SortFunc(matched, func(a, b organize.MatchedDetail) int {
		if c := strings.Compare(a.RomName, b.RomName); c != 0 {
			return c
		}
		return strings.Compare(a.CatalogName, b.CatalogName)
	})
	for _, d := range matched {
		fmt.Fprintf(&b, "%s -> %s -> %s\n", d.RomName, d.CatalogName, d.FullGenre)
	}

	fmt.Fprintf(&b, "\nUNMATCHED ROMS (%d):\n", len(outcome.Unmatched))
	b.WriteString(strings.Repeat("-", 40) + "\n")
	unmatched := slices.Clone(outcome.Unmatched)
	slices.Sort(unmatched)
	for _, name := range unmatched {
		b.WriteString(name + "\n")
	}

	return w.write(MatchingResultsFile, []byte(b.String()))
}

// Analysis summarizes naming patterns across a scanned collection.
type Analysis struct {
	TotalROMs      int      `json:"total_roms"`
	SampleNames    []string `json:"sample_names"`
	CommonPrefixes []string `json:"common_prefixes"`
	CommonSuffixes []string `json:"common_suffixes"`
}

// Analyze builds the collection summary from scanned files. Patterns
// are drawn from the first analysisSampleSize names: the leading word
// of multi-word names, and the first parenthesized tag.
func Analyze(files []scanner.File) *Analysis {
	a := &Analysis{
		TotalROMs:      len(files),
		SampleNames:    []string{},
		CommonPrefixes: []string{},
		CommonSuffixes: []string{},
	}

	prefixes := make(map[string]bool)
	suffixes := make(map[string]bool)

	sample := files
	if len(sample) > analysisSampleSize {
		sample = sample[:analysisSampleSize]
	}
	for _, f := range sample {
		name := util.Stem(f.Name)
		a.SampleNames = append(a.SampleNames, name)

		if _, rest, found := strings.Cut(name, "("); found {
			tag, _, _ := strings.Cut(rest, "(")
			if tag = strings.TrimSpace("(" + tag); tag != "(" {
				suffixes[tag] = true
			}
		}
		if words := strings.Fields(name); len(words) > 1 {
			prefixes[words[0]] = true
		}
	}

	for p := range prefixes {
		a.CommonPrefixes = append(a.CommonPrefixes, p)
	}
	for s := range suffixes {
		a.CommonSuffixes = append(a.CommonSuffixes, s)
	}
	slices.Sort(a.CommonPrefixes)
	slices.Sort(a.CommonSuffixes)
	return a
}

// WriteAnalysis writes the collection analysis as indented JSON.
func (w *Writer) WriteAnalysis(a *Analysis) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "encode collection analysis")
	}
	return w.write(AnalysisFile, data)
}

// WriteCatalogNames writes the catalog listing: every game name in
// sorted order, with its tag-stripped form alongside when stripping
// changes it.
func (w *Writer) WriteCatalogNames(names []string) error {
	var b strings.Builder
	b.WriteString("Games found in XML (Original -> Clean):\n")
	b.WriteString(strings.Repeat("-", 50) + "\n")

	sorted := slices.Clone(names)
	slices.Sort(sorted)
	for _, name := range sorted {
		b.WriteString(name)
		if clean := catalog.StripRegionTags(name); clean != name {
			b.WriteString(" -> " + clean)
		}
		b.WriteByte('\n')
	}

	return w.write(CatalogNamesFile, []byte(b.String()))
}

func (w *Writer) write(name string, data []byte) error {
	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "create report directory %s", w.dir)
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil { //#nosec G306 -- reports are meant to be read
		return errors.Wrapf(err, errors.CodeInternal, "write report %s", name)
	}
	w.logger.Debug("report written", "path", path, "bytes", len(data))
	return nil
}

func throughput(total int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(total) / elapsed.Seconds()
}

func matchRate(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total) * 100
}
