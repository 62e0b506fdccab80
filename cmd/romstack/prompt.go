package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/romstackapp/romstack/internal/errors"
	"github.com/romstackapp/romstack/internal/match"
)

// promptLine prints prompt and reads one trimmed line from stdin.
func (a *app) promptLine(prompt string) string {
	fmt.Print(prompt)
	line, _ := a.stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

// promptYesNo asks a yes/no question. Anything but y/yes is no.
func (a *app) promptYesNo(prompt string) bool {
	answer := strings.ToLower(a.promptLine(prompt))
	return answer == "y" || answer == "yes"
}

// resolveCatalog settles which gamelist file to use and records it in
// the shared config for the catalog provider. The -catalog flag wins;
// otherwise the catalog directory is searched for XML files, with a
// numbered pick when several turn up. Invalid selections fall back to
// the first file.
func (a *app) resolveCatalog() (string, error) {
	if a.cfg.Library.CatalogPath != "" {
		return a.cfg.Library.CatalogPath, nil
	}

	matches, err := filepath.Glob(filepath.Join(a.cfg.Library.CatalogDir, "*.xml"))
	if err != nil {
		return "", errors.Wrap(err, errors.CodeValidation, "search catalog directory")
	}
	sort.Strings(matches)

	if len(matches) == 0 {
		return "", errors.NotFoundf("no gamelist XML files found in %s", a.cfg.Library.CatalogDir)
	}

	choice := 0
	if len(matches) > 1 {
		fmt.Printf("Found %d XML files:\n", len(matches))
		for i, m := range matches {
			fmt.Printf("  %d. %s\n", i+1, filepath.Base(m))
		}
		if !a.cfg.Organize.AssumeYes {
			input := a.promptLine("Select XML file (number): ")
			if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(matches) {
				choice = n - 1
			} else {
				fmt.Printf("Invalid selection, using %s\n", filepath.Base(matches[0]))
			}
		}
	}

	a.cfg.Library.CatalogPath = matches[choice]
	return matches[choice], nil
}

// resolveWorkers settles the matching worker count. The -workers flag
// wins; interactive runs are asked once, and bad input keeps the
// default.
func (a *app) resolveWorkers() int {
	if a.cfg.Organize.Workers > 0 {
		return match.ClampWorkers(a.cfg.Organize.Workers)
	}

	def := match.DefaultWorkers()
	if a.cfg.Organize.AssumeYes {
		return def
	}

	input := a.promptLine(fmt.Sprintf("Worker threads [%d]: ", def))
	if n, err := strconv.Atoi(input); err == nil && n > 0 {
		return match.ClampWorkers(n)
	}
	return def
}

// resolveDebug settles whether the first batch gets match tracing.
func (a *app) resolveDebug() bool {
	if a.cfg.Organize.Debug {
		return true
	}
	if a.cfg.Organize.AssumeYes {
		return false
	}
	return a.promptYesNo("Enable debug tracing for the first batch? [y/N]: ")
}
