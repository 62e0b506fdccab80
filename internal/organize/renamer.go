package organize

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/romstackapp/romstack/internal/catalog"
	"github.com/romstackapp/romstack/internal/errors"
	"github.com/romstackapp/romstack/internal/util"
)

// Naming conventions understood by Renamer.
const (
	// ConventionNoTags strips every parenthesized or bracketed tag.
	ConventionNoTags = "no_tags"
	// ConventionStandard strips tags and keeps one "(Region)" suffix
	// when the original tags named a recognized region.
	ConventionStandard = "standard"
	// ConventionCustom renders the configured template.
	ConventionCustom = "custom"
)

// DefaultTemplate is used for the custom convention when no template
// is configured. Supported placeholders: {name}, {region}, {year}.
const DefaultTemplate = "{name} [{region}]"

var (
	tagGroup   = regexp.MustCompile(`\s*[(\[][^)\]]*[)\]]`)
	emptyGroup = regexp.MustCompile(`\s*[(\[]\s*[)\]]`)
	multiSpace = regexp.MustCompile(`\s{2,}`)
)

// Renamer renames ROM files in place to a naming convention.
type Renamer struct {
	logger *slog.Logger
}

// NewRenamer creates a renamer.
func NewRenamer(logger *slog.Logger) *Renamer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renamer{logger: logger}
}

// RenamePlan is one proposed rename.
type RenamePlan struct {
	OldPath string
	NewPath string
}

// Preview computes the renames a convention would apply to paths
// without touching the filesystem. Files already in shape, names that
// strip to nothing, and targets that collide with another plan or an
// existing file are left out of the plan.
func (r *Renamer) Preview(paths []string, convention, template string) ([]RenamePlan, error) {
	if template == "" {
		template = DefaultTemplate
	}

	claimed := make(map[string]bool)
	var plans []RenamePlan
	for _, path := range paths {
		stem := util.Stem(path)
		newStem, err := renamedStem(stem, convention, template)
		if err != nil {
			return nil, err
		}
		if newStem == "" || newStem == stem {
			continue
		}

		newPath := filepath.Join(filepath.Dir(path), newStem+filepath.Ext(path))
		if claimed[newPath] {
			r.logger.Warn("rename collision, skipping", "path", path, "target", newPath)
			continue
		}
		if _, err := os.Stat(newPath); err == nil {
			r.logger.Warn("rename target exists, skipping", "path", path, "target", newPath)
			continue
		}

		claimed[newPath] = true
		plans = append(plans, RenamePlan{OldPath: path, NewPath: newPath})
	}
	return plans, nil
}

// Apply performs the planned renames. A target that has appeared on
// disk since the preview is skipped rather than overwritten. Returns
// the number of files renamed.
func (r *Renamer) Apply(ctx context.Context, plans []RenamePlan) (int, error) {
	renamed := 0
	for _, p := range plans {
		select {
		case <-ctx.Done():
			return renamed, ctx.Err()
		default:
		}

		if _, err := os.Stat(p.NewPath); err == nil {
			r.logger.Warn("rename target appeared since preview, skipping", "target", p.NewPath)
			continue
		}
		if err := os.Rename(p.OldPath, p.NewPath); err != nil {
			r.logger.Error("rename failed", "from", p.OldPath, "to", p.NewPath, "error", err)
			continue
		}
		renamed++
	}

	r.logger.Info("rename complete", "renamed", renamed, "planned", len(plans))
	return renamed, nil
}

// renamedStem builds the new stem for one file, or "" when the name
// carries nothing beyond its tags.
func renamedStem(stem, convention, template string) (string, error) {
	switch convention {
	case ConventionNoTags:
		return stripAllTags(stem), nil
	case ConventionStandard:
		base := stripAllTags(stem)
		if base == "" {
			return "", nil
		}
		if region := catalog.DetectRegion(stem); region != "" {
			return base + " (" + region + ")", nil
		}
		return base, nil
	case ConventionCustom:
		name := stripAllTags(stem)
		if name == "" {
			return "", nil
		}
		out := strings.NewReplacer(
			"{name}", name,
			"{region}", catalog.DetectRegion(stem),
			"{year}", catalog.DetectYear(stem),
		).Replace(template)
		// Placeholders that resolved to nothing leave empty () or []
		// pairs behind.
		out = emptyGroup.ReplaceAllString(out, "")
		out = multiSpace.ReplaceAllString(out, " ")
		return strings.TrimSpace(out), nil
	default:
		return "", errors.Validationf("unknown naming convention %q", convention)
	}
}

// stripAllTags removes every parenthesized or bracketed group from a
// name and collapses the whitespace left behind.
func stripAllTags(s string) string {
	s = tagGroup.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
