package providers

import (
	"github.com/samber/do/v2"

	"github.com/romstackapp/romstack/internal/config"
	"github.com/romstackapp/romstack/internal/logger"
	"github.com/romstackapp/romstack/internal/organize"
	"github.com/romstackapp/romstack/internal/report"
)

// ProvideGenreOrganizer provides the genre copy pass.
func ProvideGenreOrganizer(i do.Injector) (*organize.GenreOrganizer, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return organize.NewGenreOrganizer(log.Logger), nil
}

// ProvideAlphabeticalOrganizer provides the letter copy pass.
func ProvideAlphabeticalOrganizer(i do.Injector) (*organize.AlphabeticalOrganizer, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return organize.NewAlphabeticalOrganizer(log.Logger), nil
}

// ProvideRenamer provides the in-place renamer.
func ProvideRenamer(i do.Injector) (*organize.Renamer, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return organize.NewRenamer(log.Logger), nil
}

// ProvideReportWriter provides the report writer. Reports land in the
// output directory next to the organized folders.
func ProvideReportWriter(i do.Injector) (*report.Writer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	return report.NewWriter(log.Logger, cfg.Output.Dir), nil
}
