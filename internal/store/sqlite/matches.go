package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"

	"github.com/romstackapp/romstack/internal/errors"
	"github.com/romstackapp/romstack/internal/id"
	"github.com/romstackapp/romstack/internal/match"
	"github.com/romstackapp/romstack/internal/store"
)

// runColumns is the ordered column list for match run queries. Must
// match the scan order in scanMatchRun.
const runColumns = `id, session_id, catalog_path, workers, started_at, finished_at,
	total_roms, matched, unmatched`

// resultColumns is the ordered column list for match result queries.
// Must match the scan order in scanMatchResult.
const resultColumns = `run_id, path, rom_name, matched, genre, full_genre, catalog_name`

func scanMatchRun(row interface{ Scan(dest ...any) error }) (*store.MatchRun, error) {
	var (
		run       store.MatchRun
		sessionID sql.NullString
		startedAt string
		finished  sql.NullString
	)
	err := row.Scan(
		&run.ID,
		&sessionID,
		&run.CatalogPath,
		&run.Workers,
		&startedAt,
		&finished,
		&run.TotalROMs,
		&run.Matched,
		&run.Unmatched,
	)
	if err != nil {
		return nil, err
	}

	if sessionID.Valid {
		run.SessionID = sessionID.String
	}
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseNullableTime(finished); err != nil {
		return nil, err
	}
	return &run, nil
}

func scanMatchResult(row interface{ Scan(dest ...any) error }) (*store.MatchResult, error) {
	var (
		res         store.MatchResult
		catalogName sql.NullString
	)
	err := row.Scan(
		&res.RunID,
		&res.Path,
		&res.RomName,
		&res.Matched,
		&res.Genre,
		&res.FullGenre,
		&catalogName,
	)
	if err != nil {
		return nil, err
	}

	if catalogName.Valid {
		res.CatalogName = catalogName.String
	}
	return &res, nil
}

// SaveMatchRun records a matching run and all of its per-file results
// in one transaction. The run's ID and totals are filled in from the
// results before writing.
func (s *Store) SaveMatchRun(ctx context.Context, run *store.MatchRun, results []match.Result) error {
	if run == nil {
		return errors.Validation("match run is required")
	}

	if run.ID == "" {
		run.ID = id.MustGenerate(id.PrefixRun)
	}
	run.TotalROMs = len(results)
	run.Matched = 0
	run.Unmatched = 0
	for _, r := range results {
		if r.Matched {
			run.Matched++
		} else {
			run.Unmatched++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.CodeStore, "begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO match_runs (
			id, session_id, catalog_path, workers, started_at, finished_at,
			total_roms, matched, unmatched
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		nullString(run.SessionID),
		run.CatalogPath,
		run.Workers,
		formatTime(run.StartedAt),
		nullTimeString(run.FinishedAt),
		run.TotalROMs,
		run.Matched,
		run.Unmatched,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeStore, "insert match run")
	}

	for _, r := range results {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO match_results (
				run_id, path, rom_name, matched, genre, full_genre, catalog_name
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			r.Path,
			filepath.Base(r.Path),
			r.Matched,
			r.Genre,
			r.FullGenre,
			nullString(r.CatalogName),
		)
		if err != nil {
			return errors.Wrapf(err, errors.CodeStore, "insert match result %s", r.Path)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.CodeStore, "commit match run")
	}

	s.logger.Info("match run saved",
		"run", run.ID,
		"total", run.TotalROMs,
		"matched", run.Matched,
	)
	return nil
}

// GetMatchRun retrieves a match run by ID.
func (s *Store) GetMatchRun(ctx context.Context, runID string) (*store.MatchRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM match_runs WHERE id = ?`, runID)

	run, err := scanMatchRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("match run %s not found", runID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "get match run")
	}
	return run, nil
}

// ListMatchRuns returns match runs, most recent first. limit <= 0
// returns all of them.
func (s *Store) ListMatchRuns(ctx context.Context, limit int) ([]*store.MatchRun, error) {
	query := `SELECT ` + runColumns + ` FROM match_runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "list match runs")
	}
	defer rows.Close()

	var runs []*store.MatchRun
	for rows.Next() {
		run, err := scanMatchRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeStore, "scan match run row")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "list match runs")
	}
	return runs, nil
}

// ListMatchResults returns every result of a run in path order.
func (s *Store) ListMatchResults(ctx context.Context, runID string) ([]*store.MatchResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+resultColumns+` FROM match_results WHERE run_id = ? ORDER BY path ASC`, runID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "list match results")
	}
	defer rows.Close()

	var results []*store.MatchResult
	for rows.Next() {
		res, err := scanMatchResult(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeStore, "scan match result row")
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "list match results")
	}
	return results, nil
}

// ListUnmatched returns the rom names a run failed to match, in path
// order.
func (s *Store) ListUnmatched(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rom_name FROM match_results WHERE run_id = ? AND matched = 0 ORDER BY path ASC`, runID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "list unmatched")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, errors.CodeStore, "scan unmatched row")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "list unmatched")
	}
	return names, nil
}
