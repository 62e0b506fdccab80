package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/romstackapp/romstack/internal/errors"
	"github.com/romstackapp/romstack/internal/id"
	"github.com/romstackapp/romstack/internal/scanner"
	"github.com/romstackapp/romstack/internal/store"
)

// sessionColumns is the ordered column list for scan session queries.
// Must match the scan order in scanSession.
const sessionColumns = `id, root, algorithm, started_at, finished_at,
	total_files, total_bytes, skipped, errors`

// romColumns is the ordered column list for rom queries. Must match
// the scan order in scanROM.
const romColumns = `id, session_id, path, name, ext, size, modified, digest, algorithm`

func scanSession(row interface{ Scan(dest ...any) error }) (*store.ScanSession, error) {
	var (
		sess      store.ScanSession
		startedAt string
		finished  sql.NullString
	)
	err := row.Scan(
		&sess.ID,
		&sess.Root,
		&sess.Algorithm,
		&startedAt,
		&finished,
		&sess.TotalFiles,
		&sess.TotalBytes,
		&sess.Skipped,
		&sess.Errors,
	)
	if err != nil {
		return nil, err
	}

	if sess.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if sess.FinishedAt, err = parseNullableTime(finished); err != nil {
		return nil, err
	}
	return &sess, nil
}

func scanROM(row interface{ Scan(dest ...any) error }) (*store.ROM, error) {
	var (
		rom      store.ROM
		modified string
	)
	err := row.Scan(
		&rom.ID,
		&rom.SessionID,
		&rom.Path,
		&rom.Name,
		&rom.Ext,
		&rom.Size,
		&modified,
		&rom.Digest,
		&rom.Algorithm,
	)
	if err != nil {
		return nil, err
	}

	if rom.Modified, err = parseTime(modified); err != nil {
		return nil, err
	}
	return &rom, nil
}

// SaveScan records a completed scan: the session row, every file
// record, and the duplicate groups, all in one transaction. Returns
// the stored session.
func (s *Store) SaveScan(ctx context.Context, result *scanner.ScanResult) (*store.ScanSession, error) {
	if result == nil {
		return nil, errors.Validation("scan result is required")
	}

	sess := &store.ScanSession{
		ID:         id.MustGenerate(id.PrefixScan),
		Root:       result.Root,
		Algorithm:  result.Algorithm,
		StartedAt:  result.StartedAt,
		TotalFiles: len(result.Files),
		Skipped:    result.Skipped,
		Errors:     result.Errors,
	}
	if !result.CompletedAt.IsZero() {
		finished := result.CompletedAt
		sess.FinishedAt = &finished
	}
	for _, f := range result.Files {
		sess.TotalBytes += f.Size
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scan_sessions (
			id, root, algorithm, started_at, finished_at,
			total_files, total_bytes, skipped, errors
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.Root,
		sess.Algorithm,
		formatTime(sess.StartedAt),
		nullTimeString(sess.FinishedAt),
		sess.TotalFiles,
		sess.TotalBytes,
		sess.Skipped,
		sess.Errors,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "insert scan session")
	}

	// Insert rom rows, remembering each file's row ID for the group
	// membership rows below.
	romIDs := make(map[string]string, len(result.Files))
	for _, f := range result.Files {
		romID := id.MustGenerate(id.PrefixRom)
		romIDs[f.Path] = romID

		_, err = tx.ExecContext(ctx, `
			INSERT INTO roms (
				id, session_id, path, name, ext, size, modified, digest, algorithm
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			romID,
			sess.ID,
			f.Path,
			f.Name,
			f.Ext,
			f.Size,
			formatTime(f.Modified),
			f.Digest,
			sess.Algorithm,
		)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeStore, "insert rom %s", f.Path)
		}
	}

	for _, g := range result.Duplicates {
		groupID := id.MustGenerate(id.PrefixGroup)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO duplicate_groups (id, session_id, digest, wasted_bytes)
			VALUES (?, ?, ?, ?)`,
			groupID, sess.ID, g.Digest, g.WastedBytes,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeStore, "insert duplicate group")
		}

		insertMember := func(path string, original bool) error {
			romID, ok := romIDs[path]
			if !ok {
				return errors.Storef("duplicate group references unknown path %s", path)
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO duplicate_group_members (group_id, rom_id, is_original)
				VALUES (?, ?, ?)`,
				groupID, romID, original,
			)
			if err != nil {
				return errors.Wrap(err, errors.CodeStore, "insert duplicate member")
			}
			return nil
		}

		if err := insertMember(g.Original.Path, true); err != nil {
			return nil, err
		}
		for _, d := range g.Duplicates {
			if err := insertMember(d.Path, false); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "commit scan")
	}

	s.logger.Info("scan saved",
		"session", sess.ID,
		"files", sess.TotalFiles,
		"duplicate_groups", len(result.Duplicates),
	)
	return sess, nil
}

// GetScanSession retrieves a scan session by ID.
func (s *Store) GetScanSession(ctx context.Context, sessionID string) (*store.ScanSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM scan_sessions WHERE id = ?`, sessionID)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("scan session %s not found", sessionID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "get scan session")
	}
	return sess, nil
}

// LatestScanSession returns the most recently started scan session.
func (s *Store) LatestScanSession(ctx context.Context) (*store.ScanSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM scan_sessions ORDER BY started_at DESC LIMIT 1`)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("no scan sessions recorded")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "get latest scan session")
	}
	return sess, nil
}

// ListScanSessions returns scan sessions, most recent first. limit <= 0
// returns all of them.
func (s *Store) ListScanSessions(ctx context.Context, limit int) ([]*store.ScanSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM scan_sessions ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "list scan sessions")
	}
	defer rows.Close()

	var sessions []*store.ScanSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeStore, "scan session row")
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "list scan sessions")
	}
	return sessions, nil
}

// DeleteScanSession removes a session and, via cascade, its roms and
// duplicate groups.
func (s *Store) DeleteScanSession(ctx context.Context, sessionID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM scan_sessions WHERE id = ?`, sessionID)
	if err != nil {
		return errors.Wrap(err, errors.CodeStore, "delete scan session")
	}

	n, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.CodeStore, "delete scan session")
	}
	if n == 0 {
		return errors.NotFoundf("scan session %s not found", sessionID)
	}
	return nil
}

// ListROMs returns every rom record of a session in path order.
func (s *Store) ListROMs(ctx context.Context, sessionID string) ([]*store.ROM, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+romColumns+` FROM roms WHERE session_id = ? ORDER BY path ASC`, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "list roms")
	}
	defer rows.Close()

	var roms []*store.ROM
	for rows.Next() {
		rom, err := scanROM(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeStore, "scan rom row")
		}
		roms = append(roms, rom)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "list roms")
	}
	return roms, nil
}

// FindROMsByDigest returns every rom record carrying a digest, across
// all sessions.
func (s *Store) FindROMsByDigest(ctx context.Context, digest string) ([]*store.ROM, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+romColumns+` FROM roms WHERE digest = ? ORDER BY session_id, path ASC`, digest)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "find roms by digest")
	}
	defer rows.Close()

	var roms []*store.ROM
	for rows.Next() {
		rom, err := scanROM(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeStore, "scan rom row")
		}
		roms = append(roms, rom)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "find roms by digest")
	}
	return roms, nil
}

// ListDuplicateGroups returns a session's duplicate groups with their
// member rom records resolved.
func (s *Store) ListDuplicateGroups(ctx context.Context, sessionID string) ([]*store.DuplicateGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.session_id, g.digest, g.wasted_bytes,
			m.is_original, `+prefixedROMColumns("r")+`
		FROM duplicate_groups g
		JOIN duplicate_group_members m ON m.group_id = g.id
		JOIN roms r ON r.id = m.rom_id
		WHERE g.session_id = ?
		ORDER BY g.id, m.is_original DESC, r.path ASC`, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "list duplicate groups")
	}
	defer rows.Close()

	var (
		groups  []*store.DuplicateGroup
		current *store.DuplicateGroup
	)
	for rows.Next() {
		var (
			groupID     string
			groupSess   string
			digest      string
			wastedBytes int64
			isOriginal  bool
			rom         store.ROM
			modified    string
		)
		err := rows.Scan(
			&groupID, &groupSess, &digest, &wastedBytes, &isOriginal,
			&rom.ID, &rom.SessionID, &rom.Path, &rom.Name, &rom.Ext,
			&rom.Size, &modified, &rom.Digest, &rom.Algorithm,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeStore, "scan duplicate group row")
		}
		if rom.Modified, err = parseTime(modified); err != nil {
			return nil, errors.Wrap(err, errors.CodeStore, "scan duplicate group row")
		}

		if current == nil || current.ID != groupID {
			current = &store.DuplicateGroup{
				ID:          groupID,
				SessionID:   groupSess,
				Digest:      digest,
				WastedBytes: wastedBytes,
			}
			groups = append(groups, current)
		}
		if isOriginal {
			current.Original = rom
		} else {
			current.Duplicates = append(current.Duplicates, rom)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeStore, "list duplicate groups")
	}
	return groups, nil
}

// prefixedROMColumns qualifies romColumns with a table alias for joins.
func prefixedROMColumns(alias string) string {
	cols := strings.Split(romColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
