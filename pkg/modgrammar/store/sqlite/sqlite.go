package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/modgrammar/pkg/modgrammar/internalerr"
	"github.com/cognicore/modgrammar/pkg/modgrammar/store"
)

// timeLayout sorts lexically, which LatestRun relies on.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled. Foreign keys are
// enabled on every pooled connection.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// dsn adds per-connection pragmas to path.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	items INTEGER NOT NULL DEFAULT 0,
	groups_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS mod_groups (
	run_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	item TEXT NOT NULL,
	stats TEXT NOT NULL,
	builds INTEGER NOT NULL,
	PRIMARY KEY(run_id, rank),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS group_mods (
	run_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	pos INTEGER NOT NULL,
	text TEXT NOT NULL,
	template_id TEXT NOT NULL,
	option_id TEXT,
	option_text TEXT,
	PRIMARY KEY(run_id, rank, pos),
	FOREIGN KEY(run_id, rank) REFERENCES mod_groups(run_id, rank) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS stats (
	item TEXT NOT NULL,
	mods TEXT NOT NULL,
	average REAL,
	prices TEXT,
	filtered TEXT,
	search TEXT,
	PRIMARY KEY(item, mods)
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// GetStats returns the stats stored for key
func (s *sqliteStore) GetStats(ctx context.Context, key store.GroupKey) (store.Stats, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT average, prices, filtered, search FROM stats WHERE item = ? AND mods = ?`,
		key.Item, key.Stats)
	st, err := scanStats(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Stats{}, false, nil
	}
	if err != nil {
		return store.Stats{}, false, err
	}
	return st, true, nil
}

// AllStats loads every stats entry
func (s *sqliteStore) AllStats(ctx context.Context) (map[store.GroupKey]store.Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item, mods, average, prices, filtered, search FROM stats`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[store.GroupKey]store.Stats)
	for rows.Next() {
		var key store.GroupKey
		var (
			avg                      sql.NullFloat64
			prices, filtered, search sql.NullString
		)
		if err := rows.Scan(&key.Item, &key.Stats, &avg, &prices, &filtered, &search); err != nil {
			return nil, err
		}
		st, err := decodeStats(avg, prices, filtered, search)
		if err != nil {
			return nil, fmt.Errorf("stats %s / %s: %w", key.Item, key.Stats, err)
		}
		out[key] = st
	}
	return out, rows.Err()
}

// UpsertStats inserts or replaces the stats for key
func (s *sqliteStore) UpsertStats(ctx context.Context, key store.GroupKey, st store.Stats) error {
	prices, err := encodeFloats(st.Prices)
	if err != nil {
		return err
	}
	filtered, err := encodeFloats(st.Filtered)
	if err != nil {
		return err
	}
	var search sql.NullString
	if raw := store.StripSearchResult(st.Search); len(raw) > 0 {
		search = sql.NullString{String: string(raw), Valid: true}
	}
	var avg sql.NullFloat64
	if st.Average != nil {
		avg = sql.NullFloat64{Float64: *st.Average, Valid: true}
	}

	const stmt = `
INSERT INTO stats (item, mods, average, prices, filtered, search)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(item, mods) DO UPDATE SET
	average=excluded.average,
	prices=excluded.prices,
	filtered=excluded.filtered,
	search=excluded.search;
`
	_, err = s.db.ExecContext(ctx, stmt, key.Item, key.Stats, avg, prices, filtered, search)
	return err
}

// SaveRun stores a run and its ranked groups in one transaction
func (s *sqliteStore) SaveRun(ctx context.Context, run store.Run, groups []store.GroupRecord) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run id is required", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, items, groups_count) VALUES (?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(timeLayout), run.Items, run.Groups)
	if err != nil {
		return err
	}

	groupStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO mod_groups (run_id, rank, item, stats, builds) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer groupStmt.Close()

	modStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO group_mods (run_id, rank, pos, text, template_id, option_id, option_text) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer modStmt.Close()

	for rank, g := range groups {
		if _, err := groupStmt.ExecContext(ctx, run.ID, rank, g.Key.Item, g.Key.Stats, g.Builds); err != nil {
			return err
		}
		for pos, m := range g.Mods {
			if _, err := modStmt.ExecContext(ctx, run.ID, rank, pos, m.Text, m.TemplateID,
				nullString(m.OptionID), nullString(m.OptionText)); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LatestRun returns the run started most recently
func (s *sqliteStore) LatestRun(ctx context.Context) (store.Run, bool, error) {
	var (
		run     store.Run
		started string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, items, groups_count FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`).
		Scan(&run.ID, &started, &run.Items, &run.Groups)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	run.StartedAt, err = time.Parse(timeLayout, started)
	if err != nil {
		return store.Run{}, false, err
	}
	return run, true, nil
}

// GetGroups returns the groups of a run in rank order
func (s *sqliteStore) GetGroups(ctx context.Context, runID string) ([]store.GroupRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rank, item, stats, builds FROM mod_groups WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, err
	}
	var groups []store.GroupRecord
	for rows.Next() {
		var (
			rank int
			g    store.GroupRecord
		)
		if err := rows.Scan(&rank, &g.Key.Item, &g.Key.Stats, &g.Builds); err != nil {
			rows.Close()
			return nil, err
		}
		groups = append(groups, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	modRows, err := s.db.QueryContext(ctx,
		`SELECT rank, text, template_id, option_id, option_text FROM group_mods WHERE run_id = ? ORDER BY rank, pos`, runID)
	if err != nil {
		return nil, err
	}
	defer modRows.Close()
	for modRows.Next() {
		var (
			rank           int
			m              store.ModRef
			optID, optText sql.NullString
		)
		if err := modRows.Scan(&rank, &m.Text, &m.TemplateID, &optID, &optText); err != nil {
			return nil, err
		}
		if rank < 0 || rank >= len(groups) {
			continue
		}
		m.OptionID = optID.String
		m.OptionText = optText.String
		groups[rank].Mods = append(groups[rank].Mods, m)
	}
	return groups, modRows.Err()
}

func scanStats(row *sql.Row) (store.Stats, error) {
	var (
		avg                      sql.NullFloat64
		prices, filtered, search sql.NullString
	)
	if err := row.Scan(&avg, &prices, &filtered, &search); err != nil {
		return store.Stats{}, err
	}
	return decodeStats(avg, prices, filtered, search)
}

func decodeStats(avg sql.NullFloat64, prices, filtered, search sql.NullString) (store.Stats, error) {
	var st store.Stats
	if avg.Valid {
		v := avg.Float64
		st.Average = &v
	}
	if prices.Valid && prices.String != "" {
		if err := json.Unmarshal([]byte(prices.String), &st.Prices); err != nil {
			return store.Stats{}, err
		}
	}
	if filtered.Valid && filtered.String != "" {
		if err := json.Unmarshal([]byte(filtered.String), &st.Filtered); err != nil {
			return store.Stats{}, err
		}
	}
	if search.Valid && search.String != "" {
		st.Search = json.RawMessage(search.String)
	}
	return st, nil
}

func encodeFloats(v []float64) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
