package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/soyeahso/prelims-tutor/internal/logging"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create turns",
		SQL: `
			CREATE TABLE turns (
				seq         INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id  TEXT NOT NULL,
				role        TEXT NOT NULL,
				content     TEXT NOT NULL,
				created_at  TEXT NOT NULL
			);

			CREATE INDEX idx_turns_session ON turns (session_id, seq);
		`,
	},
}

// SQLiteStore keeps turns in a single SQLite table.
type SQLiteStore struct {
	db       *sql.DB
	maxTurns int
	log      *logging.Logger
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
// Use MemoryDSN to keep history for the life of the process only.
func OpenSQLite(path string, maxTurns int, log *logging.Logger) (*SQLiteStore, error) {
	if path == "" {
		path = MemoryDSN
	}
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// one connection: writes serialize in SQLite anyway, and an in-memory
	// database is private to the connection that created it
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, maxTurns: maxTurns, log: log.Sub("session.sqlite")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	s.log.Info().Str("path", path).Msg("database opened")
	return s, nil
}

func (s *SQLiteStore) Append(ctx context.Context, id string, turn Turn) error {
	ts := turn.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO turns (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		id, turn.Role, turn.Content, ts.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}

	if s.maxTurns > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM turns WHERE session_id = ? AND seq NOT IN (
				SELECT seq FROM turns WHERE session_id = ? ORDER BY seq DESC LIMIT ?
			)`,
			id, id, s.maxTurns,
		); err != nil {
			return fmt.Errorf("trimming turns: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Recent(ctx context.Context, id string, n int) ([]Turn, error) {
	limit := n
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM (
			SELECT seq, role, content, created_at FROM turns
			WHERE session_id = ? ORDER BY seq DESC LIMIT ?
		) ORDER BY seq`,
		id, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var ts string
		if err := rows.Scan(&t.Role, &t.Content, &ts); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		t.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (s *SQLiteStore) Len(ctx context.Context, id string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns WHERE session_id = ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting turns: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Clear(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing database")
	return s.db.Close()
}

// migrate runs all pending migrations.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version).Scan(&count); err != nil {
			return fmt.Errorf("checking migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		s.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}
