package records

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pixil98/go-mudmaze/internal/game"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the log in a SQLite table, ordered by rowid.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS escapes (
		id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		username TEXT NOT NULL,
		escaped_at INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL,
		moves INTEGER NOT NULL
	)`)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context) ([]game.EscapeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, username, escaped_at, duration_ns, moves FROM escapes ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying escapes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []game.EscapeRecord
	for rows.Next() {
		var (
			rec       game.EscapeRecord
			escapedAt int64
			duration  int64
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Username, &escapedAt, &duration, &rec.Moves); err != nil {
			return nil, fmt.Errorf("scanning escape: %w", err)
		}
		rec.Escaped = time.Unix(0, escapedAt).UTC()
		rec.Time = time.Duration(duration)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading escapes: %w", err)
	}

	return out, nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec game.EscapeRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO escapes (id, user_id, username, escaped_at, duration_ns, moves) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Username, rec.Escaped.UnixNano(), int64(rec.Time), rec.Moves)
	if err != nil {
		return fmt.Errorf("inserting escape %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
