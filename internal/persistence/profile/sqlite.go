package profile

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id    TEXT PRIMARY KEY,
	blob       BLOB NOT NULL,
	updated_at TEXT NOT NULL
);
`

type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the profile database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, userID string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT blob FROM profiles WHERE user_id = ?`, userID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	return blob, nil
}

func (s *SQLiteStore) Save(ctx context.Context, userID string, blob []byte) error {
	if userID == "" {
		return fmt.Errorf("empty user id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, blob, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		userID, blob, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save profile %s: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
