package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Mohanapavani03/agriconnect/pkg/model"

	_ "modernc.org/sqlite"
)

// sessionKey is the fixed well-known key the current profile is stored under.
// The payload is a direct field-for-field JSON serialization of model.Farmer
// with no version field: if the Farmer shape changes, old rows fail to decode
// and read as "no session".
const sessionKey = "current_farmer"

// SQLite implements the SessionStore interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) SaveSession(ctx context.Context, farmer *model.Farmer) error {
	if farmer == nil {
		return errors.New("nil farmer")
	}

	payload, err := json.Marshal(farmer)
	if err != nil {
		return fmt.Errorf("serialize session: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   payload = excluded.payload,
		   updated_at = excluded.updated_at`,
		sessionKey, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLite) LoadSession(ctx context.Context) (*model.Farmer, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM sessions WHERE key = ?`, sessionKey,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var farmer model.Farmer
	if err := json.Unmarshal([]byte(payload), &farmer); err != nil {
		// Malformed stored data is treated as absence, not an error.
		return nil, nil
	}
	return &farmer, nil
}

func (s *SQLite) ClearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE key = ?`, sessionKey,
	); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
