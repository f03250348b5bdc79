package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mnemolabs/mnemo/internal/core/models"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// sessionKey is the single storage key the session blob lives under.
const sessionKey = "session"

// SQLite is a Store backed by a local SQLite database.
type SQLite struct {
	conn *sql.DB
}

// NewSQLite opens (creating if needed) the state database at dbPath
// and initializes its schema.
func NewSQLite(dbPath string) (*SQLite, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	// WAL mode so a concurrent reader (e.g. `mnemo show` while the TUI
	// is open) never blocks the writer.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	// SQLite only supports one writer.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	s := &SQLite{conn: conn}
	if err := s.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	_, err := s.conn.Exec(`
	CREATE TABLE IF NOT EXISTS app_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`)
	return err
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Save implements Store.
func (s *SQLite) Save(session models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	_, err = s.conn.Exec(`
		INSERT INTO app_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, sessionKey, string(data))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load implements Store. A missing row, unreadable JSON, or a payload
// that violates the session invariants all return (nil, nil).
func (s *SQLite) Load() (*models.Session, error) {
	var raw string
	err := s.conn.QueryRow(`SELECT value FROM app_state WHERE key = ?`, sessionKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		log.Warn().Err(err).Msg("persisted session is corrupt, starting fresh")
		return nil, nil
	}
	if err := session.Validate(); err != nil {
		log.Warn().Err(err).Msg("persisted session fails invariants, starting fresh")
		return nil, nil
	}
	return &session, nil
}

// Clear implements Store.
func (s *SQLite) Clear() error {
	if _, err := s.conn.Exec(`DELETE FROM app_state WHERE key = ?`, sessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
