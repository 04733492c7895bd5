package persist

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/JulianC775/CodeClip/internal/apperr"
	"github.com/JulianC775/CodeClip/internal/codec"
	"github.com/JulianC775/CodeClip/internal/models"
)

// storeKey is the fixed key the collection is persisted under.
const storeKey = "collection"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS collections (
	key        TEXT PRIMARY KEY,
	version    INTEGER NOT NULL,
	payload    TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLite implements Provider backed by a single keyed row in a local
// SQLite database. The transactional upsert gives atomic-replace
// semantics for free.
type SQLite struct {
	conn     *sql.DB
	maxBytes int64
}

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
func OpenSQLite(dsn string, maxBytes int64) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("persist: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("persist: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("persist: apply schema: %w", err)
	}
	return &SQLite{conn: conn, maxBytes: maxBytes}, nil
}

// Load reads and decodes the persisted collection row.
func (s *SQLite) Load() ([]models.Snippet, error) {
	var payload string
	err := s.conn.QueryRow(`SELECT payload FROM collections WHERE key = ?`, storeKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("persist: query: %w", err)
	}

	snippets, err := codec.Deserialize([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("persist: %w: %v", apperr.ErrCorrupt, err)
	}
	return snippets, nil
}

// Save serializes the collection and replaces the keyed row in a
// transaction.
func (s *SQLite) Save(snippets []models.Snippet) error {
	data, err := codec.Serialize(snippets)
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return fmt.Errorf("persist: payload is %d bytes, limit %d: %w", len(data), s.maxBytes, apperr.ErrQuotaExceeded)
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("persist: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO collections (key, version, payload, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			version    = excluded.version,
			payload    = excluded.payload,
			updated_at = excluded.updated_at
	`, storeKey, codec.Version, string(data))
	if err != nil {
		return fmt.Errorf("persist: upsert: %w", err)
	}
	return tx.Commit()
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

var _ Provider = (*SQLite)(nil)
