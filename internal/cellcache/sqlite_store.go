package cellcache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/reactive-notebook/nbcore/api"
)

// SQLiteStore persists the content-hash cache to a single-table SQLite
// database, grounded on the teacher's sidecar-database pattern in
// internal/graph/sqlite_graph.go (CREATE TABLE IF NOT EXISTS + prepared
// INSERT OR REPLACE statements against modernc.org/sqlite).
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if absent) a cache database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cellcache: open %s: %w", path, err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cell_keys (
			cell_id TEXT PRIMARY KEY,
			content_key TEXT NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cellcache: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) IsCached(id api.CellId, key string) bool {
	if key == "" {
		return false
	}
	var got string
	err := s.db.QueryRow(`SELECT content_key FROM cell_keys WHERE cell_id = ?`, string(id)).Scan(&got)
	if err != nil {
		return false
	}
	return got == key
}

func (s *SQLiteStore) Record(id api.CellId, key string) {
	_, _ = s.db.Exec(`INSERT OR REPLACE INTO cell_keys (cell_id, content_key) VALUES (?, ?)`, string(id), key)
}

func (s *SQLiteStore) Forget(id api.CellId) {
	_, _ = s.db.Exec(`DELETE FROM cell_keys WHERE cell_id = ?`, string(id))
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
