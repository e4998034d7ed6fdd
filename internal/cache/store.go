package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is the on-disk, per-file persistence layer sitting under Encode/
// Decode: one row per analyzed file path, keyed by the path and tagged
// with the file's content checksum so a caller can skip re-reflecting a file whose content hasn't changed
// since the last run. modernc.org/sqlite is a pure-Go driver, matching
// the rest of this module's preference for dependencies that don't
// require cgo or a system library.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) and opens the cache database at path. path
// may be ":memory:" for a process-local cache.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening store: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS file_cache (
	path            TEXT PRIMARY KEY,
	content_sum     TEXT NOT NULL,
	build_checksum  TEXT NOT NULL,
	envelope        BLOB NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores value (already Encode-d into an envelope) for path, tagged
// with contentSum so a later Get can detect the file changed underneath
// it without touching the envelope's own BuildChecksum/PayloadHash
// fields.
func (s *Store) Put(path, contentSum, buildChecksum string, envelope []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO file_cache(path, content_sum, build_checksum, envelope) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET content_sum = excluded.content_sum,
		   build_checksum = excluded.build_checksum, envelope = excluded.envelope`,
		path, contentSum, buildChecksum, envelope,
	)
	if err != nil {
		return fmt.Errorf("cache: storing %s: %w", path, err)
	}
	return nil
}

// Get returns the stored envelope for path along with the content sum it
// was stored under, or ok=false if path has never been cached.
func (s *Store) Get(path string) (envelope []byte, contentSum string, ok bool, err error) {
	row := s.db.QueryRow(`SELECT content_sum, envelope FROM file_cache WHERE path = ?`, path)
	if err := row.Scan(&contentSum, &envelope); err != nil {
		if err == sql.ErrNoRows {
			return nil, "", false, nil
		}
		return nil, "", false, fmt.Errorf("cache: loading %s: %w", path, err)
	}
	return envelope, contentSum, true, nil
}

// Forget drops a stale path's entry, used when a file is deleted from
// the project between runs.
func (s *Store) Forget(path string) error {
	if _, err := s.db.Exec(`DELETE FROM file_cache WHERE path = ?`, path); err != nil {
		return fmt.Errorf("cache: forgetting %s: %w", path, err)
	}
	return nil
}

// Paths returns every path currently cached, used by the daemon to prune
// entries for files no longer in the project.
func (s *Store) Paths() ([]string, error) {
	rows, err := s.db.Query(`SELECT path FROM file_cache`)
	if err != nil {
		return nil, fmt.Errorf("cache: listing paths: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("cache: scanning path: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
