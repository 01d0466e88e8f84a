// Package cache provides a SQLite-backed implementation of the meteostat
// download cache, so station inventories and observation dumps survive
// restarts.
package cache

import (
	"database/sql"
	"errors"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache stores raw downloads in a single-table SQLite database using
// the pure Go driver (modernc.org/sqlite).
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the cache database at path and applies the
// schema.
func NewSQLite(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL keeps concurrent readers from blocking the scheduler's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		log.Println("warning: could not set WAL mode:", err)
	}

	// fetched_at is Unix nanoseconds; entries written within the same
	// second must still order correctly for age checks and pruning.
	schema := `CREATE TABLE IF NOT EXISTS downloads (
        key TEXT PRIMARY KEY,
        payload BLOB NOT NULL,
        fetched_at INTEGER NOT NULL
    );`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteCache{db: db}, nil
}

// Get returns the cached payload for key when it is younger than maxAge.
func (c *SQLiteCache) Get(key string, maxAge time.Duration) ([]byte, bool, error) {
	var payload []byte
	var fetchedAt int64

	err := c.db.QueryRow(`SELECT payload, fetched_at FROM downloads WHERE key = ?`, key).
		Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if maxAge > 0 && time.Since(time.Unix(0, fetchedAt)) > maxAge {
		return nil, false, nil
	}
	return payload, true, nil
}

// Set stores the payload for key, replacing any previous entry.
func (c *SQLiteCache) Set(key string, payload []byte) error {
	_, err := c.db.Exec(`INSERT OR REPLACE INTO downloads(key, payload, fetched_at) VALUES(?,?,?)`,
		key, payload, time.Now().UnixNano())
	return err
}

// Prune deletes entries older than maxAge. Returns the number of rows removed.
func (c *SQLiteCache) Prune(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UnixNano()
	res, err := c.db.Exec(`DELETE FROM downloads WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
