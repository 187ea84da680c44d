package baseline

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrStoreUnavailable wraps any failure to open, read or write the
// persisted store. There is no safe partial mode; callers abort the run.
var ErrStoreUnavailable = errors.New("baseline store unavailable")

// ErrNotInitialized is returned when the database exists but holds no
// baseline table yet.
var ErrNotInitialized = errors.New("baseline not initialized (run init first)")

const createTableQuery = `
CREATE TABLE files (
    path        TEXT PRIMARY KEY,
    digest      TEXT NOT NULL,
    recorded_at TIMESTAMP NOT NULL
)`

const upsertQuery = `
INSERT INTO files (path, digest, recorded_at) VALUES (?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
    digest      = excluded.digest,
    recorded_at = excluded.recorded_at`

// Store manages baseline persistence in a single SQLite database.
// Every operation takes the handle explicitly; there is no global
// connection state.
type Store struct {
	db *sql.DB
}

// Open returns a handle to the store at path. The database file is created
// on first use; the schema is not, Initialize does that explicitly.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize destroys any existing baseline and creates an empty one.
// Destructive and irreversible; only the init command calls it, never any
// other operation.
func (s *Store) Initialize() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS files`); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if _, err := tx.Exec(createTableQuery); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ready reports whether Initialize has been run against this store.
func (s *Store) Ready() (bool, error) {
	var name string
	err := s.db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'files'`,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return true, nil
}

// LoadAll returns every recorded path/digest pair, ordered by path. The
// single-statement scan is a consistent snapshot; a concurrent writer is
// never observed mid-commit.
func (s *Store) LoadAll() ([]Record, error) {
	rows, err := s.db.Query(`SELECT path, digest, recorded_at FROM files ORDER BY path`)
	if err != nil {
		if isMissingTable(err) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var recordedAt string
		if err := rows.Scan(&r.Path, &r.Digest, &recordedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		r.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid recorded_at for %s: %v", ErrStoreUnavailable, r.Path, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return records, nil
}

// Upsert inserts or replaces the record for path with a fresh timestamp.
// The write is a single statement: a failure leaves either the old record
// or the new one, never a mix.
func (s *Store) Upsert(path, digest string, at time.Time) error {
	_, err := s.db.Exec(upsertQuery, path, digest, at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		if isMissingTable(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Commit applies the accepted entries of a diff in one transaction: every
// change is upserted with the shared timestamp. Records for files that
// have disappeared are never deleted here; disappearance stays visible to
// the operator until the content returns.
func (s *Store) Commit(changes []Change, at time.Time) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertQuery)
	if err != nil {
		if isMissingTable(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer stmt.Close()

	recordedAt := at.UTC().Format(time.RFC3339Nano)
	for _, c := range changes {
		if _, err := stmt.Exec(c.Path, c.Digest, recordedAt); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
