/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// Package store implements the persistent path-to-per-archive-mtime index,
// backed by SQLite (github.com/mattn/go-sqlite3) in a column-per-archive
// layout: one files row per path, one column per known archive, the cell
// holding that archive's recorded mtime for the path (NULL if absent).
package store

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const dirPerms = 0700

// ArchiveMTime is one entry of a path's per-archive mtimes, as returned by
// GetArchivesForPath. MTime is nil when the archive does not contain the
// path.
type ArchiveMTime struct {
	Archive string
	MTime   *int64
}

// Store is the persistent path-to-per-archive-mtime index.
type Store struct {
	db *sql.DB
}

// Options configures a Store on Open.
type Options struct {
	// CacheKiB overrides the SQLite page cache size, in KiB. 0 uses the
	// default of ~100MB.
	CacheKiB int
}

// Open opens (creating if necessary) the index file at path, inside a
// directory created with mode 0700 if it doesn't already exist.
func Open(path string, opts Options) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerms); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if err := initSchema(db, opts.CacheKiB); err != nil {
		db.Close()

		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ArchiveNames enumerates known archives, in the order they were added.
func (s *Store) ArchiveNames() ([]string, error) {
	rows, err := s.db.Query(`SELECT archive_name FROM archives ORDER BY rowid;`)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string

		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	return names, rows.Err()
}

// RowCount returns the number of rows in the files table.
func (s *Store) RowCount() (int, error) {
	var n int

	err := s.db.QueryRow(`SELECT COUNT(*) FROM files;`).Scan(&n)

	return n, err
}

// GetArchivesForPath returns one entry per known archive, in insertion
// order, with MTime nil when that archive does not contain path (including
// when path has no row at all).
func (s *Store) GetArchivesForPath(path string) ([]ArchiveMTime, error) {
	names, err := s.ArchiveNames()
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, nil
	}

	cols := make([]string, len(names))

	for i, name := range names {
		col, err := columnName(name)
		if err != nil {
			return nil, err
		}

		cols[i] = col
	}

	query := "SELECT " + joinCols(cols) + " FROM files WHERE path = ?;"

	values := make([]sql.NullInt64, len(names))
	dest := make([]any, len(names))

	for i := range values {
		dest[i] = &values[i]
	}

	err = s.db.QueryRow(query, path).Scan(dest...)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	result := make([]ArchiveMTime, len(names))

	for i, name := range names {
		result[i] = ArchiveMTime{Archive: name}

		if err == nil && values[i].Valid {
			t := values[i].Int64
			result[i].MTime = &t
		}
	}

	return result, nil
}

// Compact reclaims space after large churn. Must not be called from inside a
// transaction.
func (s *Store) Compact() error {
	_, err := s.db.Exec(`VACUUM;`)

	return err
}

// Transaction runs fn within a single write transaction, committing on a nil
// return and rolling back otherwise. Every exit path from fn resolves the
// transaction, so a panic inside fn still rolls back before propagating.
func (s *Store) Transaction(fn func(*Tx) error) (err error) {
	sqlTx, err := s.db.Begin()
	if err != nil {
		return err
	}

	tx := &Tx{tx: sqlTx}

	defer func() {
		if p := recover(); p != nil {
			sqlTx.Rollback() //nolint:errcheck

			panic(p)
		}

		if err != nil {
			sqlTx.Rollback() //nolint:errcheck

			return
		}

		err = sqlTx.Commit()
	}()

	err = fn(tx)

	return err
}

func joinCols(cols []string) string {
	out := cols[0]

	for _, c := range cols[1:] {
		out += ", " + c
	}

	return out
}
