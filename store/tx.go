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

package store

import (
	"database/sql"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Tx is a scoped write transaction over the Store, handed to a callback by
// Store.Transaction.
type Tx struct {
	tx *sql.Tx
}

// AddArchive inserts a new archive and adds its timestamp column to files.
// Fails with ErrArchiveExists if the archive is already known.
func (t *Tx) AddArchive(name string) error {
	col, err := columnName(name)
	if err != nil {
		return err
	}

	if _, err := t.tx.Exec(`INSERT INTO archives (archive_name) VALUES (?);`, name); err != nil {
		if isUniqueConstraint(err) {
			return ErrArchiveExists
		}

		return err
	}

	_, err = t.tx.Exec(fmt.Sprintf(`ALTER TABLE files ADD COLUMN %s INTEGER;`, col))

	return err
}

// RemoveArchive rebuilds the files table without the named archive's
// column, drops rows left with every retained column null, and removes the
// archive from the archives table. A no-op if the archive isn't known.
func (t *Tx) RemoveArchive(name string) error {
	if _, err := columnName(name); err != nil {
		return err
	}

	known, err := t.isKnownArchive(name)
	if err != nil {
		return err
	}

	if !known {
		return nil
	}

	retained, err := t.retainedArchiveNames(name)
	if err != nil {
		return err
	}

	if err := t.rebuildFilesTable(retained); err != nil {
		return err
	}

	if err := t.deleteAllNullRows(retained); err != nil {
		return err
	}

	_, err = t.tx.Exec(`DELETE FROM archives WHERE archive_name = ?;`, name)

	return err
}

func (t *Tx) isKnownArchive(name string) (bool, error) {
	var n int

	err := t.tx.QueryRow(`SELECT COUNT(*) FROM archives WHERE archive_name = ?;`, name).Scan(&n)

	return n > 0, err
}

func (t *Tx) retainedArchiveNames(remove string) ([]string, error) {
	rows, err := t.tx.Query(`SELECT archive_name FROM archives WHERE archive_name != ? ORDER BY rowid;`, remove)
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

func (t *Tx) rebuildFilesTable(retained []string) error {
	cols := make([]string, 0, len(retained))
	colDefs := make([]string, 0, len(retained))

	for _, name := range retained {
		col, err := columnName(name)
		if err != nil {
			return err
		}

		cols = append(cols, col)
		colDefs = append(colDefs, col+" INTEGER")
	}

	createCols := "path TEXT PRIMARY KEY"
	for _, def := range colDefs {
		createCols += ", " + def
	}

	if _, err := t.tx.Exec(fmt.Sprintf(`CREATE TABLE files_new (%s) STRICT;`, createCols)); err != nil {
		return err
	}

	selectCols := "path"
	for _, col := range cols {
		selectCols += ", " + col
	}

	insert := fmt.Sprintf(`INSERT INTO files_new SELECT %s FROM files;`, selectCols)
	if _, err := t.tx.Exec(insert); err != nil {
		return err
	}

	if _, err := t.tx.Exec(`DROP TABLE files;`); err != nil {
		return err
	}

	_, err := t.tx.Exec(`ALTER TABLE files_new RENAME TO files;`)

	return err
}

func (t *Tx) deleteAllNullRows(retained []string) error {
	if len(retained) == 0 {
		_, err := t.tx.Exec(`DELETE FROM files;`)

		return err
	}

	where := ""

	for i, name := range retained {
		col, err := columnName(name)
		if err != nil {
			return err
		}

		if i > 0 {
			where += " AND "
		}

		where += col + " IS NULL"
	}

	_, err := t.tx.Exec(fmt.Sprintf(`DELETE FROM files WHERE %s;`, where))

	return err
}

// UpsertPath sets the cell at (path, archive) to max(current, t), creating
// the row if it doesn't exist.
func (t *Tx) UpsertPath(archive, path string, mtime int64) error {
	col, err := columnName(archive)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`INSERT INTO files (path, %[1]s) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET %[1]s = CASE
		 	WHEN %[1]s IS NULL OR %[1]s < excluded.%[1]s THEN excluded.%[1]s
		 	ELSE %[1]s
		 END;`, col)

	_, err = t.tx.Exec(query, path, mtime)

	return err
}

func isUniqueConstraint(err error) bool {
	var sqliteErr sqlite3.Error

	if e, ok := err.(sqlite3.Error); ok { //nolint:errorlint
		sqliteErr = e

		return sqliteErr.Code == sqlite3.ErrConstraint
	}

	return false
}
