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

	"github.com/wtsi-hgi/borg-restore/untaint"
)

// defaultCachePages is the default SQLite page cache size, in KiB (negative
// cache_size means KiB rather than number of pages). ~100MB by default.
const defaultCachePages = -100_000

func initSchema(db *sql.DB, cacheKiB int) error {
	pragmaCacheSize := defaultCachePages
	if cacheKiB != 0 {
		pragmaCacheSize = -cacheKiB
	}

	for _, cmd := range []string{
		`PRAGMA journal_mode = WAL;`,
		fmt.Sprintf(`PRAGMA cache_size = %d;`, pragmaCacheSize),
		`CREATE TABLE IF NOT EXISTS archives (archive_name TEXT UNIQUE) STRICT;`,
		`CREATE TABLE IF NOT EXISTS files (path TEXT PRIMARY KEY) STRICT;`,
	} {
		if _, err := db.Exec(cmd); err != nil {
			return err
		}
	}

	return nil
}

// columnName returns the quoted SQL identifier for the archive's timestamp
// column. The archive name must already have passed untaint.ArchiveName; this
// is re-checked here as the only place the name is interpolated into SQL.
func columnName(archive string) (string, error) {
	if err := untaint.ArchiveName(archive); err != nil {
		return "", err
	}

	return `"timestamp-` + archive + `"`, nil
}
