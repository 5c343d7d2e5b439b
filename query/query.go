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

// Package query resolves a lookup path to the distinct, time-ordered set of
// archives containing it, and selects among them by age.
package query

import (
	"slices"

	"github.com/wtsi-hgi/borg-restore/store"
	"github.com/wtsi-hgi/borg-restore/timespec"
)

// Error is the custom error type for the query package.
type Error string

func (e Error) Error() string { return string(e) }

// ErrInvalidTimespec is returned by SelectByAge in place of
// timespec.ErrInvalidTimespec, for callers that only import this package.
const ErrInvalidTimespec = Error("query: invalid timespec")

// Match is one distinct version of a queried path: the archive that first
// recorded it, and the mtime all archives sharing that version agree on.
type Match struct {
	Archive string
	MTime   int64
}

// Store is the subset of the Store's read API the query engine needs.
type Store interface {
	GetArchivesForPath(path string) ([]store.ArchiveMTime, error)
}

// FindArchives resolves path to its distinct mtimes across archives,
// dropping archives that don't contain path, deduplicating by mtime (the
// first archive by Store enumeration order wins a tie), and sorting
// ascending. Returns an empty slice, not an error, if the path isn't found
// anywhere.
func FindArchives(s Store, path string) ([]Match, error) {
	rows, err := s.GetArchivesForPath(path)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(rows))
	matches := make([]Match, 0, len(rows))

	for _, row := range rows {
		if row.MTime == nil {
			continue
		}

		if _, ok := seen[*row.MTime]; ok {
			continue
		}

		seen[*row.MTime] = struct{}{}
		matches = append(matches, Match{Archive: row.Archive, MTime: *row.MTime})
	}

	slices.SortFunc(matches, func(a, b Match) int {
		switch {
		case a.MTime < b.MTime:
			return -1
		case a.MTime > b.MTime:
			return 1
		default:
			return 0
		}
	})

	return matches, nil
}

// SelectByAge parses timespec and returns the newest match in list (sorted
// ascending, as FindArchives returns it) whose mtime is older than
// now-parsed(timespec). The zero Match and ok=false mean "no match", not an
// error; only an unparseable timespec is an error.
func SelectByAge(list []Match, spec string, now int64) (m Match, ok bool, err error) {
	seconds, err := timespec.Parse(spec)
	if err != nil {
		return Match{}, false, ErrInvalidTimespec
	}

	target := now - seconds

	for i := len(list) - 1; i >= 0; i-- {
		if list[i].MTime < target {
			return list[i], true, nil
		}
	}

	return Match{}, false, nil
}
