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

// Package restorer is the facade that wires the Store, the Synchronizer,
// the query engine and an archivesource.Extractor together behind the four
// public operations: UpdateCache, FindArchives, SelectArchiveByAge and
// Restore.
package restorer

import (
	"os"
	"path"
	"strings"
	"time"

	"github.com/wtsi-hgi/borg-restore/archivesource"
	"github.com/wtsi-hgi/borg-restore/archivesync"
	"github.com/wtsi-hgi/borg-restore/query"
	"github.com/wtsi-hgi/borg-restore/store"
	"github.com/wtsi-hgi/borg-restore/untaint"
)

const destDirPerms = 0750

// Error is the custom error type for the restorer package.
type Error string

func (e Error) Error() string { return string(e) }

// ErrNotFound is a warning-level result: the path wasn't found in any
// archive. It's returned by FindArchives's caller contract as an empty
// list, not an error; it's defined here for callers that want to
// distinguish "found nothing" in logs.
const ErrNotFound = Error("restorer: path not found in any archive")

// Restorer owns a Store and an archivesource.Source/Extractor for its
// lifetime and exposes the operations the CLI drives.
type Restorer struct {
	store     *store.Store
	sync      *archivesync.Synchronizer
	extractor archivesource.Extractor
}

// New wires a Restorer around an already-open Store, a configured
// Synchronizer, and an Extractor.
func New(s *store.Store, sync *archivesync.Synchronizer, extractor archivesource.Extractor) *Restorer {
	return &Restorer{store: s, sync: sync, extractor: extractor}
}

// Close releases the Store handle.
func (r *Restorer) Close() error {
	return r.store.Close()
}

// UpdateCache incrementally synchronizes the index with the archive
// source's current archive set.
func (r *Restorer) UpdateCache() error {
	return r.sync.Update()
}

// FindArchives resolves path to the distinct, ascending-by-mtime list of
// archives containing it. An empty result is not an error.
func (r *Restorer) FindArchives(lookupPath string) ([]query.Match, error) {
	if err := untaint.Path(lookupPath); err != nil {
		return nil, err
	}

	return query.FindArchives(r.store, lookupPath)
}

// SelectArchiveByAge selects the newest entry of list older than now minus
// the parsed timespec. ok is false, with no error, when nothing matches.
func (r *Restorer) SelectArchiveByAge(list []query.Match, spec string) (m query.Match, ok bool, err error) {
	return query.SelectByAge(list, spec, time.Now().Unix())
}

// Restore creates destination if missing, removes any existing entry at
// basename(path) inside it, and runs the Extractor against archive for path
// with destination as the current working directory, stripping the number
// of leading path components implied by path's directory depth.
func (r *Restorer) Restore(lookupPath, archive, destination string) error {
	if err := untaint.Path(lookupPath); err != nil {
		return err
	}

	if err := os.MkdirAll(destination, destDirPerms); err != nil {
		return err
	}

	target := path.Join(destination, path.Base(lookupPath))
	if err := os.RemoveAll(target); err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	if err := os.Chdir(destination); err != nil {
		return err
	}

	defer os.Chdir(cwd) //nolint:errcheck

	return r.extractor.Extract(strings.Count(lookupPath, "/"), archive, lookupPath)
}
