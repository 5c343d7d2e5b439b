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

// Package archivesync reconciles the Store's archive set with the archive
// source's current one: removing departed archives, ingesting new ones
// through a pathtime.Table, never partially committing an archive.
package archivesync

import (
	"fmt"
	"regexp"
	"time"

	"github.com/wtsi-hgi/borg-restore/archivesource"
	"github.com/wtsi-hgi/borg-restore/pathtime"
	"github.com/wtsi-hgi/borg-restore/store"
)

// Logger is satisfied by log15.Logger.
type Logger interface {
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{}) {}

// lineRE matches "<4-char weekday+comma> YYYY-MM-DD HH:MM:SS <path>". Lines
// that don't match are silently skipped.
var lineRE = regexp.MustCompile(`^.{4} (\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) (.+)$`)

const timestampLayout = "2006-01-02 15:04:05"

// TableFactory builds a fresh pathtime.Table bound to the given Upserter
// (the active transaction) for each archive being ingested, letting callers
// pick MemoryTable or DirectTable (or any other Table implementation) via
// configuration.
type TableFactory func(pathtime.Upserter) pathtime.Table

// Synchronizer reconciles a Store against an archivesource.Source.
type Synchronizer struct {
	Store    *store.Store
	Source   archivesource.Source
	NewTable TableFactory
	Logger   Logger
}

// New returns a Synchronizer. newTable selects the ingestion strategy
// (pathtime.NewMemoryTable or pathtime.NewDirectTable, bound to the Tx
// handed to it during Update).
func New(s *store.Store, src archivesource.Source, newTable TableFactory, logger Logger) *Synchronizer {
	if logger == nil {
		logger = nopLogger{}
	}

	return &Synchronizer{Store: s, Source: src, NewTable: newTable, Logger: logger}
}

// Update reconciles the Store with the archive source: archives present in
// the Store but not the source are removed first, each in its own
// transaction followed by a compaction; archives present in the source but
// not the Store are then ingested, in the source's listing order, each
// within one transaction that is rolled back whole on any failure.
func (s *Synchronizer) Update() error {
	sourceArchives, err := s.Source.ListArchives()
	if err != nil {
		return fmt.Errorf("archivesync: listing archives: %w", err)
	}

	known, err := s.Store.ArchiveNames()
	if err != nil {
		return err
	}

	knownSet := toSet(known)
	sourceSet := toSet(sourceArchives)

	for _, name := range known {
		if _, ok := sourceSet[name]; ok {
			continue
		}

		if err := s.removeArchive(name); err != nil {
			return err
		}
	}

	for _, name := range sourceArchives {
		if _, ok := knownSet[name]; ok {
			continue
		}

		if err := s.addArchive(name); err != nil {
			return err
		}
	}

	return nil
}

func (s *Synchronizer) removeArchive(name string) error {
	if err := s.Store.Transaction(func(tx *store.Tx) error {
		return tx.RemoveArchive(name)
	}); err != nil {
		return fmt.Errorf("archivesync: removing archive %s: %w", name, err)
	}

	s.Logger.Info("removed archive", "archive", name)

	return s.Store.Compact()
}

func (s *Synchronizer) addArchive(name string) error {
	var paths int

	err := s.Store.Transaction(func(tx *store.Tx) error {
		if err := tx.AddArchive(name); err != nil {
			return err
		}

		table := s.NewTable(tx)
		table.Bind(name)

		if err := s.Source.ListArchive(name, func(line string) error {
			path, mtime, ok := parseLine(line)
			if !ok {
				return nil
			}

			paths++

			return table.AddPath(path, mtime)
		}); err != nil {
			return fmt.Errorf("archivesync: streaming archive %s: %w", name, err)
		}

		return table.Flush()
	})
	if err != nil {
		return fmt.Errorf("archivesync: adding archive %s: %w", name, err)
	}

	s.Logger.Info("ingested archive", "archive", name, "paths", paths)

	return s.Store.Compact()
}

// parseLine parses one "<weekday>, YYYY-MM-DD HH:MM:SS <path>" line,
// interpreting the timestamp in the process's local time zone. Non-matching
// lines return ok=false.
func parseLine(line string) (path string, mtime int64, ok bool) {
	m := lineRE.FindStringSubmatch(line)
	if m == nil {
		return "", 0, false
	}

	t, err := time.ParseInLocation(timestampLayout, m[1], time.Local)
	if err != nil {
		return "", 0, false
	}

	return m[2], t.Unix(), true
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))

	for _, n := range names {
		set[n] = struct{}{}
	}

	return set
}
