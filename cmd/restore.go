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

package cmd

import (
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/inconshreveable/log15"
	"github.com/spf13/cobra"

	"github.com/wtsi-hgi/borg-restore/archivesource/borgcli"
	"github.com/wtsi-hgi/borg-restore/archivesync"
	"github.com/wtsi-hgi/borg-restore/config"
	"github.com/wtsi-hgi/borg-restore/pathtime"
	"github.com/wtsi-hgi/borg-restore/query"
	"github.com/wtsi-hgi/borg-restore/restorer"
	"github.com/wtsi-hgi/borg-restore/store"
)

func runRestore(_ *cobra.Command, args []string) error {
	if debug {
		appLogger.SetHandler(log15.LvlFilterHandler(log15.LvlDebug, log15.StderrHandler))
	}

	cfg, err := loadConfig()
	if err != nil {
		die("%s", err)
	}

	r, err := newRestorer(cfg)
	if err != nil {
		die("%s", err)
	}
	defer r.Close() //nolint:errcheck

	if updateCache {
		info("updating cache")

		if err := r.UpdateCache(); err != nil {
			die("update cache: %s", err)
		}
	}

	if len(args) == 0 {
		return nil
	}

	return restoreOne(r, cfg, args[0])
}

func restoreOne(r *restorer.Restorer, cfg *config.Config, requested string) error {
	lookupPath := cfg.Rewrite(mustAbs(requested))

	matches, err := r.FindArchives(lookupPath)
	if err != nil {
		die("find archives: %s", err)
	}

	if len(matches) == 0 {
		warn("%s not found in any archive", lookupPath)

		return nil
	}

	match, err := pickMatch(r, matches)
	if err != nil {
		die("%s", err)
	}

	info("restoring %s from archive %s (modified %s)", lookupPath, match.Archive, humanize.Time(unixTime(match.MTime)))

	if err := r.Restore(lookupPath, match.Archive, destination); err != nil {
		die("restore: %s", err)
	}

	return nil
}

func pickMatch(r *restorer.Restorer, matches []query.Match) (query.Match, error) {
	if timeSpec != "" {
		m, ok, err := r.SelectArchiveByAge(matches, timeSpec)
		if err != nil {
			return query.Match{}, err
		}

		if !ok {
			return query.Match{}, restorer.Error("no archive older than " + timeSpec)
		}

		return m, nil
	}

	return matches[len(matches)-1], nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}

	return &config.Config{}, nil
}

func newRestorer(cfg *config.Config) (*restorer.Restorer, error) {
	dbPath := filepath.Join(cfg.CacheBaseOrDefault(), "v2", "archives.db")

	s, err := store.Open(dbPath, store.Options{})
	if err != nil {
		return nil, err
	}

	cli := &borgcli.CLI{Repository: cfg.Repository}

	sync := archivesync.New(s, cli, newTableFactory(cfg), appLogger)

	return restorer.New(s, sync, cli), nil
}

func newTableFactory(cfg *config.Config) archivesync.TableFactory {
	if cfg.DirectTable {
		return func(u pathtime.Upserter) pathtime.Table {
			return pathtime.NewDirectTable(u)
		}
	}

	return func(u pathtime.Upserter) pathtime.Table {
		return pathtime.NewMemoryTable(u)
	}
}

func unixTime(t int64) time.Time {
	return time.Unix(t, 0)
}

func mustAbs(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		die("%s", err)
	}

	return abs
}
