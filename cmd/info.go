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
	"os"
	"path/filepath"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spf13/cobra"

	"github.com/wtsi-hgi/borg-restore/store"
)

// infoCmd reports summary information about the index.
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Report summary information about the index",
	Run: func(_ *cobra.Command, _ []string) {
		cfg, err := loadConfig()
		if err != nil {
			die("%s", err)
		}

		dbPath := filepath.Join(cfg.CacheBaseOrDefault(), "v2", "archives.db")

		s, err := store.Open(dbPath, store.Options{})
		if err != nil {
			die("%s", err)
		}
		defer s.Close() //nolint:errcheck

		archives, err := s.ArchiveNames()
		if err != nil {
			die("%s", err)
		}

		rows, err := s.RowCount()
		if err != nil {
			die("%s", err)
		}

		size := indexFileSize(dbPath)

		cliPrint("Archives: %d\nPaths: %d\nIndex size: %s\n", len(archives), rows, bytefmt.ByteSize(size))
	},
}

func init() {
	RootCmd.AddCommand(infoCmd)
}

func indexFileSize(path string) uint64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}

	return uint64(fi.Size()) //nolint:gosec
}
