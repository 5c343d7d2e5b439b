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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wtsi-hgi/borg-restore/archivesource"
	"github.com/wtsi-hgi/borg-restore/archivesync"
	"github.com/wtsi-hgi/borg-restore/pathtime"
	"github.com/wtsi-hgi/borg-restore/query"
	"github.com/wtsi-hgi/borg-restore/restorer"
	"github.com/wtsi-hgi/borg-restore/store"
)

type emptySource struct{}

func (emptySource) ListArchives() ([]string, error) { return nil, nil }
func (emptySource) ListArchive(string, archivesource.LineSink) error {
	return nil
}

func newTestRestorer(t *testing.T) *restorer.Restorer {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "archives.db"), store.Options{})
	assert.NoError(t, err)

	sync := archivesync.New(s, emptySource{}, func(u pathtime.Upserter) pathtime.Table {
		return pathtime.NewMemoryTable(u)
	}, nil)

	return restorer.New(s, sync, nil)
}

func TestPickMatchWithoutTimeFlag(t *testing.T) {
	old := timeSpec
	timeSpec = ""

	defer func() { timeSpec = old }()

	matches := []query.Match{
		{Archive: "2024-01-01", MTime: 100},
		{Archive: "2024-02-01", MTime: 200},
	}

	m, err := pickMatch(nil, matches)
	assert.NoError(t, err)
	assert.Equal(t, "2024-02-01", m.Archive)
}

func TestPickMatchWithTimeFlag(t *testing.T) {
	old := timeSpec
	timeSpec = "1s"

	defer func() { timeSpec = old }()

	matches := []query.Match{
		{Archive: "2024-01-01", MTime: 100},
		{Archive: "2024-02-01", MTime: 200},
	}

	r := newTestRestorer(t)
	defer r.Close() //nolint:errcheck

	_, err := pickMatch(r, matches)
	assert.NoError(t, err)
}

func TestUnixTime(t *testing.T) {
	assert.Equal(t, time.Unix(1000, 0), unixTime(1000))
}
