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

package restorer

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/wtsi-hgi/borg-restore/archivesource"
	"github.com/wtsi-hgi/borg-restore/archivesync"
	"github.com/wtsi-hgi/borg-restore/pathtime"
	"github.com/wtsi-hgi/borg-restore/query"
	"github.com/wtsi-hgi/borg-restore/store"
)

type fakeSource struct{}

func (fakeSource) ListArchives() ([]string, error) { return nil, nil }
func (fakeSource) ListArchive(string, archivesource.LineSink) error {
	return nil
}

type fakeExtractor struct {
	calls  []string
	strips []int
}

func (f *fakeExtractor) Extract(stripComponents int, archive, path string) error {
	f.calls = append(f.calls, archive+":"+path)
	f.strips = append(f.strips, stripComponents)

	return nil
}

func newTestRestorer(t *testing.T, extractor *fakeExtractor) *Restorer {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "archives.db"), store.Options{})
	So(err, ShouldBeNil)

	sync := archivesync.New(s, fakeSource{}, func(u pathtime.Upserter) pathtime.Table {
		return pathtime.NewMemoryTable(u)
	}, nil)

	return New(s, sync, extractor)
}

func TestRestorerFindArchives(t *testing.T) {
	Convey("Given a Restorer over a Store with an indexed path", t, func() {
		extractor := &fakeExtractor{}
		r := newTestRestorer(t, extractor)
		Reset(func() { So(r.Close(), ShouldBeNil) })

		So(r.store.Transaction(func(tx *store.Tx) error {
			if err := tx.AddArchive("2024-01-01"); err != nil {
				return err
			}

			return tx.UpsertPath("2024-01-01", "some/path", 1000)
		}), ShouldBeNil)

		Convey("FindArchives returns the matching archive", func() {
			matches, err := r.FindArchives("some/path")
			So(err, ShouldBeNil)
			So(matches, ShouldResemble, []query.Match{{Archive: "2024-01-01", MTime: 1000}})
		})

		Convey("FindArchives rejects an invalid path", func() {
			_, err := r.FindArchives("bad\x00path")
			So(err, ShouldNotBeNil)
		})

		Convey("FindArchives returns nothing for an unknown path", func() {
			matches, err := r.FindArchives("nowhere")
			So(err, ShouldBeNil)
			So(matches, ShouldBeEmpty)
		})
	})
}

func TestRestorerRestore(t *testing.T) {
	Convey("Given a Restorer and a destination directory", t, func() {
		extractor := &fakeExtractor{}
		r := newTestRestorer(t, extractor)
		Reset(func() { So(r.Close(), ShouldBeNil) })

		dest := t.TempDir()
		cwd, err := os.Getwd()
		So(err, ShouldBeNil)
		Reset(func() { So(os.Chdir(cwd), ShouldBeNil) })

		Convey("Restore delegates to the Extractor with the right strip count", func() {
			So(r.Restore("a/b/c.txt", "2024-01-01", dest), ShouldBeNil)
			So(extractor.calls, ShouldResemble, []string{"2024-01-01:a/b/c.txt"})
			So(extractor.strips, ShouldResemble, []int{2})
		})

		Convey("Restore removes any pre-existing entry at the target before extracting", func() {
			existing := filepath.Join(dest, "c.txt")
			So(os.WriteFile(existing, []byte("stale"), 0600), ShouldBeNil)

			So(r.Restore("a/b/c.txt", "2024-01-01", dest), ShouldBeNil)

			_, statErr := os.Stat(existing)
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})
	})
}
