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

package query

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/wtsi-hgi/borg-restore/store"
)

type fakeStore struct {
	rows []store.ArchiveMTime
}

func (f *fakeStore) GetArchivesForPath(string) ([]store.ArchiveMTime, error) {
	return f.rows, nil
}

func mtime(t int64) *int64 { return &t }

func TestFindArchives(t *testing.T) {
	Convey("Given a path present in several archives with distinct mtimes", t, func() {
		s := &fakeStore{rows: []store.ArchiveMTime{
			{Archive: "2024-03-01", MTime: mtime(300)},
			{Archive: "2024-02-01", MTime: mtime(100)},
			{Archive: "2024-01-01", MTime: nil},
			{Archive: "2024-04-01", MTime: mtime(200)},
		}}

		matches, err := FindArchives(s, "some/path")
		So(err, ShouldBeNil)

		Convey("Archives that don't contain the path are dropped", func() {
			for _, m := range matches {
				So(m.Archive, ShouldNotEqual, "2024-01-01")
			}
			So(matches, ShouldHaveLength, 3)
		})

		Convey("Results are sorted ascending by mtime", func() {
			So(matches[0].MTime, ShouldEqual, 100)
			So(matches[1].MTime, ShouldEqual, 200)
			So(matches[2].MTime, ShouldEqual, 300)
		})
	})

	Convey("Given two archives agreeing on the same mtime", t, func() {
		s := &fakeStore{rows: []store.ArchiveMTime{
			{Archive: "2024-01-01", MTime: mtime(100)},
			{Archive: "2024-02-01", MTime: mtime(100)},
		}}

		matches, err := FindArchives(s, "some/path")
		So(err, ShouldBeNil)

		Convey("Only the first by Store order is kept", func() {
			So(matches, ShouldHaveLength, 1)
			So(matches[0].Archive, ShouldEqual, "2024-01-01")
		})
	})

	Convey("Given a path present in no archive", t, func() {
		s := &fakeStore{rows: []store.ArchiveMTime{
			{Archive: "2024-01-01", MTime: nil},
		}}

		matches, err := FindArchives(s, "missing")
		So(err, ShouldBeNil)
		So(matches, ShouldBeEmpty)
	})
}

func TestSelectByAge(t *testing.T) {
	list := []Match{
		{Archive: "a", MTime: 1000},
		{Archive: "b", MTime: 2000},
		{Archive: "c", MTime: 3000},
	}

	Convey("The newest match older than now-timespec is selected", t, func() {
		m, ok, err := SelectByAge(list, "1s", 2001)
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)
		So(m.Archive, ShouldEqual, "a")
	})

	Convey("Nothing matches when every entry is too recent", t, func() {
		_, ok, err := SelectByAge(list, "1s", 1000)
		So(err, ShouldBeNil)
		So(ok, ShouldBeFalse)
	})

	Convey("An invalid timespec is an error", t, func() {
		_, _, err := SelectByAge(list, "nonsense", 2001)
		So(err, ShouldEqual, ErrInvalidTimespec)
	})
}
