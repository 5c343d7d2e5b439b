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

package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given a config file with a repository and rewrite rules", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yml")

		data := `
repository: /backups/repo
cache_base: /var/cache/borg-restore
rewrites:
  - regex: '^/nfs/(.*)'
    replacement: '/mnt/$1'
  - regex: '^/old/(.*)'
    replacement: '/new/$1'
`
		So(os.WriteFile(path, []byte(data), 0600), ShouldBeNil)

		Convey("It loads successfully and compiles every rewrite rule", func() {
			cfg, err := Load(path)
			So(err, ShouldBeNil)
			So(cfg.Repository, ShouldEqual, "/backups/repo")
			So(cfg.CacheBase, ShouldEqual, "/var/cache/borg-restore")
			So(cfg.CacheBaseOrDefault(), ShouldEqual, "/var/cache/borg-restore")
			So(cfg.Rewrites, ShouldHaveLength, 2)

			for _, r := range cfg.Rewrites {
				So(r.compiled, ShouldNotBeNil)
			}
		})

		Convey("Rewrite applies the first matching rule", func() {
			cfg, err := Load(path)
			So(err, ShouldBeNil)
			So(cfg.Rewrite("/nfs/project/file"), ShouldEqual, "/mnt/project/file")
			So(cfg.Rewrite("/old/project/file"), ShouldEqual, "/new/project/file")
		})

		Convey("A path matching no rule passes through unchanged", func() {
			cfg, err := Load(path)
			So(err, ShouldBeNil)
			So(cfg.Rewrite("/home/user/file"), ShouldEqual, "/home/user/file")
		})
	})

	Convey("A config file missing repository fails to load", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yml")
		So(os.WriteFile(path, []byte("cache_base: /tmp\n"), 0600), ShouldBeNil)

		_, err := Load(path)
		So(err, ShouldEqual, ErrNoRepository)
	})

	Convey("A config file with a bad rewrite regex fails to load", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yml")
		data := "repository: /backups/repo\nrewrites:\n  - regex: '(['\n    replacement: x\n"
		So(os.WriteFile(path, []byte(data), 0600), ShouldBeNil)

		_, err := Load(path)
		So(err, ShouldNotBeNil)
	})
}

func TestCacheBaseOrDefault(t *testing.T) {
	Convey("With no CacheBase set, it falls back to XDG_CACHE_HOME or HOME", t, func() {
		old, hadOld := os.LookupEnv("XDG_CACHE_HOME")
		os.Setenv("XDG_CACHE_HOME", "/xdg")
		Reset(func() {
			if hadOld {
				os.Setenv("XDG_CACHE_HOME", old)
			} else {
				os.Unsetenv("XDG_CACHE_HOME")
			}
		})

		cfg := &Config{}
		So(cfg.CacheBaseOrDefault(), ShouldEqual, "/xdg/borg-restore.pl")
	})
}
