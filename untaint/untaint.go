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

// Package untaint validates user- and archive-supplied strings against strict
// whitelists before they reach a shell, a SQL identifier, or the filesystem.
package untaint

import "regexp"

// Error is the custom error type for the untaint package.
type Error string

func (e Error) Error() string { return string(e) }

// ErrInvalidArchiveName is returned when an archive name fails the whitelist.
const ErrInvalidArchiveName = Error("invalid archive name")

// ErrInvalidPath is returned when a path fails the whitelist.
const ErrInvalidPath = Error("invalid path")

var (
	archiveNameRE = regexp.MustCompile(`^[A-Za-z0-9:+.-]+$`)
	pathRE        = regexp.MustCompile(`^[^\x00]+$`)
)

// ArchiveName validates name against the archive-name whitelist
// ([A-Za-z0-9:+.-]+) used as-is and as a Store column-name suffix.
func ArchiveName(name string) error {
	if !archiveNameRE.MatchString(name) {
		return ErrInvalidArchiveName
	}

	return nil
}

// Path validates that path is a non-empty byte string free of NUL bytes,
// which is the only constraint the Store and filesystem calls require; the
// `/`-separated component structure is enforced by the callers that split
// it.
func Path(path string) error {
	if path == "" || !pathRE.MatchString(path) {
		return ErrInvalidPath
	}

	return nil
}
