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

// Package archivesource defines the contracts for the two external
// collaborators this module treats as capabilities rather than
// implementation details: an archive source that lists and streams
// archives, and an extractor that restores a path from a named archive.
// The borgcli subpackage implements both over the backup tool's CLI.
package archivesource

// LineSink receives one line of an archive's file listing at a time, in the
// order the backup tool emitted it.
type LineSink func(line string) error

// Source lists and streams the archives in a backup repository.
type Source interface {
	// ListArchives returns the first whitespace-delimited token of each
	// line of the backup tool's archive listing.
	ListArchives() ([]string, error)

	// ListArchive streams the named archive's per-file listing, one
	// "<weekday>, YYYY-MM-DD HH:MM:SS <path>" line at a time, to sink.
	ListArchive(archive string, sink LineSink) error
}

// Extractor restores a path from a named archive to the current working
// directory.
type Extractor interface {
	// Extract runs the backup tool's extraction of path from archive,
	// stripping the first stripComponents leading path components, into
	// the process's current working directory.
	Extract(stripComponents int, archive, path string) error
}
