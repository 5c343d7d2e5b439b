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

// Package pathtime ingests a single archive's (path, mtime) listing into the
// Store, enforcing the invariant that every directory's recorded mtime is
// the maximum mtime of its entire subtree. Two interchangeable strategies
// are provided: MemoryTable builds a full in-memory tree before flushing,
// DirectTable writes straight to the Store using a small ancestor-chain
// cache and assumes DFS-ordered input.
package pathtime

// Upserter is the subset of the Store's write API a Table needs: setting a
// path's cell for the bound archive to max(current, t).
type Upserter interface {
	UpsertPath(archive, path string, mtime int64) error
}

// Table is the common contract for both ingestion strategies.
type Table interface {
	// Bind attaches the table to a target archive column. Must be called
	// before any AddPath.
	Bind(archive string)

	// AddPath records one listing entry: path with its recorded mtime.
	AddPath(path string, mtime int64) error

	// Flush ensures all buffered mutations have reached the Store.
	Flush() error
}
