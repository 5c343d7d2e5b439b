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

package pathtime

import "strings"

// Logger is satisfied by log15.Logger; it's the minimal interface
// DirectTable needs to report its diagnostic counters on Flush.
type Logger interface {
	Info(msg string, ctx ...interface{})
}

// DirectStats are the diagnostic counters DirectTable reports on Flush.
type DirectStats struct {
	PathsSeen           int
	PotentialStoreCalls int
	RealStoreCalls      int
}

// DirectTable writes straight to the Store as paths arrive, assuming
// near-DFS-ordered input (the common case for the backup tool's archive
// listing). It keeps only an ancestor-chain cache, O(depth) memory, instead
// of MemoryTable's full tree, at the cost of depending on input order and
// making more (cheap) Store calls.
type DirectTable struct {
	store   Upserter
	Logger  Logger
	archive string

	cache       map[string]int64
	currentPath string
	stats       DirectStats
}

// NewDirectTable returns a DirectTable writing upserts through store.
func NewDirectTable(store Upserter) *DirectTable {
	return &DirectTable{store: store, cache: map[string]int64{}}
}

// Bind attaches the table to archive, resetting the ancestor cache, cursor
// and counters.
func (d *DirectTable) Bind(archive string) {
	d.archive = archive
	d.cache = map[string]int64{}
	d.currentPath = ""
	d.stats = DirectStats{}
}

// AddPath upserts mtime for path and every one of its ancestors whose
// cached last-written value is missing or stale, having first invalidated
// cache entries for ancestors of the previous path that aren't ancestors of
// this one (i.e. when the DFS walk leaves a subtree).
func (d *DirectTable) AddPath(path string, mtime int64) error {
	d.stats.PathsSeen++

	ancestors := ancestorsOf(path)
	d.invalidateStaleCache(ancestorsOf(d.currentPath), ancestors)

	for _, a := range ancestors {
		d.stats.PotentialStoreCalls++

		if last, ok := d.cache[a]; ok && last >= mtime {
			continue
		}

		if err := d.store.UpsertPath(d.archive, a, mtime); err != nil {
			return err
		}

		d.cache[a] = mtime
		d.stats.RealStoreCalls++
	}

	d.currentPath = path

	return nil
}

func (d *DirectTable) invalidateStaleCache(prevAncestors, ancestors []string) {
	current := make(map[string]struct{}, len(ancestors))

	for _, a := range ancestors {
		current[a] = struct{}{}
	}

	for _, a := range prevAncestors {
		if _, ok := current[a]; !ok {
			delete(d.cache, a)
		}
	}
}

// Flush is a no-op on the Store, since DirectTable never buffers; it only
// reports the diagnostic counters to Logger, if set.
func (d *DirectTable) Flush() error {
	if d.Logger != nil {
		d.Logger.Info("direct table flushed",
			"archive", d.archive,
			"paths_seen", d.stats.PathsSeen,
			"potential_store_calls", d.stats.PotentialStoreCalls,
			"real_store_calls", d.stats.RealStoreCalls,
		)
	}

	return nil
}

// Stats returns the diagnostic counters accumulated so far.
func (d *DirectTable) Stats() DirectStats {
	return d.stats
}

// ancestorsOf returns every ancestor of path, including path itself,
// ordered root-first. The root sentinel "." and the empty path have none.
func ancestorsOf(path string) []string {
	if path == "" || path == "." {
		return nil
	}

	components := strings.Split(path, "/")
	out := make([]string, len(components))

	for i := range components {
		out[i] = strings.Join(components[:i+1], "/")
	}

	return out
}
