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

// treeNode is one node of the in-memory tree built by MemoryTable. mtime is
// the max of the node's own mtime and every descendant's, established by
// construction as new paths are inserted.
type treeNode struct {
	children map[string]*treeNode
	mtime    int64
}

// MemoryTable builds a full in-memory tree for one archive, then flushes it
// to the Store with a single DFS pass. Unlike DirectTable it doesn't depend
// on input ordering, at the cost of O(#paths) memory.
type MemoryTable struct {
	store   Upserter
	archive string
	root    *treeNode
}

// NewMemoryTable returns a MemoryTable writing upserts through store.
func NewMemoryTable(store Upserter) *MemoryTable {
	return &MemoryTable{store: store, root: &treeNode{children: map[string]*treeNode{}}}
}

// Bind attaches the table to archive, resetting any previously built tree.
func (m *MemoryTable) Bind(archive string) {
	m.archive = archive
	m.root = &treeNode{children: map[string]*treeNode{}}
}

// AddPath inserts path into the tree, propagating mtime up to every
// ancestor visited along the way, including the root for a root sentinel
// path of ".".
func (m *MemoryTable) AddPath(path string, mtime int64) error {
	if path == "." {
		m.root.mtime = max(m.root.mtime, mtime)

		return nil
	}

	node := m.root

	for _, component := range strings.Split(path, "/") {
		child, ok := node.children[component]
		if !ok {
			child = &treeNode{children: map[string]*treeNode{}}
			node.children[component] = child
		}

		child.mtime = max(child.mtime, mtime)
		node = child
	}

	return nil
}

// Flush walks the tree with an explicit stack (filesystem depth can be in
// the hundreds) and upserts every non-root node's accumulated path and
// mtime into the Store. The root's mtime, if any was recorded via the "."
// sentinel, never reaches the Store.
func (m *MemoryTable) Flush() error {
	type frame struct {
		node *treeNode
		path string
	}

	stack := make([]frame, 0, len(m.root.children))

	for name, child := range m.root.children {
		stack = append(stack, frame{node: child, path: name})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := m.store.UpsertPath(m.archive, f.path, f.node.mtime); err != nil {
			return err
		}

		for name, child := range f.node.children {
			stack = append(stack, frame{node: child, path: f.path + "/" + name})
		}
	}

	return nil
}
