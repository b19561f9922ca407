// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package ring

import (
	"github.com/google/btree"
)

const defaultDegree = 32

// direction of a neighbor lookup around the ring
type direction int

const (
	clockwise direction = iota
	counterClockwise
)

// index keeps the vnode hashes ordered so that circular neighbor queries
// run in logarithmic time.
type index struct {
	tree *btree.BTreeG[int32]
}

func newIndex(degree int) *index {
	return &index{
		tree: btree.NewOrderedG[int32](degree),
	}
}

func (x *index) insert(hash int32) {
	x.tree.ReplaceOrInsert(hash)
}

func (x *index) remove(hash int32) {
	x.tree.Delete(hash)
}

func (x *index) has(hash int32) bool {
	return x.tree.Has(hash)
}

func (x *index) len() int {
	return x.tree.Len()
}

// clone returns a copy-on-write copy of the index. Mutations of the copy are
// not visible to the receiver.
func (x *index) clone() *index {
	return &index{tree: x.tree.Clone()}
}

// each visits the hashes in ascending order until fn returns false.
func (x *index) each(fn func(hash int32) bool) {
	x.tree.Ascend(btree.ItemIteratorG[int32](fn))
}

// neighbor returns the first hash met when walking the ring from hash in the
// given direction. The starting hash itself is only considered when inclusive
// is set. Walking past either end of the numeric range wraps to the other end,
// which may land back on hash when it is the only element.
// It returns false when the index is empty.
func (x *index) neighbor(hash int32, dir direction, inclusive bool) (int32, bool) {
	var (
		found  bool
		result int32
	)

	visit := func(item int32) bool {
		if !inclusive && item == hash {
			return true
		}
		result, found = item, true
		return false
	}

	switch dir {
	case clockwise:
		x.tree.AscendGreaterOrEqual(hash, visit)
		if !found {
			result, found = x.tree.Min()
		}
	case counterClockwise:
		x.tree.DescendLessOrEqual(hash, visit)
		if !found {
			result, found = x.tree.Max()
		}
	}
	return result, found
}

// ceiling returns the smallest hash >= hash, wrapping to the smallest hash.
func (x *index) ceiling(hash int32) (int32, bool) {
	return x.neighbor(hash, clockwise, true)
}

// floor returns the largest hash <= hash, wrapping to the largest hash.
func (x *index) floor(hash int32) (int32, bool) {
	return x.neighbor(hash, counterClockwise, true)
}

// higher returns the smallest hash > hash, wrapping to the smallest hash.
func (x *index) higher(hash int32) (int32, bool) {
	return x.neighbor(hash, clockwise, false)
}

// lower returns the largest hash < hash, wrapping to the largest hash.
func (x *index) lower(hash int32) (int32, bool) {
	return x.neighbor(hash, counterClockwise, false)
}
