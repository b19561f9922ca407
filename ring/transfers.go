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
	"cmp"
	"slices"

	goset "github.com/deckarep/golang-set/v2"
)

// Transfers is the rebalancing delta of a topology change: the hash ranges
// that change ownership, grouped by shard.
//
// For AddShard the key is the shard losing the ranges to the newly added
// shard. For RemoveShard the key is the shard inheriting the ranges of the
// removed shard.
type Transfers[S comparable] map[S]goset.Set[HashRange]

// Ranges returns the ranges recorded for the given shard ordered by their
// left border.
func (t Transfers[S]) Ranges(shard S) []HashRange {
	set, ok := t[shard]
	if !ok {
		return nil
	}
	ranges := set.ToSlice()
	sortRanges(ranges)
	return ranges
}

// Shards returns the shards having ranges recorded, in no particular order.
func (t Transfers[S]) Shards() []S {
	shards := make([]S, 0, len(t))
	for shard := range t {
		shards = append(shards, shard)
	}
	return shards
}

// Len returns the total number of ranges.
func (t Transfers[S]) Len() int {
	total := 0
	for _, set := range t {
		total += set.Cardinality()
	}
	return total
}

// Size returns the total number of hashes changing owner.
func (t Transfers[S]) Size() uint64 {
	var total uint64
	for _, set := range t {
		set.Each(func(r HashRange) bool {
			total += r.Size()
			return false
		})
	}
	return total
}

func (t Transfers[S]) rangesOf(shard S) goset.Set[HashRange] {
	set, ok := t[shard]
	if !ok {
		set = goset.NewThreadUnsafeSet[HashRange]()
		t[shard] = set
	}
	return set
}

// mergeContained records candidate for the shard unless an already recorded
// range contains it. Recorded ranges contained in candidate are dropped.
func (t Transfers[S]) mergeContained(shard S, candidate HashRange) {
	set := t.rangesOf(shard)

	covered := false
	set.Each(func(r HashRange) bool {
		covered = r.Contains(candidate)
		return covered
	})
	if covered {
		return
	}

	for _, r := range set.ToSlice() {
		if candidate.Contains(r) {
			set.Remove(r)
		}
	}
	set.Add(candidate)
}

// mergeAdjacent records candidate for the shard, fusing it with every
// recorded range that touches it on either side.
func (t Transfers[S]) mergeAdjacent(shard S, candidate HashRange) {
	set := t.rangesOf(shard)

	for merged := true; merged; {
		merged = false
		for _, r := range set.ToSlice() {
			switch {
			case candidate.Adjacent(r):
				candidate = HashRange{Left: candidate.Left, Right: r.Right}
			case r.Adjacent(candidate):
				candidate = HashRange{Left: r.Left, Right: candidate.Right}
			default:
				continue
			}
			set.Remove(r)
			merged = true
		}
	}
	set.Add(candidate)
}

func sortRanges(ranges []HashRange) {
	slices.SortFunc(ranges, func(a, b HashRange) int {
		if c := cmp.Compare(a.Left, b.Left); c != 0 {
			return c
		}
		return cmp.Compare(a.Right, b.Right)
	})
}
