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
	"fmt"
	"math"
)

// ringSize is the number of positions on the ring.
const ringSize uint64 = 1 << 32

// HashRange is a contiguous arc of the ring. Both borders are inclusive.
// When Left is greater than Right the arc wraps through the
// math.MaxInt32/math.MinInt32 boundary. An arc whose Right+1 equals its Left
// covers the whole ring.
type HashRange struct {
	Left  int32
	Right int32
}

// NewHashRange creates an instance of HashRange
func NewHashRange(left, right int32) HashRange {
	return HashRange{Left: left, Right: right}
}

// IsWrapping returns true when the arc passes through the numeric boundary.
func (r HashRange) IsWrapping() bool {
	return r.Left > r.Right
}

// IsFull returns true when the arc covers the whole ring.
func (r HashRange) IsFull() bool {
	return r.Right+1 == r.Left
}

// Size returns the number of hashes covered by the arc.
func (r HashRange) Size() uint64 {
	if !r.IsWrapping() {
		return uint64(int64(r.Right) - int64(r.Left) + 1)
	}
	return ringSize - uint64(int64(r.Left)-int64(r.Right)-1)
}

// ContainsHash returns true when the hash falls within the arc.
func (r HashRange) ContainsHash(hash int32) bool {
	if r.IsWrapping() {
		return hash >= r.Left || hash <= r.Right
	}
	return hash >= r.Left && hash <= r.Right
}

// Contains returns true when other lies entirely within r.
func (r HashRange) Contains(other HashRange) bool {
	if r.IsFull() {
		return true
	}

	outer := r.halves()
	for _, half := range other.halves() {
		inside := false
		for _, candidate := range outer {
			if candidate.covers(half) {
				inside = true
				break
			}
		}
		if !inside {
			return false
		}
	}
	return true
}

// Overlaps returns true when r and other share at least one hash.
func (r HashRange) Overlaps(other HashRange) bool {
	for _, a := range r.halves() {
		for _, b := range other.halves() {
			if a.left <= b.right && b.left <= a.right {
				return true
			}
		}
	}
	return false
}

// Adjacent returns true when other starts right after r ends, going clockwise.
// The hash following math.MaxInt32 is math.MinInt32.
func (r HashRange) Adjacent(other HashRange) bool {
	return r.Right+1 == other.Left
}

// String returns the string representation of the arc
func (r HashRange) String() string {
	return fmt.Sprintf("[%d, %d]", r.Left, r.Right)
}

// span is a non-wrapping interval, the normalized form used for comparisons.
type span struct {
	left  int32
	right int32
}

func (s span) covers(other span) bool {
	return other.left >= s.left && other.right <= s.right
}

// halves splits a wrapping arc into [Left, MaxInt32] and [MinInt32, Right].
// A non-wrapping arc is returned as is.
func (r HashRange) halves() []span {
	if !r.IsWrapping() {
		return []span{{left: r.Left, right: r.Right}}
	}
	return []span{
		{left: r.Left, right: math.MaxInt32},
		{left: math.MinInt32, right: r.Right},
	}
}
