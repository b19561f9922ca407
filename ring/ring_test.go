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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/shardring/errors"
)

// keyHasher maps known keys to fixed hashes
type keyHasher map[string]int32

func (k keyHasher) HashCode(key []byte) int32 {
	return k[string(key)]
}

func newTestRing(t *testing.T, layout map[string][]int32) *Ring[string] {
	t.Helper()
	r := New[string]()
	for shard, vnodes := range layout {
		_, err := r.AddShard(shard, vnodes)
		require.NoError(t, err)
	}
	require.NoError(t, r.Validate())
	return r
}

func assertRoutes(t *testing.T, r *Ring[string], expected map[int32]string) {
	t.Helper()
	for code, shard := range expected {
		actual, err := r.GetShardByHash(code)
		require.NoError(t, err)
		assert.Equal(t, shard, actual, "hash %d", code)
	}
}

func TestRing(t *testing.T) {
	t.Run("With empty ring", func(t *testing.T) {
		r := New[string]()
		_, err := r.GetShardByKey([]byte("key"))
		require.ErrorIs(t, err, errors.ErrEmptyRing)
		_, err = r.GetShardByHash(0)
		require.ErrorIs(t, err, errors.ErrEmptyRing)
		assert.Zero(t, r.ShardCount())
		assert.Zero(t, r.VnodeCount())
		assert.Empty(t, r.Shards())
		assert.NoError(t, r.Validate())
		assert.Equal(t, "ring(shards=0, vnodes=0)", r.String())
	})
	t.Run("With first shard", func(t *testing.T) {
		r := New[string]()
		transfers, err := r.AddShard("A", []int32{100, -100})
		require.NoError(t, err)
		assert.Empty(t, transfers)

		assertRoutes(t, r, map[int32]string{minHash: "A", 0: "A", 100: "A", maxHash: "A"})
		assert.True(t, r.Has("A"))
		assert.Equal(t, []string{"A"}, r.Shards())
		assert.Equal(t, 1, r.ShardCount())
		assert.Equal(t, 2, r.VnodeCount())
		assert.True(t, r.HasVnode(-100))
		assert.False(t, r.HasVnode(0))

		vnodes, err := r.Vnodes("A")
		require.NoError(t, err)
		assert.Equal(t, []int32{-100, 100}, vnodes)

		owned, err := r.OwnedRanges("A")
		require.NoError(t, err)
		require.Len(t, owned, 1)
		assert.True(t, owned[0].IsFull())
		assert.NoError(t, r.Validate())
	})
	t.Run("With add then remove", func(t *testing.T) {
		r := newTestRing(t, map[string][]int32{"A": {100}})

		transfers, err := r.AddShard("B", []int32{50})
		require.NoError(t, err)
		require.Len(t, transfers, 1)
		assert.Equal(t, []HashRange{NewHashRange(101, 50)}, transfers.Ranges("A"))

		assertRoutes(t, r, map[int32]string{
			60:      "A",
			100:     "A",
			30:      "B",
			50:      "B",
			101:     "B",
			maxHash: "B",
			minHash: "B",
		})
		require.NoError(t, r.Validate())

		transfers, err = r.RemoveShard("B")
		require.NoError(t, err)
		require.Len(t, transfers, 1)
		assert.Equal(t, []HashRange{NewHashRange(101, 50)}, transfers.Ranges("A"))

		assertRoutes(t, r, map[int32]string{30: "A", 60: "A", maxHash: "A"})
		assert.False(t, r.Has("B"))
		assert.NoError(t, r.Validate())
	})
	t.Run("With new vnodes sharing a predecessor", func(t *testing.T) {
		r := newTestRing(t, map[string][]int32{"A": {100}, "B": {200}})

		// 120 and 150 both fall in the arc of 200, the arc of 150 contains the arc of 120
		transfers, err := r.AddShard("C", []int32{150, 120, 300})
		require.NoError(t, err)
		assert.Equal(t, []HashRange{NewHashRange(101, 150)}, transfers.Ranges("B"))
		assert.Equal(t, []HashRange{NewHashRange(201, 300)}, transfers.Ranges("A"))
		assert.Equal(t, 2, transfers.Len())
		assert.EqualValues(t, 150, transfers.Size())

		assertRoutes(t, r, map[int32]string{101: "C", 150: "C", 151: "B", 250: "C", 301: "A"})
		require.NoError(t, r.Validate())
	})
	t.Run("With removal across the numeric boundary", func(t *testing.T) {
		r := newTestRing(t, map[string][]int32{"A": {0}, "B": {minHash, maxHash}})

		owned, err := r.OwnedRanges("B")
		require.NoError(t, err)
		assert.Equal(t, []HashRange{NewHashRange(1, minHash)}, owned)

		transfers, err := r.RemoveShard("B")
		require.NoError(t, err)
		assert.Equal(t, []HashRange{NewHashRange(1, minHash)}, transfers.Ranges("A"))
		assert.Equal(t, 1, transfers.Len())
		assertRoutes(t, r, map[int32]string{maxHash: "A", minHash: "A"})
	})
	t.Run("With removal spread over several heirs", func(t *testing.T) {
		r := newTestRing(t, map[string][]int32{
			"A": {100, 400},
			"B": {200, 300},
			"C": {500},
		})

		transfers, err := r.RemoveShard("B")
		require.NoError(t, err)
		// both vnodes of B are inherited by the vnode of A at 400
		assert.Equal(t, []HashRange{NewHashRange(101, 300)}, transfers.Ranges("A"))
		assert.Nil(t, transfers.Ranges("C"))
		assert.Nil(t, transfers.Ranges("B"))
		assert.NoError(t, r.Validate())
	})
	t.Run("With removal of the last shard", func(t *testing.T) {
		r := newTestRing(t, map[string][]int32{"A": {1, 2, 3}})
		transfers, err := r.RemoveShard("A")
		require.NoError(t, err)
		assert.Empty(t, transfers)
		assert.Zero(t, r.VnodeCount())
		_, err = r.GetShardByHash(1)
		assert.ErrorIs(t, err, errors.ErrEmptyRing)
	})
	t.Run("With key routing", func(t *testing.T) {
		r := New[string](WithHasher(keyHasher{"x": 60, "y": 30}), WithDegree(2))
		_, err := r.AddShard("A", []int32{100})
		require.NoError(t, err)
		_, err = r.AddShard("B", []int32{50})
		require.NoError(t, err)

		shard, err := r.GetShardByKey([]byte("x"))
		require.NoError(t, err)
		assert.Equal(t, "A", shard)
		shard, err = r.GetShardByKey([]byte("y"))
		require.NoError(t, err)
		assert.Equal(t, "B", shard)
	})
}

func TestRingRejections(t *testing.T) {
	layout := map[string][]int32{"A": {100}, "B": {50}}

	testCases := []struct {
		name   string
		change func(r *Ring[string]) (Transfers[string], error)
		err    error
	}{
		{
			name:   "duplicate shard",
			change: func(r *Ring[string]) (Transfers[string], error) { return r.AddShard("A", []int32{7}) },
			err:    errors.ErrDuplicateShard,
		},
		{
			name:   "no vnodes",
			change: func(r *Ring[string]) (Transfers[string], error) { return r.AddShard("C", nil) },
			err:    errors.ErrNoVnodes,
		},
		{
			name:   "hash already on the ring",
			change: func(r *Ring[string]) (Transfers[string], error) { return r.AddShard("C", []int32{7, 50}) },
			err:    errors.ErrHashCollision,
		},
		{
			name:   "hash repeated in the request",
			change: func(r *Ring[string]) (Transfers[string], error) { return r.AddShard("C", []int32{7, 8, 7}) },
			err:    errors.ErrHashCollision,
		},
		{
			name:   "unknown shard",
			change: func(r *Ring[string]) (Transfers[string], error) { return r.RemoveShard("C") },
			err:    errors.ErrUnknownShard,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRing(t, layout)
			transfers, err := tc.change(r)
			require.ErrorIs(t, err, tc.err)
			assert.Nil(t, transfers)

			// the ring is left untouched
			assert.Equal(t, 2, r.ShardCount())
			assert.Equal(t, 2, r.VnodeCount())
			assert.False(t, r.Has("C"))
			assert.False(t, r.HasVnode(7))
			assertRoutes(t, r, map[int32]string{60: "A", 30: "B"})
			assert.NoError(t, r.Validate())
		})
	}

	t.Run("With unknown shard lookups", func(t *testing.T) {
		r := newTestRing(t, layout)
		_, err := r.Vnodes("C")
		assert.ErrorIs(t, err, errors.ErrUnknownShard)
		_, err = r.OwnedRanges("C")
		assert.ErrorIs(t, err, errors.ErrUnknownShard)
	})
}

func TestRingValidate(t *testing.T) {
	r := newTestRing(t, map[string][]int32{"A": {100}, "B": {50}})

	// corrupt the bookkeeping behind the ring's back
	r.index.insert(75)
	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "indexed vnode 75 has no owner")
	assert.Contains(t, err.Error(), "2 owned vnodes but 3 indexed vnodes")

	assert.PanicsWithError(t, "ring invariant violated: vnode 75 is indexed but has no owner", func() {
		_, _ = r.GetShardByHash(70)
	})
}
