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

package hash

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/xxh3"

	"github.com/tochemey/shardring/errors"
)

// constHasher maps every key to the same code except the ones listed in codes.
type constHasher struct {
	codes map[string]int32
	def   int32
}

func (c constHasher) HashCode(key []byte) int32 {
	if code, ok := c.codes[string(key)]; ok {
		return code
	}
	return c.def
}

func TestDefaultHasher(t *testing.T) {
	hasher := DefaultHasher()
	require.NotNil(t, hasher)

	key := []byte("user:42")
	assert.Equal(t, hasher.HashCode(key), hasher.HashCode(key))
	assert.Equal(t, Fold(xxh3.Hash(key)), hasher.HashCode(key))
	assert.NotEqual(t, hasher.HashCode([]byte("user:42")), hasher.HashCode([]byte("user:43")))
}

func TestFold(t *testing.T) {
	assert.EqualValues(t, 0, Fold(0))
	assert.EqualValues(t, -1, Fold(0x00000000FFFFFFFF))
	assert.EqualValues(t, -1, Fold(0xFFFFFFFF00000000))
	assert.EqualValues(t, 0, Fold(math.MaxUint64))
	assert.EqualValues(t, math.MinInt32, Fold(0x0000000080000000))
}

func TestVnodeHashes(t *testing.T) {
	t.Run("With default hasher", func(t *testing.T) {
		hashes, err := VnodeHashes(DefaultHasher(), "node-1", 64, nil)
		require.NoError(t, err)
		require.Len(t, hashes, 64)

		seen := make(map[int32]struct{})
		for _, h := range hashes {
			_, dup := seen[h]
			require.False(t, dup)
			seen[h] = struct{}{}
		}

		// deterministic
		again, err := VnodeHashes(DefaultHasher(), "node-1", 64, nil)
		require.NoError(t, err)
		assert.Equal(t, hashes, again)
	})
	t.Run("With zero count", func(t *testing.T) {
		hashes, err := VnodeHashes(DefaultHasher(), "node-1", 0, nil)
		require.NoError(t, err)
		assert.Empty(t, hashes)
	})
	t.Run("Skips taken and colliding hashes", func(t *testing.T) {
		hasher := constHasher{
			codes: map[string]int32{
				"a#0": 10,
				"a#1": 10, // collides with a#0
				"a#2": 20, // taken
				"a#3": 30,
			},
			def: 40,
		}
		taken := func(h int32) bool { return h == 20 }

		hashes, err := VnodeHashes(hasher, "a", 3, taken)
		require.NoError(t, err)
		assert.Equal(t, []int32{10, 30, 40}, hashes)
	})
	t.Run("With exhausted hash space", func(t *testing.T) {
		// only four distinct codes can ever be produced
		hasher := constHasher{
			codes: map[string]int32{"a#0": 1, "a#1": 2, "a#2": 3},
			def:   4,
		}

		hashes, err := VnodeHashes(hasher, "a", 8, nil)
		require.ErrorIs(t, err, errors.ErrHashCollision)
		assert.Nil(t, hashes)
		assert.Contains(t, err.Error(), "shard=(a) found 4 of 8 vnode hashes")

		// everything is taken
		hashes, err = VnodeHashes(hasher, "a", 1, func(int32) bool { return true })
		require.ErrorIs(t, err, errors.ErrHashCollision)
		assert.Nil(t, hashes)
	})
}
