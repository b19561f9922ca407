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
	"fmt"
	"strconv"

	"github.com/zeebo/xxh3"

	"github.com/tochemey/shardring/errors"
)

// Hasher defines the hashcode generator interface.
// Ring positions are 32-bit signed integers, so keys and vnode labels
// are reduced to that space.
type Hasher interface {
	// HashCode is responsible for generating a signed, 32-bit hash of provided byte slice
	HashCode(key []byte) int32
}

type xhasher struct{}

var _ Hasher = xhasher{}

// HashCode implementation
func (x xhasher) HashCode(key []byte) int32 {
	return Fold(xxh3.Hash(key))
}

// DefaultHasher returns the default hasher
func DefaultHasher() Hasher {
	return &xhasher{}
}

// Fold reduces a 64-bit hash to the ring space by xoring its two halves.
func Fold(sum uint64) int32 {
	return int32(uint32(sum>>32) ^ uint32(sum))
}

// maxLabelAttempts bounds the labels tried per requested vnode hash
const maxLabelAttempts = 64

// VnodeHashes derives count distinct vnode hashes for the given shard from
// the labels "shardID#0", "shardID#1", ... Labels whose hash is reported as
// taken, or that collide with a hash already produced in the batch, are
// skipped and the next label is tried. taken may be nil.
// At most count*64 labels are tried. When they do not yield count distinct
// free hashes an error wrapping ErrHashCollision is returned.
func VnodeHashes(hasher Hasher, shardID string, count int, taken func(int32) bool) ([]int32, error) {
	if count <= 0 {
		return nil, nil
	}

	hashes := make([]int32, 0, count)
	seen := make(map[int32]struct{}, count)
	label := make([]byte, 0, len(shardID)+8)
	var last int32
	for i := 0; len(hashes) < count; i++ {
		if i >= count*maxLabelAttempts {
			return nil, fmt.Errorf("shard=(%s) found %d of %d vnode hashes: %w",
				shardID, len(hashes), count, errors.NewErrHashCollision(last))
		}

		label = append(label[:0], shardID...)
		label = append(label, '#')
		label = strconv.AppendInt(label, int64(i), 10)

		code := hasher.HashCode(label)
		last = code
		if _, dup := seen[code]; dup {
			continue
		}
		if taken != nil && taken(code) {
			continue
		}
		seen[code] = struct{}{}
		hashes = append(hashes, code)
	}
	return hashes, nil
}
