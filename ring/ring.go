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

// Package ring routes keys to shards with consistent hashing over virtual
// nodes and reports, for every topology change, the minimal set of hash
// ranges that change owner.
//
// The hash space is the set of int32 values seen as a circle. A vnode at hash
// h owns the arc starting right after the previous vnode and ending at h,
// inclusive. A Ring is not safe for concurrent use: topology changes must be
// serialized by a single owner, see the cluster package.
package ring

import (
	"fmt"
	"slices"

	goset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/shardring/errors"
	"github.com/tochemey/shardring/hash"
	"github.com/tochemey/shardring/internal/validation"
)

// Ring is the consistent hashing ring. S is the caller's shard identifier;
// the ring never interprets it.
type Ring[S comparable] struct {
	hasher hash.Hasher
	// shard -> vnode hashes it owns
	shards map[S]goset.Set[int32]
	// all vnode hashes, ordered
	index *index
	// vnode hash -> owning shard
	owners map[int32]S
}

// New creates an empty Ring
func New[S comparable](opts ...Option) *Ring[S] {
	cfg := &config{
		hasher: hash.DefaultHasher(),
		degree: defaultDegree,
	}
	for _, opt := range opts {
		opt.Apply(cfg)
	}

	return &Ring[S]{
		hasher: cfg.hasher,
		shards: make(map[S]goset.Set[int32]),
		index:  newIndex(cfg.degree),
		owners: make(map[int32]S),
	}
}

// GetShardByKey hashes the key with the ring's hasher and returns the shard
// owning that hash. It returns errors.ErrEmptyRing when no shard is registered.
func (r *Ring[S]) GetShardByKey(key []byte) (S, error) {
	return r.GetShardByHash(r.hasher.HashCode(key))
}

// GetShardByHash returns the shard owning the given hash: the owner of the
// smallest vnode hash greater or equal to it, wrapping to the smallest vnode
// hash on the ring. It returns errors.ErrEmptyRing when no shard is registered.
func (r *Ring[S]) GetShardByHash(code int32) (S, error) {
	next, ok := r.index.ceiling(code)
	if !ok {
		var zero S
		return zero, errors.ErrEmptyRing
	}
	return r.ownerOf(next), nil
}

// AddShard places the shard's vnodes on the ring and returns the ranges the
// new shard takes over, keyed by the shard that previously owned them. The
// caller must migrate every listed range from the key shard to the new shard.
// Adding the first shard transfers nothing.
//
// The request is rejected without any state change when the shard already
// exists, when vnodeHashes is empty or when one of the hashes is already on
// the ring or repeated.
func (r *Ring[S]) AddShard(shard S, vnodeHashes []int32) (Transfers[S], error) {
	if _, ok := r.shards[shard]; ok {
		return nil, errors.NewErrDuplicateShard(shard)
	}
	if len(vnodeHashes) == 0 {
		return nil, errors.ErrNoVnodes
	}

	hashes := goset.NewThreadUnsafeSetWithSize[int32](len(vnodeHashes))
	for _, h := range vnodeHashes {
		if r.index.has(h) || !hashes.Add(h) {
			return nil, errors.NewErrHashCollision(h)
		}
	}

	ordered := hashes.ToSlice()
	slices.Sort(ordered)

	transfers := make(Transfers[S])
	if r.index.len() > 0 {
		// every new vnode is evaluated against the ring as it was before the call
		for _, h := range ordered {
			next, _ := r.index.ceiling(h)
			prev, _ := r.index.floor(h)
			transfers.mergeContained(r.ownerOf(next), HashRange{Left: prev + 1, Right: h})
		}
	}

	for _, h := range ordered {
		r.index.insert(h)
		r.owners[h] = shard
	}
	r.shards[shard] = hashes
	return transfers, nil
}

// RemoveShard takes the shard's vnodes off the ring and returns the ranges it
// owned, keyed by the shard inheriting them. Ranges inherited by the same
// shard are coalesced. Removing the last shard transfers nothing.
// It returns errors.ErrUnknownShard when the shard is not on the ring.
func (r *Ring[S]) RemoveShard(shard S) (Transfers[S], error) {
	vnodes, ok := r.shards[shard]
	if !ok {
		return nil, errors.NewErrUnknownShard(shard)
	}

	ordered := vnodes.ToSlice()
	slices.Sort(ordered)

	// computed against a copy so that the ring stays untouched until commit
	working := r.index.clone()
	transfers := make(Transfers[S])
	for _, h := range ordered {
		next, _ := working.higher(h)
		prev, _ := working.lower(h)
		transfers.mergeAdjacent(r.ownerOf(next), HashRange{Left: prev + 1, Right: h})
		working.remove(h)
	}
	delete(transfers, shard)

	r.index = working
	for _, h := range ordered {
		delete(r.owners, h)
	}
	delete(r.shards, shard)
	return transfers, nil
}

// Has returns true when the shard is on the ring
func (r *Ring[S]) Has(shard S) bool {
	_, ok := r.shards[shard]
	return ok
}

// Shards returns the shards on the ring in no particular order
func (r *Ring[S]) Shards() []S {
	shards := make([]S, 0, len(r.shards))
	for shard := range r.shards {
		shards = append(shards, shard)
	}
	return shards
}

// ShardCount returns the number of shards on the ring
func (r *Ring[S]) ShardCount() int {
	return len(r.shards)
}

// VnodeCount returns the number of vnodes on the ring
func (r *Ring[S]) VnodeCount() int {
	return r.index.len()
}

// HasVnode returns true when the hash is already taken by a vnode
func (r *Ring[S]) HasVnode(code int32) bool {
	return r.index.has(code)
}

// Vnodes returns the vnode hashes of the shard in ascending order
func (r *Ring[S]) Vnodes(shard S) ([]int32, error) {
	vnodes, ok := r.shards[shard]
	if !ok {
		return nil, errors.NewErrUnknownShard(shard)
	}
	hashes := vnodes.ToSlice()
	slices.Sort(hashes)
	return hashes, nil
}

// OwnedRanges returns the arcs owned by the shard, coalesced and ordered by
// their left border.
func (r *Ring[S]) OwnedRanges(shard S) ([]HashRange, error) {
	vnodes, err := r.Vnodes(shard)
	if err != nil {
		return nil, err
	}

	owned := make(Transfers[S])
	for _, h := range vnodes {
		prev, _ := r.index.lower(h)
		owned.mergeAdjacent(shard, HashRange{Left: prev + 1, Right: h})
	}
	return owned.Ranges(shard), nil
}

// Validate checks the membership bookkeeping and the partition of the ring.
// It returns every violation found.
func (r *Ring[S]) Validate() error {
	chain := validation.New(validation.AllErrors())

	chain.AddAssertionf(len(r.owners) == r.index.len(),
		"%d owned vnodes but %d indexed vnodes", len(r.owners), r.index.len())

	registered := 0
	for shard, vnodes := range r.shards {
		registered += vnodes.Cardinality()
		chain.AddAssertionf(vnodes.Cardinality() > 0, "shard %v owns no vnode", shard)
		vnodes.Each(func(h int32) bool {
			owner, ok := r.owners[h]
			chain.AddAssertionf(ok && owner == shard, "vnode %d of shard %v is owned by %v", h, shard, owner)
			return false
		})
	}
	chain.AddAssertionf(registered == len(r.owners),
		"%d vnodes registered by shards but %d owned", registered, len(r.owners))

	var covered uint64
	r.index.each(func(h int32) bool {
		_, ok := r.owners[h]
		chain.AddAssertionf(ok, "indexed vnode %d has no owner", h)
		prev, _ := r.index.lower(h)
		covered += HashRange{Left: prev + 1, Right: h}.Size()
		return true
	})
	if r.index.len() > 0 {
		chain.AddAssertionf(covered == ringSize, "vnode arcs cover %d hashes instead of %d", covered, ringSize)
	}

	return chain.Validate()
}

// ownerOf returns the owner of a vnode known to be on the ring
func (r *Ring[S]) ownerOf(vnode int32) S {
	owner, ok := r.owners[vnode]
	if !ok {
		panic(errors.NewInvariantError("vnode %d is indexed but has no owner", vnode))
	}
	return owner
}

// String returns a short description of the ring
func (r *Ring[S]) String() string {
	return fmt.Sprintf("ring(shards=%d, vnodes=%d)", len(r.shards), r.index.len())
}
