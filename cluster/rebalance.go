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

package cluster

import (
	"cmp"
	"slices"

	"github.com/tochemey/shardring/ring"
)

// Kind is the kind of topology change
type Kind int

const (
	// KindJoin is reported when a node joins the ring
	KindJoin Kind = iota
	// KindLeave is reported when a node leaves the ring
	KindLeave
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindJoin:
		return "join"
	case KindLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// Move is a hash range to migrate between two nodes
type Move struct {
	From  string
	To    string
	Range ring.HashRange
}

// Rebalance describes a topology change and the data migrations it requires.
// It is returned by Join and Leave and published to the subscribers.
type Rebalance struct {
	// ID uniquely identifies the change
	ID string
	// Kind of change
	Kind Kind
	// NodeID is the node that joined or left
	NodeID string
	// Version is the topology version after the change
	Version uint64
	// Moves are ordered by range then by source node
	Moves []Move
}

// Hashes returns the number of hashes changing owner
func (r *Rebalance) Hashes() uint64 {
	var total uint64
	for _, move := range r.Moves {
		total += move.Range.Size()
	}
	return total
}

// toMoves flattens the transfers of a topology change into moves. For a join
// the transfers are keyed by the node losing the ranges, for a leave by the
// node inheriting them.
func toMoves(kind Kind, nodeID string, transfers ring.Transfers[string]) []Move {
	moves := make([]Move, 0, transfers.Len())
	for peer := range transfers {
		for _, rng := range transfers.Ranges(peer) {
			move := Move{From: peer, To: nodeID, Range: rng}
			if kind == KindLeave {
				move = Move{From: nodeID, To: peer, Range: rng}
			}
			moves = append(moves, move)
		}
	}

	slices.SortFunc(moves, func(a, b Move) int {
		return cmp.Or(
			cmp.Compare(a.Range.Left, b.Range.Left),
			cmp.Compare(a.Range.Right, b.Range.Right),
			cmp.Compare(a.From, b.From),
			cmp.Compare(a.To, b.To),
		)
	})
	return moves
}
