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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRing is returned when a key is routed while no vnode is registered on the ring.
	// Callers should retry once at least one shard has been added.
	ErrEmptyRing = errors.New("ring is empty")

	// ErrDuplicateShard is returned when adding a shard that is already on the ring.
	ErrDuplicateShard = errors.New("shard already exists")

	// ErrHashCollision is returned when a vnode hash is already placed on the ring
	// or appears more than once in the same request.
	ErrHashCollision = errors.New("vnode hash collision")

	// ErrUnknownShard is returned when the shard is not on the ring.
	ErrUnknownShard = errors.New("shard not found")

	// ErrNoVnodes is returned when a shard is added without any vnode hash.
	ErrNoVnodes = errors.New("shard must own at least one vnode")

	// ErrControllerStopped is returned when the topology controller has been stopped.
	ErrControllerStopped = errors.New("controller is stopped")

	// ErrInvalidConfig is returned when the controller configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidNodeID is returned when a node identifier is empty or malformed.
	ErrInvalidNodeID = errors.New("invalid node id")
)

// NewErrDuplicateShard formats an ErrDuplicateShard for the given shard.
func NewErrDuplicateShard(shard any) error {
	return fmt.Errorf("shard=(%v) %w", shard, ErrDuplicateShard)
}

// NewErrUnknownShard formats an ErrUnknownShard for the given shard.
func NewErrUnknownShard(shard any) error {
	return fmt.Errorf("shard=(%v) %w", shard, ErrUnknownShard)
}

// NewErrHashCollision formats an ErrHashCollision for the given vnode hash.
func NewErrHashCollision(hash int32) error {
	return fmt.Errorf("hash=(%d) %w", hash, ErrHashCollision)
}

// NewErrInvalidNodeID wraps the node id violation with ErrInvalidNodeID.
func NewErrInvalidNodeID(err error) error {
	return errors.Join(ErrInvalidNodeID, err)
}

// NewErrInvalidConfig wraps the configuration violations with ErrInvalidConfig.
func NewErrInvalidConfig(err error) error {
	return errors.Join(ErrInvalidConfig, err)
}

// InvariantError reports a broken ring invariant. It signals a programming
// fault, typically a caller that broke the single-owner contract, and is
// raised through panic rather than returned.
type InvariantError struct {
	err error
}

// enforce compilation error
var _ error = (*InvariantError)(nil)

// NewInvariantError creates an instance of InvariantError
func NewInvariantError(format string, args ...any) *InvariantError {
	return &InvariantError{err: fmt.Errorf(format, args...)}
}

// Error implements the standard error interface
func (e *InvariantError) Error() string {
	return fmt.Sprintf("ring invariant violated: %v", e.err)
}

func (e *InvariantError) Unwrap() error {
	return e.err
}
