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

// Package cluster maintains the consistent hashing ring of a set of nodes and
// tells, for every membership change, which hash ranges must be migrated
// between which nodes.
package cluster

import (
	"context"
	"regexp"
	"slices"
	"sync"

	"github.com/google/uuid"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	"github.com/tochemey/shardring/errors"
	"github.com/tochemey/shardring/hash"
	"github.com/tochemey/shardring/internal/eventstream"
	"github.com/tochemey/shardring/internal/metric"
	"github.com/tochemey/shardring/internal/validation"
	"github.com/tochemey/shardring/log"
	"github.com/tochemey/shardring/ring"
)

const (
	// DefaultVnodesPerShard is the number of vnodes placed by Join
	DefaultVnodesPerShard = 128
	// DefaultEventsBufferSize is the number of rebalance events a subscriber holds
	DefaultEventsBufferSize = 256

	rebalanceTopic = "shardring.rebalance"
)

var nodeIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:@-]*$`)

// Controller owns the ring of a cluster. Every membership change goes through
// it so that routing never observes a partially applied change.
// A Controller is safe for concurrent use.
type Controller struct {
	mu   sync.RWMutex
	ring *ring.Ring[string]

	logger           log.Logger
	hasher           hash.Hasher
	vnodesPerShard   int
	eventsBufferSize int

	metricsEnabled bool
	meterProvider  otelmetric.MeterProvider
	metrics        *metric.RingMetric

	stream  *eventstream.EventsStream
	version *atomic.Uint64
	stopped *atomic.Bool
}

// New creates a Controller with an empty ring
func New(opts ...Option) (*Controller, error) {
	controller := &Controller{
		logger:           log.DefaultLogger,
		hasher:           hash.DefaultHasher(),
		vnodesPerShard:   DefaultVnodesPerShard,
		eventsBufferSize: DefaultEventsBufferSize,
		version:          atomic.NewUint64(0),
		stopped:          atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(controller)
	}

	if err := controller.validate(); err != nil {
		return nil, errors.NewErrInvalidConfig(err)
	}

	if controller.metricsEnabled {
		var providerOpts []metric.Option
		if controller.meterProvider != nil {
			providerOpts = append(providerOpts, metric.WithMeterProvider(controller.meterProvider))
		}
		instruments, err := metric.NewRingMetric(metric.New(providerOpts...).Meter())
		if err != nil {
			return nil, err
		}
		controller.metrics = instruments
	}

	controller.ring = ring.New[string](ring.WithHasher(controller.hasher))
	controller.stream = eventstream.New(controller.eventsBufferSize)
	return controller, nil
}

// Join adds the node to the ring with the configured number of vnodes. The
// vnode hashes are derived from the node ID, skipping hashes already taken.
func (c *Controller) Join(ctx context.Context, nodeID string) (*Rebalance, error) {
	if err := c.precheck(ctx, nodeID); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped.Load() {
		return nil, errors.ErrControllerStopped
	}

	vnodes, err := hash.VnodeHashes(c.hasher, nodeID, c.vnodesPerShard, c.ring.HasVnode)
	if err != nil {
		c.logger.Warnf("node=(%s) cannot join: %v", nodeID, err)
		return nil, err
	}
	return c.join(ctx, nodeID, vnodes)
}

// JoinWithVnodes adds the node to the ring at the given vnode hashes
func (c *Controller) JoinWithVnodes(ctx context.Context, nodeID string, vnodes []int32) (*Rebalance, error) {
	if err := c.precheck(ctx, nodeID); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped.Load() {
		return nil, errors.ErrControllerStopped
	}
	return c.join(ctx, nodeID, vnodes)
}

// Leave removes the node from the ring
func (c *Controller) Leave(ctx context.Context, nodeID string) (*Rebalance, error) {
	if err := c.precheck(ctx, nodeID); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped.Load() {
		return nil, errors.ErrControllerStopped
	}

	vnodes, err := c.ring.Vnodes(nodeID)
	if err != nil {
		c.logger.Warnf("node=(%s) cannot leave: %v", nodeID, err)
		return nil, err
	}

	transfers, err := c.ring.RemoveShard(nodeID)
	if err != nil {
		return nil, err
	}

	rebalance := c.commit(KindLeave, nodeID, transfers)
	if c.metrics != nil {
		c.metrics.RecordLeave(ctx, len(vnodes), transfers.Len(), transfers.Size())
	}
	return rebalance, nil
}

// Locate returns the node owning the key
func (c *Controller) Locate(key []byte) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stopped.Load() {
		return "", errors.ErrControllerStopped
	}
	return c.ring.GetShardByKey(key)
}

// LocateHash returns the node owning the hash
func (c *Controller) LocateHash(code int32) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stopped.Load() {
		return "", errors.ErrControllerStopped
	}
	return c.ring.GetShardByHash(code)
}

// OwnedRanges returns the hash ranges owned by the node
func (c *Controller) OwnedRanges(nodeID string) ([]ring.HashRange, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stopped.Load() {
		return nil, errors.ErrControllerStopped
	}
	return c.ring.OwnedRanges(nodeID)
}

// Members returns the nodes on the ring in lexical order
func (c *Controller) Members() ([]string, error) {
	c.mu.RLock()
	if c.stopped.Load() {
		c.mu.RUnlock()
		return nil, errors.ErrControllerStopped
	}
	members := c.ring.Shards()
	c.mu.RUnlock()
	slices.Sort(members)
	return members, nil
}

// Version returns the topology version. It starts at zero and is bumped by
// every successful Join or Leave.
func (c *Controller) Version() uint64 {
	return c.version.Load()
}

// Subscribe returns a subscriber receiving every Rebalance as message payload
func (c *Controller) Subscribe() (eventstream.Subscriber, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stopped.Load() {
		return nil, errors.ErrControllerStopped
	}
	subscriber := c.stream.AddSubscriber()
	c.stream.Subscribe(subscriber, rebalanceTopic)
	return subscriber, nil
}

// Unsubscribe stops the delivery of events to the subscriber
func (c *Controller) Unsubscribe(subscriber eventstream.Subscriber) {
	c.stream.RemoveSubscriber(subscriber)
}

// Stop shuts down the event subscribers. Topology changes and lookups are
// rejected afterwards. Stop waits for the change in flight, if any, and is
// idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stopped.CompareAndSwap(false, true) {
		return
	}

	subscribers := c.stream.SubscribersCount(rebalanceTopic)
	c.stream.Close()
	c.logger.Infof("ring controller stopped at version=%d, subscribers=%d", c.version.Load(), subscribers)
}

// join must be called with the lock held
func (c *Controller) join(ctx context.Context, nodeID string, vnodes []int32) (*Rebalance, error) {
	transfers, err := c.ring.AddShard(nodeID, vnodes)
	if err != nil {
		c.logger.Warnf("node=(%s) cannot join: %v", nodeID, err)
		return nil, err
	}

	rebalance := c.commit(KindJoin, nodeID, transfers)
	if c.metrics != nil {
		c.metrics.RecordJoin(ctx, len(vnodes), transfers.Len(), transfers.Size())
	}
	return rebalance, nil
}

// commit must be called with the lock held
func (c *Controller) commit(kind Kind, nodeID string, transfers ring.Transfers[string]) *Rebalance {
	rebalance := &Rebalance{
		ID:      uuid.NewString(),
		Kind:    kind,
		NodeID:  nodeID,
		Version: c.version.Inc(),
		Moves:   toMoves(kind, nodeID, transfers),
	}

	c.logger.With(
		"node", nodeID,
		"kind", kind.String(),
		"version", rebalance.Version,
		"moves", len(rebalance.Moves),
		"hashes", rebalance.Hashes(),
	).Infof("ring topology changed: %s", c.ring)

	c.stream.Publish(rebalanceTopic, rebalance)
	return rebalance
}

func (c *Controller) precheck(ctx context.Context, nodeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.stopped.Load() {
		return errors.ErrControllerStopped
	}
	err := validation.New(validation.FailFast()).
		AddAssertion(nodeID != "", "node id is empty").
		AddValidator(validation.NewPatternValidator("nodeID", nodeIDPattern, nodeID)).
		Validate()
	if err != nil {
		return errors.NewErrInvalidNodeID(err)
	}
	return nil
}

func (c *Controller) validate() error {
	return validation.New(validation.AllErrors()).
		AddAssertion(c.logger != nil, "logger is required").
		AddAssertion(c.hasher != nil, "hasher is required").
		AddValidator(validation.NewPositiveIntValidator("vnodesPerShard", c.vnodesPerShard)).
		AddValidator(validation.NewPositiveIntValidator("eventsBufferSize", c.eventsBufferSize)).
		Validate()
}
