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
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/tochemey/shardring/hash"
	"github.com/tochemey/shardring/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(c *Controller)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(c *Controller)

// Apply applies the Controller's option
func (f OptionFunc) Apply(c *Controller) {
	f(c)
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(c *Controller) {
		c.logger = logger
	})
}

// WithHasher sets the hasher used to place vnodes and route keys
func WithHasher(hasher hash.Hasher) Option {
	return OptionFunc(func(c *Controller) {
		c.hasher = hasher
	})
}

// WithVnodesPerShard sets the number of vnodes Join places for every node
func WithVnodesPerShard(count int) Option {
	return OptionFunc(func(c *Controller) {
		c.vnodesPerShard = count
	})
}

// WithEventsBufferSize sets the number of rebalance events a subscriber can
// hold before new events are dropped
func WithEventsBufferSize(size int) Option {
	return OptionFunc(func(c *Controller) {
		c.eventsBufferSize = size
	})
}

// WithMetrics enables the ring metrics using the global otel meter provider
func WithMetrics() Option {
	return OptionFunc(func(c *Controller) {
		c.metricsEnabled = true
	})
}

// WithMeterProvider enables the ring metrics using the given meter provider
func WithMeterProvider(meterProvider otelmetric.MeterProvider) Option {
	return OptionFunc(func(c *Controller) {
		c.metricsEnabled = true
		c.meterProvider = meterProvider
	})
}
