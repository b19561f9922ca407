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

package metric

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// KindJoin labels a topology change adding a shard
	KindJoin = "join"
	// KindLeave labels a topology change removing a shard
	KindLeave = "leave"
)

// RingMetric groups the instruments describing the ring topology and the
// rebalancing traffic it generates.
//
// Instruments:
//   - shardring.topology.changes   (Int64Counter, attribute kind)
//   - shardring.ranges.transferred (Int64Counter)
//   - shardring.hashes.transferred (Int64Counter)
//   - shardring.vnodes             (Int64UpDownCounter)
//   - shardring.shards             (Int64UpDownCounter)
type RingMetric struct {
	topologyChanges   metric.Int64Counter
	rangesTransferred metric.Int64Counter
	hashesTransferred metric.Int64Counter
	vnodes            metric.Int64UpDownCounter
	shards            metric.Int64UpDownCounter
}

// NewRingMetric creates the ring instruments using the provided Meter.
func NewRingMetric(meter metric.Meter) (*RingMetric, error) {
	var instruments RingMetric
	var err error

	if instruments.topologyChanges, err = meter.Int64Counter(
		"shardring.topology.changes",
		metric.WithDescription("Number of shards added to or removed from the ring"),
	); err != nil {
		return nil, err
	}

	if instruments.rangesTransferred, err = meter.Int64Counter(
		"shardring.ranges.transferred",
		metric.WithDescription("Number of hash ranges that changed owner"),
	); err != nil {
		return nil, err
	}

	if instruments.hashesTransferred, err = meter.Int64Counter(
		"shardring.hashes.transferred",
		metric.WithDescription("Number of hashes that changed owner"),
	); err != nil {
		return nil, err
	}

	if instruments.vnodes, err = meter.Int64UpDownCounter(
		"shardring.vnodes",
		metric.WithDescription("Number of vnodes on the ring"),
	); err != nil {
		return nil, err
	}

	if instruments.shards, err = meter.Int64UpDownCounter(
		"shardring.shards",
		metric.WithDescription("Number of shards on the ring"),
	); err != nil {
		return nil, err
	}

	return &instruments, nil
}

// RecordJoin records a shard joining the ring with the given vnodes and the
// rebalancing it caused
func (x *RingMetric) RecordJoin(ctx context.Context, vnodes, ranges int, hashes uint64) {
	x.record(ctx, KindJoin, 1, int64(vnodes), ranges, hashes)
}

// RecordLeave records a shard leaving the ring with the given vnodes and the
// rebalancing it caused
func (x *RingMetric) RecordLeave(ctx context.Context, vnodes, ranges int, hashes uint64) {
	x.record(ctx, KindLeave, -1, -int64(vnodes), ranges, hashes)
}

func (x *RingMetric) record(ctx context.Context, kind string, shards, vnodes int64, ranges int, hashes uint64) {
	x.topologyChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	x.rangesTransferred.Add(ctx, int64(ranges))
	// at most 2^32 hashes change owner
	x.hashesTransferred.Add(ctx, int64(hashes))
	x.vnodes.Add(ctx, vnodes)
	x.shards.Add(ctx, shards)
}
