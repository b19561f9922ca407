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

package eventstream

import (
	"sync"

	gods "github.com/Workiva/go-datastructures/queue"
	goset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// Subscriber defines the Subscriber Interface
type Subscriber interface {
	// ID returns the subscriber unique identifier
	ID() string
	// Active reports whether the subscriber still receives messages
	Active() bool
	// Topics returns the topics the subscriber listens to
	Topics() []string
	// Iterator drains the messages buffered so far
	Iterator() chan *Message
	// Dropped returns the number of messages lost because the buffer was full
	Dropped() uint64
	// Shutdown stops the subscriber and releases its buffer
	Shutdown()
	signal(message *Message)
	subscribe(topic string)
	unsubscribe(topic string)
}

type subscriber struct {
	id string
	// bounded buffer of pending messages
	messages *gods.RingBuffer
	// serializes readers of messages
	readMu   sync.Mutex
	topics   goset.Set[string]
	active   *atomic.Bool
	dropped  *atomic.Uint64
}

var _ Subscriber = &subscriber{}

// newSubscriber creates a subscriber buffering at most capacity messages.
// The capacity is rounded up to the next power of two.
func newSubscriber(capacity int) *subscriber {
	return &subscriber{
		id:       uuid.NewString(),
		messages: gods.NewRingBuffer(uint64(max(capacity, 1))),
		topics:   goset.NewSet[string](),
		active:   atomic.NewBool(true),
		dropped:  atomic.NewUint64(0),
	}
}

// ID return consumer id
func (x *subscriber) ID() string {
	return x.id
}

// Active checks whether the consumer is active
func (x *subscriber) Active() bool {
	return x.active.Load()
}

// Topics returns the list of topics the consumer has subscribed to
func (x *subscriber) Topics() []string {
	return x.topics.ToSlice()
}

// Dropped returns the number of messages that did not fit in the buffer
func (x *subscriber) Dropped() uint64 {
	return x.dropped.Load()
}

// Shutdown shutdowns the consumer
func (x *subscriber) Shutdown() {
	if x.active.CompareAndSwap(true, false) {
		x.messages.Dispose()
	}
}

// Iterator returns the messages buffered at call time in publication order.
// The channel is closed once they are all delivered. Concurrent calls each
// receive a disjoint part of the buffered messages.
func (x *subscriber) Iterator() chan *Message {
	x.readMu.Lock()
	defer x.readMu.Unlock()

	if !x.active.Load() {
		out := make(chan *Message)
		close(out)
		return out
	}

	pending := x.messages.Len()
	out := make(chan *Message, pending)
	for range pending {
		item, err := x.messages.Get()
		if err != nil {
			break
		}
		if msg, ok := item.(*Message); ok {
			out <- msg
		}
	}
	close(out)
	return out
}

// signal buffers the message without blocking. Messages are dropped when the
// subscriber is inactive or its buffer is full.
func (x *subscriber) signal(message *Message) {
	if !x.active.Load() {
		return
	}
	if ok, err := x.messages.Offer(message); err != nil || !ok {
		x.dropped.Inc()
	}
}

func (x *subscriber) subscribe(topic string) {
	x.topics.Add(topic)
}

func (x *subscriber) unsubscribe(topic string) {
	x.topics.Remove(topic)
}
