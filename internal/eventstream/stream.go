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
)

// Stream is a topic based publish/subscribe broker.
// Publishing never blocks: every subscriber owns a bounded buffer and
// messages that do not fit are dropped.
type Stream interface {
	// AddSubscriber adds a subscriber
	AddSubscriber() Subscriber
	// RemoveSubscriber removes a subscriber
	RemoveSubscriber(sub Subscriber)
	// SubscribersCount returns the number of subscribers for a given topic
	SubscribersCount(topic string) int
	// Subscribe subscribes a subscriber to a topic
	Subscribe(sub Subscriber, topic string)
	// Unsubscribe removes a subscriber from a topic
	Unsubscribe(sub Subscriber, topic string)
	// Publish publishes a message to a topic
	Publish(topic string, msg any)
	// Close closes the stream
	Close()
}

// Subscribers defines the map of subscribers
type Subscribers map[string]Subscriber

// EventsStream defines the stream broker
type EventsStream struct {
	mu         sync.RWMutex
	bufferSize int
	subs       Subscribers
	topics     map[string]Subscribers
}

// enforce a compilation error
var _ Stream = (*EventsStream)(nil)

// New creates an instance of EventsStream. bufferSize is the number of
// messages each subscriber can hold before dropping.
func New(bufferSize int) *EventsStream {
	return &EventsStream{
		bufferSize: bufferSize,
		subs:       Subscribers{},
		topics:     map[string]Subscribers{},
	}
}

// AddSubscriber adds a subscriber
func (b *EventsStream) AddSubscriber() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := newSubscriber(b.bufferSize)
	b.subs[sub.ID()] = sub
	return sub
}

// RemoveSubscriber unsubscribes the subscriber from all its topics and shuts it down
func (b *EventsStream) RemoveSubscriber(sub Subscriber) {
	for _, topic := range sub.Topics() {
		b.Unsubscribe(sub, topic)
	}

	b.mu.Lock()
	delete(b.subs, sub.ID())
	b.mu.Unlock()

	sub.Shutdown()
}

// SubscribersCount returns the number of subscribers for a given topic
func (b *EventsStream) SubscribersCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Subscribe subscribes a subscriber to a topic. Inactive subscribers are ignored.
func (b *EventsStream) Subscribe(sub Subscriber, topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !sub.Active() {
		return
	}
	if b.topics[topic] == nil {
		b.topics[topic] = Subscribers{}
	}
	sub.subscribe(topic)
	b.topics[topic][sub.ID()] = sub
}

// Unsubscribe removes a subscriber from a topic
func (b *EventsStream) Unsubscribe(sub Subscriber, topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.topics[topic], sub.ID())
	if len(b.topics[topic]) == 0 {
		delete(b.topics, topic)
	}
	sub.unsubscribe(topic)
}

// Publish delivers the message to the active subscribers of the topic
func (b *EventsStream) Publish(topic string, msg any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	subs := b.topics[topic]
	if len(subs) == 0 {
		return
	}
	message := NewMessage(topic, msg)
	for _, sub := range subs {
		sub.signal(message)
	}
}

// Close shuts down every subscriber and forgets all subscriptions
func (b *EventsStream) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		sub.Shutdown()
	}
	b.subs = Subscribers{}
	b.topics = map[string]Subscribers{}
}
