// Package events provides an in-process pub/sub bus for control-plane state
// changes (estop transitions, selection rebuilds, security profile changes).
// A command handler publishes after a successful mutation; nothing in the
// fabric currently blocks on delivery, so handlers run fire-and-forget.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	. "github.com/chumyin/zeroclaw/internal/logging"
)

// Event is a notification broadcast to subscribers of a topic.
type Event struct {
	Topic     string // "estop.engaged", "estop.resumed", "selection.rebuilt", ...
	Data      any
	Timestamp time.Time
	Source    string // "cli", "onboard", "system"
}

// Handler processes an event. No return value: fire and forget.
type Handler func(Event)

// SubscriptionID uniquely identifies a subscription within a Bus.
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	handler Handler
}

// Bus is an independent pub/sub hub. Unlike a package-global registry, each
// Bus instance owns its own subscriber table, so tests and command
// invocations never leak state into each other.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[string][]subscription
	nextID        uint64
}

// NewBus constructs an empty event bus.
func NewBus() *Bus {
	return &Bus{subscriptions: make(map[string][]subscription)}
}

// Subscribe registers a handler for a topic and returns an ID usable with
// Unsubscribe.
func (b *Bus) Subscribe(topic string, handler Handler) SubscriptionID {
	id := SubscriptionID(atomic.AddUint64(&b.nextID, 1))

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions[topic] = append(b.subscriptions[topic], subscription{id: id, handler: handler})

	L_debug("events: subscribed", "topic", topic, "subscription_id", id)
	return id
}

// Unsubscribe removes a subscription. Returns true if it was found.
func (b *Bus) Unsubscribe(id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for topic, subs := range b.subscriptions {
		for i, sub := range subs {
			if sub.id == id {
				b.subscriptions[topic] = append(subs[:i], subs[i+1:]...)
				if len(b.subscriptions[topic]) == 0 {
					delete(b.subscriptions, topic)
				}
				L_debug("events: unsubscribed", "topic", topic, "subscription_id", id)
				return true
			}
		}
	}
	return false
}

// Publish broadcasts data on a topic with source "system".
func (b *Bus) Publish(topic string, data any) {
	b.PublishWithSource(topic, data, "system")
}

// PublishWithSource broadcasts data on a topic, recording the origin.
// Handlers run in their own goroutine so a slow or panicking subscriber
// cannot block or crash the publisher (the command that just mutated state).
func (b *Bus) PublishWithSource(topic string, data any, source string) {
	event := Event{Topic: topic, Data: data, Timestamp: time.Now(), Source: source}

	b.mu.RLock()
	subs := b.subscriptions[topic]
	subsCopy := make([]subscription, len(subs))
	copy(subsCopy, subs)
	b.mu.RUnlock()

	if len(subsCopy) == 0 {
		L_debug("events: published, no subscribers", "topic", topic)
		return
	}

	L_info("events: published", "topic", topic, "subscribers", len(subsCopy), "source", source)

	for _, sub := range subsCopy {
		go func(s subscription) {
			defer func() {
				if r := recover(); r != nil {
					L_error("events: handler panic", "topic", topic, "subscription_id", s.id, "panic", r)
				}
			}()
			s.handler(event)
		}(sub)
	}
}

// Topics returns all topics that currently have at least one subscriber.
func (b *Bus) Topics() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	topics := make([]string, 0, len(b.subscriptions))
	for topic := range b.subscriptions {
		topics = append(topics, topic)
	}
	return topics
}

// SubscriberCount returns how many handlers are registered for a topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions[topic])
}
