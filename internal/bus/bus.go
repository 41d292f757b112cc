// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package bus fans command results out to live client sessions.
package bus

import (
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"
)

// DefaultBuffer is the per-session channel capacity.
const DefaultBuffer = 100

// Event is a message delivered to sessions.
type Event struct {
	Op      string `json:"op"`
	Payload any    `json:"data"`
	// Origin is the session whose command produced the event. Empty for
	// server-originated events.
	Origin string `json:"-"`
}

// Publisher is the handler-facing side of the bus.
type Publisher interface {
	PublishGlobal(ev Event)
	PublishToRecipient(personID ulid.ULID, ev Event)
}

// Subscription receives events for one session.
type Subscription struct {
	SessionID string
	PersonID  *ulid.ULID
	C         <-chan Event

	ch chan Event
}

// Bus is a session registry with global and per-person delivery. Publishing
// never blocks: a full session buffer drops the event.
type Bus struct {
	mu       sync.RWMutex
	buffer   int
	sessions map[string]*Subscription
	byPerson map[ulid.ULID]map[string]*Subscription
}

var _ Publisher = (*Bus)(nil)

// New creates a Bus whose sessions buffer up to buffer events.
func New(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus{
		buffer:   buffer,
		sessions: make(map[string]*Subscription),
		byPerson: make(map[ulid.ULID]map[string]*Subscription),
	}
}

// Subscribe registers sessionID, optionally bound to a person. An existing
// subscription for the same session is replaced and its channel closed.
func (b *Bus) Subscribe(sessionID string, personID *ulid.ULID) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.removeLocked(sessionID)

	ch := make(chan Event, b.buffer)
	sub := &Subscription{SessionID: sessionID, C: ch, ch: ch}
	if personID != nil {
		id := *personID
		sub.PersonID = &id
		if b.byPerson[id] == nil {
			b.byPerson[id] = make(map[string]*Subscription)
		}
		b.byPerson[id][sessionID] = sub
	}
	b.sessions[sessionID] = sub
	SessionsActive.Set(float64(len(b.sessions)))
	return sub
}

// Unsubscribe removes sessionID and closes its channel.
func (b *Bus) Unsubscribe(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(sessionID)
	SessionsActive.Set(float64(len(b.sessions)))
}

// Release removes sub if it is still the current subscription for its
// session. A subscription already replaced by a newer Subscribe is left alone.
func (b *Bus) Release(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sessions[sub.SessionID] != sub {
		return
	}
	b.removeLocked(sub.SessionID)
	SessionsActive.Set(float64(len(b.sessions)))
}

func (b *Bus) removeLocked(sessionID string) {
	sub, ok := b.sessions[sessionID]
	if !ok {
		return
	}
	delete(b.sessions, sessionID)
	if sub.PersonID != nil {
		delete(b.byPerson[*sub.PersonID], sessionID)
		if len(b.byPerson[*sub.PersonID]) == 0 {
			delete(b.byPerson, *sub.PersonID)
		}
	}
	close(sub.ch)
}

// PublishGlobal delivers ev to every session.
func (b *Bus) PublishGlobal(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.sessions {
		b.send(sub, ev, scopeGlobal)
	}
}

// PublishToRecipient delivers ev to every session of personID.
func (b *Bus) PublishToRecipient(personID ulid.ULID, ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.byPerson[personID] {
		b.send(sub, ev, scopeRecipient)
	}
}

// Sessions returns the number of registered sessions.
func (b *Bus) Sessions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}

func (b *Bus) send(sub *Subscription, ev Event, scope string) {
	select {
	case sub.ch <- ev:
		EventsDelivered.WithLabelValues(scope).Inc()
	default:
		EventsDropped.WithLabelValues(scope).Inc()
		slog.Warn("event dropped: subscriber buffer full",
			"session_id", sub.SessionID,
			"op", ev.Op,
			"scope", scope,
		)
	}
}
