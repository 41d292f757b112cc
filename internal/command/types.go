// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package command provides the command registry and the dispatcher that
// resolves identity, validates payloads, runs handlers and publishes their
// events.
package command

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/api"
	"github.com/agorafed/agora/internal/bus"
	"github.com/agorafed/agora/internal/config"
	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/model"
)

// AuthMode says how the dispatcher resolves the caller before a handler runs.
type AuthMode int

// Auth modes.
const (
	// AuthNone ignores any token.
	AuthNone AuthMode = iota
	// AuthOptional resolves a token when one is supplied.
	AuthOptional
	// AuthRequired fails with not_logged_in without a valid token.
	AuthRequired
	// AuthAdmin additionally requires the admin flag.
	AuthAdmin
)

func (m AuthMode) String() string {
	switch m {
	case AuthNone:
		return "none"
	case AuthOptional:
		return "optional"
	case AuthRequired:
		return "required"
	case AuthAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// HandlerFunc is the type-erased form of a registered handler.
type HandlerFunc func(ctx context.Context, call *Call, cmd api.Command) (any, error)

// Entry is a registered command.
type Entry struct {
	Op      api.Op
	Auth    AuthMode
	Handler HandlerFunc
}

// Handle builds an Entry from a handler typed on its request and response.
func Handle[C api.Command, R any](op api.Op, mode AuthMode, fn func(context.Context, *Call, C) (R, error)) Entry {
	return Entry{
		Op:   op,
		Auth: mode,
		Handler: func(ctx context.Context, call *Call, cmd api.Command) (any, error) {
			typed, ok := cmd.(C)
			if !ok {
				return nil, errs.Validationf(errs.CodeInvalidRequest, "op %s: unexpected payload %T", op, cmd)
			}
			return fn(ctx, call, typed)
		},
	}
}

// Call is the per-dispatch context handed to a handler. Handlers must not
// retain it after returning.
type Call struct {
	// User is the resolved caller, nil for anonymous calls.
	User *model.LocalUserView
	// Token is the bearer token the request carried.
	Token     string
	SessionID string
	Instance  config.Instance
	Services  *Services

	now    time.Time
	events []queuedEvent
}

type queuedEvent struct {
	recipient *ulid.ULID
	event     bus.Event
}

// Now returns the time the dispatch started.
func (c *Call) Now() time.Time { return c.now }

// PublishGlobal queues an event for every live session. Queued events are
// delivered only if the handler succeeds.
func (c *Call) PublishGlobal(op api.Op, payload any) {
	c.events = append(c.events, queuedEvent{
		event: bus.Event{Op: string(op), Payload: payload, Origin: c.SessionID},
	})
}

// PublishToRecipient queues an event for the sessions of personID.
func (c *Call) PublishToRecipient(personID ulid.ULID, op api.Op, payload any) {
	c.events = append(c.events, queuedEvent{
		recipient: &personID,
		event:     bus.Event{Op: string(op), Payload: payload, Origin: c.SessionID},
	})
}

// NewTestCall returns a Call for exercising handlers directly.
func NewTestCall(user *model.LocalUserView, inst config.Instance, svc *Services, now time.Time) *Call {
	return &Call{User: user, Instance: inst, Services: svc, now: now}
}

// Events returns the events queued so far.
func (c *Call) Events() []bus.Event {
	out := make([]bus.Event, 0, len(c.events))
	for _, q := range c.events {
		out = append(out, q.event)
	}
	return out
}
