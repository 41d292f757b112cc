// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agorafed/agora/internal/api"
	"github.com/agorafed/agora/internal/auth"
	"github.com/agorafed/agora/internal/bus"
	"github.com/agorafed/agora/internal/config"
	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/pkg/errutil"
)

var tracer = otel.Tracer("agora/command")

// Resolver turns bearer tokens into callers.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*model.LocalUserView, error)
	ResolveOptional(ctx context.Context, token string) (*model.LocalUserView, error)
}

// Request is one command invocation from a session.
type Request struct {
	Command api.Command
	// SessionID identifies the originating live session, if any.
	SessionID string
}

// Dispatcher resolves identity, validates and runs commands.
type Dispatcher struct {
	registry *Registry
	resolver Resolver
	services *Services
	bus      bus.Publisher
	instance config.Instance
	now      func() time.Time
}

// DispatcherOption configures a Dispatcher during construction.
type DispatcherOption func(*Dispatcher)

// WithClock replaces the time source.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// NewDispatcher creates a dispatcher. The instance settings are fixed for its
// lifetime.
func NewDispatcher(registry *Registry, resolver Resolver, services *Services, pub bus.Publisher, instance config.Instance, opts ...DispatcherOption) (*Dispatcher, error) {
	switch {
	case registry == nil:
		return nil, oops.Code("NIL_REGISTRY").Errorf("registry is required")
	case resolver == nil:
		return nil, oops.Code("NIL_RESOLVER").Errorf("resolver is required")
	case services == nil:
		return nil, oops.Code("NIL_SERVICES").Errorf("services are required")
	case pub == nil:
		return nil, oops.Code("NIL_PUBLISHER").Errorf("publisher is required")
	}
	d := &Dispatcher{
		registry: registry,
		resolver: resolver,
		services: services,
		bus:      pub,
		instance: instance,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch runs req.Command: resolve the caller, validate, execute, then
// publish the events the handler queued. Events are dropped on failure.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (resp any, err error) {
	if req.Command == nil {
		return nil, errs.Validationf(errs.CodeInvalidRequest, "missing command")
	}
	op := req.Command.Op()
	start := d.now()

	metrics := NewMetricsRecorder(start)
	metrics.SetOp(string(op))

	ctx, span := tracer.Start(ctx, "command.dispatch",
		trace.WithAttributes(attribute.String("command.op", string(op))),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, errs.CodeOf(err))
			metrics.SetStatus(string(errs.KindOf(err)))
		} else {
			metrics.SetStatus(StatusSuccess)
		}
		metrics.Record()
		span.End()
	}()

	entry, ok := d.registry.Get(op)
	if !ok {
		metrics.SetOp("")
		RecordCommandExecution(string(op), StatusUnknownOp)
		return nil, errs.Validationf(errs.CodeUnknownOp, "op %q", op)
	}

	user, err := d.resolve(ctx, entry.Auth, req.Command.Token())
	if err != nil {
		return nil, err
	}
	if user != nil {
		span.SetAttributes(attribute.String("person.id", user.Person.ID.String()))
	}

	if err = req.Command.Validate(); err != nil {
		return nil, err
	}

	call := &Call{
		User:      user,
		Token:     req.Command.Token(),
		SessionID: req.SessionID,
		Instance:  d.instance,
		Services:  d.services,
		now:       start,
	}
	resp, err = entry.Handler(ctx, call, req.Command)
	if err != nil {
		d.logFailure(ctx, op, user, err)
		return nil, err
	}

	for _, q := range call.events {
		if q.recipient != nil {
			d.bus.PublishToRecipient(*q.recipient, q.event)
		} else {
			d.bus.PublishGlobal(q.event)
		}
	}
	span.SetAttributes(attribute.Int("command.events", len(call.events)))
	return resp, nil
}

func (d *Dispatcher) resolve(ctx context.Context, mode AuthMode, token string) (*model.LocalUserView, error) {
	switch mode {
	case AuthNone:
		return nil, nil
	case AuthOptional:
		return d.resolver.ResolveOptional(ctx, token)
	case AuthRequired, AuthAdmin:
		user, err := d.resolver.Resolve(ctx, token)
		if err != nil {
			return nil, err
		}
		if mode == AuthAdmin {
			if err := auth.RequireAdmin(user); err != nil {
				return nil, err
			}
		}
		return user, nil
	default:
		return nil, errs.Internal(oops.Errorf("unknown auth mode %d", mode))
	}
}

func (d *Dispatcher) logFailure(ctx context.Context, op api.Op, user *model.LocalUserView, err error) {
	attrs := []any{"op", op}
	if user != nil {
		attrs = append(attrs, "person_id", user.Person.ID.String())
	}
	switch {
	case errs.IsCompensationFailed(err):
		errutil.LogError(ctx, slog.Default(), "command failed and compensation failed", err, attrs...)
	case errs.KindOf(err) == errs.KindDependency:
		errutil.LogError(ctx, slog.Default(), "command failed", err, attrs...)
	default:
		slog.DebugContext(ctx, "command rejected", append(attrs, "code", errs.CodeOf(err))...)
	}
}
