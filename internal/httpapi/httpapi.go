// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package httpapi exposes the command dispatcher over HTTP. Commands are
// posted to /api/v1/{op} as JSON; live events stream from /api/v1/events as
// server-sent events.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/agorafed/agora/internal/api"
	"github.com/agorafed/agora/internal/bus"
	"github.com/agorafed/agora/internal/command"
	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/logging"
	"github.com/agorafed/agora/internal/observability"
)

// SessionHeader names the live session a request belongs to.
const SessionHeader = "X-Agora-Session"

const (
	maxBodyBytes      = 1 << 20
	heartbeatInterval = 30 * time.Second
)

// rateLimitedOps are throttled per client IP.
var rateLimitedOps = map[api.Op]bool{
	api.OpLogin:          true,
	api.OpRegister:       true,
	api.OpPasswordReset:  true,
	api.OpPasswordChange: true,
	api.OpGetCaptcha:     true,
}

// Dispatcher runs commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, req command.Request) (any, error)
}

// Subscriber registers live sessions.
type Subscriber interface {
	Subscribe(sessionID string, personID *ulid.ULID) *bus.Subscription
	// Release drops sub unless a newer stream has replaced it.
	Release(sub *bus.Subscription)
}

// Options configures NewRouter.
type Options struct {
	Dispatcher Dispatcher
	Events     Subscriber
	Resolver   command.Resolver
	// Metrics is optional.
	Metrics *observability.Metrics
	// RateLimit is requests per minute per IP for credential ops.
	RateLimit int
	Logger    *slog.Logger
	// Heartbeat overrides the event stream keep-alive interval.
	Heartbeat time.Duration
}

type handler struct {
	dispatcher Dispatcher
	events     Subscriber
	resolver   command.Resolver
	metrics    *observability.Metrics
	logger     *slog.Logger
	heartbeat  time.Duration
}

// NewRouter builds the public API router.
func NewRouter(opts Options) (http.Handler, error) {
	switch {
	case opts.Dispatcher == nil:
		return nil, oops.Code("NIL_DISPATCHER").Errorf("dispatcher is required")
	case opts.Events == nil:
		return nil, oops.Code("NIL_SUBSCRIBER").Errorf("event subscriber is required")
	case opts.Resolver == nil:
		return nil, oops.Code("NIL_RESOLVER").Errorf("resolver is required")
	case opts.RateLimit <= 0:
		return nil, oops.Code("INVALID_RATE_LIMIT").With("rate_limit", opts.RateLimit).Errorf("rate limit must be positive")
	}
	h := &handler{
		dispatcher: opts.Dispatcher,
		events:     opts.Events,
		resolver:   opts.Resolver,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		heartbeat:  opts.Heartbeat,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.heartbeat <= 0 {
		h.heartbeat = heartbeatInterval
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if h.metrics != nil {
		r.Use(h.metrics.Middleware)
	}

	limit := httprate.Limit(
		opts.RateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(h.rateLimited),
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/events", h.stream)
		r.With(onlyFor(rateLimitedOps, limit)).Post("/{op}", h.command)
	})
	return r, nil
}

// onlyFor applies mw to requests whose op is in ops.
func onlyFor(ops map[api.Op]bool, mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ops[api.Op(chi.URLParam(r, "op"))] {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *handler) rateLimited(w http.ResponseWriter, r *http.Request) {
	if h.metrics != nil {
		h.metrics.RateLimited.WithLabelValues(chi.URLParam(r, "op")).Inc()
	}
	writeJSON(w, http.StatusTooManyRequests, envelope{
		Op:    chi.URLParam(r, "op"),
		Error: errs.CodeRateLimited,
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(ctx))

			logger.LogAttrs(ctx, slog.LevelDebug, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
