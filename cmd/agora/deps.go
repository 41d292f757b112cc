// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package main

import (
	"context"
	"net"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agorafed/agora/internal/config"
	"github.com/agorafed/agora/internal/mail"
	"github.com/agorafed/agora/internal/observability"
	"github.com/agorafed/agora/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// StoreFactory opens the configured store backend.
	// Default: openStore
	StoreFactory func(ctx context.Context, cfg *config.Config) (*OpenStore, error)

	// MailerFactory builds the outbound mail sender. A nil sender disables email.
	// Default: newMailer
	MailerFactory func(ctx context.Context, cfg *config.Config) (mail.Sender, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// ListenerFactory creates the public API listener.
	// Default: net.Listen
	ListenerFactory func(network, address string) (net.Listener, error)
}

// OpenStore is a store with its lifecycle hooks.
type OpenStore struct {
	store.Store
	// Ping is nil for backends with nothing to probe.
	Ping  func(ctx context.Context) error
	Close func()
}

// ObservabilityServer is the subset of *observability.Server used by serve.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
	Registerer() prometheus.Registerer
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	out := ServeDeps{}
	if d != nil {
		out = *d
	}
	if out.StoreFactory == nil {
		out.StoreFactory = openStore
	}
	if out.MailerFactory == nil {
		out.MailerFactory = newMailer
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, ready observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, ready)
		}
	}
	if out.ListenerFactory == nil {
		out.ListenerFactory = net.Listen
	}
	return &out
}
