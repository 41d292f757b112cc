// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agorafed/agora/internal/auth"
	"github.com/agorafed/agora/internal/bus"
	"github.com/agorafed/agora/internal/captcha"
	"github.com/agorafed/agora/internal/command"
	"github.com/agorafed/agora/internal/command/handlers"
	"github.com/agorafed/agora/internal/config"
	"github.com/agorafed/agora/internal/federation"
	"github.com/agorafed/agora/internal/httpapi"
	"github.com/agorafed/agora/internal/janitor"
	"github.com/agorafed/agora/internal/logging"
	"github.com/agorafed/agora/internal/mail"
	"github.com/agorafed/agora/internal/modlog"
	"github.com/agorafed/agora/internal/observability"
	"github.com/agorafed/agora/internal/store"
	"github.com/agorafed/agora/internal/store/memory"
	"github.com/agorafed/agora/internal/store/postgres"
	"github.com/agorafed/agora/internal/validate"
	"github.com/agorafed/agora/pkg/errutil"
)

const (
	shutdownTimeout  = 10 * time.Second
	mailRetryBase    = 200 * time.Millisecond
	mailRetryAttempt = 3
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server, the event stream, the maintenance
janitor and, when configured, the metrics and health endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath(), cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, cmd, nil)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// runServe runs the server until ctx is done or a listener fails.
func runServe(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	deps = deps.withDefaults()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.SetDefault(logging.Options{
		Service: "agora",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   logging.ParseLevel(cfg.Log.Level),
	})
	logger.Info("starting agora",
		"hostname", cfg.Hostname,
		"http_addr", cfg.HTTP.Addr,
		"store", cfg.Store.Backend,
	)

	st, err := deps.StoreFactory(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	sender, err := deps.MailerFactory(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up email: %w", err)
	}

	tokens, err := auth.NewTokenService([]byte(cfg.Secrets.JWTSecret), cfg.Hostname)
	if err != nil {
		return fmt.Errorf("failed to set up tokens: %w", err)
	}
	challenges := captcha.NewStore()
	services, err := command.NewServices(command.ServicesConfig{
		Store:      st,
		Hasher:     auth.NewArgon2idHasher(),
		Tokens:     tokens,
		Captchas:   challenges,
		Captcha:    captcha.NewGenerator(challenges, captcha.DefaultTTL),
		ModLog:     modlog.New(st, logger.With("component", "modlog")),
		Federation: federation.NewOutboxPublisher(st),
		Slurs:      validate.DefaultSlurFilter(),
		Mail:       sender,
	})
	if err != nil {
		return fmt.Errorf("failed to build services: %w", err)
	}

	registry := command.NewRegistry()
	handlers.RegisterAll(registry)
	resolver := auth.NewResolver(tokens, st)
	events := bus.New(bus.DefaultBuffer)
	dispatcher, err := command.NewDispatcher(registry, resolver, services, events, cfg.Instance())
	if err != nil {
		return fmt.Errorf("failed to build dispatcher: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, st.Ping)
		reg := obsServer.Registerer()
		command.RegisterMetrics(reg)
		bus.RegisterMetrics(reg)
		janitor.RegisterMetrics(reg)
		modlog.RegisterMetrics(reg)
		metrics = obsServer.Metrics()

		obsErrChan, err := obsServer.Start()
		if err != nil {
			return fmt.Errorf("failed to start observability server: %w", err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	router, err := httpapi.NewRouter(httpapi.Options{
		Dispatcher: dispatcher,
		Events:     events,
		Resolver:   resolver,
		Metrics:    metrics,
		RateLimit:  cfg.HTTP.RateLimit,
		Logger:     logger.With("component", "http"),
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	listener, err := deps.ListenerFactory("tcp", cfg.HTTP.Addr)
	if err != nil {
		stopObservability(obsServer)
		return fmt.Errorf("failed to listen on %s: %w", cfg.HTTP.Addr, err)
	}
	httpServer := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	sweeper := janitor.New(cfg.Janitor.Interval, cfg.Store.Timeout, logger.With("component", "janitor"),
		janitor.CaptchaTask(challenges),
		janitor.PasswordResetTask(st),
	)
	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		sweeper.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	cmd.Println("Agora started")
	logger.Info("agora ready", "http_addr", listener.Addr().String())

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		errutil.LogError(ctx, logger, "http server failed", err)
		runErr = fmt.Errorf("http server error: %w", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping http server", "error", err)
	}
	stopObservability(obsServer)
	<-janitorDone

	logger.Info("shutdown complete")
	return runErr
}

func stopObservability(s ObservabilityServer) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		slog.Warn("error stopping observability server", "error", err)
	}
}

// monitorServerErrors cancels ctx when a background server reports a failure.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, name string) {
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			slog.Error("server failed", "server", name, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}

// openStore opens the configured backend. The postgres backend applies
// pending migrations first when store.auto_migrate is set.
func openStore(ctx context.Context, cfg *config.Config) (*OpenStore, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		slog.Warn("using the in-memory store; data is lost on exit")
		return &OpenStore{Store: memory.New(), Close: func() {}}, nil
	case config.BackendPostgres:
		if cfg.Store.AutoMigrate {
			if err := migrateUp(cfg.Secrets.DatabaseURL); err != nil {
				return nil, err
			}
		}
		pg, err := postgres.New(ctx, cfg.Secrets.DatabaseURL, postgres.Options{
			MaxConns: cfg.Store.MaxConns,
			Timeout:  cfg.Store.Timeout,
		})
		if err != nil {
			return nil, err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("database unreachable: %w", err)
		}
		return &OpenStore{Store: pg, Ping: pg.Ping, Close: pg.Close}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func migrateUp(databaseURL string) error {
	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	pending, err := m.Pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	slog.Info("applying migrations", "pending", pending)
	return m.Up()
}

// newMailer returns nil when email is disabled. SES sends are retried on
// transient failures.
func newMailer(ctx context.Context, cfg *config.Config) (mail.Sender, error) {
	if !cfg.Email.Enabled {
		return nil, nil
	}
	switch cfg.Email.Backend {
	case config.EmailSES:
		ses, err := mail.NewSESSender(ctx, cfg.Email.Region, cfg.Email.From)
		if err != nil {
			return nil, err
		}
		return mail.NewRetryingSender(ses, mailRetryBase, mailRetryAttempt), nil
	default:
		return mail.LogSender{Logger: slog.Default().With("component", "mail")}, nil
	}
}
