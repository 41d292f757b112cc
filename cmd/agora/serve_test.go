// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agorafed/agora/internal/config"
	"github.com/agorafed/agora/internal/mail"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.Metrics.Addr = "127.0.0.1:0"
	cfg.Log.Level = "error"
	cfg.Secrets.JWTSecret = "serve-test-secret-serve-test-secret"
	return &cfg
}

func quietCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(new(bytes.Buffer))
	return cmd
}

func restoreLogger(t *testing.T) {
	t.Helper()
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })
}

func TestRunServe_ServesUntilCancelled(t *testing.T) {
	restoreLogger(t)
	addrs := make(chan string, 1)
	deps := &ServeDeps{
		ListenerFactory: func(network, address string) (net.Listener, error) {
			l, err := net.Listen(network, address)
			if err == nil {
				addrs <- l.Addr().String()
			}
			return l, err
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, testConfig(), quietCmd(), deps) }()

	var addr string
	select {
	case addr = <-addrs:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	require.Eventually(t, func() bool {
		resp, err := http.Post("http://"+addr+"/api/v1/GetCaptcha", "application/json", strings.NewReader(`{}`))
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not shut down")
	}
}

func TestRunServe_InvalidConfig(t *testing.T) {
	restoreLogger(t)
	cfg := testConfig()
	cfg.Secrets.JWTSecret = ""

	err := runServe(context.Background(), cfg, quietCmd(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "AGORA_JWT_SECRET")
}

func TestRunServe_StoreFailure(t *testing.T) {
	restoreLogger(t)
	deps := &ServeDeps{
		StoreFactory: func(context.Context, *config.Config) (*OpenStore, error) {
			return nil, errors.New("connection refused")
		},
	}

	err := runServe(context.Background(), testConfig(), quietCmd(), deps)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open store")
}

func TestRunServe_ListenFailureStopsObservability(t *testing.T) {
	restoreLogger(t)
	deps := &ServeDeps{
		ListenerFactory: func(string, string) (net.Listener, error) {
			return nil, errors.New("address in use")
		},
	}

	err := runServe(context.Background(), testConfig(), quietCmd(), deps)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestNewMailer(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Email.Enabled = false

		sender, err := newMailer(context.Background(), cfg)

		require.NoError(t, err)
		assert.Nil(t, sender)
	})

	t.Run("log backend", func(t *testing.T) {
		cfg := testConfig()
		cfg.Email = config.Email{Enabled: true, Backend: config.EmailLog, From: "noreply@agora.test"}

		sender, err := newMailer(context.Background(), cfg)

		require.NoError(t, err)
		assert.IsType(t, mail.LogSender{}, sender)
	})
}

func TestOpenStore_Memory(t *testing.T) {
	restoreLogger(t)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	st, err := openStore(context.Background(), testConfig())

	require.NoError(t, err)
	assert.NotNil(t, st.Store)
	assert.Nil(t, st.Ping)
	st.Close()
}
