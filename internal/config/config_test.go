// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agora.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AGORA_JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://localhost/agora")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8536", cfg.Hostname)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.Equal(t, "medium", cfg.Captcha.Difficulty)
	assert.Equal(t, "s3cret", cfg.Secrets.JWTSecret)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileThenFlags(t *testing.T) {
	t.Setenv("AGORA_JWT_SECRET", "s3cret")
	t.Setenv("AGORA_SMTP_FROM", "noreply@agora.test")

	path := writeFile(t, `
hostname: agora.test
tls: true
store:
  backend: memory
  timeout: 2s
captcha:
  difficulty: hard
email:
  enabled: true
`)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--captcha.difficulty=easy"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "agora.test", cfg.Hostname)
	assert.True(t, cfg.TLS)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 2*time.Second, cfg.Store.Timeout)
	assert.Equal(t, "easy", cfg.Captcha.Difficulty, "explicit flag wins over file")
	assert.Equal(t, "127.0.0.1:8536", cfg.HTTP.Addr, "unset flag keeps default")
	assert.Equal(t, "noreply@agora.test", cfg.Email.From)
	require.NoError(t, cfg.Validate())

	inst := cfg.Instance()
	assert.Equal(t, "https://agora.test/u/alice", inst.Endpoints().PersonActorID("alice"))
	assert.Equal(t, 2*time.Second, inst.StoreTimeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Default()
		c.Store.Backend = BackendMemory
		c.Secrets.JWTSecret = "s"
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"ok", func(*Config) {}, ""},
		{"empty hostname", func(c *Config) { c.Hostname = "" }, "hostname is required"},
		{"bad difficulty", func(c *Config) { c.Captcha.Difficulty = "impossible" }, "captcha.difficulty"},
		{"zero timeout", func(c *Config) { c.Store.Timeout = 0 }, "store.timeout"},
		{"missing secret", func(c *Config) { c.Secrets.JWTSecret = "" }, "AGORA_JWT_SECRET"},
		{"postgres without url", func(c *Config) { c.Store.Backend = BackendPostgres }, "DATABASE_URL"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "sqlite" }, "store.backend"},
		{"email without sender", func(c *Config) { c.Email.Enabled = true }, "email.from"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
