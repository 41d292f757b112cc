// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package config loads server configuration from a YAML file, command-line
// flags and environment secrets.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/agorafed/agora/internal/captcha"
	"github.com/agorafed/agora/internal/federation"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Email backends.
const (
	EmailSES = "ses"
	EmailLog = "log"
)

// Captcha controls registration challenges.
type Captcha struct {
	Enabled    bool   `koanf:"enabled"`
	Difficulty string `koanf:"difficulty"`
	Audio      bool   `koanf:"audio"`
}

// Email controls outbound mail.
type Email struct {
	Enabled bool   `koanf:"enabled"`
	Backend string `koanf:"backend"`
	From    string `koanf:"from"`
	Region  string `koanf:"region"`
}

// Instance is the settings subset visible to command handlers. It is passed
// by value; nothing reads configuration from package state.
type Instance struct {
	Hostname         string
	TLS              bool
	Captcha          Captcha
	Email            Email
	PasswordResetTTL time.Duration
	StoreTimeout     time.Duration
}

// Endpoints returns the URL minter for this instance.
func (i Instance) Endpoints() federation.Endpoints {
	return federation.NewEndpoints(i.Hostname, i.TLS)
}

// Secrets come from the environment only.
type Secrets struct {
	DatabaseURL string `env:"DATABASE_URL"`
	JWTSecret   string `env:"AGORA_JWT_SECRET"`
	EmailFrom   string `env:"AGORA_SMTP_FROM"`
}

// Config is the full server configuration.
type Config struct {
	Hostname string `koanf:"hostname"`
	TLS      bool   `koanf:"tls"`
	HTTP     struct {
		Addr string `koanf:"addr"`
		// RateLimit is the per-IP requests per minute for credential ops.
		RateLimit int `koanf:"rate_limit"`
	} `koanf:"http"`
	Metrics struct {
		Addr string `koanf:"addr"`
	} `koanf:"metrics"`
	Log struct {
		Format string `koanf:"format"`
		Level  string `koanf:"level"`
	} `koanf:"log"`
	Store struct {
		Backend  string        `koanf:"backend"`
		Timeout  time.Duration `koanf:"timeout"`
		MaxConns int32         `koanf:"max_conns"`
		// AutoMigrate applies pending schema migrations at startup.
		AutoMigrate bool `koanf:"auto_migrate"`
	} `koanf:"store"`
	Captcha          Captcha       `koanf:"captcha"`
	Email            Email         `koanf:"email"`
	PasswordResetTTL time.Duration `koanf:"password_reset_ttl"`
	Janitor          struct {
		Interval time.Duration `koanf:"interval"`
	} `koanf:"janitor"`

	Secrets Secrets `koanf:"-"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	var c Config
	c.Hostname = "localhost:8536"
	c.HTTP.Addr = "127.0.0.1:8536"
	c.HTTP.RateLimit = 10
	c.Metrics.Addr = "127.0.0.1:9536"
	c.Log.Format = "json"
	c.Log.Level = "info"
	c.Store.Backend = BackendPostgres
	c.Store.Timeout = 5 * time.Second
	c.Store.MaxConns = 16
	c.Captcha = Captcha{Enabled: true, Difficulty: string(captcha.Medium)}
	c.Email = Email{Backend: EmailLog, Region: "us-east-1"}
	c.PasswordResetTTL = time.Hour
	c.Janitor.Interval = time.Minute
	return c
}

// RegisterFlags defines the command-line overrides on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("hostname", d.Hostname, "public hostname of this instance")
	fs.Bool("tls", d.TLS, "instance is served over https")
	fs.String("http.addr", d.HTTP.Addr, "HTTP listen address")
	fs.Int("http.rate_limit", d.HTTP.RateLimit, "per-IP requests per minute for login, register and password reset")
	fs.String("metrics.addr", d.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")
	fs.String("log.format", d.Log.Format, "log format (json or text)")
	fs.String("log.level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.String("store.backend", d.Store.Backend, "store backend (postgres or memory)")
	fs.Duration("store.timeout", d.Store.Timeout, "per-call store timeout")
	fs.Int32("store.max_conns", d.Store.MaxConns, "maximum database connections")
	fs.Bool("store.auto_migrate", d.Store.AutoMigrate, "apply pending migrations at startup")
	fs.Bool("captcha.enabled", d.Captcha.Enabled, "require a captcha for registration")
	fs.String("captcha.difficulty", d.Captcha.Difficulty, "captcha difficulty (easy, medium, hard)")
	fs.Bool("captcha.audio", d.Captcha.Audio, "include an audio rendering of captchas")
	fs.Bool("email.enabled", d.Email.Enabled, "send email")
	fs.String("email.backend", d.Email.Backend, "email backend (ses or log)")
	fs.String("email.from", d.Email.From, "sender address")
	fs.String("email.region", d.Email.Region, "SES region")
	fs.Duration("password_reset_ttl", d.PasswordResetTTL, "password reset token lifetime")
	fs.Duration("janitor.interval", d.Janitor.Interval, "maintenance interval")
}

// Load layers defaults, the YAML file at path (if any), the flags set on fs
// (if any) and environment secrets. A .env file in the working directory is
// read when present.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if fs != nil {
		if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := env.Parse(&cfg.Secrets); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Secrets.EmailFrom != "" {
		cfg.Email.From = cfg.Secrets.EmailFrom
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var problems []error
	if c.Hostname == "" {
		problems = append(problems, errors.New("hostname is required"))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		problems = append(problems, fmt.Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format))
	}
	switch c.Store.Backend {
	case BackendPostgres:
		if c.Secrets.DatabaseURL == "" {
			problems = append(problems, errors.New("DATABASE_URL environment variable is required for the postgres store"))
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Errorf("store.backend must be %q or %q, got %q", BackendPostgres, BackendMemory, c.Store.Backend))
	}
	if c.HTTP.RateLimit <= 0 {
		problems = append(problems, errors.New("http.rate_limit must be positive"))
	}
	if c.Store.Timeout <= 0 {
		problems = append(problems, errors.New("store.timeout must be positive"))
	}
	if c.PasswordResetTTL <= 0 {
		problems = append(problems, errors.New("password_reset_ttl must be positive"))
	}
	if c.Janitor.Interval <= 0 {
		problems = append(problems, errors.New("janitor.interval must be positive"))
	}
	if _, ok := captcha.Difficulty(c.Captcha.Difficulty).Digits(); !ok {
		problems = append(problems, fmt.Errorf("captcha.difficulty must be easy, medium or hard, got %q", c.Captcha.Difficulty))
	}
	if c.Email.Enabled {
		if c.Email.Backend != EmailSES && c.Email.Backend != EmailLog {
			problems = append(problems, fmt.Errorf("email.backend must be %q or %q, got %q", EmailSES, EmailLog, c.Email.Backend))
		}
		if c.Email.From == "" {
			problems = append(problems, errors.New("email.from is required when email is enabled"))
		}
	}
	if c.Secrets.JWTSecret == "" {
		problems = append(problems, errors.New("AGORA_JWT_SECRET environment variable is required"))
	}
	return errors.Join(problems...)
}

// Instance returns the handler-visible settings.
func (c *Config) Instance() Instance {
	return Instance{
		Hostname:         c.Hostname,
		TLS:              c.TLS,
		Captcha:          c.Captcha,
		Email:            c.Email,
		PasswordResetTTL: c.PasswordResetTTL,
		StoreTimeout:     c.Store.Timeout,
	}
}
