// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package command

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/agorafed/agora/internal/captcha"
	"github.com/agorafed/agora/internal/federation"
	"github.com/agorafed/agora/internal/mail"
	"github.com/agorafed/agora/internal/modlog"
	"github.com/agorafed/agora/internal/store"
	"github.com/agorafed/agora/internal/validate"
)

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
	NeedsUpgrade(hash string) bool
}

// TokenIssuer mints identity tokens.
type TokenIssuer interface {
	Issue(personID ulid.ULID) (string, error)
}

// Services are the collaborators available to handlers.
// Handlers MUST access them only through Call.Services.
type Services struct {
	Store      store.Store
	Hasher     PasswordHasher
	Tokens     TokenIssuer
	Captchas   *captcha.Store
	Captcha    *captcha.Generator
	ModLog     *modlog.Log
	Federation federation.Publisher
	Slurs      *validate.SlurFilter
	// Mail is nil when email is disabled.
	Mail mail.Sender
}

// ServicesConfig lists the collaborators for NewServices.
type ServicesConfig Services

// NewServices validates cfg and returns Services. Only Mail may be nil.
func NewServices(cfg ServicesConfig) (*Services, error) {
	switch {
	case cfg.Store == nil:
		return nil, oops.Code("NIL_SERVICE").Errorf("store is required")
	case cfg.Hasher == nil:
		return nil, oops.Code("NIL_SERVICE").Errorf("password hasher is required")
	case cfg.Tokens == nil:
		return nil, oops.Code("NIL_SERVICE").Errorf("token issuer is required")
	case cfg.Captchas == nil || cfg.Captcha == nil:
		return nil, oops.Code("NIL_SERVICE").Errorf("captcha store and generator are required")
	case cfg.ModLog == nil:
		return nil, oops.Code("NIL_SERVICE").Errorf("moderation log is required")
	case cfg.Federation == nil:
		return nil, oops.Code("NIL_SERVICE").Errorf("federation publisher is required")
	case cfg.Slurs == nil:
		return nil, oops.Code("NIL_SERVICE").Errorf("slur filter is required")
	}
	svc := Services(cfg)
	return &svc, nil
}
