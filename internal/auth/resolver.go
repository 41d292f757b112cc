// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package auth

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store"
)

// TokenVerifier validates identity tokens.
type TokenVerifier interface {
	Verify(token string) (ulid.ULID, error)
}

// Resolver turns bearer tokens into authenticated local users.
type Resolver struct {
	tokens TokenVerifier
	users  store.LocalUserStore
}

// NewResolver creates a Resolver.
func NewResolver(tokens TokenVerifier, users store.LocalUserStore) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve returns the local user bound to token. Unverifiable tokens and
// deleted or banned accounts fail with not_logged_in.
func (r *Resolver) Resolve(ctx context.Context, token string) (*model.LocalUserView, error) {
	user, err := r.lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if user.Person.Banned {
		return nil, errs.Auth(errs.CodeNotLoggedIn)
	}
	return user, nil
}

// ResolveOptional returns nil for an empty token. A non-empty token must
// still verify.
func (r *Resolver) ResolveOptional(ctx context.Context, token string) (*model.LocalUserView, error) {
	if token == "" {
		return nil, nil
	}
	return r.lookup(ctx, token)
}

func (r *Resolver) lookup(ctx context.Context, token string) (*model.LocalUserView, error) {
	if token == "" {
		return nil, errs.Auth(errs.CodeNotLoggedIn)
	}
	personID, err := r.tokens.Verify(token)
	if err != nil {
		return nil, errs.Auth(errs.CodeNotLoggedIn)
	}
	user, err := r.users.GetLocalUserView(ctx, personID)
	switch {
	case store.IsNotFound(err):
		return nil, errs.Auth(errs.CodeNotLoggedIn)
	case err != nil:
		return nil, errs.Internal(err)
	case user.Person.Deleted:
		return nil, errs.Auth(errs.CodeNotLoggedIn)
	}
	return user, nil
}

// RequireAdmin fails with not_an_admin unless user has the admin flag.
func RequireAdmin(user *model.LocalUserView) error {
	if user == nil || !user.IsAdmin() {
		return errs.Auth(errs.CodeNotAnAdmin)
	}
	return nil
}
