// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package testutil builds handler fixtures over the in-memory store.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agorafed/agora/internal/auth"
	"github.com/agorafed/agora/internal/captcha"
	"github.com/agorafed/agora/internal/command"
	"github.com/agorafed/agora/internal/config"
	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/federation"
	"github.com/agorafed/agora/internal/mail"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/modlog"
	"github.com/agorafed/agora/internal/store/memory"
	"github.com/agorafed/agora/internal/validate"
)

// Password is the password of every seeded user.
const Password = "correct-horse"

// FastArgon2Params keep hashing cheap in tests.
var FastArgon2Params = auth.Argon2Params{Time: 1, Memory: 64, Threads: 1, SaltLen: 16, KeyLen: 32}

// Fixture is a fully wired handler environment.
type Fixture struct {
	Store    *memory.Store
	Tokens   *auth.TokenService
	Hasher   *auth.Argon2idHasher
	Captchas *captcha.Store
	Mail     *RecordingSender
	Services *command.Services
	Instance config.Instance
	Now      time.Time
}

// New returns a fixture with captcha disabled and email enabled.
func New(t *testing.T) *Fixture {
	t.Helper()

	st := memory.New()
	tokens, err := auth.NewTokenService([]byte("test-secret-test-secret-test-secret"), "agora.test")
	require.NoError(t, err)
	hasher := auth.NewArgon2idHasherWithParams(FastArgon2Params)
	challenges := captcha.NewStore()
	sender := &RecordingSender{}

	svc, err := command.NewServices(command.ServicesConfig{
		Store:      st,
		Hasher:     hasher,
		Tokens:     tokens,
		Captchas:   challenges,
		Captcha:    captcha.NewGenerator(challenges, captcha.DefaultTTL),
		ModLog:     modlog.New(st, nil),
		Federation: federation.NewOutboxPublisher(st),
		Slurs:      validate.DefaultSlurFilter(),
		Mail:       sender,
	})
	require.NoError(t, err)

	return &Fixture{
		Store:    st,
		Tokens:   tokens,
		Hasher:   hasher,
		Captchas: challenges,
		Mail:     sender,
		Services: svc,
		Instance: config.Instance{
			Hostname:         "agora.test",
			TLS:              true,
			Captcha:          config.Captcha{Enabled: false, Difficulty: string(captcha.Medium)},
			Email:            config.Email{Enabled: true, Backend: config.EmailLog, From: "noreply@agora.test"},
			PasswordResetTTL: time.Hour,
			StoreTimeout:     time.Second,
		},
		Now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Call returns a Call for user, which may be nil.
func (f *Fixture) Call(user *model.LocalUserView) *command.Call {
	call := command.NewTestCall(user, f.Instance, f.Services, f.Now)
	if user != nil {
		call.Token = f.Token(user)
	}
	return call
}

// Token mints a token for user, panicking on failure.
func (f *Fixture) Token(user *model.LocalUserView) string {
	token, err := f.Tokens.Issue(user.PersonID())
	if err != nil {
		panic(err)
	}
	return token
}

// UserOption customises a seeded user.
type UserOption func(*model.Person, *model.LocalUser)

// AsAdmin seeds an admin.
func AsAdmin() UserOption {
	return func(_ *model.Person, lu *model.LocalUser) { lu.Admin = true }
}

// WithEmail sets the user's email.
func WithEmail(email string) UserOption {
	return func(_ *model.Person, lu *model.LocalUser) { lu.Email = &email }
}

// WithEmailNotifications opts the user in to email notifications.
func WithEmailNotifications() UserOption {
	return func(_ *model.Person, lu *model.LocalUser) { lu.SendNotificationsToEmail = true }
}

// SeedUser stores a local person named name with Password and returns its view.
func (f *Fixture) SeedUser(t *testing.T, name string, opts ...UserOption) *model.LocalUserView {
	t.Helper()
	ctx := context.Background()

	endpoints := f.Instance.Endpoints()
	actorID := endpoints.PersonActorID(name)
	person := model.Person{
		ID:        core.NewID(),
		Name:      name,
		ActorID:   actorID,
		InboxURL:  federation.InboxURL(actorID),
		Local:     true,
		Published: f.Now,
	}
	hash, err := f.Hasher.Hash(Password)
	require.NoError(t, err)
	lu := model.NewLocalUser(person.ID)
	lu.PasswordHash = hash
	for _, opt := range opts {
		opt(&person, &lu)
	}

	require.NoError(t, f.Store.CreatePerson(ctx, &person))
	require.NoError(t, f.Store.CreateLocalUser(ctx, &lu))

	view, err := f.Store.GetLocalUserView(ctx, person.ID)
	require.NoError(t, err)
	return view
}

// SeedRemotePerson stores a person hosted on another instance.
func (f *Fixture) SeedRemotePerson(t *testing.T, name string) *model.Person {
	t.Helper()
	actorID := "https://remote.test/u/" + name
	person := &model.Person{
		ID:        core.NewID(),
		Name:      name,
		ActorID:   actorID,
		InboxURL:  federation.InboxURL(actorID),
		Published: f.Now,
	}
	require.NoError(t, f.Store.CreatePerson(context.Background(), person))
	return person
}

// Reload re-reads user from the store.
func (f *Fixture) Reload(t *testing.T, user *model.LocalUserView) *model.LocalUserView {
	t.Helper()
	view, err := f.Store.GetLocalUserView(context.Background(), user.PersonID())
	require.NoError(t, err)
	return view
}

// RecordingSender captures outbound mail. Set Err to make sends fail.
type RecordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
	Err  error
}

var _ mail.Sender = (*RecordingSender)(nil)

// Send records msg or returns Err.
func (r *RecordingSender) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (r *RecordingSender) Sent() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.Message(nil), r.sent...)
}
