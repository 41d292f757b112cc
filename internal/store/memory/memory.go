// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package memory implements store.Store in process memory. It backs the
// development server and the handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store"
)

type pair struct{ a, b ulid.ULID }

// Store is a mutex-guarded in-memory store.
type Store struct {
	mu sync.RWMutex

	persons        map[ulid.ULID]model.Person
	localUsers     map[ulid.ULID]model.LocalUser
	site           *model.Site
	communities    map[ulid.ULID]model.Community
	followers      []pair
	moderators     []pair
	posts          map[ulid.ULID]model.Post
	postSaved      map[pair]struct{}
	comments       map[ulid.ULID]model.Comment
	commentSaved   map[pair]struct{}
	mentions       map[ulid.ULID]model.Mention
	messages       map[ulid.ULID]model.PrivateMessage
	resets         map[ulid.ULID]model.PasswordResetRequest
	modAdds        []model.ModAdd
	modBans        []model.ModBan
	commentReports []model.CommentReport
	postReports    []model.PostReport
	outbox         []model.Activity

	failures map[string]error
	now      func() time.Time
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		persons:      make(map[ulid.ULID]model.Person),
		localUsers:   make(map[ulid.ULID]model.LocalUser),
		communities:  make(map[ulid.ULID]model.Community),
		posts:        make(map[ulid.ULID]model.Post),
		postSaved:    make(map[pair]struct{}),
		comments:     make(map[ulid.ULID]model.Comment),
		commentSaved: make(map[pair]struct{}),
		mentions:     make(map[ulid.ULID]model.Mention),
		messages:     make(map[ulid.ULID]model.PrivateMessage),
		resets:       make(map[ulid.ULID]model.PasswordResetRequest),
		failures:     make(map[string]error),
		now:          time.Now,
	}
}

// SetClock replaces the time source used for sort windows.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailNext makes the next call to the named method return err.
func (s *Store) FailNext(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

// fail consumes an injected failure. Callers hold mu.
func (s *Store) fail(method string) error {
	if err, ok := s.failures[method]; ok {
		delete(s.failures, method)
		return oops.In("store").With("operation", method).Wrap(err)
	}
	return nil
}

func notFound(op string) error {
	return oops.In("store").Code("STORE_NOT_FOUND").With("operation", op).Wrap(store.ErrNotFound)
}

func conflict(op, constraint string) error {
	return oops.In("store").Code("STORE_CONFLICT").With("operation", op).
		With("constraint", constraint).Wrap(store.ErrConflict)
}

func conflictEmail(op string) error {
	return oops.In("store").Code("STORE_CONFLICT").With("operation", op).
		With("constraint", "local_user_email_key").Wrap(store.ErrEmailTaken)
}

func ctxErr(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return oops.In("store").With("operation", op).Wrap(err)
	}
	return nil
}

// begin checks the context and injected failures for op.
func (s *Store) begin(ctx context.Context, op string) error {
	if err := ctxErr(ctx, op); err != nil {
		return err
	}
	return s.fail(op)
}

func (s *Store) counts(personID ulid.ULID) model.PersonCounts {
	var c model.PersonCounts
	for _, p := range s.posts {
		if p.CreatorID == personID && !p.Deleted {
			c.PostCount++
		}
	}
	for _, cm := range s.comments {
		if cm.CreatorID == personID && !cm.Deleted {
			c.CommentCount++
		}
	}
	return c
}

func containsPair(list []pair, p pair) bool {
	for _, x := range list {
		if x == p {
			return true
		}
	}
	return false
}

// paginate returns the page of already sorted items.
func paginate[T any](items []T, p core.Page) []T {
	start, end := p.Window(len(items))
	return items[start:end]
}

func newestFirst(a, b time.Time, ida, idb ulid.ULID) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return ida.Compare(idb) > 0
}

func sortByPublished[T any](items []T, key func(T) (time.Time, ulid.ULID)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		return newestFirst(ti, tj, idi, idj)
	})
}

func equalFold(a string, b *string) bool {
	return b != nil && strings.EqualFold(a, *b)
}
