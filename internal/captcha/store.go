// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package captcha stores and renders the human-verification challenges
// required by registration.
package captcha

import (
	"sync"
	"time"
)

// DefaultTTL is how long a challenge stays answerable.
const DefaultTTL = 10 * time.Minute

// Challenge is a pending captcha keyed by UUID.
type Challenge struct {
	UUID    string
	Answer  string
	Expires time.Time
}

// Store is a concurrency-safe map of pending challenges.
type Store struct {
	mu         sync.Mutex
	challenges map[string]Challenge
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{challenges: make(map[string]Challenge)}
}

// Put stores c, replacing any challenge with the same UUID.
func (s *Store) Put(c Challenge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[c.UUID] = c
}

// Check reports whether answer solves the challenge uuid at now. The match
// is case-sensitive. A solved or expired challenge is removed.
func (s *Store) Check(uuid, answer string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[uuid]
	if !ok {
		return false
	}
	if now.After(c.Expires) {
		delete(s.challenges, uuid)
		return false
	}
	if c.Answer != answer {
		return false
	}
	delete(s.challenges, uuid)
	return true
}

// Sweep removes challenges expired at now and returns how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, c := range s.challenges {
		if now.After(c.Expires) {
			delete(s.challenges, id)
			n++
		}
	}
	return n
}

// Len returns the number of pending challenges.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.challenges)
}
