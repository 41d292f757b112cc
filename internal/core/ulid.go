// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package core

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// NewID returns a new monotonic entity identifier.
func NewID() ulid.ULID {
	return NewIDAt(time.Now())
}

// NewIDAt returns a new identifier stamped with t.
func NewIDAt(t time.Time) ulid.ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy)
}

// ParseID parses an identifier from its canonical string form.
func ParseID(s string) (ulid.ULID, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return ulid.ULID{}, oops.Code("INVALID_ID").With("id", s).Wrap(err)
	}
	return id, nil
}

// IsZeroID reports whether id is the zero value.
func IsZeroID(id ulid.ULID) bool {
	return id.Compare(ulid.ULID{}) == 0
}
