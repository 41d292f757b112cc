// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrEmailTaken = fmt.Errorf("email already registered: %w", ErrConflict)
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err wraps ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
