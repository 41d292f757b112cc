// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package handlers

import (
	"errors"

	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/store"
)

// storeErr classifies a failed store call under code.
func storeErr(code string, err error) error {
	if store.IsNotFound(err) {
		return errs.NotFound(code, err)
	}
	return errs.Dependency(code, err)
}

// userConflictErr maps a local user or person write failure.
func userConflictErr(err error) error {
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		return errs.Conflict(errs.CodeEmailAlreadyExists, err)
	case store.IsConflict(err):
		return errs.Conflict(errs.CodeUserAlreadyExists, err)
	default:
		return errs.Dependency(errs.CodeCouldntUpdateUser, err)
	}
}

// readErr classifies a failed read where absence has its own code.
func readErr(notFoundCode string, err error) error {
	if store.IsNotFound(err) {
		return errs.NotFound(notFoundCode, err)
	}
	return errs.Internal(err)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
