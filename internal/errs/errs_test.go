// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		kind Kind
		code string
	}{
		{"auth", Auth(CodeNotLoggedIn), KindAuth, CodeNotLoggedIn},
		{"validation", Validation(CodePasswordsDontMatch), KindValidation, CodePasswordsDontMatch},
		{"validationf", Validationf(CodeInvalidRequest, "field %s", "x"), KindValidation, CodeInvalidRequest},
		{"conflict", Conflict(CodeUserAlreadyExists, cause), KindConflict, CodeUserAlreadyExists},
		{"not found", NotFound(CodeCouldntFindUser, cause), KindNotFound, CodeCouldntFindUser},
		{"dependency", Dependency(CodeCouldntUpdateUser, cause), KindDependency, CodeCouldntUpdateUser},
		{"internal", Internal(cause), KindDependency, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.code, CodeOf(tt.err))
			assert.True(t, Is(tt.err, tt.code))
			assert.False(t, IsRetryable(tt.err))
		})
	}
}

func TestCodeOf_OutermostWins(t *testing.T) {
	inner := Conflict(CodeUserAlreadyExists, nil)
	outer := Dependency(CodeCouldntUpdateUser, inner)

	assert.Equal(t, CodeCouldntUpdateUser, CodeOf(outer))
	assert.Equal(t, KindDependency, KindOf(outer))
}

func TestCodeOf_Unclassified(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, KindDependency, KindOf(errors.New("plain")))
	assert.Empty(t, CodeOf(nil))
}

func TestDependency_TimeoutIsRetryable(t *testing.T) {
	cause := fmt.Errorf("select person: %w", ErrTimeout)
	err := Dependency(CodeCouldntUpdateUser, cause)

	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, ErrTimeout)
	assert.True(t, IsRetryable(cause))
}

func TestWithCompensation(t *testing.T) {
	primary := Conflict(CodeEmailAlreadyExists, errors.New("duplicate"))
	undo := errors.New("delete person failed")

	err := WithCompensation(primary, undo)

	require.Error(t, err)
	assert.True(t, IsCompensationFailed(err))
	assert.Equal(t, CodeEmailAlreadyExists, CodeOf(err))
	assert.Equal(t, KindDependency, KindOf(err))
	assert.ErrorIs(t, err, undo)
	assert.False(t, IsCompensationFailed(primary))
}

func TestError_WrapsOops(t *testing.T) {
	err := Dependency(CodeCouldntUpdateUser, errors.New("boom"))

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, string(KindDependency), oopsErr.Domain())
	assert.Contains(t, err.Error(), CodeCouldntUpdateUser)
}
