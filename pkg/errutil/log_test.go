// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package errutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/pkg/errutil"
)

func logged(t *testing.T, err error, args ...any) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	errutil.LogError(context.Background(), logger, "operation failed", err, args...)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "operation failed", entry["msg"])
	return entry
}

func TestLogError_ClassifiedError(t *testing.T) {
	err := errs.Dependency(errs.CodeCouldntUpdateUser, errs.ErrTimeout)

	entry := logged(t, err, "op", "BanUser")

	assert.Equal(t, "dependency", entry["kind"])
	assert.Equal(t, errs.CodeCouldntUpdateUser, entry["code"])
	assert.Equal(t, true, entry["retryable"])
	assert.Equal(t, "BanUser", entry["op"])
	assert.NotContains(t, entry, "compensation_failed")
}

func TestLogError_CompensationFlag(t *testing.T) {
	err := errs.WithCompensation(
		errs.Conflict(errs.CodeUserAlreadyExists, errors.New("dup")),
		errors.New("undo failed"),
	)

	entry := logged(t, err)

	assert.Equal(t, true, entry["compensation_failed"])
	assert.Equal(t, errs.CodeUserAlreadyExists, entry["code"])
}

func TestLogError_WithOopsError(t *testing.T) {
	err := oops.Code("NIL_REGISTRY").With("key", "value").Errorf("something failed")

	entry := logged(t, err)

	assert.Equal(t, "NIL_REGISTRY", entry["code"])
	assert.Equal(t, map[string]any{"key": "value"}, entry["context"])
}

func TestLogError_WithStandardError(t *testing.T) {
	entry := logged(t, errors.New("standard error"))

	assert.Contains(t, entry["error"], "standard error")
	assert.NotContains(t, entry, "code")
}
