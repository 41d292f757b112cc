// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package errutil logs and asserts on classified errors.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/agorafed/agora/internal/errs"
)

// LogError logs err at error level. Classified errors add their kind and code,
// and the retry and compensation flags when set. Oops context is logged as a
// group.
func LogError(ctx context.Context, logger *slog.Logger, msg string, err error, args ...any) {
	attrs := append([]any{"error", err.Error()}, args...)
	if e, ok := errs.As(err); ok {
		attrs = append(attrs, "kind", string(e.Kind), "code", e.Code)
		if e.Retryable {
			attrs = append(attrs, "retryable", true)
		}
		if e.CompensationFailed {
			attrs = append(attrs, "compensation_failed", true)
		}
	} else if oopsErr, ok := oops.AsOops(err); ok {
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		if oc := oopsErr.Context(); len(oc) > 0 {
			attrs = append(attrs, "context", oc)
		}
	}
	logger.ErrorContext(ctx, msg, attrs...)
}
