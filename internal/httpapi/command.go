// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agorafed/agora/internal/api"
	"github.com/agorafed/agora/internal/command"
	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/logging"
	"github.com/agorafed/agora/pkg/errutil"
)

// envelope is the body of every command response.
type envelope struct {
	Op    string `json:"op"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func (h *handler) command(w http.ResponseWriter, r *http.Request) {
	op := api.Op(chi.URLParam(r, "op"))
	sessionID := r.Header.Get(SessionHeader)
	ctx := logging.WithSessionID(r.Context(), sessionID)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.fail(w, r.WithContext(ctx), op, errs.Validationf(errs.CodeInvalidRequest, "read body: %v", err))
		return
	}
	cmd, err := api.Decode(op, body)
	if err != nil {
		h.fail(w, r.WithContext(ctx), op, err)
		return
	}

	resp, err := h.dispatcher.Dispatch(ctx, command.Request{Command: cmd, SessionID: sessionID})
	if err != nil {
		h.fail(w, r.WithContext(ctx), op, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Op: string(op), Data: resp})
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, op api.Op, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		errutil.LogError(r.Context(), h.logger, "command request failed", err, "op", op, "status", status)
	}
	writeJSON(w, status, envelope{Op: string(op), Error: errs.CodeOf(err)})
}

// StatusFor maps a command error to an HTTP status.
func StatusFor(err error) int {
	if errs.Is(err, errs.CodeUnknownOp) {
		return http.StatusNotFound
	}
	switch errs.KindOf(err) {
	case errs.KindAuth:
		if errs.Is(err, errs.CodeNotLoggedIn) {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindNotFound:
		return http.StatusNotFound
	default:
		if errs.IsRetryable(err) {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // client may disconnect
	json.NewEncoder(w).Encode(v)
}
