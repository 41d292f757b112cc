// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/logging"
)

// stream subscribes the session to the bus and writes each event as an SSE
// frame. The session id comes from SessionHeader or the "session" query
// parameter and is minted when absent. A bearer token (Authorization header or
// "auth" query parameter) binds the session to a person so recipient events
// reach it.
func (h *handler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		sessionID = r.URL.Query().Get("session")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx := logging.WithSessionID(r.Context(), sessionID)

	var personID *ulid.ULID
	user, err := h.resolver.ResolveOptional(ctx, bearerToken(r))
	if err != nil {
		h.fail(w, r.WithContext(ctx), "", err)
		return
	}
	if user != nil {
		id := user.PersonID()
		personID = &id
	}

	sub := h.events.Subscribe(sessionID, personID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set(SessionHeader, sessionID)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	h.logger.DebugContext(ctx, "event stream opened", "authenticated", personID != nil)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.events.Release(sub)
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				h.events.Release(sub)
				return
			}
			flusher.Flush()
		case ev, ok := <-sub.C:
			if !ok {
				// Replaced by a newer stream for the same session.
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.WarnContext(ctx, "dropping unencodable event", "op", ev.Op, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Op, data); err != nil {
				h.events.Release(sub)
				return
			}
			flusher.Flush()
		}
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return r.URL.Query().Get("auth")
}
