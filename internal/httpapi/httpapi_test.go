// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agorafed/agora/internal/auth"
	"github.com/agorafed/agora/internal/bus"
	"github.com/agorafed/agora/internal/command"
	"github.com/agorafed/agora/internal/command/handlers"
	fixture "github.com/agorafed/agora/internal/command/handlers/testutil"
	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/observability"
)

type testAPI struct {
	fx      *fixture.Fixture
	bus     *bus.Bus
	metrics *observability.Metrics
	router  http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	fx := fixture.New(t)
	reg := command.NewRegistry()
	handlers.RegisterAll(reg)
	resolver := auth.NewResolver(fx.Tokens, fx.Store)
	b := bus.New(8)
	d, err := command.NewDispatcher(reg, resolver, fx.Services, b, fx.Instance)
	require.NoError(t, err)

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	router, err := NewRouter(Options{
		Dispatcher: d,
		Events:     b,
		Resolver:   resolver,
		Metrics:    metrics,
		RateLimit:  3,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Heartbeat:  20 * time.Millisecond,
	})
	require.NoError(t, err)
	return &testAPI{fx: fx, bus: b, metrics: metrics, router: router}
}

func (a *testAPI) post(t *testing.T, op, body string) (int, envelopeJSON) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/"+op, strings.NewReader(body))
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelopeJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec.Code, env
}

type envelopeJSON struct {
	Op    string          `json:"op"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func TestNewRouter_RequiresCollaborators(t *testing.T) {
	_, err := NewRouter(Options{})
	assert.Error(t, err)
}

func TestCommand_LoginReturnsToken(t *testing.T) {
	a := newTestAPI(t)
	a.fx.SeedUser(t, "alice")

	status, env := a.post(t, "Login", `{"username_or_email":"alice","password":"`+fixture.Password+`"}`)

	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "Login", env.Op)
	var resp struct{ JWT string }
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.NotEmpty(t, resp.JWT)
}

func TestCommand_ErrorResponses(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		body   string
		status int
		code   string
	}{
		{"wrong password", "Login", `{"username_or_email":"alice","password":"nope"}`, http.StatusForbidden, errs.CodePasswordIncorrect},
		{"unknown user", "Login", `{"username_or_email":"nobody","password":"nope"}`, http.StatusNotFound, errs.CodeCouldntFindUser},
		{"unknown op", "Frobnicate", `{}`, http.StatusNotFound, errs.CodeUnknownOp},
		{"malformed body", "GetReplies", `{"sort":`, http.StatusBadRequest, errs.CodeInvalidRequest},
		{"missing token", "GetReplies", `{"sort":"New"}`, http.StatusUnauthorized, errs.CodeNotLoggedIn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAPI(t)
			a.fx.SeedUser(t, "alice")

			status, env := a.post(t, tt.op, tt.body)

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, env.Error)
			assert.Equal(t, tt.op, env.Op)
			assert.Empty(t, env.Data)
		})
	}
}

func TestCommand_CredentialOpsAreRateLimited(t *testing.T) {
	a := newTestAPI(t)
	body := `{"username_or_email":"nobody","password":"x"}`

	for range 3 {
		status, _ := a.post(t, "Login", body)
		assert.Equal(t, http.StatusNotFound, status)
	}
	status, env := a.post(t, "Login", body)

	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, errs.CodeRateLimited, env.Error)
	assert.InDelta(t, 1, testutil.ToFloat64(a.metrics.RateLimited.WithLabelValues("Login")), 0)

	// Other ops keep their own budget.
	status, _ = a.post(t, "GetCaptcha", `{}`)
	assert.Equal(t, http.StatusOK, status)
}

func TestCommand_OtherOpsAreNotRateLimited(t *testing.T) {
	a := newTestAPI(t)

	for range 6 {
		status, env := a.post(t, "GetReplies", `{"sort":"New"}`)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, errs.CodeNotLoggedIn, env.Error)
	}
}

func TestCommand_RecordsRouteMetrics(t *testing.T) {
	a := newTestAPI(t)

	a.post(t, "GetCaptcha", `{}`)

	assert.InDelta(t, 1, testutil.ToFloat64(a.metrics.RequestsTotal.WithLabelValues("/api/v1/{op}", "200")), 0)
}

type stubDispatcher struct {
	got command.Request
	err error
}

func (s *stubDispatcher) Dispatch(_ context.Context, req command.Request) (any, error) {
	s.got = req
	return map[string]bool{"ok": true}, s.err
}

func TestCommand_ForwardsSessionHeader(t *testing.T) {
	fx := fixture.New(t)
	stub := &stubDispatcher{}
	router, err := NewRouter(Options{
		Dispatcher: stub,
		Events:     bus.New(1),
		Resolver:   auth.NewResolver(fx.Tokens, fx.Store),
		RateLimit:  10,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/GetCaptcha", nil)
	req.Header.Set(SessionHeader, "sess-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sess-1", stub.got.SessionID)
	assert.JSONEq(t, `{"op":"GetCaptcha","data":{"ok":true}}`, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not logged in", errs.Auth(errs.CodeNotLoggedIn), http.StatusUnauthorized},
		{"not an admin", errs.Auth(errs.CodeNotAnAdmin), http.StatusForbidden},
		{"validation", errs.Validation(errs.CodeInvalidUsername), http.StatusBadRequest},
		{"unknown op", errs.Validation(errs.CodeUnknownOp), http.StatusNotFound},
		{"conflict", errs.Conflict(errs.CodeUserAlreadyExists, nil), http.StatusConflict},
		{"not found", errs.NotFound(errs.CodeCouldntFindMention, nil), http.StatusNotFound},
		{"timeout", errs.Dependency(errs.CodeCouldntUpdateUser, errs.ErrTimeout), http.StatusServiceUnavailable},
		{"dependency", errs.Dependency(errs.CodeCouldntSendEmail, errors.New("smtp")), http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func openStream(t *testing.T, srv *httptest.Server, sessionID, token string) (*http.Response, *bufio.Reader) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/events", nil)
	require.NoError(t, err)
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp, bufio.NewReader(resp.Body)
}

// nextEvent reads frames until one named op arrives and returns its data line.
func nextEvent(t *testing.T, r *bufio.Reader, op string) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	var current string
	for time.Now().Before(deadline) {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			current = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: ") && current == op:
			return strings.TrimPrefix(line, "data: ")
		}
	}
	t.Fatalf("no %s event", op)
	return ""
}

func TestStream_DeliversRecipientEvents(t *testing.T) {
	a := newTestAPI(t)
	alice := a.fx.SeedUser(t, "alice")
	bob := a.fx.SeedUser(t, "bob")
	srv := httptest.NewServer(a.router)
	t.Cleanup(srv.Close)

	resp, events := openStream(t, srv, "alice-tab", a.fx.Token(alice))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "alice-tab", resp.Header.Get(SessionHeader))

	body := `{"auth":"` + a.fx.Token(bob) + `","content":"hi alice","recipient_id":"` + alice.PersonID().String() + `"}`
	status, env := a.post(t, "CreatePrivateMessage", body)
	require.Equal(t, http.StatusOK, status, env.Error)

	data := nextEvent(t, events, "CreatePrivateMessage")
	assert.Contains(t, data, "hi alice")
	assert.Contains(t, data, `"op":"CreatePrivateMessage"`)
}

func TestStream_MintsSessionAndSendsHeartbeats(t *testing.T) {
	a := newTestAPI(t)
	srv := httptest.NewServer(a.router)
	t.Cleanup(srv.Close)

	resp, events := openStream(t, srv, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(SessionHeader))

	line, err := events.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": ping\n", line)
	assert.Equal(t, 1, a.bus.Sessions())
}

func TestStream_RejectsBadToken(t *testing.T) {
	a := newTestAPI(t)
	srv := httptest.NewServer(a.router)
	t.Cleanup(srv.Close)

	resp, _ := openStream(t, srv, "s1", "not-a-token")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, a.bus.Sessions())
}

func TestStream_UnsubscribesOnDisconnect(t *testing.T) {
	a := newTestAPI(t)
	srv := httptest.NewServer(a.router)
	t.Cleanup(srv.Close)

	resp, _ := openStream(t, srv, "s1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, a.bus.Sessions())

	_ = resp.Body.Close()

	assert.Eventually(t, func() bool { return a.bus.Sessions() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStream_ReplacedStreamLeavesNewerSubscription(t *testing.T) {
	a := newTestAPI(t)
	srv := httptest.NewServer(a.router)
	t.Cleanup(srv.Close)

	oldResp, oldEvents := openStream(t, srv, "s1", "")
	require.Equal(t, http.StatusOK, oldResp.StatusCode)
	newResp, newEvents := openStream(t, srv, "s1", "")
	require.Equal(t, http.StatusOK, newResp.StatusCode)

	_, err := io.ReadAll(oldEvents)
	require.NoError(t, err, "replaced stream ends cleanly")
	_ = oldResp.Body.Close()

	assert.Never(t, func() bool { return a.bus.Sessions() != 1 }, 200*time.Millisecond, 10*time.Millisecond)

	a.bus.PublishGlobal(bus.Event{Op: "Ping", Payload: "still here"})
	assert.Equal(t, `"still here"`, nextEvent(t, newEvents, "Ping"))
}
