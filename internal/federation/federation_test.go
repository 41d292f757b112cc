// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package federation

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store/memory"
)

func TestEndpoints(t *testing.T) {
	id := core.NewID()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"person https", NewEndpoints("agora.test", true).PersonActorID("alice"), "https://agora.test/u/alice"},
		{"person http", NewEndpoints("localhost:8536", false).PersonActorID("alice"), "http://localhost:8536/u/alice"},
		{"community", NewEndpoints("agora.test", true).CommunityActorID("main"), "https://agora.test/c/main"},
		{"private message", NewEndpoints("agora.test", true).PrivateMessageID(id), "https://agora.test/private_message/" + id.String()},
		{"shared inbox", NewEndpoints("agora.test", true).SharedInboxURL(), "https://agora.test/inbox"},
		{"inbox", InboxURL("https://agora.test/u/alice"), "https://agora.test/u/alice/inbox"},
		{"followers", FollowersURL("https://agora.test/c/main"), "https://agora.test/c/main/followers"},
		{"password change", NewEndpoints("agora.test", true).PasswordChangeURL("tok"), "https://agora.test/password_change/tok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestGenerateKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	block, _ := pem.Decode([]byte(kp.PrivateKey))
	require.NotNil(t, block)
	assert.Equal(t, "PRIVATE KEY", block.Type)
	_, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)

	block, _ = pem.Decode([]byte(kp.PublicKey))
	require.NotNil(t, block)
	assert.Equal(t, "PUBLIC KEY", block.Type)
	_, err = x509.ParsePKIXPublicKey(block.Bytes)
	require.NoError(t, err)
}

func testView() *model.PrivateMessageView {
	return &model.PrivateMessageView{
		PrivateMessage: model.PrivateMessage{
			ID:        core.NewID(),
			Content:   "hello",
			ApID:      "https://agora.test/private_message/1",
			Published: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		Creator:   model.Person{ActorID: "https://agora.test/u/alice"},
		Recipient: model.Person{ActorID: "https://remote.test/u/bob", InboxURL: "https://remote.test/u/bob/inbox"},
	}
}

func newTestPublisher(s *memory.Store) *OutboxPublisher {
	p := NewOutboxPublisher(s)
	p.backoff = func() retry.Backoff {
		return retry.WithMaxRetries(2, retry.NewConstant(time.Millisecond))
	}
	return p
}

func TestOutboxPublisher_Create(t *testing.T) {
	s := memory.New()
	p := newTestPublisher(s)

	require.NoError(t, p.Create(context.Background(), testView()))

	out := s.Outbox()
	require.Len(t, out, 1)
	assert.Equal(t, model.ActivityCreate, out[0].Kind)
	assert.Equal(t, "https://agora.test/u/alice", out[0].ActorID)
	assert.Equal(t, "https://remote.test/u/bob/inbox", out[0].Inbox)

	var body map[string]any
	require.NoError(t, json.Unmarshal(out[0].Payload, &body))
	assert.Equal(t, "Create", body["type"])
	obj := body["object"].(map[string]any)
	assert.Equal(t, "hello", obj["content"])
	assert.Equal(t, "ChatMessage", obj["type"])
}

func TestOutboxPublisher_UndoDeleteWrapsDelete(t *testing.T) {
	s := memory.New()
	p := newTestPublisher(s)

	require.NoError(t, p.UndoDelete(context.Background(), testView()))

	var body map[string]any
	require.NoError(t, json.Unmarshal(s.Outbox()[0].Payload, &body))
	assert.Equal(t, "Undo", body["type"])
	assert.Equal(t, "Delete", body["object"].(map[string]any)["type"])
}

func TestOutboxPublisher_RetriesTimeouts(t *testing.T) {
	s := memory.New()
	p := newTestPublisher(s)
	s.FailNext("EnqueueActivity", errs.ErrTimeout)

	require.NoError(t, p.Update(context.Background(), testView()))
	assert.Len(t, s.Outbox(), 1)
}

func TestOutboxPublisher_PermanentFailure(t *testing.T) {
	s := memory.New()
	p := newTestPublisher(s)
	boom := errors.New("disk full")
	s.FailNext("EnqueueActivity", boom)

	err := p.Delete(context.Background(), testView())
	require.ErrorIs(t, err, boom)
	assert.Empty(t, s.Outbox())
}
