// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package federation

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store"
)

// Publisher announces private message changes to the recipient's instance.
type Publisher interface {
	Create(ctx context.Context, pm *model.PrivateMessageView) error
	Update(ctx context.Context, pm *model.PrivateMessageView) error
	Delete(ctx context.Context, pm *model.PrivateMessageView) error
	UndoDelete(ctx context.Context, pm *model.PrivateMessageView) error
}

// note is the object carried by a private message activity.
type note struct {
	Type         string     `json:"type"`
	ID           string     `json:"id"`
	AttributedTo string     `json:"attributedTo"`
	To           string     `json:"to"`
	Content      string     `json:"content"`
	Published    time.Time  `json:"published"`
	Updated      *time.Time `json:"updated,omitempty"`
}

type activity struct {
	Type   string `json:"type"`
	Actor  string `json:"actor"`
	To     string `json:"to"`
	Object any    `json:"object"`
}

// OutboxPublisher writes activities to the outbox store. Delivery happens
// elsewhere.
type OutboxPublisher struct {
	outbox  store.OutboxStore
	backoff func() retry.Backoff
	now     func() time.Time
}

// NewOutboxPublisher returns a publisher retrying transient store failures up
// to three times.
func NewOutboxPublisher(outbox store.OutboxStore) *OutboxPublisher {
	return &OutboxPublisher{
		outbox: outbox,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(2, retry.NewExponential(50*time.Millisecond))
		},
		now: time.Now,
	}
}

// Create announces a new message.
func (p *OutboxPublisher) Create(ctx context.Context, pm *model.PrivateMessageView) error {
	return p.publish(ctx, model.ActivityCreate, pm)
}

// Update announces an edited message.
func (p *OutboxPublisher) Update(ctx context.Context, pm *model.PrivateMessageView) error {
	return p.publish(ctx, model.ActivityUpdate, pm)
}

// Delete announces a deleted message.
func (p *OutboxPublisher) Delete(ctx context.Context, pm *model.PrivateMessageView) error {
	return p.publish(ctx, model.ActivityDelete, pm)
}

// UndoDelete announces a restored message.
func (p *OutboxPublisher) UndoDelete(ctx context.Context, pm *model.PrivateMessageView) error {
	return p.publish(ctx, model.ActivityUndoDelete, pm)
}

func (p *OutboxPublisher) publish(ctx context.Context, kind model.ActivityKind, pm *model.PrivateMessageView) error {
	actor := pm.Creator.ActorID
	recipient := pm.Recipient.ActorID
	object := note{
		Type:         "ChatMessage",
		ID:           pm.PrivateMessage.ApID,
		AttributedTo: actor,
		To:           recipient,
		Content:      pm.PrivateMessage.Content,
		Published:    pm.PrivateMessage.Published,
		Updated:      pm.PrivateMessage.Updated,
	}

	var body activity
	switch kind {
	case model.ActivityUndoDelete:
		body = activity{
			Type:  "Undo",
			Actor: actor,
			To:    recipient,
			Object: activity{
				Type:   string(model.ActivityDelete),
				Actor:  actor,
				To:     recipient,
				Object: object,
			},
		}
	default:
		body = activity{Type: string(kind), Actor: actor, To: recipient, Object: object}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return oops.In("federation").Code("ENCODE_FAILED").With("kind", kind).Wrap(err)
	}

	now := p.now()
	a := &model.Activity{
		ID:        core.NewIDAt(now),
		Kind:      kind,
		ActorID:   actor,
		ObjectID:  pm.PrivateMessage.ApID,
		Inbox:     pm.Recipient.InboxURL,
		Payload:   payload,
		Published: now,
	}

	err = retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		if err := p.outbox.EnqueueActivity(ctx, a); err != nil {
			if errs.IsRetryable(err) {
				slog.WarnContext(ctx, "outbox enqueue failed, retrying",
					"kind", kind, "object_id", a.ObjectID, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return oops.In("federation").Code("ENQUEUE_FAILED").With("kind", kind).With("object_id", a.ObjectID).Wrap(err)
	}
	return nil
}
