// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store"
)

var selectPrivateMessageView = `
	SELECT ` + cols("pm", privateMessageColumns) + `, ` + cols("cr", personColumns) + `, ` +
	cols("rc", personColumns) + `
	FROM private_message pm
	JOIN person cr ON cr.id = pm.creator_id
	JOIN person rc ON rc.id = pm.recipient_id`

func scanPrivateMessageView(row pgx.Row) (model.PrivateMessageView, error) {
	var (
		pr privateMessageRow
		cr personRow
		rc personRow
		p  ids
	)
	if err := row.Scan(concat(pr.targets(), cr.targets(), rc.targets())...); err != nil {
		return model.PrivateMessageView{}, err
	}
	v := model.PrivateMessageView{PrivateMessage: pr.model(&p), Creator: cr.model(&p), Recipient: rc.model(&p)}
	return v, p.err
}

// CreatePrivateMessage inserts pm.
func (s *Store) CreatePrivateMessage(ctx context.Context, pm *model.PrivateMessage) error {
	_, err := s.exec(ctx, "create private message", `
		INSERT INTO private_message (`+strings.Join(privateMessageColumns, ", ")+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		pm.ID.String(), pm.CreatorID.String(), pm.RecipientID.String(), pm.Content, pm.Deleted,
		pm.Read, pm.ApID, pm.Local, pm.Published, pm.Updated,
	)
	return err
}

// GetPrivateMessage returns the message with id.
func (s *Store) GetPrivateMessage(ctx context.Context, id ulid.ULID) (*model.PrivateMessage, error) {
	var r privateMessageRow
	err := s.queryRow(ctx, "get private message",
		`SELECT `+cols("pm", privateMessageColumns)+` FROM private_message pm WHERE pm.id = $1`,
		[]any{id.String()}, r.targets()...)
	if err != nil {
		return nil, err
	}
	var p ids
	pm := r.model(&p)
	if p.err != nil {
		return nil, p.err
	}
	return &pm, nil
}

// GetPrivateMessageView returns the message with both parties.
func (s *Store) GetPrivateMessageView(ctx context.Context, id ulid.ULID) (*model.PrivateMessageView, error) {
	var view *model.PrivateMessageView
	err := s.query(ctx, "get private message view", selectPrivateMessageView+` WHERE pm.id = $1`,
		[]any{id.String()}, func(rows pgx.Rows) error {
			v, err := scanPrivateMessageView(rows)
			if err != nil {
				return err
			}
			view = &v
			return nil
		})
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, classify(ctx, "get private message view", pgx.ErrNoRows)
	}
	return view, nil
}

// UpdatePrivateMessageContent replaces the content of a message.
func (s *Store) UpdatePrivateMessageContent(ctx context.Context, id ulid.ULID, content string) error {
	return s.execOne(ctx, "update private message content",
		`UPDATE private_message SET content = $2, updated = now() WHERE id = $1`, id.String(), content)
}

// SetPrivateMessageDeleted sets the deleted flag of a message.
func (s *Store) SetPrivateMessageDeleted(ctx context.Context, id ulid.ULID, deleted bool) error {
	return s.execOne(ctx, "set private message deleted",
		`UPDATE private_message SET deleted = $2, updated = now() WHERE id = $1`, id.String(), deleted)
}

// SetPrivateMessageRead sets the read flag of a message.
func (s *Store) SetPrivateMessageRead(ctx context.Context, id ulid.ULID, read bool) error {
	return s.execOne(ctx, "set private message read",
		`UPDATE private_message SET read = $2 WHERE id = $1`, id.String(), read)
}

// SetPrivateMessageApID records the federation id of a message.
func (s *Store) SetPrivateMessageApID(ctx context.Context, id ulid.ULID, apID string) error {
	return s.execOne(ctx, "set private message ap id",
		`UPDATE private_message SET ap_id = $2 WHERE id = $1`, id.String(), apID)
}

// ListPrivateMessages returns messages sent or received by q.PersonID. With
// UnreadOnly only unread received messages are returned.
func (s *Store) ListPrivateMessages(ctx context.Context, q store.PrivateMessageQuery) ([]model.PrivateMessageView, error) {
	sql := selectPrivateMessageView + `
		WHERE NOT pm.deleted
			AND (CASE WHEN $2 THEN pm.recipient_id = $1 AND NOT pm.read
			          ELSE pm.recipient_id = $1 OR pm.creator_id = $1 END)
		ORDER BY pm.published DESC, pm.id DESC
		LIMIT $3 OFFSET $4`
	args := []any{q.PersonID.String(), q.UnreadOnly, q.Page.Limit, q.Page.Offset()}

	var out []model.PrivateMessageView
	err := s.query(ctx, "list private messages", sql, args, func(rows pgx.Rows) error {
		v, err := scanPrivateMessageView(rows)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkAllPrivateMessagesRead marks every unread message to recipientID read.
func (s *Store) MarkAllPrivateMessagesRead(ctx context.Context, recipientID ulid.ULID) (int64, error) {
	return s.exec(ctx, "mark all private messages read",
		`UPDATE private_message SET read = TRUE WHERE recipient_id = $1 AND NOT read`, recipientID.String())
}
