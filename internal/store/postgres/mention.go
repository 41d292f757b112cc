// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store"
)

var selectMentionView = `
	SELECT ` + cols("m", mentionColumns) + `, ` + cols("c", commentColumns) + `, ` +
	cols("cr", personColumns) + `, ` + cols("po", postColumns) + `, ` +
	cols("co", communityColumns) + `, ` + cols("rc", personColumns) + `
	FROM person_mention m
	JOIN comment c ON c.id = m.comment_id
	JOIN person cr ON cr.id = c.creator_id
	JOIN post po ON po.id = c.post_id
	JOIN community co ON co.id = po.community_id
	JOIN person rc ON rc.id = m.recipient_id`

func scanMentionView(row pgx.Row) (model.MentionView, error) {
	var (
		mr mentionRow
		cm commentRow
		cr personRow
		po postRow
		co communityRow
		rc personRow
		p  ids
	)
	if err := row.Scan(concat(mr.targets(), cm.targets(), cr.targets(), po.targets(), co.targets(), rc.targets())...); err != nil {
		return model.MentionView{}, err
	}
	v := model.MentionView{
		Mention:   mr.model(&p),
		Comment:   cm.model(&p),
		Creator:   cr.model(&p),
		Post:      po.model(&p),
		Community: co.model(&p),
		Recipient: rc.model(&p),
	}
	return v, p.err
}

// GetMention returns the mention with id.
func (s *Store) GetMention(ctx context.Context, id ulid.ULID) (*model.Mention, error) {
	var r mentionRow
	err := s.queryRow(ctx, "get mention",
		`SELECT `+cols("m", mentionColumns)+` FROM person_mention m WHERE m.id = $1`,
		[]any{id.String()}, r.targets()...)
	if err != nil {
		return nil, err
	}
	var p ids
	m := r.model(&p)
	if p.err != nil {
		return nil, p.err
	}
	return &m, nil
}

// GetMentionView returns the mention with its comment context.
func (s *Store) GetMentionView(ctx context.Context, id ulid.ULID) (*model.MentionView, error) {
	var view *model.MentionView
	err := s.query(ctx, "get mention view", selectMentionView+` WHERE m.id = $1`, []any{id.String()},
		func(rows pgx.Rows) error {
			v, err := scanMentionView(rows)
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
		return nil, classify(ctx, "get mention view", pgx.ErrNoRows)
	}
	return view, nil
}

// SetMentionRead sets the read flag of a mention.
func (s *Store) SetMentionRead(ctx context.Context, id ulid.ULID, read bool) error {
	return s.execOne(ctx, "set mention read",
		`UPDATE person_mention SET read = $2 WHERE id = $1`, id.String(), read)
}

// ListMentions returns mentions of q.RecipientID, newest first.
func (s *Store) ListMentions(ctx context.Context, q store.MentionQuery) ([]model.MentionView, error) {
	sql := selectMentionView + `
		WHERE m.recipient_id = $1 AND (NOT $2 OR NOT m.read) AND NOT c.deleted AND NOT c.removed
			AND ($3::timestamptz IS NULL OR c.published >= $3)
		ORDER BY c.published DESC, m.id DESC
		LIMIT $4 OFFSET $5`
	args := []any{q.RecipientID.String(), q.UnreadOnly, sinceArg(q.Sort, s.now()), q.Page.Limit, q.Page.Offset()}

	var out []model.MentionView
	err := s.query(ctx, "list mentions", sql, args, func(rows pgx.Rows) error {
		v, err := scanMentionView(rows)
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

// MarkAllMentionsRead marks every unread mention of recipientID read.
func (s *Store) MarkAllMentionsRead(ctx context.Context, recipientID ulid.ULID) (int64, error) {
	return s.exec(ctx, "mark all mentions read",
		`UPDATE person_mention SET read = TRUE WHERE recipient_id = $1 AND NOT read`, recipientID.String())
}
