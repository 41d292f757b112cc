// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package postgres

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/model"
)

// AppendModAdd records an admin promotion or demotion.
func (s *Store) AppendModAdd(ctx context.Context, e *model.ModAdd) error {
	_, err := s.exec(ctx, "append mod add", `
		INSERT INTO mod_add (id, mod_person_id, other_person_id, removed, when_)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID.String(), e.ModPersonID.String(), e.OtherPersonID.String(), e.Removed, e.When)
	return err
}

// AppendModBan records a ban or unban.
func (s *Store) AppendModBan(ctx context.Context, e *model.ModBan) error {
	_, err := s.exec(ctx, "append mod ban", `
		INSERT INTO mod_ban (id, mod_person_id, other_person_id, reason, banned, expires, when_)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID.String(), e.ModPersonID.String(), e.OtherPersonID.String(), e.Reason, e.Banned,
		e.Expires, e.When)
	return err
}

func idStrings(in []ulid.ULID) []string {
	out := make([]string, len(in))
	for i, id := range in {
		out[i] = id.String()
	}
	return out
}

// CountCommentReports counts unresolved comment reports in communityIDs.
func (s *Store) CountCommentReports(ctx context.Context, communityIDs []ulid.ULID) (int64, error) {
	var n int64
	err := s.queryRow(ctx, "count comment reports", `
		SELECT count(*) FROM comment_report r
		JOIN comment c ON c.id = r.comment_id
		JOIN post po ON po.id = c.post_id
		WHERE NOT r.resolved AND po.community_id = ANY($1)`,
		[]any{idStrings(communityIDs)}, &n)
	return n, err
}

// CountPostReports counts unresolved post reports in communityIDs.
func (s *Store) CountPostReports(ctx context.Context, communityIDs []ulid.ULID) (int64, error) {
	var n int64
	err := s.queryRow(ctx, "count post reports", `
		SELECT count(*) FROM post_report r
		JOIN post po ON po.id = r.post_id
		WHERE NOT r.resolved AND po.community_id = ANY($1)`,
		[]any{idStrings(communityIDs)}, &n)
	return n, err
}

// EnqueueActivity queues an outbound federation activity.
func (s *Store) EnqueueActivity(ctx context.Context, a *model.Activity) error {
	_, err := s.exec(ctx, "enqueue activity", `
		INSERT INTO federation_outbox (id, kind, actor_id, object_id, inbox, payload, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID.String(), string(a.Kind), a.ActorID, a.ObjectID, a.Inbox, []byte(a.Payload), a.Published)
	return err
}
