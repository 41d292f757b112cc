// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store"
)

const permadeleted = "*Permanently Deleted*"

func sinceArg(sort core.SortType, now time.Time) *time.Time {
	if t, ok := sort.Since(now); ok {
		return &t
	}
	return nil
}

func postOrder(sort core.SortType) string {
	switch sort {
	case core.SortMostComments:
		return `(SELECT count(*) FROM comment z WHERE z.post_id = po.id) DESC, po.published DESC, po.id DESC`
	case core.SortNewComments:
		return `COALESCE((SELECT max(z.published) FROM comment z WHERE z.post_id = po.id), po.published) DESC, po.id DESC`
	default:
		return `po.published DESC, po.id DESC`
	}
}

// ListPosts returns visible posts matching q.
func (s *Store) ListPosts(ctx context.Context, q store.PostQuery) ([]model.PostView, error) {
	sql := `
		SELECT ` + cols("po", postColumns) + `, ` + cols("cr", personColumns) + `, ` +
		cols("co", communityColumns) + `,
			EXISTS (SELECT 1 FROM post_saved ps WHERE ps.post_id = po.id AND ps.person_id = $3)
		FROM post po
		JOIN person cr ON cr.id = po.creator_id
		JOIN community co ON co.id = po.community_id
		WHERE NOT po.deleted AND NOT po.removed
			AND ($1::text IS NULL OR po.creator_id = $1)
			AND ($2::text IS NULL OR po.community_id = $2)
			AND (NOT $4 OR EXISTS (SELECT 1 FROM post_saved ps WHERE ps.post_id = po.id AND ps.person_id = $3))
			AND ($5 OR (NOT po.nsfw AND NOT co.nsfw))
			AND ($6::timestamptz IS NULL OR po.published >= $6)
		ORDER BY ` + postOrder(q.Sort) + `
		LIMIT $7 OFFSET $8`

	args := []any{
		optString(q.CreatorID), optString(q.CommunityID), optString(q.ViewerID), q.SavedOnly,
		q.ShowNSFW, sinceArg(q.Sort, s.now()), q.Page.Limit, q.Page.Offset(),
	}

	var out []model.PostView
	err := s.query(ctx, "list posts", sql, args, func(rows pgx.Rows) error {
		var (
			pr    postRow
			cr    personRow
			co    communityRow
			saved bool
			p     ids
		)
		if err := rows.Scan(concat(pr.targets(), cr.targets(), co.targets(), []any{&saved})...); err != nil {
			return err
		}
		v := model.PostView{Post: pr.model(&p), Creator: cr.model(&p), Community: co.model(&p), Saved: saved}
		if p.err != nil {
			return p.err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListComments returns visible comments matching q. Replies exclude the
// recipient's own comments.
func (s *Store) ListComments(ctx context.Context, q store.CommentQuery) ([]model.CommentView, error) {
	sql := `
		SELECT ` + cols("c", commentColumns) + `, ` + cols("cr", personColumns) + `, ` +
		cols("po", postColumns) + `, ` + cols("co", communityColumns) + `,
			COALESCE(parent.creator_id, po.creator_id),
			EXISTS (SELECT 1 FROM comment_saved cs WHERE cs.comment_id = c.id AND cs.person_id = $3)
		FROM comment c
		JOIN person cr ON cr.id = c.creator_id
		JOIN post po ON po.id = c.post_id
		JOIN community co ON co.id = po.community_id
		LEFT JOIN comment parent ON parent.id = c.parent_id
		WHERE NOT c.deleted AND NOT c.removed
			AND ($1::text IS NULL OR c.creator_id = $1)
			AND ($2::text IS NULL OR (COALESCE(parent.creator_id, po.creator_id) = $2 AND c.creator_id <> $2))
			AND (NOT $4 OR EXISTS (SELECT 1 FROM comment_saved cs WHERE cs.comment_id = c.id AND cs.person_id = $3))
			AND (NOT $5 OR NOT c.read)
			AND ($6::timestamptz IS NULL OR c.published >= $6)
		ORDER BY c.published DESC, c.id DESC
		LIMIT $7 OFFSET $8`

	args := []any{
		optString(q.CreatorID), optString(q.RecipientID), optString(q.ViewerID), q.SavedOnly,
		q.UnreadOnly, sinceArg(q.Sort, s.now()), q.Page.Limit, q.Page.Offset(),
	}

	var out []model.CommentView
	err := s.query(ctx, "list comments", sql, args, func(rows pgx.Rows) error {
		var (
			cm        commentRow
			cr        personRow
			po        postRow
			co        communityRow
			recipient string
			saved     bool
			p         ids
		)
		targets := concat(cm.targets(), cr.targets(), po.targets(), co.targets(), []any{&recipient, &saved})
		if err := rows.Scan(targets...); err != nil {
			return err
		}
		v := model.CommentView{
			Comment:     cm.model(&p),
			Creator:     cr.model(&p),
			Post:        po.model(&p),
			Community:   co.model(&p),
			RecipientID: p.id(recipient),
			Saved:       saved,
		}
		if p.err != nil {
			return p.err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetCommentRead sets the read flag of one comment.
func (s *Store) SetCommentRead(ctx context.Context, commentID ulid.ULID, read bool) error {
	return s.execOne(ctx, "set comment read",
		`UPDATE comment SET read = $2 WHERE id = $1`, commentID.String(), read)
}

// SetPostsRemovedForCreator flags every post by creatorID.
func (s *Store) SetPostsRemovedForCreator(ctx context.Context, creatorID ulid.ULID, removed bool) error {
	_, err := s.exec(ctx, "remove posts for creator",
		`UPDATE post SET removed = $2, updated = now() WHERE creator_id = $1`, creatorID.String(), removed)
	return err
}

// SetCommentsRemovedForCreator flags every comment by creatorID.
func (s *Store) SetCommentsRemovedForCreator(ctx context.Context, creatorID ulid.ULID, removed bool) error {
	_, err := s.exec(ctx, "remove comments for creator",
		`UPDATE comment SET removed = $2, updated = now() WHERE creator_id = $1`, creatorID.String(), removed)
	return err
}

// PermadeletePostsForCreator overwrites and deletes every post by creatorID.
func (s *Store) PermadeletePostsForCreator(ctx context.Context, creatorID ulid.ULID) error {
	_, err := s.exec(ctx, "permadelete posts for creator", `
		UPDATE post SET name = $2, url = NULL, body = $2, deleted = TRUE, updated = now()
		WHERE creator_id = $1`, creatorID.String(), permadeleted)
	return err
}

// PermadeleteCommentsForCreator overwrites and deletes every comment by creatorID.
func (s *Store) PermadeleteCommentsForCreator(ctx context.Context, creatorID ulid.ULID) error {
	_, err := s.exec(ctx, "permadelete comments for creator", `
		UPDATE comment SET content = $2, deleted = TRUE, updated = now()
		WHERE creator_id = $1`, creatorID.String(), permadeleted)
	return err
}
