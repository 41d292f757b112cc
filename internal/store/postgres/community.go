// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/model"
)

// CreateCommunity inserts c.
func (s *Store) CreateCommunity(ctx context.Context, c *model.Community) error {
	_, err := s.exec(ctx, "create community", `
		INSERT INTO community (`+strings.Join(communityColumns, ", ")+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		c.ID.String(), c.Name, c.Title, c.Description, c.CreatorID.String(), c.NSFW, c.Removed,
		c.Deleted, c.ActorID, c.FollowersURL, c.InboxURL, c.SharedInboxURL, c.PublicKey,
		c.PrivateKey, c.Local, c.Published,
	)
	return err
}

// GetCommunityByName returns the community named name.
func (s *Store) GetCommunityByName(ctx context.Context, name string) (*model.Community, error) {
	var r communityRow
	err := s.queryRow(ctx, "get community by name",
		`SELECT `+cols("c", communityColumns)+` FROM community c WHERE c.name = $1`,
		[]any{name}, r.targets()...)
	if err != nil {
		return nil, err
	}
	var p ids
	c := r.model(&p)
	if p.err != nil {
		return nil, p.err
	}
	return &c, nil
}

// ListCommunityIDs returns the id of every community.
func (s *Store) ListCommunityIDs(ctx context.Context) ([]ulid.ULID, error) {
	var out []ulid.ULID
	err := s.query(ctx, "list community ids", `SELECT id FROM community ORDER BY id`, nil,
		func(rows pgx.Rows) error {
			var raw string
			if err := rows.Scan(&raw); err != nil {
				return err
			}
			var p ids
			id := p.id(raw)
			if p.err != nil {
				return p.err
			}
			out = append(out, id)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FollowCommunity subscribes personID to communityID.
func (s *Store) FollowCommunity(ctx context.Context, communityID, personID ulid.ULID) error {
	_, err := s.exec(ctx, "follow community",
		`INSERT INTO community_follower (community_id, person_id) VALUES ($1, $2)`,
		communityID.String(), personID.String())
	return err
}

// JoinModerators adds personID to the moderators of communityID.
func (s *Store) JoinModerators(ctx context.Context, communityID, personID ulid.ULID) error {
	_, err := s.exec(ctx, "join moderators",
		`INSERT INTO community_moderator (community_id, person_id) VALUES ($1, $2)`,
		communityID.String(), personID.String())
	return err
}

// IsModerator reports whether personID moderates communityID.
func (s *Store) IsModerator(ctx context.Context, communityID, personID ulid.ULID) (bool, error) {
	var ok bool
	err := s.queryRow(ctx, "is moderator",
		`SELECT EXISTS (SELECT 1 FROM community_moderator WHERE community_id = $1 AND person_id = $2)`,
		[]any{communityID.String(), personID.String()}, &ok)
	return ok, err
}

func (s *Store) listMemberships(ctx context.Context, op, table string, personID ulid.ULID) ([]model.CommunityMembership, error) {
	var out []model.CommunityMembership
	err := s.query(ctx, op, `
		SELECT `+cols("c", communityColumns)+`, `+cols("p", personColumns)+`
		FROM `+table+` m
		JOIN community c ON c.id = m.community_id
		JOIN person p ON p.id = m.person_id
		WHERE m.person_id = $1
		ORDER BY m.published`, []any{personID.String()},
		func(rows pgx.Rows) error {
			var (
				cr communityRow
				pr personRow
				p  ids
			)
			if err := rows.Scan(concat(cr.targets(), pr.targets())...); err != nil {
				return err
			}
			m := model.CommunityMembership{Community: cr.model(&p), Person: pr.model(&p)}
			if p.err != nil {
				return p.err
			}
			out = append(out, m)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListFollows returns the communities personID follows.
func (s *Store) ListFollows(ctx context.Context, personID ulid.ULID) ([]model.CommunityMembership, error) {
	return s.listMemberships(ctx, "list follows", "community_follower", personID)
}

// ListModerated returns the communities personID moderates.
func (s *Store) ListModerated(ctx context.Context, personID ulid.ULID) ([]model.CommunityMembership, error) {
	return s.listMemberships(ctx, "list moderated", "community_moderator", personID)
}

// SetCommunitiesRemovedForCreator flags every community created by creatorID.
func (s *Store) SetCommunitiesRemovedForCreator(ctx context.Context, creatorID ulid.ULID, removed bool) error {
	_, err := s.exec(ctx, "remove communities for creator",
		`UPDATE community SET removed = $2 WHERE creator_id = $1`, creatorID.String(), removed)
	return err
}
