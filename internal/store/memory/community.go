// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package memory

import (
	"context"
	"sort"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/model"
)

func (s *Store) CreateCommunity(ctx context.Context, c *model.Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "CreateCommunity"); err != nil {
		return err
	}
	for _, other := range s.communities {
		if other.Name == c.Name {
			return conflict("CreateCommunity", "community_name_key")
		}
	}
	s.communities[c.ID] = *c
	return nil
}

func (s *Store) GetCommunityByName(ctx context.Context, name string) (*model.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "GetCommunityByName"); err != nil {
		return nil, err
	}
	for _, c := range s.communities {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, notFound("GetCommunityByName")
}

func (s *Store) ListCommunityIDs(ctx context.Context) ([]ulid.ULID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "ListCommunityIDs"); err != nil {
		return nil, err
	}
	out := make([]ulid.ULID, 0, len(s.communities))
	for id := range s.communities {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out, nil
}

func (s *Store) join(ctx context.Context, op string, list *[]pair, communityID, personID ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, op); err != nil {
		return err
	}
	p := pair{communityID, personID}
	if containsPair(*list, p) {
		return conflict(op, "pkey")
	}
	*list = append(*list, p)
	return nil
}

func (s *Store) FollowCommunity(ctx context.Context, communityID, personID ulid.ULID) error {
	return s.join(ctx, "FollowCommunity", &s.followers, communityID, personID)
}

func (s *Store) JoinModerators(ctx context.Context, communityID, personID ulid.ULID) error {
	return s.join(ctx, "JoinModerators", &s.moderators, communityID, personID)
}

func (s *Store) IsModerator(ctx context.Context, communityID, personID ulid.ULID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "IsModerator"); err != nil {
		return false, err
	}
	return containsPair(s.moderators, pair{communityID, personID}), nil
}

func (s *Store) memberships(ctx context.Context, op string, list *[]pair, personID ulid.ULID) ([]model.CommunityMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, op); err != nil {
		return nil, err
	}
	var out []model.CommunityMembership
	for _, m := range *list {
		if m.b != personID {
			continue
		}
		c, ok := s.communities[m.a]
		if !ok {
			continue
		}
		out = append(out, model.CommunityMembership{Community: c, Person: s.persons[personID]})
	}
	return out, nil
}

func (s *Store) ListFollows(ctx context.Context, personID ulid.ULID) ([]model.CommunityMembership, error) {
	return s.memberships(ctx, "ListFollows", &s.followers, personID)
}

func (s *Store) ListModerated(ctx context.Context, personID ulid.ULID) ([]model.CommunityMembership, error) {
	return s.memberships(ctx, "ListModerated", &s.moderators, personID)
}

func (s *Store) SetCommunitiesRemovedForCreator(ctx context.Context, creatorID ulid.ULID, removed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "SetCommunitiesRemovedForCreator"); err != nil {
		return err
	}
	for id, c := range s.communities {
		if c.CreatorID == creatorID {
			c.Removed = removed
			s.communities[id] = c
		}
	}
	return nil
}
