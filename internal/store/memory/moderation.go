// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package memory

import (
	"context"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/model"
)

func (s *Store) CreatePasswordReset(ctx context.Context, r *model.PasswordResetRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "CreatePasswordReset"); err != nil {
		return err
	}
	for _, other := range s.resets {
		if other.TokenHash == r.TokenHash {
			return conflict("CreatePasswordReset", "password_reset_request_token_hash_key")
		}
	}
	s.resets[r.ID] = *r
	return nil
}

func (s *Store) GetPasswordResetByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordResetRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "GetPasswordResetByTokenHash"); err != nil {
		return nil, err
	}
	for _, r := range s.resets {
		if r.TokenHash == tokenHash {
			return &r, nil
		}
	}
	return nil, notFound("GetPasswordResetByTokenHash")
}

func (s *Store) DeletePasswordResetsForUser(ctx context.Context, localUserID ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "DeletePasswordResetsForUser"); err != nil {
		return err
	}
	for id, r := range s.resets {
		if r.LocalUserID == localUserID {
			delete(s.resets, id)
		}
	}
	return nil
}

func (s *Store) DeleteExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "DeleteExpiredPasswordResets"); err != nil {
		return 0, err
	}
	var n int64
	for id, r := range s.resets {
		if r.IsExpired(now) {
			delete(s.resets, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) AppendModAdd(ctx context.Context, e *model.ModAdd) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "AppendModAdd"); err != nil {
		return err
	}
	s.modAdds = append(s.modAdds, *e)
	return nil
}

func (s *Store) AppendModBan(ctx context.Context, e *model.ModBan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "AppendModBan"); err != nil {
		return err
	}
	s.modBans = append(s.modBans, *e)
	return nil
}

func (s *Store) CountCommentReports(ctx context.Context, communityIDs []ulid.ULID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "CountCommentReports"); err != nil {
		return 0, err
	}
	var n int64
	for _, r := range s.commentReports {
		c := s.comments[r.CommentID]
		if !r.Resolved && slices.Contains(communityIDs, s.posts[c.PostID].CommunityID) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountPostReports(ctx context.Context, communityIDs []ulid.ULID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "CountPostReports"); err != nil {
		return 0, err
	}
	var n int64
	for _, r := range s.postReports {
		if !r.Resolved && slices.Contains(communityIDs, s.posts[r.PostID].CommunityID) {
			n++
		}
	}
	return n, nil
}

func (s *Store) EnqueueActivity(ctx context.Context, a *model.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "EnqueueActivity"); err != nil {
		return err
	}
	s.outbox = append(s.outbox, *a)
	return nil
}

// ModAdds returns the recorded admin changes in append order.
func (s *Store) ModAdds() []model.ModAdd {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.modAdds)
}

// ModBans returns the recorded bans in append order.
func (s *Store) ModBans() []model.ModBan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.modBans)
}

// Outbox returns the queued federation activities.
func (s *Store) Outbox() []model.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.outbox)
}
