// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package memory

import (
	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/model"
)

// Content creation is outside the account core, so posts, comments, mentions
// and reports enter the store through these helpers.

// SeedSite sets the instance record.
func (s *Store) SeedSite(site model.Site) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.site = &site
}

// SeedPost stores p.
func (s *Store) SeedPost(p model.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[p.ID] = p
}

// SeedComment stores c.
func (s *Store) SeedComment(c model.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[c.ID] = c
}

// SeedMention stores m.
func (s *Store) SeedMention(m model.Mention) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mentions[m.ID] = m
}

// SavePost marks postID saved by personID.
func (s *Store) SavePost(postID, personID ulid.ULID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postSaved[pair{postID, personID}] = struct{}{}
}

// SaveComment marks commentID saved by personID.
func (s *Store) SaveComment(commentID, personID ulid.ULID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commentSaved[pair{commentID, personID}] = struct{}{}
}

// SeedCommentReport stores r.
func (s *Store) SeedCommentReport(r model.CommentReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commentReports = append(s.commentReports, r)
}

// SeedPostReport stores r.
func (s *Store) SeedPostReport(r model.PostReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postReports = append(s.postReports, r)
}
