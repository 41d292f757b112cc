// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package memory

import (
	"context"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store"
)

const permadeleted = "*Permanently Deleted*"

func (s *Store) inWindow(sortType core.SortType, published time.Time) bool {
	since, ok := sortType.Since(s.now())
	return !ok || !published.Before(since)
}

func (s *Store) postActivity(postID ulid.ULID) (int, time.Time) {
	var (
		n      int
		latest time.Time
	)
	for _, c := range s.comments {
		if c.PostID != postID {
			continue
		}
		n++
		if c.Published.After(latest) {
			latest = c.Published
		}
	}
	return n, latest
}

func (s *Store) ListPosts(ctx context.Context, q store.PostQuery) ([]model.PostView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "ListPosts"); err != nil {
		return nil, err
	}

	var out []model.PostView
	for _, p := range s.posts {
		co := s.communities[p.CommunityID]
		saved := q.ViewerID != nil && hasPair(s.postSaved, pair{p.ID, *q.ViewerID})
		switch {
		case p.Deleted || p.Removed:
		case q.CreatorID != nil && p.CreatorID != *q.CreatorID:
		case q.CommunityID != nil && p.CommunityID != *q.CommunityID:
		case q.SavedOnly && !saved:
		case !q.ShowNSFW && (p.NSFW || co.NSFW):
		case !s.inWindow(q.Sort, p.Published):
		default:
			out = append(out, model.PostView{Post: p, Creator: s.persons[p.CreatorID], Community: co, Saved: saved})
		}
	}

	switch q.Sort {
	case core.SortMostComments:
		sort.SliceStable(out, func(i, j int) bool {
			ni, _ := s.postActivity(out[i].Post.ID)
			nj, _ := s.postActivity(out[j].Post.ID)
			if ni != nj {
				return ni > nj
			}
			return newestFirst(out[i].Post.Published, out[j].Post.Published, out[i].Post.ID, out[j].Post.ID)
		})
	case core.SortNewComments:
		last := func(v model.PostView) time.Time {
			n, t := s.postActivity(v.Post.ID)
			if n == 0 {
				return v.Post.Published
			}
			return t
		}
		sort.SliceStable(out, func(i, j int) bool {
			return newestFirst(last(out[i]), last(out[j]), out[i].Post.ID, out[j].Post.ID)
		})
	default:
		sortByPublished(out, func(v model.PostView) (time.Time, ulid.ULID) { return v.Post.Published, v.Post.ID })
	}
	return paginate(out, q.Page), nil
}

// recipientOf returns the person a comment replies to.
func (s *Store) recipientOf(c model.Comment) ulid.ULID {
	if c.ParentID != nil {
		if parent, ok := s.comments[*c.ParentID]; ok {
			return parent.CreatorID
		}
	}
	return s.posts[c.PostID].CreatorID
}

func (s *Store) ListComments(ctx context.Context, q store.CommentQuery) ([]model.CommentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "ListComments"); err != nil {
		return nil, err
	}

	var out []model.CommentView
	for _, c := range s.comments {
		recipient := s.recipientOf(c)
		saved := q.ViewerID != nil && hasPair(s.commentSaved, pair{c.ID, *q.ViewerID})
		switch {
		case c.Deleted || c.Removed:
		case q.CreatorID != nil && c.CreatorID != *q.CreatorID:
		case q.RecipientID != nil && (recipient != *q.RecipientID || c.CreatorID == *q.RecipientID):
		case q.SavedOnly && !saved:
		case q.UnreadOnly && c.Read:
		case !s.inWindow(q.Sort, c.Published):
		default:
			post := s.posts[c.PostID]
			out = append(out, model.CommentView{
				Comment:     c,
				Creator:     s.persons[c.CreatorID],
				Post:        post,
				Community:   s.communities[post.CommunityID],
				RecipientID: recipient,
				Saved:       saved,
			})
		}
	}
	sortByPublished(out, func(v model.CommentView) (time.Time, ulid.ULID) { return v.Comment.Published, v.Comment.ID })
	return paginate(out, q.Page), nil
}

func (s *Store) SetCommentRead(ctx context.Context, commentID ulid.ULID, read bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "SetCommentRead"); err != nil {
		return err
	}
	c, ok := s.comments[commentID]
	if !ok {
		return notFound("SetCommentRead")
	}
	c.Read = read
	s.comments[commentID] = c
	return nil
}

func (s *Store) updatePosts(ctx context.Context, op string, creatorID ulid.ULID, fn func(*model.Post)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, op); err != nil {
		return err
	}
	for id, p := range s.posts {
		if p.CreatorID == creatorID {
			fn(&p)
			s.posts[id] = p
		}
	}
	return nil
}

func (s *Store) updateComments(ctx context.Context, op string, creatorID ulid.ULID, fn func(*model.Comment)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, op); err != nil {
		return err
	}
	for id, c := range s.comments {
		if c.CreatorID == creatorID {
			fn(&c)
			s.comments[id] = c
		}
	}
	return nil
}

func (s *Store) SetPostsRemovedForCreator(ctx context.Context, creatorID ulid.ULID, removed bool) error {
	return s.updatePosts(ctx, "SetPostsRemovedForCreator", creatorID, func(p *model.Post) { p.Removed = removed })
}

func (s *Store) SetCommentsRemovedForCreator(ctx context.Context, creatorID ulid.ULID, removed bool) error {
	return s.updateComments(ctx, "SetCommentsRemovedForCreator", creatorID, func(c *model.Comment) { c.Removed = removed })
}

func (s *Store) PermadeletePostsForCreator(ctx context.Context, creatorID ulid.ULID) error {
	return s.updatePosts(ctx, "PermadeletePostsForCreator", creatorID, func(p *model.Post) {
		body := permadeleted
		p.Name, p.URL, p.Body, p.Deleted = permadeleted, nil, &body, true
	})
}

func (s *Store) PermadeleteCommentsForCreator(ctx context.Context, creatorID ulid.ULID) error {
	return s.updateComments(ctx, "PermadeleteCommentsForCreator", creatorID, func(c *model.Comment) {
		c.Content, c.Deleted = permadeleted, true
	})
}

func hasPair(set map[pair]struct{}, p pair) bool {
	_, ok := set[p]
	return ok
}
