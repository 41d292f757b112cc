// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package memory

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store"
)

func (s *Store) GetMention(ctx context.Context, id ulid.ULID) (*model.Mention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "GetMention"); err != nil {
		return nil, err
	}
	m, ok := s.mentions[id]
	if !ok {
		return nil, notFound("GetMention")
	}
	return &m, nil
}

func (s *Store) mentionView(m model.Mention) model.MentionView {
	c := s.comments[m.CommentID]
	post := s.posts[c.PostID]
	return model.MentionView{
		Mention:   m,
		Comment:   c,
		Creator:   s.persons[c.CreatorID],
		Post:      post,
		Community: s.communities[post.CommunityID],
		Recipient: s.persons[m.RecipientID],
	}
}

func (s *Store) GetMentionView(ctx context.Context, id ulid.ULID) (*model.MentionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "GetMentionView"); err != nil {
		return nil, err
	}
	m, ok := s.mentions[id]
	if !ok {
		return nil, notFound("GetMentionView")
	}
	v := s.mentionView(m)
	return &v, nil
}

func (s *Store) SetMentionRead(ctx context.Context, id ulid.ULID, read bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "SetMentionRead"); err != nil {
		return err
	}
	m, ok := s.mentions[id]
	if !ok {
		return notFound("SetMentionRead")
	}
	m.Read = read
	s.mentions[id] = m
	return nil
}

func (s *Store) ListMentions(ctx context.Context, q store.MentionQuery) ([]model.MentionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "ListMentions"); err != nil {
		return nil, err
	}
	var out []model.MentionView
	for _, m := range s.mentions {
		v := s.mentionView(m)
		switch {
		case m.RecipientID != q.RecipientID:
		case q.UnreadOnly && m.Read:
		case v.Comment.Deleted || v.Comment.Removed:
		case !s.inWindow(q.Sort, v.Comment.Published):
		default:
			out = append(out, v)
		}
	}
	sortByPublished(out, func(v model.MentionView) (time.Time, ulid.ULID) { return v.Comment.Published, v.Mention.ID })
	return paginate(out, q.Page), nil
}

func (s *Store) MarkAllMentionsRead(ctx context.Context, recipientID ulid.ULID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "MarkAllMentionsRead"); err != nil {
		return 0, err
	}
	var n int64
	for id, m := range s.mentions {
		if m.RecipientID == recipientID && !m.Read {
			m.Read = true
			s.mentions[id] = m
			n++
		}
	}
	return n, nil
}

func (s *Store) CreatePrivateMessage(ctx context.Context, pm *model.PrivateMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "CreatePrivateMessage"); err != nil {
		return err
	}
	if _, ok := s.messages[pm.ID]; ok {
		return conflict("CreatePrivateMessage", "private_message_pkey")
	}
	s.messages[pm.ID] = *pm
	return nil
}

func (s *Store) GetPrivateMessage(ctx context.Context, id ulid.ULID) (*model.PrivateMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "GetPrivateMessage"); err != nil {
		return nil, err
	}
	pm, ok := s.messages[id]
	if !ok {
		return nil, notFound("GetPrivateMessage")
	}
	return &pm, nil
}

func (s *Store) messageView(pm model.PrivateMessage) model.PrivateMessageView {
	return model.PrivateMessageView{
		PrivateMessage: pm,
		Creator:        s.persons[pm.CreatorID],
		Recipient:      s.persons[pm.RecipientID],
	}
}

func (s *Store) GetPrivateMessageView(ctx context.Context, id ulid.ULID) (*model.PrivateMessageView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "GetPrivateMessageView"); err != nil {
		return nil, err
	}
	pm, ok := s.messages[id]
	if !ok {
		return nil, notFound("GetPrivateMessageView")
	}
	v := s.messageView(pm)
	return &v, nil
}

func (s *Store) updateMessage(ctx context.Context, op string, id ulid.ULID, fn func(*model.PrivateMessage)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, op); err != nil {
		return err
	}
	pm, ok := s.messages[id]
	if !ok {
		return notFound(op)
	}
	fn(&pm)
	s.messages[id] = pm
	return nil
}

func (s *Store) UpdatePrivateMessageContent(ctx context.Context, id ulid.ULID, content string) error {
	return s.updateMessage(ctx, "UpdatePrivateMessageContent", id, func(pm *model.PrivateMessage) {
		now := s.now()
		pm.Content, pm.Updated = content, &now
	})
}

func (s *Store) SetPrivateMessageDeleted(ctx context.Context, id ulid.ULID, deleted bool) error {
	return s.updateMessage(ctx, "SetPrivateMessageDeleted", id, func(pm *model.PrivateMessage) {
		now := s.now()
		pm.Deleted, pm.Updated = deleted, &now
	})
}

func (s *Store) SetPrivateMessageRead(ctx context.Context, id ulid.ULID, read bool) error {
	return s.updateMessage(ctx, "SetPrivateMessageRead", id, func(pm *model.PrivateMessage) {
		pm.Read = read
	})
}

func (s *Store) SetPrivateMessageApID(ctx context.Context, id ulid.ULID, apID string) error {
	return s.updateMessage(ctx, "SetPrivateMessageApID", id, func(pm *model.PrivateMessage) {
		pm.ApID = apID
	})
}

func (s *Store) ListPrivateMessages(ctx context.Context, q store.PrivateMessageQuery) ([]model.PrivateMessageView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "ListPrivateMessages"); err != nil {
		return nil, err
	}
	var out []model.PrivateMessageView
	for _, pm := range s.messages {
		if pm.Deleted {
			continue
		}
		var match bool
		if q.UnreadOnly {
			match = pm.RecipientID == q.PersonID && !pm.Read
		} else {
			match = pm.RecipientID == q.PersonID || pm.CreatorID == q.PersonID
		}
		if match {
			out = append(out, s.messageView(pm))
		}
	}
	sortByPublished(out, func(v model.PrivateMessageView) (time.Time, ulid.ULID) {
		return v.PrivateMessage.Published, v.PrivateMessage.ID
	})
	return paginate(out, q.Page), nil
}

func (s *Store) MarkAllPrivateMessagesRead(ctx context.Context, recipientID ulid.ULID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "MarkAllPrivateMessagesRead"); err != nil {
		return 0, err
	}
	var n int64
	for id, pm := range s.messages {
		if pm.RecipientID == recipientID && !pm.Read {
			pm.Read = true
			s.messages[id] = pm
			n++
		}
	}
	return n, nil
}
