// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/agorafed/agora/internal/command/handlers/testutil"
	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/model"
)

func ptrID(id ulid.ULID) *ulid.ULID { return &id }

func bcryptHash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(b), err
}

func seedCommunity(t *testing.T, f *testutil.Fixture, name string, creatorID ulid.ULID) *model.Community {
	t.Helper()
	actorID := f.Instance.Endpoints().CommunityActorID(name)
	c := &model.Community{
		ID:           core.NewID(),
		Name:         name,
		Title:        name,
		CreatorID:    creatorID,
		ActorID:      actorID,
		FollowersURL: actorID + "/followers",
		InboxURL:     actorID + "/inbox",
		Local:        true,
		Published:    f.Now,
	}
	require.NoError(t, f.Store.CreateCommunity(context.Background(), c))
	return c
}

// seeded content is spaced a second apart so listings order deterministically.
var seedClock = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func nextSeedTime() time.Time {
	seedClock = seedClock.Add(time.Second)
	return seedClock
}

func seedPost(f *testutil.Fixture, communityID, creatorID ulid.ULID) model.Post {
	p := model.Post{
		ID:          core.NewID(),
		Name:        "a post",
		CreatorID:   creatorID,
		CommunityID: communityID,
		Published:   nextSeedTime(),
	}
	f.Store.SeedPost(p)
	return p
}

func seedComment(f *testutil.Fixture, postID, creatorID ulid.ULID, parentID *ulid.ULID) model.Comment {
	c := model.Comment{
		ID:        core.NewID(),
		CreatorID: creatorID,
		PostID:    postID,
		ParentID:  parentID,
		Content:   "a comment",
		Published: nextSeedTime(),
	}
	f.Store.SeedComment(c)
	return c
}
