// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agorafed/agora/internal/api"
	"github.com/agorafed/agora/internal/command/handlers/testutil"
	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store"
)

func TestAddAdmin_PinsSiteCreatorFirst(t *testing.T) {
	f := testutil.New(t)
	// bob registered first, but the site belongs to root.
	f.SeedUser(t, "bob", testutil.AsAdmin())
	f.Now = f.Now.Add(time.Minute)
	root := f.SeedUser(t, "root", testutil.AsAdmin())
	f.Now = f.Now.Add(time.Minute)
	carol := f.SeedUser(t, "carol")
	f.Store.SeedSite(model.Site{ID: core.NewID(), Name: "agora", CreatorID: root.PersonID(), OpenRegistration: true})

	call := f.Call(root)
	resp, err := AddAdmin(context.Background(), call, &api.AddAdmin{PersonID: carol.PersonID(), Added: true})
	require.NoError(t, err)

	names := make([]string, 0, len(resp.Admins))
	for _, a := range resp.Admins {
		names = append(names, a.Person.Name)
	}
	assert.Equal(t, []string{"root", "bob", "carol"}, names)
	assert.True(t, f.Reload(t, carol).IsAdmin())

	adds := f.Store.ModAdds()
	require.Len(t, adds, 1)
	assert.Equal(t, root.PersonID(), adds[0].ModPersonID)
	assert.Equal(t, carol.PersonID(), adds[0].OtherPersonID)
	assert.False(t, adds[0].Removed)

	events := call.Events()
	require.Len(t, events, 1)
	assert.Equal(t, string(api.OpAddAdmin), events[0].Op)
}

func TestAddAdmin_Revoke(t *testing.T) {
	f := testutil.New(t)
	root := f.SeedUser(t, "root", testutil.AsAdmin())
	bob := f.SeedUser(t, "bob", testutil.AsAdmin())

	resp, err := AddAdmin(context.Background(), f.Call(root), &api.AddAdmin{PersonID: bob.PersonID(), Added: false})

	require.NoError(t, err)
	require.Len(t, resp.Admins, 1)
	assert.Equal(t, "root", resp.Admins[0].Person.Name)
	assert.True(t, f.Store.ModAdds()[0].Removed)
}

func TestAddAdmin_UnknownTarget(t *testing.T) {
	f := testutil.New(t)
	root := f.SeedUser(t, "root", testutil.AsAdmin())
	call := f.Call(root)

	_, err := AddAdmin(context.Background(), call, &api.AddAdmin{PersonID: core.NewID(), Added: true})

	assert.Equal(t, errs.CodeCouldntUpdateUser, errs.CodeOf(err))
	assert.Empty(t, f.Store.ModAdds())
}

func TestBanUser_RemoveData(t *testing.T) {
	f := testutil.New(t)
	ctx := context.Background()
	root := f.SeedUser(t, "root", testutil.AsAdmin())
	alice := f.SeedUser(t, "alice")
	community := seedCommunity(t, f, "alices", alice.PersonID())
	post := seedPost(f, community.ID, alice.PersonID())
	seedComment(f, post.ID, alice.PersonID(), nil)

	reason := "spam"
	expires := f.Now.Add(24 * time.Hour).Unix()
	call := f.Call(root)
	resp, err := BanUser(ctx, call, &api.BanUser{
		PersonID:   alice.PersonID(),
		Ban:        true,
		RemoveData: true,
		Reason:     &reason,
		Expires:    &expires,
	})
	require.NoError(t, err)
	assert.True(t, resp.Banned)
	assert.True(t, resp.PersonView.Person.Banned)

	creator := alice.PersonID()
	posts, err := f.Store.ListPosts(ctx, store.PostQuery{CreatorID: &creator, Sort: core.SortNew, Page: core.NewPage(nil, nil)})
	require.NoError(t, err)
	assert.Empty(t, posts, "posts are removed")
	comments, err := f.Store.ListComments(ctx, store.CommentQuery{CreatorID: &creator, Sort: core.SortNew, Page: core.NewPage(nil, nil)})
	require.NoError(t, err)
	assert.Empty(t, comments, "comments are removed")
	removed, err := f.Store.GetCommunityByName(ctx, "alices")
	require.NoError(t, err)
	assert.True(t, removed.Removed, "communities are removed")

	bans := f.Store.ModBans()
	require.Len(t, bans, 1)
	assert.Equal(t, alice.PersonID(), bans[0].OtherPersonID)
	assert.True(t, bans[0].Banned)
	require.NotNil(t, bans[0].Reason)
	assert.Equal(t, "spam", *bans[0].Reason)
	require.NotNil(t, bans[0].Expires)
	assert.Equal(t, expires, bans[0].Expires.Unix())

	events := call.Events()
	require.Len(t, events, 1)
	assert.Equal(t, string(api.OpBanUser), events[0].Op)
	payload, ok := events[0].Payload.(*api.BanUserResponse)
	require.True(t, ok)
	assert.True(t, payload.Banned)
}

func TestBanUser_PartialFailureKeepsBan(t *testing.T) {
	f := testutil.New(t)
	ctx := context.Background()
	root := f.SeedUser(t, "root", testutil.AsAdmin())
	alice := f.SeedUser(t, "alice")
	f.Store.FailNext("SetCommentsRemovedForCreator", errors.New("boom"))

	call := f.Call(root)
	_, err := BanUser(ctx, call, &api.BanUser{PersonID: alice.PersonID(), Ban: true, RemoveData: true})

	assert.Equal(t, errs.CodeCouldntUpdateUser, errs.CodeOf(err))
	person, getErr := f.Store.GetPerson(ctx, alice.PersonID())
	require.NoError(t, getErr)
	assert.True(t, person.Banned, "earlier steps are not rolled back")
	assert.Empty(t, f.Store.ModBans())
}

func TestGetReportCount(t *testing.T) {
	f := testutil.New(t)
	root := f.SeedUser(t, "root", testutil.AsAdmin())
	mod := f.SeedUser(t, "mod")
	plain := f.SeedUser(t, "plain")

	moderated := seedCommunity(t, f, "moderated", mod.PersonID())
	other := seedCommunity(t, f, "other", root.PersonID())
	require.NoError(t, f.Store.JoinModerators(context.Background(), moderated.ID, mod.PersonID()))

	inModerated := seedPost(f, moderated.ID, plain.PersonID())
	inOther := seedPost(f, other.ID, plain.PersonID())
	comment := seedComment(f, inModerated.ID, plain.PersonID(), nil)
	f.Store.SeedPostReport(model.PostReport{ID: core.NewID(), PostID: inModerated.ID, CreatorID: root.PersonID(), Reason: "x"})
	f.Store.SeedPostReport(model.PostReport{ID: core.NewID(), PostID: inOther.ID, CreatorID: root.PersonID(), Reason: "x"})
	f.Store.SeedPostReport(model.PostReport{ID: core.NewID(), PostID: inOther.ID, CreatorID: root.PersonID(), Reason: "x", Resolved: true})
	f.Store.SeedCommentReport(model.CommentReport{ID: core.NewID(), CommentID: comment.ID, CreatorID: root.PersonID(), Reason: "x"})

	tests := []struct {
		name      string
		user      *model.LocalUserView
		community *model.Community
		comments  int64
		posts     int64
		code      string
	}{
		{name: "admin sees everything", user: root, comments: 1, posts: 2},
		{name: "admin filtered", user: root, community: other, comments: 0, posts: 1},
		{name: "moderator sees moderated", user: mod, comments: 1, posts: 1},
		{name: "moderator filtered", user: mod, community: moderated, comments: 1, posts: 1},
		{name: "moderator outside scope", user: mod, community: other, code: errs.CodeNotAModerator},
		{name: "non-moderator sees nothing", user: plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &api.GetReportCount{}
			if tt.community != nil {
				req.Community = ptrID(tt.community.ID)
			}
			call := f.Call(tt.user)

			resp, err := GetReportCount(context.Background(), call, req)

			if tt.code != "" {
				assert.Equal(t, tt.code, errs.CodeOf(err))
				assert.Empty(t, call.Events())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.comments, resp.CommentReports)
			assert.Equal(t, tt.posts, resp.PostReports)
			assert.Equal(t, req.Community, resp.Community)
			require.Len(t, call.Events(), 1)
		})
	}
}
