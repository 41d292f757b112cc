// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package handlers

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/api"
	"github.com/agorafed/agora/internal/command"
	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store"
)

// AddAdmin grants or revokes the admin flag and broadcasts the new admin list.
func AddAdmin(ctx context.Context, call *command.Call, req *api.AddAdmin) (*api.AddAdminResponse, error) {
	svc := call.Services

	if err := svc.Store.SetAdmin(ctx, req.PersonID, req.Added); err != nil {
		return nil, storeErr(errs.CodeCouldntUpdateUser, err)
	}
	if _, err := svc.ModLog.AddAdmin(ctx, call.User.PersonID(), req.PersonID, req.Added); err != nil {
		return nil, errs.Dependency(errs.CodeCouldntUpdateUser, err)
	}

	admins, err := siteAdmins(ctx, svc.Store)
	if err != nil {
		return nil, err
	}

	resp := &api.AddAdminResponse{Admins: admins}
	call.PublishGlobal(api.OpAddAdmin, resp)
	return resp, nil
}

// siteAdmins lists admins with the site creator first.
func siteAdmins(ctx context.Context, s store.Store) ([]model.PersonView, error) {
	admins, err := s.ListAdmins(ctx)
	if err != nil {
		return nil, errs.Internal(err)
	}

	site, err := s.GetSite(ctx)
	switch {
	case store.IsNotFound(err):
		return nonNil(admins), nil
	case err != nil:
		return nil, errs.Internal(err)
	}

	for i, a := range admins {
		if a.Person.ID == site.CreatorID {
			creator := admins[i]
			copy(admins[1:i+1], admins[:i])
			admins[0] = creator
			break
		}
	}
	return nonNil(admins), nil
}

// BanUser bans or unbans a person, optionally removing everything they
// created, and broadcasts the result. Steps are not rolled back on failure.
func BanUser(ctx context.Context, call *command.Call, req *api.BanUser) (*api.BanUserResponse, error) {
	s := call.Services.Store
	target := req.PersonID

	if err := s.SetPersonBanned(ctx, target, req.Ban); err != nil {
		return nil, storeErr(errs.CodeCouldntUpdateUser, err)
	}

	if req.RemoveData {
		if err := s.SetPostsRemovedForCreator(ctx, target, true); err != nil {
			return nil, errs.Dependency(errs.CodeCouldntUpdateUser, err)
		}
		if err := s.SetCommunitiesRemovedForCreator(ctx, target, true); err != nil {
			return nil, errs.Dependency(errs.CodeCouldntUpdateUser, err)
		}
		if err := s.SetCommentsRemovedForCreator(ctx, target, true); err != nil {
			return nil, errs.Dependency(errs.CodeCouldntUpdateUser, err)
		}
	}

	if _, err := call.Services.ModLog.Ban(ctx, call.User.PersonID(), target, req.Ban, req.Reason, req.ExpiresAt()); err != nil {
		return nil, errs.Dependency(errs.CodeCouldntUpdateUser, err)
	}

	view, err := s.GetPersonView(ctx, target)
	if err != nil {
		return nil, storeErr(errs.CodeCouldntUpdateUser, err)
	}

	resp := &api.BanUserResponse{PersonView: *view, Banned: req.Ban}
	call.PublishGlobal(api.OpBanUser, resp)
	return resp, nil
}

// GetReportCount counts unresolved reports in the communities the caller may
// moderate. Admins see every community.
func GetReportCount(ctx context.Context, call *command.Call, req *api.GetReportCount) (*api.GetReportCountResponse, error) {
	s := call.Services.Store
	me := call.User.PersonID()

	communityIDs, err := reportScope(ctx, call, req.Community)
	if err != nil {
		return nil, err
	}

	resp := &api.GetReportCountResponse{}
	if len(communityIDs) > 0 {
		resp.Community = req.Community
		if resp.CommentReports, err = s.CountCommentReports(ctx, communityIDs); err != nil {
			return nil, errs.Internal(err)
		}
		if resp.PostReports, err = s.CountPostReports(ctx, communityIDs); err != nil {
			return nil, errs.Internal(err)
		}
	}

	call.PublishToRecipient(me, api.OpGetReportCount, resp)
	return resp, nil
}

func reportScope(ctx context.Context, call *command.Call, community *ulid.ULID) ([]ulid.ULID, error) {
	s := call.Services.Store
	me := call.User.PersonID()

	if call.User.IsAdmin() {
		if community != nil {
			return []ulid.ULID{*community}, nil
		}
		ids, err := s.ListCommunityIDs(ctx)
		if err != nil {
			return nil, errs.Internal(err)
		}
		return ids, nil
	}

	if community != nil {
		ok, err := s.IsModerator(ctx, *community, me)
		if err != nil {
			return nil, errs.Internal(err)
		}
		if !ok {
			return nil, errs.Auth(errs.CodeNotAModerator)
		}
		return []ulid.ULID{*community}, nil
	}

	moderated, err := s.ListModerated(ctx, me)
	if err != nil {
		return nil, errs.Internal(err)
	}
	ids := make([]ulid.ULID, 0, len(moderated))
	for _, m := range moderated {
		ids = append(ids, m.Community.ID)
	}
	return ids, nil
}
