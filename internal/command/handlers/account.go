// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/api"
	"github.com/agorafed/agora/internal/captcha"
	"github.com/agorafed/agora/internal/command"
	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/federation"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store"
	"github.com/agorafed/agora/internal/validate"
)

// defaultDetailsUsername is the profile shown when GetUserDetails names no one.
const defaultDetailsUsername = "admin"

// Login verifies a name-or-email and password and returns a token.
func Login(ctx context.Context, call *command.Call, req *api.Login) (*api.LoginResponse, error) {
	svc := call.Services

	user, err := svc.Store.FindLocalUserView(ctx, strings.TrimSpace(req.UsernameOrEmail))
	if err == nil && user.Person.Deleted {
		err = store.ErrNotFound
	}
	if err != nil {
		if store.IsNotFound(err) {
			equalizeTiming(svc.Hasher, req.Password)
			return nil, errs.NotFound(errs.CodeCouldntFindUser, err)
		}
		return nil, errs.Internal(err)
	}

	if ok, _ := svc.Hasher.Verify(req.Password, user.LocalUser.PasswordHash); !ok {
		return nil, errs.Auth(errs.CodePasswordIncorrect)
	}

	if svc.Hasher.NeedsUpgrade(user.LocalUser.PasswordHash) {
		upgradeHash(ctx, svc, user.LocalUser.ID, req.Password)
	}

	return issueToken(svc, user.Person.ID)
}

// equalizeTiming spends one hash computation so that unknown accounts cost
// about as much as a failed verification.
func equalizeTiming(h command.PasswordHasher, password string) {
	_, _ = h.Hash(password)
}

func upgradeHash(ctx context.Context, svc *command.Services, localUserID ulid.ULID, password string) {
	hash, err := svc.Hasher.Hash(password)
	if err == nil {
		err = svc.Store.UpdatePassword(ctx, localUserID, hash)
	}
	if err != nil {
		slog.WarnContext(ctx, "password hash upgrade failed", "local_user_id", localUserID.String(), "error", err)
		return
	}
	slog.InfoContext(ctx, "password hash upgraded", "local_user_id", localUserID.String())
}

func issueToken(svc *command.Services, personID ulid.ULID) (*api.LoginResponse, error) {
	jwt, err := svc.Tokens.Issue(personID)
	if err != nil {
		return nil, errs.Dependency(errs.CodeSystemErrLogin, err)
	}
	return &api.LoginResponse{JWT: jwt}, nil
}

// Register creates a person, its local user and the default community
// memberships. The first account on an instance becomes admin and moderator
// of the default community.
func Register(ctx context.Context, call *command.Call, req *api.Register) (*api.LoginResponse, error) {
	svc := call.Services
	now := call.Now()

	site, err := svc.Store.GetSite(ctx)
	switch {
	case err == nil:
		if !site.OpenRegistration {
			return nil, errs.Auth(errs.CodeRegistrationClosed)
		}
	case !store.IsNotFound(err):
		return nil, errs.Internal(err)
	}

	if err := validate.Password(req.Password); err != nil {
		return nil, err
	}
	if err := validate.PasswordsMatch(req.Password, req.PasswordVerify); err != nil {
		return nil, err
	}

	admins, err := svc.Store.ListAdmins(ctx)
	if err != nil {
		return nil, errs.Internal(err)
	}
	noAdmins := len(admins) == 0

	if !noAdmins && call.Instance.Captcha.Enabled {
		if req.CaptchaUUID == nil || req.CaptchaAnswer == nil ||
			!svc.Captchas.Check(*req.CaptchaUUID, *req.CaptchaAnswer, now) {
			return nil, errs.Validation(errs.CodeCaptchaIncorrect)
		}
	}

	if err := svc.Slurs.Check(req.Username); err != nil {
		return nil, err
	}
	if err := validate.Username(req.Username); err != nil {
		return nil, err
	}

	hash, err := svc.Hasher.Hash(req.Password)
	if err != nil {
		return nil, errs.Internal(err)
	}

	keys, err := federation.GenerateKeyPair()
	if err != nil {
		return nil, errs.Internal(err)
	}

	endpoints := call.Instance.Endpoints()
	actorID := endpoints.PersonActorID(req.Username)
	sharedInbox := endpoints.SharedInboxURL()
	person := &model.Person{
		ID:             core.NewIDAt(now),
		Name:           req.Username,
		ActorID:        actorID,
		InboxURL:       federation.InboxURL(actorID),
		SharedInboxURL: &sharedInbox,
		PublicKey:      &keys.PublicKey,
		PrivateKey:     &keys.PrivateKey,
		Local:          true,
		Published:      now,
	}
	if err := svc.Store.CreatePerson(ctx, person); err != nil {
		if store.IsConflict(err) {
			return nil, errs.Conflict(errs.CodeUserAlreadyExists, err)
		}
		return nil, errs.Dependency(errs.CodeUserAlreadyExists, err)
	}

	lu := model.NewLocalUser(person.ID)
	lu.PasswordHash = hash
	lu.Admin = noAdmins
	lu.ShowNSFW = req.ShowNSFW
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		email := strings.TrimSpace(*req.Email)
		lu.Email = &email
	}
	if err := svc.Store.CreateLocalUser(ctx, &lu); err != nil {
		primary := registerLocalUserErr(err)
		if undoErr := svc.Store.DeletePerson(ctx, person.ID); undoErr != nil {
			slog.ErrorContext(ctx, "registration compensation failed",
				"person_id", person.ID.String(), "error", undoErr)
			return nil, errs.WithCompensation(primary, undoErr)
		}
		return nil, primary
	}

	community, err := defaultCommunity(ctx, call, person.ID)
	if err != nil {
		return nil, err
	}

	if err := svc.Store.FollowCommunity(ctx, community.ID, person.ID); err != nil {
		return nil, errs.Conflict(errs.CodeCommunityFollowerExists, err)
	}
	if noAdmins {
		if err := svc.Store.JoinModerators(ctx, community.ID, person.ID); err != nil {
			return nil, errs.Conflict(errs.CodeCommunityModeratorExists, err)
		}
	}

	slog.InfoContext(ctx, "account registered", "person_id", person.ID.String(), "admin", noAdmins)
	return issueToken(svc, person.ID)
}

func registerLocalUserErr(err error) error {
	if errors.Is(err, store.ErrEmailTaken) {
		return errs.Conflict(errs.CodeEmailAlreadyExists, err)
	}
	if store.IsConflict(err) {
		return errs.Conflict(errs.CodeUserAlreadyExists, err)
	}
	return errs.Dependency(errs.CodeUserAlreadyExists, err)
}

// defaultCommunity returns the default community, creating it with creatorID
// on first use.
func defaultCommunity(ctx context.Context, call *command.Call, creatorID ulid.ULID) (*model.Community, error) {
	s := call.Services.Store

	community, err := s.GetCommunityByName(ctx, model.DefaultCommunityName)
	if err == nil {
		return community, nil
	}
	if !store.IsNotFound(err) {
		return nil, errs.Internal(err)
	}

	keys, err := federation.GenerateKeyPair()
	if err != nil {
		return nil, errs.Internal(err)
	}
	endpoints := call.Instance.Endpoints()
	actorID := endpoints.CommunityActorID(model.DefaultCommunityName)
	sharedInbox := endpoints.SharedInboxURL()
	community = &model.Community{
		ID:             core.NewIDAt(call.Now()),
		Name:           model.DefaultCommunityName,
		Title:          model.DefaultCommunityTitle,
		CreatorID:      creatorID,
		ActorID:        actorID,
		FollowersURL:   federation.FollowersURL(actorID),
		InboxURL:       federation.InboxURL(actorID),
		SharedInboxURL: &sharedInbox,
		PublicKey:      &keys.PublicKey,
		PrivateKey:     &keys.PrivateKey,
		Local:          true,
		Published:      call.Now(),
	}
	if err := s.CreateCommunity(ctx, community); err != nil {
		if !store.IsConflict(err) {
			return nil, errs.Internal(err)
		}
		// Lost a creation race; use the winner's row.
		existing, getErr := s.GetCommunityByName(ctx, model.DefaultCommunityName)
		if getErr != nil {
			return nil, errs.Internal(getErr)
		}
		return existing, nil
	}
	return community, nil
}

// GetCaptcha renders a new challenge, or nothing when captcha is disabled.
func GetCaptcha(_ context.Context, call *command.Call, _ *api.GetCaptcha) (*api.GetCaptchaResponse, error) {
	settings := call.Instance.Captcha
	if !settings.Enabled {
		return &api.GetCaptchaResponse{}, nil
	}

	rendered, err := call.Services.Captcha.Generate(captcha.Difficulty(settings.Difficulty), settings.Audio)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return &api.GetCaptchaResponse{OK: api.NewCaptchaResponse(rendered)}, nil
}

// SaveUserSettings updates preferences, profile and optionally the password,
// then returns a fresh token. Every check runs before the first write.
func SaveUserSettings(ctx context.Context, call *command.Call, req *api.SaveUserSettings) (*api.LoginResponse, error) {
	svc := call.Services
	me := call.User

	if req.PreferredUsername != nil {
		if err := svc.Slurs.Check(*req.PreferredUsername); err != nil {
			return nil, err
		}
	}

	lu := me.LocalUser
	if req.NewPassword != nil {
		hash, err := newPasswordHash(call, req)
		if err != nil {
			return nil, err
		}
		lu.PasswordHash = hash
	}

	lu.ShowNSFW = req.ShowNSFW
	lu.Theme = req.Theme
	lu.DefaultSortType = req.DefaultSortType
	lu.DefaultListingType = req.DefaultListingType
	lu.Lang = req.Lang
	lu.ShowAvatars = req.ShowAvatars
	lu.SendNotificationsToEmail = req.SendNotificationsToEmail
	if req.Email != nil {
		if email := strings.TrimSpace(*req.Email); email == "" {
			lu.Email = nil
		} else {
			lu.Email = &email
		}
	}
	if err := svc.Store.UpdateLocalUser(ctx, &lu); err != nil {
		return nil, userConflictErr(err)
	}

	if err := svc.Store.UpdatePersonProfile(ctx, me.PersonID(), req.Profile()); err != nil {
		return nil, storeErr(errs.CodeCouldntUpdateUser, err)
	}

	return issueToken(svc, me.PersonID())
}

// newPasswordHash checks the password change fields of req and hashes the
// new password. Nothing is written.
func newPasswordHash(call *command.Call, req *api.SaveUserSettings) (string, error) {
	svc := call.Services
	me := call.User

	if req.NewPasswordVerify == nil {
		return "", errs.Validation(errs.CodePasswordsDontMatch)
	}
	if err := validate.Password(*req.NewPassword); err != nil {
		return "", err
	}
	if err := validate.PasswordsMatch(*req.NewPassword, *req.NewPasswordVerify); err != nil {
		return "", err
	}
	if req.OldPassword == nil {
		return "", errs.Auth(errs.CodePasswordIncorrect)
	}
	if ok, _ := svc.Hasher.Verify(*req.OldPassword, me.LocalUser.PasswordHash); !ok {
		return "", errs.Auth(errs.CodePasswordIncorrect)
	}

	hash, err := svc.Hasher.Hash(*req.NewPassword)
	if err != nil {
		return "", errs.Internal(err)
	}
	return hash, nil
}

// GetUserDetails returns a profile with its posts, comments and communities.
func GetUserDetails(ctx context.Context, call *command.Call, req *api.GetUserDetails) (*api.GetUserDetailsResponse, error) {
	s := call.Services.Store

	var targetID ulid.ULID
	if req.PersonID != nil {
		targetID = *req.PersonID
	} else {
		name := defaultDetailsUsername
		if req.Username != nil {
			name = *req.Username
		}
		person, err := s.GetPersonByName(ctx, name)
		if err != nil {
			return nil, readErr(errs.CodeCouldntFindUser, err)
		}
		targetID = person.ID
	}

	view, err := s.GetPersonView(ctx, targetID)
	if err != nil {
		return nil, readErr(errs.CodeCouldntFindUser, err)
	}

	var viewerID *ulid.ULID
	showNSFW := false
	if call.User != nil {
		id := call.User.PersonID()
		viewerID = &id
		showNSFW = call.User.LocalUser.ShowNSFW
	}

	postQuery := store.PostQuery{
		CommunityID: req.CommunityID,
		SavedOnly:   req.SavedOnly,
		ViewerID:    viewerID,
		ShowNSFW:    showNSFW,
		Sort:        req.SortType(),
		Page:        req.PageOf(),
	}
	commentQuery := store.CommentQuery{
		SavedOnly: req.SavedOnly,
		ViewerID:  viewerID,
		Sort:      req.SortType(),
		Page:      req.PageOf(),
	}
	// Saved listings are the viewer's saves, across all creators.
	if !req.SavedOnly {
		postQuery.CreatorID = &targetID
		commentQuery.CreatorID = &targetID
	}

	posts, err := s.ListPosts(ctx, postQuery)
	if err != nil {
		return nil, errs.Internal(err)
	}
	comments, err := s.ListComments(ctx, commentQuery)
	if err != nil {
		return nil, errs.Internal(err)
	}

	var follows []model.CommunityMembership
	if viewerID != nil && *viewerID == targetID {
		follows, err = s.ListFollows(ctx, targetID)
		if err != nil {
			return nil, errs.Internal(err)
		}
	}
	moderates, err := s.ListModerated(ctx, targetID)
	if err != nil {
		return nil, errs.Internal(err)
	}

	return &api.GetUserDetailsResponse{
		PersonView: *view,
		Follows:    nonNil(follows),
		Moderates:  nonNil(moderates),
		Comments:   nonNil(comments),
		Posts:      nonNil(posts),
	}, nil
}

// DeleteAccount permanently deletes the caller's content and account.
func DeleteAccount(ctx context.Context, call *command.Call, req *api.DeleteAccount) (*api.LoginResponse, error) {
	svc := call.Services
	me := call.User

	if ok, _ := svc.Hasher.Verify(req.Password, me.LocalUser.PasswordHash); !ok {
		return nil, errs.Auth(errs.CodePasswordIncorrect)
	}

	if err := svc.Store.PermadeleteCommentsForCreator(ctx, me.PersonID()); err != nil {
		return nil, errs.Dependency(errs.CodeCouldntUpdateComment, err)
	}
	if err := svc.Store.PermadeletePostsForCreator(ctx, me.PersonID()); err != nil {
		return nil, errs.Dependency(errs.CodeCouldntUpdatePost, err)
	}
	if err := svc.Store.DeleteAccount(ctx, me.PersonID()); err != nil {
		return nil, storeErr(errs.CodeCouldntUpdateUser, err)
	}

	slog.InfoContext(ctx, "account deleted", "person_id", me.PersonID().String())
	return &api.LoginResponse{JWT: call.Token}, nil
}
