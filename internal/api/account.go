// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package api

import (
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/captcha"
	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/validate"
)

// Login exchanges credentials for a token.
type Login struct {
	noAuth
	UsernameOrEmail string `json:"username_or_email" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

func (*Login) Op() Op            { return OpLogin }
func (*Login) command()          {}
func (r *Login) Validate() error { return validate.Struct(r) }

// Register creates a local account.
type Register struct {
	noAuth
	Username       string  `json:"username" validate:"required"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Password       string  `json:"password" validate:"required"`
	PasswordVerify string  `json:"password_verify"`
	ShowNSFW       bool    `json:"show_nsfw"`
	CaptchaUUID    *string `json:"captcha_uuid,omitempty"`
	CaptchaAnswer  *string `json:"captcha_answer,omitempty"`
}

func (*Register) Op() Op   { return OpRegister }
func (*Register) command() {}

// Validate only checks structure. Registration checks run in workflow order
// inside the handler.
func (r *Register) Validate() error { return validate.Struct(r) }

// GetCaptcha requests a new captcha challenge.
type GetCaptcha struct {
	noAuth
}

func (*GetCaptcha) Op() Op          { return OpGetCaptcha }
func (*GetCaptcha) command()        {}
func (*GetCaptcha) Validate() error { return nil }

// SaveUserSettings updates the caller's profile and preferences. For the
// optional string fields, absent keeps the current value and an empty
// string clears it.
type SaveUserSettings struct {
	Auth
	ShowNSFW                 bool             `json:"show_nsfw"`
	Theme                    string           `json:"theme" validate:"required,max=20"`
	DefaultSortType          core.SortType    `json:"default_sort_type"`
	DefaultListingType       core.ListingType `json:"default_listing_type"`
	Lang                     string           `json:"lang" validate:"required,max=20"`
	Avatar                   *string          `json:"avatar,omitempty" validate:"omitempty,url"`
	Banner                   *string          `json:"banner,omitempty" validate:"omitempty,url"`
	PreferredUsername        *string          `json:"preferred_username,omitempty"`
	Email                    *string          `json:"email,omitempty" validate:"omitempty,email"`
	Bio                      *string          `json:"bio,omitempty"`
	MatrixUserID             *string          `json:"matrix_user_id,omitempty"`
	NewPassword              *string          `json:"new_password,omitempty"`
	NewPasswordVerify        *string          `json:"new_password_verify,omitempty"`
	OldPassword              *string          `json:"old_password,omitempty"`
	ShowAvatars              bool             `json:"show_avatars"`
	SendNotificationsToEmail bool             `json:"send_notifications_to_email"`
}

func (*SaveUserSettings) Op() Op   { return OpSaveUserSettings }
func (*SaveUserSettings) command() {}

func (r *SaveUserSettings) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if _, ok := core.ParseSortType(string(r.DefaultSortType)); !ok || r.DefaultSortType == "" {
		return errs.Validationf(errs.CodeInvalidRequest, "default_sort_type: unknown sort type %q", r.DefaultSortType)
	}
	if _, ok := core.ParseListingType(string(r.DefaultListingType)); !ok {
		return errs.Validationf(errs.CodeInvalidRequest, "default_listing_type: unknown listing type %q", r.DefaultListingType)
	}
	if r.Bio != nil {
		if err := validate.Bio(*r.Bio); err != nil {
			return err
		}
	}
	if r.PreferredUsername != nil && *r.PreferredUsername != "" {
		if err := validate.PreferredUsername(strings.TrimSpace(*r.PreferredUsername)); err != nil {
			return err
		}
	}
	return nil
}

// Profile returns the profile changes requested.
func (r *SaveUserSettings) Profile() model.PersonProfile {
	p := model.PersonProfile{
		Avatar:       r.Avatar,
		Banner:       r.Banner,
		Bio:          r.Bio,
		MatrixUserID: r.MatrixUserID,
	}
	if r.PreferredUsername != nil {
		v := strings.TrimSpace(*r.PreferredUsername)
		p.PreferredUsername = &v
	}
	return p
}

// GetUserDetails reads a person's profile, posts and comments. The target is
// PersonID if set, otherwise Username.
type GetUserDetails struct {
	Auth
	Paging
	PersonID    *ulid.ULID    `json:"person_id,omitempty"`
	Username    *string       `json:"username,omitempty"`
	Sort        core.SortType `json:"sort"`
	CommunityID *ulid.ULID    `json:"community_id,omitempty"`
	SavedOnly   bool          `json:"saved_only"`
}

func (*GetUserDetails) Op() Op   { return OpGetUserDetails }
func (*GetUserDetails) command() {}

func (r *GetUserDetails) Validate() error {
	_, err := parseSort(r.Sort)
	return err
}

// SortType returns the requested sort. Call after Validate.
func (r *GetUserDetails) SortType() core.SortType {
	st, _ := parseSort(r.Sort)
	return st
}

// DeleteAccount deletes the caller's account after confirming the password.
type DeleteAccount struct {
	Auth
	Password string `json:"password" validate:"required"`
}

func (*DeleteAccount) Op() Op            { return OpDeleteAccount }
func (*DeleteAccount) command()          {}
func (r *DeleteAccount) Validate() error { return validate.Struct(r) }

// PasswordReset mails a reset link to the account owning Email.
type PasswordReset struct {
	noAuth
	Email string `json:"email" validate:"required,email"`
}

func (*PasswordReset) Op() Op            { return OpPasswordReset }
func (*PasswordReset) command()          {}
func (r *PasswordReset) Validate() error { return validate.Struct(r) }

// PasswordChange redeems a reset token for a new password.
type PasswordChange struct {
	noAuth
	ResetToken     string `json:"token" validate:"required"`
	Password       string `json:"password"`
	PasswordVerify string `json:"password_verify"`
}

func (*PasswordChange) Op() Op   { return OpPasswordChange }
func (*PasswordChange) command() {}

func (r *PasswordChange) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if err := validate.Password(r.Password); err != nil {
		return err
	}
	return validate.PasswordsMatch(r.Password, r.PasswordVerify)
}

// LoginResponse carries an identity token.
type LoginResponse struct {
	JWT string `json:"jwt"`
}

// GetCaptchaResponse is empty when captcha is disabled.
type GetCaptchaResponse struct {
	OK *CaptchaResponse `json:"ok,omitempty"`
}

// CaptchaResponse is a rendered challenge. The answer is never included.
type CaptchaResponse struct {
	PNG  string  `json:"png"`
	WAV  *string `json:"wav,omitempty"`
	UUID string  `json:"uuid"`
}

// NewCaptchaResponse converts a rendered challenge.
func NewCaptchaResponse(r *captcha.Rendered) *CaptchaResponse {
	return &CaptchaResponse{PNG: r.PNG, WAV: r.WAV, UUID: r.UUID}
}

// GetUserDetailsResponse is a profile with listings.
type GetUserDetailsResponse struct {
	PersonView model.PersonView            `json:"person_view"`
	Follows    []model.CommunityMembership `json:"follows"`
	Moderates  []model.CommunityMembership `json:"moderates"`
	Comments   []model.CommentView         `json:"comments"`
	Posts      []model.PostView            `json:"posts"`
}

// PasswordResetResponse is empty.
type PasswordResetResponse struct{}
