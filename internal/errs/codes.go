// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package errs

// Stable codes returned to clients. Clients match on these strings.
const (
	CodeCouldntFindUser               = "couldnt_find_that_username_or_email"
	CodePasswordIncorrect             = "password_incorrect"
	CodeRegistrationClosed            = "registration_closed"
	CodePasswordsDontMatch            = "passwords_dont_match"
	CodeCaptchaIncorrect              = "captcha_incorrect"
	CodeInvalidUsername               = "invalid_username"
	CodeUserAlreadyExists             = "user_already_exists"
	CodeEmailAlreadyExists            = "email_already_exists"
	CodeCommunityFollowerExists       = "community_follower_already_exists"
	CodeCommunityModeratorExists      = "community_moderator_already_exists"
	CodeBioLengthOverflow             = "bio_length_overflow"
	CodeCouldntUpdateUser             = "couldnt_update_user"
	CodeCouldntUpdateComment          = "couldnt_update_comment"
	CodeCouldntUpdatePrivateMessage   = "couldnt_update_private_message"
	CodeNoPrivateMessageEditAllowed   = "no_private_message_edit_allowed"
	CodeCouldntCreatePrivateMessage   = "couldnt_create_private_message"
	CodeCouldntUpdatePost             = "couldnt_update_post"
	CodeNotLoggedIn                   = "not_logged_in"
	CodeNotAnAdmin                    = "not_an_admin"
	CodeNotAModerator                 = "not_a_moderator"
	CodeInvalidPassword               = "invalid_password"
	CodeInvalidPasswordResetToken     = "invalid_password_reset_token"
	CodePasswordResetTokenExpired     = "password_reset_token_expired"
	CodeSlurs                         = "slurs"
	CodeCouldntFindCommunity          = "couldnt_find_community"
	CodeCouldntFindPrivateMessage     = "couldnt_find_private_message"
	CodeCouldntFindMention            = "couldnt_find_mention"
	CodeEmailNotConfigured            = "email_not_configured"
	CodeCouldntSendEmail              = "couldnt_send_email"
	CodeSystemErrLogin                = "system_err_login"
	CodeUnknownOp                     = "unknown_op"
	CodeInvalidRequest                = "invalid_request"
	CodeInternal                      = "internal_error"
	CodeRateLimited                   = "rate_limit_error"
)
