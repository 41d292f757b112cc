// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package validate holds the payload checks shared by command handlers.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/agorafed/agora/internal/errs"
)

// Length limits.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 20
	MinPasswordLength = 10
	MaxPasswordLength = 60
	MaxBioLength      = 300
)

// usernameRegex matches 3-20 ASCII letters, digits or underscores.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Struct runs the go-playground tags on v. Failures map to invalid_request.
func Struct(v any) error {
	err := structValidator.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return errs.Validationf(errs.CodeInvalidRequest, "%s: %s", fe.Field(), describe(fe))
	}
	return errs.Validationf(errs.CodeInvalidRequest, "%v", err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have a minimum of %s", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// Username checks the name of a new local account.
func Username(name string) error {
	if !usernameRegex.MatchString(name) {
		return errs.Validationf(errs.CodeInvalidUsername, "username %q", name)
	}
	return nil
}

// PreferredUsername checks a display name: 3-20 characters without '@'.
func PreferredUsername(name string) error {
	n := utf8.RuneCountInString(name)
	if n < MinUsernameLength || n > MaxUsernameLength || strings.Contains(name, "@") {
		return errs.Validation(errs.CodeInvalidUsername)
	}
	return nil
}

// Password checks the length of a new password.
func Password(password string) error {
	n := len(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return errs.Validation(errs.CodeInvalidPassword)
	}
	return nil
}

// PasswordsMatch checks a password against its confirmation.
func PasswordsMatch(password, verify string) error {
	if password != verify {
		return errs.Validation(errs.CodePasswordsDontMatch)
	}
	return nil
}

// Bio checks the profile bio length in characters.
func Bio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return errs.Validation(errs.CodeBioLengthOverflow)
	}
	return nil
}
