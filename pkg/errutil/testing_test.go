// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/pkg/errutil"
)

func TestAssertCode_Matching(t *testing.T) {
	errutil.AssertCode(t, errs.Auth(errs.CodeNotAnAdmin), errs.KindAuth, errs.CodeNotAnAdmin)
}

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("MY_CODE").Errorf("test error")
	errutil.AssertErrorCode(t, err, "MY_CODE")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("user_id", "123").Errorf("test error")
	errutil.AssertErrorContext(t, err, "user_id", "123")
}
