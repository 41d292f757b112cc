// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPasswordResetRequest_IsExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	req := &PasswordResetRequest{ExpiresAt: now}

	assert.False(t, req.IsExpired(now.Add(-time.Second)))
	assert.True(t, req.IsExpired(now))
	assert.True(t, req.IsExpired(now.Add(time.Minute)))
}

func TestPersonProfile_Apply(t *testing.T) {
	old := "old bio"
	avatar := "https://img.example/a.png"
	person := &Person{Bio: &old, Avatar: &avatar}

	empty := ""
	banner := "https://img.example/b.png"
	PersonProfile{Bio: &empty, Banner: &banner}.Apply(person)

	assert.Nil(t, person.Bio, "empty string clears")
	assert.Equal(t, &avatar, person.Avatar, "nil leaves unchanged")
	assert.Equal(t, banner, *person.Banner)
}

func TestNewLocalUser_Defaults(t *testing.T) {
	lu := NewLocalUser([16]byte{1})

	assert.Equal(t, DefaultTheme, lu.Theme)
	assert.Equal(t, DefaultLang, lu.Lang)
	assert.True(t, lu.ShowAvatars)
	assert.False(t, lu.Admin)
	assert.False(t, lu.SendNotificationsToEmail)
}
