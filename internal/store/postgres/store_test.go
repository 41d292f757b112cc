// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock, NewWithPool(mock, time.Second)
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraint}
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestStore_CreateLocalUser(t *testing.T) {
	lu := model.NewLocalUser(core.NewID())
	lu.ID = core.NewID()

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "inserts row",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO local_user`).
					WithArgs(anyArgs(12)...).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "email taken",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO local_user`).
					WithArgs(anyArgs(12)...).
					WillReturnError(uniqueViolation(emailConstraint))
			},
			wantErr: store.ErrEmailTaken,
		},
		{
			name: "other unique violation",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO local_user`).
					WithArgs(anyArgs(12)...).
					WillReturnError(uniqueViolation("local_user_person_id_key"))
			},
			wantErr: store.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, s := newMock(t)
			tt.setupMock(mock)

			err := s.CreateLocalUser(context.Background(), &lu)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, store.ErrConflict)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestStore_UpdateLocalUserWritesPasswordWithSettings(t *testing.T) {
	mock, s := newMock(t)
	lu := model.NewLocalUser(core.NewID())
	lu.PasswordHash = "new-hash"
	email := "alice@example.com"
	lu.Email = &email

	mock.ExpectExec(`password_encrypted = \$10`).
		WithArgs(lu.ID.String(), lu.Email, lu.ShowNSFW, lu.Theme, string(lu.DefaultSortType),
			string(lu.DefaultListingType), lu.Lang, lu.ShowAvatars, lu.SendNotificationsToEmail,
			"new-hash").
		WillReturnError(uniqueViolation(emailConstraint))

	err := s.UpdateLocalUser(context.Background(), &lu)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ExecOneNotFound(t *testing.T) {
	mock, s := newMock(t)
	id := core.NewID()

	mock.ExpectExec(`UPDATE local_user SET password_encrypted`).
		WithArgs(id.String(), "hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdatePassword(context.Background(), id, "hash")
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_TimeoutIsRetryable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	s := NewWithPool(mock, 10*time.Millisecond)

	id := core.NewID()
	mock.ExpectExec(`UPDATE person SET banned`).
		WithArgs(id.String(), true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1)).
		WillDelayFor(time.Second)

	err = s.SetPersonBanned(context.Background(), id, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTimeout)
	assert.True(t, errs.IsRetryable(err))

	classified := errs.Internal(err)
	assert.Equal(t, errs.KindDependency, errs.KindOf(classified))
	assert.True(t, errs.IsRetryable(classified))
}

func TestStore_GetSiteMissing(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectQuery(`FROM site`).WillReturnError(pgx.ErrNoRows)

	_, err := s.GetSite(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_IsModerator(t *testing.T) {
	mock, s := newMock(t)
	community, person := core.NewID(), core.NewID()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(community.String(), person.String()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.IsModerator(context.Background(), community, person)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FollowCommunityConflict(t *testing.T) {
	mock, s := newMock(t)
	community, person := core.NewID(), core.NewID()
	mock.ExpectExec(`INSERT INTO community_follower`).
		WithArgs(community.String(), person.String()).
		WillReturnError(uniqueViolation("community_follower_pkey"))

	err := s.FollowCommunity(context.Background(), community, person)
	require.Error(t, err)
	assert.True(t, store.IsConflict(err))
	assert.False(t, errors.Is(err, store.ErrEmailTaken))
}

func TestStore_ListCommunityIDs(t *testing.T) {
	mock, s := newMock(t)
	a, b := core.NewID(), core.NewID()
	mock.ExpectQuery(`SELECT id FROM community`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(a.String()).AddRow(b.String()))

	got, err := s.ListCommunityIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []ulid.ULID{a, b}, got)
}

func TestStore_ListCommunityIDsInvalidID(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectQuery(`SELECT id FROM community`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("not-a-ulid"))

	_, err := s.ListCommunityIDs(context.Background())
	require.Error(t, err)
}

func TestStore_CountReports(t *testing.T) {
	mock, s := newMock(t)
	communities := []ulid.ULID{core.NewID(), core.NewID()}
	want := []string{communities[0].String(), communities[1].String()}

	mock.ExpectQuery(`FROM comment_report`).
		WithArgs(want).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(`FROM post_report`).
		WithArgs(want).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	comments, err := s.CountCommentReports(context.Background(), communities)
	require.NoError(t, err)
	posts, err := s.CountPostReports(context.Background(), communities)
	require.NoError(t, err)

	assert.Equal(t, int64(3), comments)
	assert.Equal(t, int64(1), posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetPasswordResetByTokenHash(t *testing.T) {
	mock, s := newMock(t)
	id, user := core.NewID(), core.NewID()
	now := time.Now().UTC().Truncate(time.Second)

	mock.ExpectQuery(`FROM password_reset_request WHERE token_hash`).
		WithArgs("abc").
		WillReturnRows(pgxmock.NewRows(resetColumns).
			AddRow(id.String(), user.String(), "abc", now.Add(time.Hour), now))

	got, err := s.GetPasswordResetByTokenHash(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, user, got.LocalUserID)
	assert.Equal(t, now.Add(time.Hour), got.ExpiresAt)
}

func TestStore_MarkAllRead(t *testing.T) {
	mock, s := newMock(t)
	recipient := core.NewID()

	mock.ExpectExec(`UPDATE person_mention SET read = TRUE`).
		WithArgs(recipient.String()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectExec(`UPDATE private_message SET read = TRUE`).
		WithArgs(recipient.String()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	n, err := s.MarkAllMentionsRead(context.Background(), recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.MarkAllPrivateMessagesRead(context.Background(), recipient)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_QueryFailure(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectExec(`INSERT INTO mod_ban`).
		WithArgs(anyArgs(7)...).
		WillReturnError(errors.New("connection refused"))

	err := s.AppendModBan(context.Background(), &model.ModBan{ID: core.NewID(), When: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, errs.IsRetryable(err))
}
