// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/model"
)

var (
	selectPerson = `SELECT ` + cols("p", personColumns) + ` FROM person p`

	selectPersonView = `SELECT ` + cols("p", personColumns) + `, ` + countsSQL("p") + ` FROM person p`

	selectLocalUserView = `SELECT ` + cols("p", personColumns) + `, ` + cols("lu", localUserColumns) +
		`, ` + countsSQL("p") + ` FROM local_user lu JOIN person p ON p.id = lu.person_id`
)

// CreatePerson inserts p.
func (s *Store) CreatePerson(ctx context.Context, p *model.Person) error {
	_, err := s.exec(ctx, "create person", `
		INSERT INTO person (`+strings.Join(personColumns, ", ")+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		p.ID.String(), p.Name, p.PreferredUsername, p.Avatar, p.Banner, p.Bio, p.MatrixUserID,
		p.ActorID, p.InboxURL, p.SharedInboxURL, p.PublicKey, p.PrivateKey,
		p.Local, p.Banned, p.Deleted, p.Published, p.Updated,
	)
	return err
}

// DeletePerson removes the person row and, by cascade, everything it owns.
func (s *Store) DeletePerson(ctx context.Context, id ulid.ULID) error {
	return s.execOne(ctx, "delete person", `DELETE FROM person WHERE id = $1`, id.String())
}

func (s *Store) getPerson(ctx context.Context, op, where string, arg any) (*model.Person, error) {
	var r personRow
	if err := s.queryRow(ctx, op, selectPerson+` WHERE `+where, []any{arg}, r.targets()...); err != nil {
		return nil, err
	}
	var p ids
	person := r.model(&p)
	if p.err != nil {
		return nil, p.err
	}
	return &person, nil
}

// GetPerson returns the person with id.
func (s *Store) GetPerson(ctx context.Context, id ulid.ULID) (*model.Person, error) {
	return s.getPerson(ctx, "get person", `p.id = $1`, id.String())
}

// GetPersonByName returns the person named name, preferring a local one.
func (s *Store) GetPersonByName(ctx context.Context, name string) (*model.Person, error) {
	return s.getPerson(ctx, "get person by name",
		`lower(p.name) = lower($1) ORDER BY p.local DESC LIMIT 1`, name)
}

func scanPersonView(rows pgx.Row) (model.PersonView, error) {
	var (
		r personRow
		c countsRow
		p ids
	)
	if err := rows.Scan(concat(r.targets(), c.targets())...); err != nil {
		return model.PersonView{}, err
	}
	view := model.PersonView{Person: r.model(&p), Counts: c.model()}
	return view, p.err
}

// GetPersonView returns the person with aggregates.
func (s *Store) GetPersonView(ctx context.Context, id ulid.ULID) (*model.PersonView, error) {
	var (
		r personRow
		c countsRow
	)
	err := s.queryRow(ctx, "get person view", selectPersonView+` WHERE p.id = $1`,
		[]any{id.String()}, concat(r.targets(), c.targets())...)
	if err != nil {
		return nil, err
	}
	var p ids
	view := model.PersonView{Person: r.model(&p), Counts: c.model()}
	if p.err != nil {
		return nil, p.err
	}
	return &view, nil
}

// UpdatePersonProfile applies the set profile fields. Empty strings clear.
func (s *Store) UpdatePersonProfile(ctx context.Context, id ulid.ULID, profile model.PersonProfile) error {
	return s.execOne(ctx, "update person profile", `
		UPDATE person SET
			preferred_username = CASE WHEN $2::text IS NULL THEN preferred_username ELSE NULLIF($2, '') END,
			avatar             = CASE WHEN $3::text IS NULL THEN avatar ELSE NULLIF($3, '') END,
			banner             = CASE WHEN $4::text IS NULL THEN banner ELSE NULLIF($4, '') END,
			bio                = CASE WHEN $5::text IS NULL THEN bio ELSE NULLIF($5, '') END,
			matrix_user_id     = CASE WHEN $6::text IS NULL THEN matrix_user_id ELSE NULLIF($6, '') END,
			updated            = now()
		WHERE id = $1`,
		id.String(), profile.PreferredUsername, profile.Avatar, profile.Banner, profile.Bio,
		profile.MatrixUserID,
	)
}

// SetPersonBanned sets the site ban flag.
func (s *Store) SetPersonBanned(ctx context.Context, id ulid.ULID, banned bool) error {
	return s.execOne(ctx, "set person banned",
		`UPDATE person SET banned = $2, updated = now() WHERE id = $1`, id.String(), banned)
}

// DeleteAccount marks the person deleted and scrubs its profile.
func (s *Store) DeleteAccount(ctx context.Context, id ulid.ULID) error {
	return s.execOne(ctx, "delete account", `
		UPDATE person SET
			deleted = TRUE, preferred_username = NULL, avatar = NULL, banner = NULL,
			bio = NULL, matrix_user_id = NULL, updated = now()
		WHERE id = $1`, id.String())
}

// ListAdmins returns admins ordered by registration.
func (s *Store) ListAdmins(ctx context.Context) ([]model.PersonView, error) {
	var admins []model.PersonView
	err := s.query(ctx, "list admins", selectPersonView+`
		JOIN local_user lu ON lu.person_id = p.id
		WHERE lu.admin AND NOT p.deleted
		ORDER BY p.published, p.id`, nil,
		func(rows pgx.Rows) error {
			v, err := scanPersonView(rows)
			if err != nil {
				return err
			}
			admins = append(admins, v)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return admins, nil
}

// CreateLocalUser inserts lu.
func (s *Store) CreateLocalUser(ctx context.Context, lu *model.LocalUser) error {
	_, err := s.exec(ctx, "create local user", `
		INSERT INTO local_user (`+strings.Join(localUserColumns, ", ")+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		lu.ID.String(), lu.PersonID.String(), lu.PasswordHash, lu.Email, lu.Admin, lu.ShowNSFW,
		lu.Theme, string(lu.DefaultSortType), string(lu.DefaultListingType), lu.Lang,
		lu.ShowAvatars, lu.SendNotificationsToEmail,
	)
	return err
}

func (s *Store) getLocalUserView(ctx context.Context, op, where string, arg any) (*model.LocalUserView, error) {
	var (
		pr personRow
		lr localUserRow
		cr countsRow
	)
	err := s.queryRow(ctx, op, selectLocalUserView+` WHERE `+where, []any{arg},
		concat(pr.targets(), lr.targets(), cr.targets())...)
	if err != nil {
		return nil, err
	}
	var p ids
	view := model.LocalUserView{Person: pr.model(&p), LocalUser: lr.model(&p), Counts: cr.model()}
	if p.err != nil {
		return nil, p.err
	}
	return &view, nil
}

// GetLocalUserView returns the local account of personID.
func (s *Store) GetLocalUserView(ctx context.Context, personID ulid.ULID) (*model.LocalUserView, error) {
	return s.getLocalUserView(ctx, "get local user view", `lu.person_id = $1`, personID.String())
}

// GetLocalUserViewByID returns the local account with localUserID.
func (s *Store) GetLocalUserViewByID(ctx context.Context, localUserID ulid.ULID) (*model.LocalUserView, error) {
	return s.getLocalUserView(ctx, "get local user view by id", `lu.id = $1`, localUserID.String())
}

// FindLocalUserView matches a name or email case-insensitively.
func (s *Store) FindLocalUserView(ctx context.Context, nameOrEmail string) (*model.LocalUserView, error) {
	return s.getLocalUserView(ctx, "find local user view",
		`lower(p.name) = lower($1) OR lower(lu.email) = lower($1) LIMIT 1`, nameOrEmail)
}

// FindLocalUserViewByEmail matches an email case-insensitively.
func (s *Store) FindLocalUserViewByEmail(ctx context.Context, email string) (*model.LocalUserView, error) {
	return s.getLocalUserView(ctx, "find local user view by email", `lower(lu.email) = lower($1)`, email)
}

// UpdateLocalUser writes the settings, email and password hash of lu in one
// statement.
func (s *Store) UpdateLocalUser(ctx context.Context, lu *model.LocalUser) error {
	return s.execOne(ctx, "update local user", `
		UPDATE local_user SET
			email = $2, show_nsfw = $3, theme = $4, default_sort_type = $5,
			default_listing_type = $6, lang = $7, show_avatars = $8,
			send_notifications_to_email = $9, password_encrypted = $10
		WHERE id = $1`,
		lu.ID.String(), lu.Email, lu.ShowNSFW, lu.Theme, string(lu.DefaultSortType),
		string(lu.DefaultListingType), lu.Lang, lu.ShowAvatars, lu.SendNotificationsToEmail,
		lu.PasswordHash,
	)
}

// UpdatePassword stores a new password hash.
func (s *Store) UpdatePassword(ctx context.Context, localUserID ulid.ULID, hash string) error {
	return s.execOne(ctx, "update password",
		`UPDATE local_user SET password_encrypted = $2 WHERE id = $1`, localUserID.String(), hash)
}

// SetAdmin sets the admin flag of the local account of personID.
func (s *Store) SetAdmin(ctx context.Context, personID ulid.ULID, admin bool) error {
	return s.execOne(ctx, "set admin",
		`UPDATE local_user SET admin = $2 WHERE person_id = $1`, personID.String(), admin)
}

// GetSite returns the instance record.
func (s *Store) GetSite(ctx context.Context) (*model.Site, error) {
	var (
		id, name, creatorID string
		site                model.Site
	)
	err := s.queryRow(ctx, "get site",
		`SELECT `+strings.Join(siteColumns, ", ")+` FROM site ORDER BY published LIMIT 1`, nil,
		&id, &name, &site.Description, &creatorID, &site.OpenRegistration, &site.EnableNSFW,
		&site.Published)
	if err != nil {
		return nil, err
	}
	var p ids
	site.ID = p.id(id)
	site.Name = name
	site.CreatorID = p.id(creatorID)
	if p.err != nil {
		return nil, p.err
	}
	return &site, nil
}
