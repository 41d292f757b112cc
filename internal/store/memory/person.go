// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/model"
)

func (s *Store) CreatePerson(ctx context.Context, p *model.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "CreatePerson"); err != nil {
		return err
	}
	for _, other := range s.persons {
		if other.ActorID == p.ActorID {
			return conflict("CreatePerson", "person_actor_id_key")
		}
		if p.Local && other.Local && strings.EqualFold(other.Name, p.Name) {
			return conflict("CreatePerson", "person_local_name_key")
		}
	}
	s.persons[p.ID] = *p
	return nil
}

func (s *Store) DeletePerson(ctx context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "DeletePerson"); err != nil {
		return err
	}
	if _, ok := s.persons[id]; !ok {
		return notFound("DeletePerson")
	}
	delete(s.persons, id)
	for luID, lu := range s.localUsers {
		if lu.PersonID == id {
			delete(s.localUsers, luID)
		}
	}
	return nil
}

func (s *Store) GetPerson(ctx context.Context, id ulid.ULID) (*model.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "GetPerson"); err != nil {
		return nil, err
	}
	p, ok := s.persons[id]
	if !ok {
		return nil, notFound("GetPerson")
	}
	return &p, nil
}

func (s *Store) GetPersonByName(ctx context.Context, name string) (*model.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "GetPersonByName"); err != nil {
		return nil, err
	}
	for _, p := range s.persons {
		if p.Local && strings.EqualFold(p.Name, name) {
			return &p, nil
		}
	}
	return nil, notFound("GetPersonByName")
}

func (s *Store) GetPersonView(ctx context.Context, id ulid.ULID) (*model.PersonView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "GetPersonView"); err != nil {
		return nil, err
	}
	p, ok := s.persons[id]
	if !ok {
		return nil, notFound("GetPersonView")
	}
	return &model.PersonView{Person: p, Counts: s.counts(id)}, nil
}

func (s *Store) UpdatePersonProfile(ctx context.Context, id ulid.ULID, profile model.PersonProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "UpdatePersonProfile"); err != nil {
		return err
	}
	p, ok := s.persons[id]
	if !ok {
		return notFound("UpdatePersonProfile")
	}
	profile.Apply(&p)
	now := s.now()
	p.Updated = &now
	s.persons[id] = p
	return nil
}

func (s *Store) SetPersonBanned(ctx context.Context, id ulid.ULID, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "SetPersonBanned"); err != nil {
		return err
	}
	p, ok := s.persons[id]
	if !ok {
		return notFound("SetPersonBanned")
	}
	p.Banned = banned
	s.persons[id] = p
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "DeleteAccount"); err != nil {
		return err
	}
	p, ok := s.persons[id]
	if !ok {
		return notFound("DeleteAccount")
	}
	p.Deleted = true
	p.PreferredUsername, p.Avatar, p.Banner, p.Bio, p.MatrixUserID = nil, nil, nil, nil, nil
	now := s.now()
	p.Updated = &now
	s.persons[id] = p
	return nil
}

func (s *Store) ListAdmins(ctx context.Context) ([]model.PersonView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "ListAdmins"); err != nil {
		return nil, err
	}
	var out []model.PersonView
	for _, lu := range s.localUsers {
		p, ok := s.persons[lu.PersonID]
		if !lu.Admin || !ok || p.Deleted {
			continue
		}
		out = append(out, model.PersonView{Person: p, Counts: s.counts(p.ID)})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Person, out[j].Person
		if !a.Published.Equal(b.Published) {
			return a.Published.Before(b.Published)
		}
		return a.ID.Compare(b.ID) < 0
	})
	return out, nil
}

func (s *Store) checkEmail(op string, lu *model.LocalUser) error {
	for _, other := range s.localUsers {
		if other.ID == lu.ID {
			continue
		}
		if lu.Email != nil && equalFold(*lu.Email, other.Email) {
			return conflictEmail(op)
		}
	}
	return nil
}

func (s *Store) CreateLocalUser(ctx context.Context, lu *model.LocalUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "CreateLocalUser"); err != nil {
		return err
	}
	if err := s.checkEmail("CreateLocalUser", lu); err != nil {
		return err
	}
	for _, other := range s.localUsers {
		if other.PersonID == lu.PersonID {
			return conflict("CreateLocalUser", "local_user_person_id_key")
		}
	}
	s.localUsers[lu.ID] = *lu
	return nil
}

func (s *Store) view(op string, match func(model.Person, model.LocalUser) bool) (*model.LocalUserView, error) {
	for _, lu := range s.localUsers {
		p, ok := s.persons[lu.PersonID]
		if ok && match(p, lu) {
			return &model.LocalUserView{Person: p, LocalUser: lu, Counts: s.counts(p.ID)}, nil
		}
	}
	return nil, notFound(op)
}

func (s *Store) GetLocalUserView(ctx context.Context, personID ulid.ULID) (*model.LocalUserView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "GetLocalUserView"); err != nil {
		return nil, err
	}
	return s.view("GetLocalUserView", func(p model.Person, _ model.LocalUser) bool {
		return p.ID == personID
	})
}

func (s *Store) GetLocalUserViewByID(ctx context.Context, localUserID ulid.ULID) (*model.LocalUserView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "GetLocalUserViewByID"); err != nil {
		return nil, err
	}
	return s.view("GetLocalUserViewByID", func(_ model.Person, lu model.LocalUser) bool {
		return lu.ID == localUserID
	})
}

func (s *Store) FindLocalUserView(ctx context.Context, nameOrEmail string) (*model.LocalUserView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "FindLocalUserView"); err != nil {
		return nil, err
	}
	return s.view("FindLocalUserView", func(p model.Person, lu model.LocalUser) bool {
		return strings.EqualFold(p.Name, nameOrEmail) || equalFold(nameOrEmail, lu.Email)
	})
}

func (s *Store) FindLocalUserViewByEmail(ctx context.Context, email string) (*model.LocalUserView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "FindLocalUserViewByEmail"); err != nil {
		return nil, err
	}
	return s.view("FindLocalUserViewByEmail", func(_ model.Person, lu model.LocalUser) bool {
		return equalFold(email, lu.Email)
	})
}

func (s *Store) UpdateLocalUser(ctx context.Context, lu *model.LocalUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "UpdateLocalUser"); err != nil {
		return err
	}
	cur, ok := s.localUsers[lu.ID]
	if !ok {
		return notFound("UpdateLocalUser")
	}
	if err := s.checkEmail("UpdateLocalUser", lu); err != nil {
		return err
	}
	next := *lu
	next.PersonID = cur.PersonID
	next.Admin = cur.Admin
	s.localUsers[lu.ID] = next
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, localUserID ulid.ULID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "UpdatePassword"); err != nil {
		return err
	}
	lu, ok := s.localUsers[localUserID]
	if !ok {
		return notFound("UpdatePassword")
	}
	lu.PasswordHash = hash
	s.localUsers[localUserID] = lu
	return nil
}

func (s *Store) SetAdmin(ctx context.Context, personID ulid.ULID, admin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "SetAdmin"); err != nil {
		return err
	}
	for id, lu := range s.localUsers {
		if lu.PersonID == personID {
			lu.Admin = admin
			s.localUsers[id] = lu
			return nil
		}
	}
	return notFound("SetAdmin")
}

func (s *Store) GetSite(ctx context.Context) (*model.Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx, "GetSite"); err != nil {
		return nil, err
	}
	if s.site == nil {
		return nil, notFound("GetSite")
	}
	site := *s.site
	return &site, nil
}
