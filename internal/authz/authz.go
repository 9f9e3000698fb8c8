// Package authz resolves a signed-in email to a permission set. The owner is
// privileged unconditionally and never appears in the stored grant list;
// everyone else is either a delegated admin with an explicit grant or has no
// admin access at all.
package authz

import (
	"context"
	"errors"

	"github.com/holymotion/holymotion/internal/store"
)

const grantsKey = "hm_secondary_admins"

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidCode = errors.New("invalid owner code")
)

type PermissionSet struct {
	CanPublish bool `json:"canPublish"`
	CanEdit    bool `json:"canEdit"`
	CanDelete  bool `json:"canDelete"`
}

var Full = PermissionSet{CanPublish: true, CanEdit: true, CanDelete: true}

type Grant struct {
	Email       string        `json:"email"`
	Permissions PermissionSet `json:"permissions"`
}

// ResolvePermissions is the pure core of the model: the owner always gets the
// full set, even if a grant record for the owner somehow exists.
func ResolvePermissions(ownerEmail, email string, grants []Grant) (PermissionSet, bool) {
	if email == "" {
		return PermissionSet{}, false
	}
	if email == ownerEmail {
		return Full, true
	}
	for _, g := range grants {
		if g.Email == email {
			return g.Permissions, true
		}
	}
	return PermissionSet{}, false
}

type Service struct {
	store      store.Store
	ownerEmail string
	ownerCode  string
}

func NewService(st store.Store, ownerEmail, ownerCode string) *Service {
	return &Service{store: st, ownerEmail: ownerEmail, ownerCode: ownerCode}
}

func (s *Service) IsOwner(email string) bool {
	return email == s.ownerEmail
}

func (s *Service) Resolve(ctx context.Context, email string) (PermissionSet, bool, error) {
	grants, err := s.loadGrants(ctx)
	if err != nil {
		return PermissionSet{}, false, err
	}
	perms, ok := ResolvePermissions(s.ownerEmail, email, grants)
	return perms, ok, nil
}

func (s *Service) IsAdmin(ctx context.Context, email string) (bool, error) {
	_, ok, err := s.Resolve(ctx, email)
	return ok, err
}

// Grant adds a delegated admin. A second grant for the same email replaces
// the earlier record, so resolution never depends on list order.
func (s *Service) Grant(ctx context.Context, requester, email string, perms PermissionSet, code string) (Grant, error) {
	if !s.IsOwner(requester) {
		return Grant{}, ErrForbidden
	}
	if code != s.ownerCode {
		return Grant{}, ErrInvalidCode
	}

	grants, err := s.loadGrants(ctx)
	if err != nil {
		return Grant{}, err
	}

	grant := Grant{Email: email, Permissions: perms}
	replaced := false
	for i, g := range grants {
		if g.Email == email {
			grants[i] = grant
			replaced = true
			break
		}
	}
	if !replaced {
		grants = append(grants, grant)
	}

	if err := store.PutJSON(ctx, s.store, grantsKey, grants); err != nil {
		return Grant{}, err
	}
	return grant, nil
}

func (s *Service) Revoke(ctx context.Context, requester, email string) error {
	if !s.IsOwner(requester) {
		return ErrForbidden
	}

	grants, err := s.loadGrants(ctx)
	if err != nil {
		return err
	}

	kept := grants[:0]
	for _, g := range grants {
		if g.Email != email {
			kept = append(kept, g)
		}
	}
	return store.PutJSON(ctx, s.store, grantsKey, kept)
}

func (s *Service) List(ctx context.Context, requester string) ([]Grant, error) {
	if !s.IsOwner(requester) {
		return nil, ErrForbidden
	}
	return s.loadGrants(ctx)
}

func (s *Service) loadGrants(ctx context.Context) ([]Grant, error) {
	var grants []Grant
	err := store.GetJSON(ctx, s.store, grantsKey, &grants)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return grants, nil
}
