// Package auth holds the signed-in user's session snapshot.
package auth

import (
	"sort"
	"time"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
)

// RoleSet is an unordered set of roles.
type RoleSet map[models.Role]struct{}

// NewRoleSet builds a set from roles, dropping duplicates.
func NewRoleSet(roles ...models.Role) RoleSet {
	rs := make(RoleSet, len(roles))
	for _, r := range roles {
		rs[r] = struct{}{}
	}
	return rs
}

// Has reports whether role is in the set.
func (rs RoleSet) Has(role models.Role) bool {
	_, ok := rs[role]
	return ok
}

// HasAny reports whether any of roles is in the set.
func (rs RoleSet) HasAny(roles ...models.Role) bool {
	for _, r := range roles {
		if rs.Has(r) {
			return true
		}
	}
	return false
}

// Slice returns the roles sorted by name.
func (rs RoleSet) Slice() []models.Role {
	out := make([]models.Role, 0, len(rs))
	for r := range rs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Session is the snapshot of who is signed in.
type Session struct {
	User      *models.User
	Roles     RoleSet
	Token     string
	ExpiresAt time.Time
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := &Session{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		Roles:     make(RoleSet, len(s.Roles)),
	}
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	for r := range s.Roles {
		c.Roles[r] = struct{}{}
	}
	return c
}

// Authenticated reports whether the session has a user.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

// Expired reports whether the token expiry is known and has passed.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
