package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
)

// ErrNoToken is returned when no saved token exists.
var ErrNoToken = errors.New("no saved session token")

// Claims is the payload of a platform session token.
type Claims struct {
	jwt.RegisteredClaims

	Username      string   `json:"username"`
	Phone         string   `json:"phone"`
	RealName      string   `json:"realName"`
	InstitutionID string   `json:"institutionId"`
	Roles         []string `json:"roles"`
	Authorities   []string `json:"authorities"`
}

// SessionFromToken builds a session from the token's claims without
// verifying the signature. The server verifies; the client only reads.
func SessionFromToken(token string) (*Session, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("session token has no subject")
	}

	s := &Session{
		User: &models.User{
			ID:            claims.Subject,
			Username:      claims.Username,
			Phone:         claims.Phone,
			RealName:      claims.RealName,
			InstitutionID: claims.InstitutionID,
		},
		Roles: NewRoleSet(),
		Token: token,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	for _, r := range append(claims.Roles, claims.Authorities...) {
		s.Roles[models.Role(strings.TrimPrefix(r, "ROLE_"))] = struct{}{}
	}
	return s, nil
}

// ProfileSource is the part of the API client used to complete a session.
type ProfileSource interface {
	GetCurrentUser(ctx context.Context) (*models.User, error)
	GetAuthorities(ctx context.Context) ([]models.Role, error)
}

// Restore builds a session for token, preferring the server's view of the
// user and roles over the token claims.
func Restore(ctx context.Context, src ProfileSource, token string) (*Session, error) {
	s, err := SessionFromToken(token)
	if err != nil {
		// Opaque tokens are allowed; the server still knows who we are
		s = &Session{Token: token, Roles: NewRoleSet()}
	}

	user, err := src.GetCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}
	s.User = user

	roles, err := src.GetAuthorities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load authorities: %w", err)
	}
	s.Roles = NewRoleSet(roles...)
	return s, nil
}

// SaveToken writes token to path with owner-only permissions.
func SaveToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strings.TrimSpace(token)+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// LoadToken reads a token saved by SaveToken.
func LoadToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// DeleteToken removes the saved token. A missing file is not an error.
func DeleteToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
