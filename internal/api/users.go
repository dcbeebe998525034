package api

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
)

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := call(ctx, c, nethttp.MethodPost, "/api/auth/login", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &resp, nil
}

// GetCurrentUser returns the profile of the authenticated user.
func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := call(ctx, c, nethttp.MethodGet, "/api/users/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetAuthorities returns the roles held by the authenticated user.
func (c *Client) GetAuthorities(ctx context.Context) ([]models.Role, error) {
	var ua models.UserAuthorities
	if err := call(ctx, c, nethttp.MethodGet, "/api/users/me/authorities", nil, nil, &ua); err != nil {
		return nil, err
	}
	return ua.Authorities, nil
}

// ListInstitutionUsers returns one page of users in the caller's institution.
func (c *Client) ListInstitutionUsers(ctx context.Context, search string, page, size int) (*models.Page[models.User], error) {
	return listPage[models.User](ctx, c, "/api/manage/users", pageQuery(search, page, size))
}

// AssignRoles replaces the role set of a user.
func (c *Client) AssignRoles(ctx context.Context, userID string, roles []models.Role) error {
	path := "/api/manage/users/" + url.PathEscape(userID) + "/authorities"
	return call[struct{}](ctx, c, nethttp.MethodPut, path, nil, models.RoleAssignmentRequest{Authorities: roles}, nil)
}
