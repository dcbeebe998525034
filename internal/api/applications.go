package api

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
)

// ListMyApplications returns the caller's own access applications.
func (c *Client) ListMyApplications(ctx context.Context, page, size int) (*models.Page[models.Application], error) {
	return listPage[models.Application](ctx, c, "/api/applications/my", pageQuery("", page, size))
}

// ListApplicationsForReview returns applications the caller can review.
func (c *Client) ListApplicationsForReview(ctx context.Context, page, size int) (*models.Page[models.Application], error) {
	return listPage[models.Application](ctx, c, "/api/manage/applications", pageQuery("", page, size))
}

// GetApplication fetches a single application as seen by a reviewer.
func (c *Client) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	if err := call(ctx, c, nethttp.MethodGet, "/api/manage/applications/"+url.PathEscape(id), nil, nil, &app); err != nil {
		return nil, fmt.Errorf("get application %s: %w", id, err)
	}
	return &app, nil
}

// ReviewApplication approves or rejects an access application.
func (c *Client) ReviewApplication(ctx context.Context, id string, review models.ReviewRequest) error {
	path := "/api/manage/applications/" + url.PathEscape(id) + "/review"
	return call[struct{}](ctx, c, nethttp.MethodPost, path, nil, review, nil)
}
