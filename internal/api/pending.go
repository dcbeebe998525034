package api

import (
	"context"
	nethttp "net/http"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
)

func (c *Client) pendingCount(ctx context.Context, path string) (int, error) {
	var pc models.PendingCount
	if err := call(ctx, c, nethttp.MethodGet, path, nil, nil, &pc); err != nil {
		return 0, err
	}
	return pc.PendingReviewCount, nil
}

// ResearchOutputsPendingCount returns the number of outputs awaiting the caller's review.
func (c *Client) ResearchOutputsPendingCount(ctx context.Context) (int, error) {
	return c.pendingCount(ctx, "/api/research-outputs/pending-count")
}

// ApplicationsPendingCount returns the number of applications awaiting the caller's review.
func (c *Client) ApplicationsPendingCount(ctx context.Context) (int, error) {
	return c.pendingCount(ctx, "/api/applications/pending-count")
}

// DatasetsPendingCount returns the number of datasets awaiting the caller's review.
func (c *Client) DatasetsPendingCount(ctx context.Context) (int, error) {
	return c.pendingCount(ctx, "/api/datasets/pending-count")
}
