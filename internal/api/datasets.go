package api

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
)

// ListDatasets returns one page of published datasets matching search.
func (c *Client) ListDatasets(ctx context.Context, search string, page, size int) (*models.Page[models.Dataset], error) {
	return listPage[models.Dataset](ctx, c, "/api/datasets", pageQuery(search, page, size))
}

// ListDatasetsForReview returns datasets awaiting approval that the caller may review.
func (c *Client) ListDatasetsForReview(ctx context.Context, page, size int) (*models.Page[models.Dataset], error) {
	return listPage[models.Dataset](ctx, c, "/api/manage/datasets", pageQuery("", page, size))
}

// GetDataset fetches a single dataset.
func (c *Client) GetDataset(ctx context.Context, id string) (*models.Dataset, error) {
	var ds models.Dataset
	if err := call(ctx, c, nethttp.MethodGet, "/api/datasets/"+url.PathEscape(id), nil, nil, &ds); err != nil {
		return nil, fmt.Errorf("get dataset %s: %w", id, err)
	}
	return &ds, nil
}

// ReviewDataset approves or rejects a dataset version.
func (c *Client) ReviewDataset(ctx context.Context, id string, review models.ReviewRequest) error {
	path := "/api/manage/datasets/" + url.PathEscape(id) + "/review"
	return call[struct{}](ctx, c, nethttp.MethodPost, path, nil, review, nil)
}

// ListResearchOutputs returns one page of research outputs matching search.
func (c *Client) ListResearchOutputs(ctx context.Context, search string, page, size int) (*models.Page[models.ResearchOutput], error) {
	return listPage[models.ResearchOutput](ctx, c, "/api/research-outputs", pageQuery(search, page, size))
}

// ListResearchOutputsForReview returns submitted outputs awaiting approval.
func (c *Client) ListResearchOutputsForReview(ctx context.Context, page, size int) (*models.Page[models.ResearchOutput], error) {
	return listPage[models.ResearchOutput](ctx, c, "/api/manage/research-outputs", pageQuery("", page, size))
}

// ReviewResearchOutput approves or rejects a research output.
func (c *Client) ReviewResearchOutput(ctx context.Context, id string, review models.ReviewRequest) error {
	path := "/api/manage/research-outputs/" + url.PathEscape(id) + "/review"
	return call[struct{}](ctx, c, nethttp.MethodPost, path, nil, review, nil)
}
