package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/serendigo/serendigo-backend-go/internal/models"
)

// GuideHistory fetches the user's guide history grouped by day.
func (c *Client) GuideHistory(ctx context.Context, token string) (*models.HistoryResponse, error) {
	var resp models.HistoryResponse
	if err := c.do(ctx, http.MethodGet, "/guide-history", nil, token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GuideHistoryDetail fetches one history record with its spots and search
// parameters.
func (c *Client) GuideHistoryDetail(ctx context.Context, token string, id int64) (*models.HistoryDetail, error) {
	var detail models.HistoryDetail
	path := "/guide-history/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, token, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateGuideHistory stores a finished guide in the history.
func (c *Client) CreateGuideHistory(ctx context.Context, token string, input models.CreateGuideHistoryInput) (*models.CreateGuideHistoryResponse, error) {
	var resp models.CreateGuideHistoryResponse
	if err := c.do(ctx, http.MethodPost, "/guide-history", nil, token, input, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
