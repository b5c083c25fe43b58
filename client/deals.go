package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aibanker/go-aibanker/api"
	"github.com/aibanker/go-aibanker/deals"
)

// ListDeals returns the deals visible to the authenticated user.
func (c *Client) ListDeals(ctx context.Context, opts ListOptions) ([]*deals.Deal, error) {
	var dealList []*deals.Deal
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/deals"+opts.query(), nil, &dealList); err != nil {
		return nil, err
	}
	return dealList, nil
}

// GetDeal fetches a single deal by id.
func (c *Client) GetDeal(ctx context.Context, id int64) (*deals.Deal, error) {
	var deal deals.Deal
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/deals/%d", id), nil, &deal); err != nil {
		return nil, err
	}
	return &deal, nil
}

// CreateDeal creates a new deal owned by the authenticated user.
func (c *Client) CreateDeal(ctx context.Context, req api.CreateDealRequest) (*deals.Deal, error) {
	var deal deals.Deal
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/deals", req, &deal); err != nil {
		return nil, err
	}
	return &deal, nil
}

// UpdateDeal mutates a deal. req.Version must carry the version the
// caller read; if the deal changed in the meantime the server rejects the
// write and the error matches ErrVersionConflict.
func (c *Client) UpdateDeal(ctx context.Context, id int64, req api.UpdateDealRequest) (*deals.Deal, error) {
	var deal deals.Deal
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/v1/deals/%d", id), req, &deal); err != nil {
		return nil, err
	}
	return &deal, nil
}

// DeleteDeal removes a deal.
func (c *Client) DeleteDeal(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/deals/%d", id), nil, nil)
}

// StartDealProcessing kicks off document analysis for the deal.
func (c *Client) StartDealProcessing(ctx context.Context, id int64) (*api.DealStatusResponse, error) {
	var status api.DealStatusResponse
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/v1/deals/%d/start-processing", id), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// DealStatus returns the processing-status view of a deal.
func (c *Client) DealStatus(ctx context.Context, id int64) (*api.DealStatusResponse, error) {
	var status api.DealStatusResponse
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/deals/%d/status", id), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
