package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aibanker/go-aibanker/api"
)

// DashboardStats returns the aggregated platform statistics backing the
// dashboard view.
func (c *Client) DashboardStats(ctx context.Context) (*api.DashboardStats, error) {
	var stats api.DashboardStats
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/analytics/dashboard", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// PerformanceMetrics returns deal outcomes over the trailing periodDays
// window. Zero means the server default of 30 days.
func (c *Client) PerformanceMetrics(ctx context.Context, periodDays int) (*api.PerformanceMetrics, error) {
	path := "/api/v1/analytics/performance"
	if periodDays > 0 {
		path += fmt.Sprintf("?period_days=%d", periodDays)
	}

	var metrics api.PerformanceMetrics
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

// DealPipeline returns the per-status pipeline breakdown.
func (c *Client) DealPipeline(ctx context.Context) ([]api.PipelineEntry, error) {
	var pipeline []api.PipelineEntry
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/analytics/pipeline", nil, &pipeline); err != nil {
		return nil, err
	}
	return pipeline, nil
}
