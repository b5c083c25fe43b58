// Package analytics aggregates platform activity for the dashboard,
// performance, and pipeline views. Figures are computed from the
// repositories on demand.
package analytics

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/aibanker/go-aibanker/api"
	"github.com/aibanker/go-aibanker/deals"
	"github.com/aibanker/go-aibanker/documents"
)

type Service struct {
	deals     deals.Repo
	documents documents.Repo
	now       func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithNowFunc injects the clock used for trailing-window calculations.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(dealRepo deals.Repo, documentRepo documents.Repo, options ...Option) *Service {
	s := &Service{
		deals:     dealRepo,
		documents: documentRepo,
		now:       time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// pipelineOrder fixes the presentation order of the status breakdown.
var pipelineOrder = []deals.Status{
	deals.StatusDraft,
	deals.StatusInProgress,
	deals.StatusDueDiligence,
	deals.StatusPitchbookReady,
	deals.StatusCompleted,
	deals.StatusCancelled,
}

// DashboardStats aggregates the deals and documents visible to the user.
// Admins see platform-wide figures; everyone else sees their own.
func (s *Service) DashboardStats(ctx context.Context, userID int64, isAdmin bool) (*api.DashboardStats, error) {
	dealList, err := s.visibleDeals(ctx, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	stats := &api.DashboardStats{
		DealsByStatus: make(map[deals.Status]int),
		DealsByType:   make(map[deals.Type]int),
	}

	for _, d := range dealList {
		stats.TotalDeals++
		stats.DealsByStatus[d.Status]++
		stats.DealsByType[d.DealType]++
		stats.TotalDealValue += d.DealValue
		if d.IsActive() {
			stats.ActiveDeals++
		}
		if d.Status == deals.StatusCompleted {
			stats.CompletedDeals++
		}
	}

	docList, err := s.visibleDocuments(ctx, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	for _, doc := range docList {
		stats.TotalDocuments++
		switch doc.Status {
		case documents.StatusProcessed:
			stats.ProcessedDocuments++
		case documents.StatusUploaded, documents.StatusProcessing:
			stats.PendingDocuments++
		}
	}

	return stats, nil
}

// DealPipeline breaks visible deals down by status with aggregate value.
func (s *Service) DealPipeline(ctx context.Context, userID int64, isAdmin bool) ([]api.PipelineEntry, error) {
	dealList, err := s.visibleDeals(ctx, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[deals.Status]*api.PipelineEntry)
	for _, d := range dealList {
		entry, ok := byStatus[d.Status]
		if !ok {
			entry = &api.PipelineEntry{Status: d.Status}
			byStatus[d.Status] = entry
		}
		entry.Count++
		entry.TotalValue += d.DealValue
	}

	pipeline := make([]api.PipelineEntry, 0, len(byStatus))
	for _, status := range pipelineOrder {
		if entry, ok := byStatus[status]; ok {
			pipeline = append(pipeline, *entry)
		}
	}
	return pipeline, nil
}

// PerformanceMetrics summarizes deal outcomes over the trailing window of
// periodDays. Cycle time and success rate need a terminal deal state, so
// they are computed over all completed and cancelled deals rather than
// the window.
func (s *Service) PerformanceMetrics(ctx context.Context, userID int64, isAdmin bool, periodDays int) (*api.PerformanceMetrics, error) {
	dealList, err := s.visibleDeals(ctx, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().UTC().AddDate(0, 0, -periodDays)
	metrics := &api.PerformanceMetrics{}

	var (
		completed    int
		cancelled    int
		cycleTotal   time.Duration
		cycleSamples int
	)
	for _, d := range dealList {
		switch d.Status {
		case deals.StatusCompleted:
			completed++
			if d.ActualCloseDate.IsZero() {
				continue
			}
			if d.ActualCloseDate.After(d.CreatedAt) {
				cycleTotal += d.ActualCloseDate.Sub(d.CreatedAt)
				cycleSamples++
			}
			if d.ActualCloseDate.After(cutoff) {
				metrics.DealsClosedInPeriod++
				metrics.RevenueGenerated += d.DealValue
			}
		case deals.StatusCancelled:
			cancelled++
		case deals.StatusInProgress, deals.StatusDueDiligence, deals.StatusPitchbookReady:
			metrics.DealsInPipeline++
		}
	}

	if cycleSamples > 0 {
		metrics.AvgDealCycleTimeDays = cycleTotal.Hours() / 24 / float64(cycleSamples)
	}
	if completed+cancelled > 0 {
		metrics.SuccessRate = float64(completed) / float64(completed+cancelled)
	}
	return metrics, nil
}

func (s *Service) visibleDeals(ctx context.Context, userID int64, isAdmin bool) ([]*deals.Deal, error) {
	var (
		dealList []*deals.Deal
		err      error
	)
	if isAdmin {
		dealList, err = s.deals.List(ctx, 0, 0)
	} else {
		dealList, err = s.deals.ListByCreator(ctx, userID, 0, 0)
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Service.visibleDeals] list deals")
	}
	return dealList, nil
}

func (s *Service) visibleDocuments(ctx context.Context, userID int64, isAdmin bool) ([]*documents.Document, error) {
	var (
		docList []*documents.Document
		err     error
	)
	if isAdmin {
		docList, err = s.documents.List(ctx, 0, 0)
	} else {
		docList, err = s.documents.ListByUploader(ctx, userID, 0, 0)
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Service.visibleDocuments] list documents")
	}
	return docList, nil
}
