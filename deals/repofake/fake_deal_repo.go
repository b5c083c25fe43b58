package fakedealrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aibanker/go-aibanker/deals"
	"github.com/aibanker/go-aibanker/internal/errors"
)

var _ deals.Repo = (*FakeDealRepo)(nil)

type FakeDealRepo struct {
	deals  map[int64]*deals.Deal
	nextID int64
	lock   sync.RWMutex
}

func NewFakeDealRepo() *FakeDealRepo {
	return &FakeDealRepo{
		deals:  make(map[int64]*deals.Deal),
		nextID: 1,
	}
}

func (dr *FakeDealRepo) Create(_ context.Context, deal *deals.Deal) error {
	dr.lock.Lock()
	defer dr.lock.Unlock()

	deal.ID = dr.nextID
	dr.nextID++
	now := time.Now().UTC()
	deal.CreatedAt = now
	deal.UpdatedAt = now
	deal.Version = 1

	stored := *deal
	dr.deals[deal.ID] = &stored
	return nil
}

func (dr *FakeDealRepo) Update(_ context.Context, deal *deals.Deal) error {
	dr.lock.Lock()
	defer dr.lock.Unlock()

	existing, ok := dr.deals[deal.ID]
	if !ok {
		return errors.ErrNotFound
	}
	if existing.Version != deal.Version {
		return errors.ErrVersionConflict
	}

	deal.Version++
	deal.UpdatedAt = time.Now().UTC()
	deal.CreatedAt = existing.CreatedAt

	stored := *deal
	dr.deals[deal.ID] = &stored
	return nil
}

func (dr *FakeDealRepo) Delete(_ context.Context, id int64) error {
	dr.lock.Lock()
	defer dr.lock.Unlock()

	if _, ok := dr.deals[id]; !ok {
		return errors.ErrNotFound
	}
	delete(dr.deals, id)
	return nil
}

func (dr *FakeDealRepo) GetByID(_ context.Context, id int64) (*deals.Deal, error) {
	dr.lock.RLock()
	defer dr.lock.RUnlock()

	deal, ok := dr.deals[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	copied := *deal
	return &copied, nil
}

func (dr *FakeDealRepo) List(_ context.Context, offset, limit int) ([]*deals.Deal, error) {
	dr.lock.RLock()
	defer dr.lock.RUnlock()
	return dr.collect(func(*deals.Deal) bool { return true }, offset, limit), nil
}

func (dr *FakeDealRepo) ListByCreator(_ context.Context, userID int64, offset, limit int) ([]*deals.Deal, error) {
	dr.lock.RLock()
	defer dr.lock.RUnlock()
	return dr.collect(func(d *deals.Deal) bool { return d.CreatedBy == userID }, offset, limit), nil
}

func (dr *FakeDealRepo) SetProcessing(_ context.Context, id int64, status deals.ProcessingStatus) error {
	dr.lock.Lock()
	defer dr.lock.Unlock()

	deal, ok := dr.deals[id]
	if !ok {
		return errors.ErrNotFound
	}

	now := time.Now().UTC()
	deal.AIProcessingStatus = status
	switch status {
	case deals.ProcessingInProgress:
		deal.AIProcessingStarted = now
		deal.AIProcessingCompleted = time.Time{}
	case deals.ProcessingCompleted, deals.ProcessingFailed:
		deal.AIProcessingCompleted = now
	}
	deal.Version++
	deal.UpdatedAt = now
	return nil
}

func (dr *FakeDealRepo) collect(match func(*deals.Deal) bool, offset, limit int) []*deals.Deal {
	dealList := make([]*deals.Deal, 0)
	for _, d := range dr.deals {
		if match(d) {
			copied := *d
			dealList = append(dealList, &copied)
		}
	}

	sort.Slice(dealList, func(i, j int) bool {
		return dealList[i].ID < dealList[j].ID
	})

	if offset >= len(dealList) {
		return nil
	}
	end := len(dealList)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return dealList[offset:end]
}
