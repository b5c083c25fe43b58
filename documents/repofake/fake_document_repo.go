package fakedocumentrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aibanker/go-aibanker/documents"
	"github.com/aibanker/go-aibanker/internal/errors"
)

var _ documents.Repo = (*FakeDocumentRepo)(nil)

type FakeDocumentRepo struct {
	docs   map[int64]*documents.Document
	nextID int64
	lock   sync.RWMutex
}

func NewFakeDocumentRepo() *FakeDocumentRepo {
	return &FakeDocumentRepo{
		docs:   make(map[int64]*documents.Document),
		nextID: 1,
	}
}

func (dr *FakeDocumentRepo) Create(_ context.Context, doc *documents.Document) error {
	dr.lock.Lock()
	defer dr.lock.Unlock()

	doc.ID = dr.nextID
	dr.nextID++
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	doc.Version = 1

	stored := *doc
	dr.docs[doc.ID] = &stored
	return nil
}

func (dr *FakeDocumentRepo) Update(_ context.Context, doc *documents.Document) error {
	dr.lock.Lock()
	defer dr.lock.Unlock()

	existing, ok := dr.docs[doc.ID]
	if !ok {
		return errors.ErrNotFound
	}
	if existing.Version != doc.Version {
		return errors.ErrVersionConflict
	}

	doc.Version++
	doc.UpdatedAt = time.Now().UTC()
	doc.CreatedAt = existing.CreatedAt

	stored := *doc
	dr.docs[doc.ID] = &stored
	return nil
}

func (dr *FakeDocumentRepo) Delete(_ context.Context, id int64) error {
	dr.lock.Lock()
	defer dr.lock.Unlock()

	if _, ok := dr.docs[id]; !ok {
		return errors.ErrNotFound
	}
	delete(dr.docs, id)
	return nil
}

func (dr *FakeDocumentRepo) GetByID(_ context.Context, id int64) (*documents.Document, error) {
	dr.lock.RLock()
	defer dr.lock.RUnlock()

	doc, ok := dr.docs[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (dr *FakeDocumentRepo) List(_ context.Context, offset, limit int) ([]*documents.Document, error) {
	dr.lock.RLock()
	defer dr.lock.RUnlock()
	return dr.collect(func(*documents.Document) bool { return true }, offset, limit), nil
}

func (dr *FakeDocumentRepo) ListByDeal(_ context.Context, dealID int64, offset, limit int) ([]*documents.Document, error) {
	dr.lock.RLock()
	defer dr.lock.RUnlock()
	return dr.collect(func(d *documents.Document) bool { return d.DealID == dealID }, offset, limit), nil
}

func (dr *FakeDocumentRepo) ListByUploader(_ context.Context, userID int64, offset, limit int) ([]*documents.Document, error) {
	dr.lock.RLock()
	defer dr.lock.RUnlock()
	return dr.collect(func(d *documents.Document) bool { return d.UploadedBy == userID }, offset, limit), nil
}

func (dr *FakeDocumentRepo) SetStatus(_ context.Context, id int64, status documents.Status, processingError string) error {
	dr.lock.Lock()
	defer dr.lock.Unlock()

	doc, ok := dr.docs[id]
	if !ok {
		return errors.ErrNotFound
	}

	now := time.Now().UTC()
	doc.Status = status
	doc.ProcessingError = processingError
	if status == documents.StatusProcessed || status == documents.StatusFailed {
		doc.ProcessedAt = now
	}
	doc.Version++
	doc.UpdatedAt = now
	return nil
}

func (dr *FakeDocumentRepo) collect(match func(*documents.Document) bool, offset, limit int) []*documents.Document {
	docList := make([]*documents.Document, 0)
	for _, d := range dr.docs {
		if match(d) {
			copied := *d
			docList = append(docList, &copied)
		}
	}

	sort.Slice(docList, func(i, j int) bool {
		return docList[i].ID < docList[j].ID
	})

	if offset >= len(docList) {
		return nil
	}
	end := len(docList)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return docList[offset:end]
}
