package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"designlab-backend/internal/domains/design/model"
)

// =====================================================
// IN-MEMORY REPOSITORY IMPLEMENTATION
// =====================================================

// memoryDesignRepository backs local development when no database is
// configured. Records live for the process lifetime only.
type memoryDesignRepository struct {
	mu      sync.RWMutex
	records map[string]*model.DesignRecord
}

func NewMemoryDesignRepository() DesignRepository {
	return &memoryDesignRepository{
		records: make(map[string]*model.DesignRecord),
	}
}

func (r *memoryDesignRepository) Create(_ context.Context, record *model.DesignRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneRecord(record)
	if stored.Previews == nil {
		stored.Previews = []model.PreviewEntry{}
	}
	r.records[record.DesignID] = stored

	return nil
}

func (r *memoryDesignRepository) GetByID(_ context.Context, designID string) (*model.DesignRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[designID]
	if !ok {
		return nil, model.ErrDesignNotFound
	}

	return cloneRecord(record), nil
}

func (r *memoryDesignRepository) AppendPreview(_ context.Context, designID string, entry model.PreviewEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[designID]
	if !ok {
		return model.ErrDesignNotFound
	}

	record.Previews = append(record.Previews, entry)
	if record.PreviewURL == "" {
		record.PreviewURL = entry.URL
	}

	return nil
}

func (r *memoryDesignRepository) RefreshPreviewURL(_ context.Context, designID, storageKey, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[designID]
	if !ok {
		return model.ErrDesignNotFound
	}

	for i := range record.Previews {
		if record.Previews[i].StorageKey != storageKey {
			continue
		}
		record.Previews[i].URL = url
		if i == 0 {
			record.PreviewURL = url
		}
	}

	return nil
}

func (r *memoryDesignRepository) ListRecent(_ context.Context, since time.Time, limit int) ([]*model.DesignRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*model.DesignRecord, 0)
	for _, record := range r.records {
		if record.CreatedAt.Before(since) {
			continue
		}
		records = append(records, cloneRecord(record))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

// cloneRecord copies the record deeply enough that callers cannot
// mutate stored state through returned pointers.
func cloneRecord(record *model.DesignRecord) *model.DesignRecord {
	clone := *record
	clone.Previews = append([]model.PreviewEntry{}, record.Previews...)
	return &clone
}
