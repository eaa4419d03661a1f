package repository

import (
	"context"
	"time"

	"designlab-backend/internal/domains/design/model"
)

// =====================================================
// DESIGN REPOSITORY INTERFACE
// =====================================================

type DesignRepository interface {
	// ========================================
	// CRUD Operations
	// ========================================

	// Create persists a new design record
	Create(ctx context.Context, record *model.DesignRecord) error

	// GetByID gets a design record by design id
	GetByID(ctx context.Context, designID string) (*model.DesignRecord, error)

	// ========================================
	// PREVIEW Operations
	// ========================================

	// AppendPreview atomically appends one preview entry and sets the
	// record's preview URL only if it is still unset. Safe under
	// concurrent appends from parallel render workers.
	AppendPreview(ctx context.Context, designID string, entry model.PreviewEntry) error

	// RefreshPreviewURL rewrites the URL of the preview entry matching
	// storageKey in place, plus the record's preview URL when that
	// entry is the first one. A single atomic update per entry, so it
	// never races with concurrent appends.
	RefreshPreviewURL(ctx context.Context, designID, storageKey, url string) error

	// ========================================
	// LIST Operations
	// ========================================

	// ListRecent lists records created within the given window, newest
	// first, capped at limit.
	ListRecent(ctx context.Context, since time.Time, limit int) ([]*model.DesignRecord, error)
}
