package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"designlab-backend/internal/config"
	"designlab-backend/internal/domains/design/model"
	"designlab-backend/internal/domains/design/repository"
)

// Defaults applied when the scheduled payload omits its knobs.
const (
	defaultRefreshWindowHours = 24
	defaultRefreshLimit       = 200
)

// =====================================================
// REFRESH PREVIEW URLS HANDLER
// =====================================================

// RefreshPreviewURLsHandler re-presigns preview URLs for recent
// records. Presigned URLs expire; records inside the refresh window
// get fresh URLs so polling clients keep working links.
type RefreshPreviewURLsHandler struct {
	cfg     config.GenerationConfig
	storage PreviewStorage
	repo    repository.DesignRepository
}

func NewRefreshPreviewURLsHandler(
	cfg config.GenerationConfig,
	storage PreviewStorage,
	repo repository.DesignRepository,
) *RefreshPreviewURLsHandler {
	return &RefreshPreviewURLsHandler{
		cfg:     cfg,
		storage: storage,
		repo:    repo,
	}
}

func (h *RefreshPreviewURLsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload model.RefreshPreviewURLsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Dropping refresh task with undecodable payload")
		return nil
	}
	if payload.WindowHours <= 0 {
		payload.WindowHours = defaultRefreshWindowHours
	}
	if payload.Limit <= 0 {
		payload.Limit = defaultRefreshLimit
	}

	since := time.Now().UTC().Add(-time.Duration(payload.WindowHours) * time.Hour)
	records, err := h.repo.ListRecent(ctx, since, payload.Limit)
	if err != nil {
		return fmt.Errorf("list recent designs: %w", err)
	}

	ttl := time.Duration(h.cfg.PreviewTTLSeconds) * time.Second
	refreshed := 0
	for _, record := range records {
		if len(record.Previews) == 0 {
			continue
		}
		if err := h.refreshRecord(ctx, record, ttl); err != nil {
			log.Error().
				Err(err).
				Str("design_id", record.DesignID).
				Msg("Failed to refresh preview URLs")
			continue
		}
		refreshed++
	}

	log.Info().
		Int("scanned", len(records)).
		Int("refreshed", refreshed).
		Msg("Preview URL refresh complete")

	return nil
}

// refreshRecord presigns every stored key again and rewrites each
// entry's URL individually, keyed by storage key. Previews is a shared
// append target for in-flight render workers, so the record's array is
// never written back wholesale from this snapshot.
func (h *RefreshPreviewURLsHandler) refreshRecord(ctx context.Context, record *model.DesignRecord, ttl time.Duration) error {
	for _, p := range record.Previews {
		url, err := h.storage.PresignedGetURL(ctx, p.StorageKey, ttl)
		if err != nil {
			return fmt.Errorf("presign %s: %w", p.StorageKey, err)
		}
		if err := h.repo.RefreshPreviewURL(ctx, record.DesignID, p.StorageKey, url); err != nil {
			return fmt.Errorf("refresh %s: %w", p.StorageKey, err)
		}
	}

	return nil
}
