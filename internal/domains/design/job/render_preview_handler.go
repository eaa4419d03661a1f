package job

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"designlab-backend/internal/config"
	"designlab-backend/internal/domains/design/model"
	"designlab-backend/internal/domains/design/repository"
)

// ImageGenerator renders preview bytes for a prompt, reporting the
// provider used.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt, designID string) ([]byte, string, error)
}

// PreviewStorage is the slice of the object store the render pipeline
// needs.
type PreviewStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	PublicURL(key string) string
}

// =====================================================
// RENDER PREVIEW HANDLER
// =====================================================

// RenderPreviewHandler renders one preview image and appends it to the
// design record. Retryable failures (upload, record update) return an
// error so asynq redelivers; poison payloads are logged and dropped.
type RenderPreviewHandler struct {
	cfg       config.GenerationConfig
	generator ImageGenerator
	storage   PreviewStorage
	repo      repository.DesignRepository
}

func NewRenderPreviewHandler(
	cfg config.GenerationConfig,
	generator ImageGenerator,
	storage PreviewStorage,
	repo repository.DesignRepository,
) *RenderPreviewHandler {
	return &RenderPreviewHandler{
		cfg:       cfg,
		generator: generator,
		storage:   storage,
		repo:      repo,
	}
}

// ProcessTask runs the render pipeline for one preview index.
func (h *RenderPreviewHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	state := StateQueued

	var payload model.RenderPreviewPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Dropping render task with undecodable payload")
		return nil
	}
	if payload.DesignID == "" || payload.Prompt == "" {
		log.Error().
			Str("design_id", payload.DesignID).
			Int("index", payload.Index).
			Msg("Dropping render task with incomplete payload")
		return nil
	}

	log.Info().
		Str("design_id", payload.DesignID).
		Int("index", payload.Index).
		Msg("Rendering design preview")

	// Generate
	state = StateGenerating
	img, providerName, err := h.generator.Generate(ctx, payload.Prompt, payload.DesignID)
	if err != nil {
		h.logFailure(payload, state, err)
		return fmt.Errorf("generate preview: %w", err)
	}

	// Upload
	key := PreviewStorageKey(payload.DesignID, payload.Index)
	if _, err := h.storage.Upload(ctx, key, img, "image/png"); err != nil {
		h.logFailure(payload, state, err)
		return fmt.Errorf("upload preview: %w", err)
	}
	state = StateUploaded

	// Presign, falling back to the public URL when presigning fails.
	// A fallback URL only works on public buckets but keeps the record
	// usable in development setups.
	ttl := time.Duration(h.cfg.PreviewTTLSeconds) * time.Second
	url, err := h.storage.PresignedGetURL(ctx, key, ttl)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Presign failed, using public URL")
		url = h.storage.PublicURL(key)
	}

	// Record update
	entry := model.PreviewEntry{StorageKey: key, URL: url}
	if err := h.repo.AppendPreview(ctx, payload.DesignID, entry); err != nil {
		if errors.Is(err, model.ErrDesignNotFound) {
			// The record was deleted after enqueue; redelivery cannot
			// succeed, so drop.
			log.Error().
				Str("design_id", payload.DesignID).
				Msg("Dropping render task for missing design record")
			return nil
		}
		h.logFailure(payload, state, err)
		return fmt.Errorf("append preview: %w", err)
	}
	state = StateRecordUpdated

	log.Info().
		Str("design_id", payload.DesignID).
		Int("index", payload.Index).
		Str("provider", providerName).
		Str("state", string(state)).
		Msg("Design preview rendered")

	return nil
}

func (h *RenderPreviewHandler) logFailure(payload model.RenderPreviewPayload, reached RenderState, err error) {
	log.Error().
		Err(err).
		Str("design_id", payload.DesignID).
		Int("index", payload.Index).
		Str("state_reached", string(reached)).
		Str("state", string(StateFailed)).
		Msg("Design preview render failed")
}

// PreviewStorageKey builds the object key for one preview. The hash
// segment makes keys stable per (design, index) while keeping them
// unguessable enough for public buckets.
func PreviewStorageKey(designID string, index int) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s:%d", designID, index)))
	return fmt.Sprintf("designs/%s/sketch-%d-%s.png", designID, index, hex.EncodeToString(sum[:])[:12])
}
