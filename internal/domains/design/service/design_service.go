package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"designlab-backend/internal/config"
	"designlab-backend/internal/domains/design/model"
	"designlab-backend/internal/domains/design/repository"
	"designlab-backend/internal/domains/generation/prompt"
	"designlab-backend/internal/shared"
	"designlab-backend/pkg/logger"
)

// =====================================================
// DESIGN SERVICE IMPLEMENTATION
// =====================================================

// TextGenerator produces a validated design from a built prompt,
// reporting the provider that produced it.
type TextGenerator interface {
	Generate(ctx context.Context, p prompt.Prompt) (*model.Design, string, error)
}

// TaskEnqueuer is the slice of asynq.Client the service needs.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type designService struct {
	cfg       config.GenerationConfig
	builder   *prompt.Builder
	generator TextGenerator
	repo      repository.DesignRepository
	queue     TaskEnqueuer
}

func NewDesignService(
	cfg config.GenerationConfig,
	builder *prompt.Builder,
	generator TextGenerator,
	repo repository.DesignRepository,
	queue TaskEnqueuer,
) DesignService {
	return &designService{
		cfg:       cfg,
		builder:   builder,
		generator: generator,
		repo:      repo,
		queue:     queue,
	}
}

// =====================================================
// CREATE DESIGN
// =====================================================

func (s *designService) CreateDesign(ctx context.Context, req model.GenerateDesignRequest) (*model.GenerateDesignResponse, error) {
	// Step 1: Build the prompt (sanitizes the brief, rejects empty)
	p, err := s.builder.Build(ctx, req)
	if err != nil {
		return nil, err
	}

	// Step 2: Generate and validate the design text
	design, providerName, err := s.generator.Generate(ctx, p)
	if err != nil {
		return nil, err
	}

	// Step 3: Assemble the record
	userID := req.UserID
	if userID == "" {
		userID = shared.AnonymousUserID
	}

	record := &model.DesignRecord{
		DesignID:   uuid.New().String(),
		UserID:     userID,
		CreatedAt:  time.Now().UTC(),
		PromptHash: p.Hash,
		Model:      providerName,
		Design:     design,
		Previews:   []model.PreviewEntry{},
	}

	// Step 4: Persist. A store failure degrades the design to
	// response-only (no polling, no previews) rather than failing the
	// request, since the caller already has the design text.
	persisted := true
	if err := s.repo.Create(ctx, record); err != nil {
		persisted = false
		logger.Error(fmt.Sprintf("failed to persist design %s", record.DesignID), err)
	}

	// Step 5: Fan out render jobs. Enqueue failures are non-fatal for
	// the same reason; the design just never gains previews.
	if persisted {
		s.enqueueRenderJobs(record.DesignID, design, p)
	}

	return &model.GenerateDesignResponse{
		DesignID:   record.DesignID,
		Design:     design,
		PreviewURL: "",
	}, nil
}

// enqueueRenderJobs schedules one render task per configured preview.
func (s *designService) enqueueRenderJobs(designID string, design *model.Design, p prompt.Prompt) {
	imagePrompt := buildImagePrompt(design, p)

	for i := 0; i < s.cfg.PreviewCount; i++ {
		payload, err := json.Marshal(model.RenderPreviewPayload{
			DesignID: designID,
			Prompt:   imagePrompt,
			Index:    i,
		})
		if err != nil {
			logger.Error(fmt.Sprintf("failed to marshal render payload for design %s", designID), err)
			continue
		}

		task := asynq.NewTask(shared.TypeRenderPreview, payload)
		if _, err := s.queue.Enqueue(task, asynq.Queue(shared.QueueRender), asynq.MaxRetry(3)); err != nil {
			logger.Error(fmt.Sprintf("failed to enqueue render job %d for design %s", i, designID), err)
		}
	}
}

// buildImagePrompt condenses the generated design into an image
// provider prompt. The user section of the text prompt already carries
// the sanitized brief, product and style lines.
func buildImagePrompt(design *model.Design, p prompt.Prompt) string {
	return fmt.Sprintf("Apparel print mockup titled %q.\n%s", design.Title, p.User)
}

// =====================================================
// GET CONCEPT
// =====================================================

func (s *designService) GetConcept(ctx context.Context, designID string) (*model.ConceptStatusResponse, error) {
	record, err := s.repo.GetByID(ctx, designID)
	if err != nil {
		return nil, err
	}

	// The record only exists once design text is final, so ready is
	// unconditional here. An empty preview URL means renders are still
	// in flight.
	return &model.ConceptStatusResponse{
		Ready:      true,
		Design:     record.Design,
		PreviewURL: record.PreviewURL,
	}, nil
}
