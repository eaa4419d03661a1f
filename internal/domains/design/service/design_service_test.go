package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"designlab-backend/internal/config"
	"designlab-backend/internal/domains/design/model"
	"designlab-backend/internal/domains/generation/prompt"
	"designlab-backend/internal/infrastructure/retrieval"
	"designlab-backend/internal/shared"
)

// ================================================
// FAKES
// ================================================

type fakeGenerator struct {
	design *model.Design
	name   string
	err    error
	calls  int
}

func (f *fakeGenerator) Generate(_ context.Context, _ prompt.Prompt) (*model.Design, string, error) {
	f.calls++
	return f.design, f.name, f.err
}

type fakeRepo struct {
	created   []*model.DesignRecord
	createErr error
	records   map[string]*model.DesignRecord
}

func (f *fakeRepo) Create(_ context.Context, record *model.DesignRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, record)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, designID string) (*model.DesignRecord, error) {
	record, ok := f.records[designID]
	if !ok {
		return nil, model.ErrDesignNotFound
	}
	return record, nil
}

func (f *fakeRepo) AppendPreview(_ context.Context, _ string, _ model.PreviewEntry) error {
	return nil
}

func (f *fakeRepo) RefreshPreviewURL(_ context.Context, _, _, _ string) error {
	return nil
}

func (f *fakeRepo) ListRecent(_ context.Context, _ time.Time, _ int) ([]*model.DesignRecord, error) {
	return nil, nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

// ================================================
// SETUP
// ================================================

func testConfig() config.GenerationConfig {
	return config.GenerationConfig{
		PreviewCount:   2,
		DefaultProduct: "t-shirt",
		DefaultStyle:   "classic vintage",
		CanvasWidth:    4500,
		CanvasHeight:   5400,
	}
}

func testDesign() *model.Design {
	return &model.Design{
		Title:      "Sunset Rider",
		Placements: []model.Placement{},
		Palette:    []string{"#fff"},
	}
}

func newService(gen *fakeGenerator, repo *fakeRepo, queue *fakeEnqueuer) DesignService {
	cfg := testConfig()
	builder := prompt.NewBuilder(cfg, retrieval.NewNoop())
	return NewDesignService(cfg, builder, gen, repo, queue)
}

// ================================================
// CREATE DESIGN
// ================================================

func TestCreateDesignSuccess(t *testing.T) {
	gen := &fakeGenerator{design: testDesign(), name: "gemini"}
	repo := &fakeRepo{}
	queue := &fakeEnqueuer{}
	svc := newService(gen, repo, queue)

	resp, err := svc.CreateDesign(context.Background(), model.GenerateDesignRequest{Brief: "retro surf logo"})
	require.NoError(t, err)

	_, err = uuid.Parse(resp.DesignID)
	assert.NoError(t, err)
	assert.Equal(t, "Sunset Rider", resp.Design.Title)
	assert.Empty(t, resp.PreviewURL)

	require.Len(t, repo.created, 1)
	record := repo.created[0]
	assert.Equal(t, resp.DesignID, record.DesignID)
	assert.Equal(t, shared.AnonymousUserID, record.UserID)
	assert.Equal(t, "gemini", record.Model)
	assert.Len(t, record.PromptHash, 64)
	assert.NotNil(t, record.Previews)
	assert.Empty(t, record.Previews)
	assert.False(t, record.CreatedAt.IsZero())
}

func TestCreateDesignPropagatesUserID(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(&fakeGenerator{design: testDesign(), name: "mock"}, repo, &fakeEnqueuer{})

	_, err := svc.CreateDesign(context.Background(), model.GenerateDesignRequest{
		Brief:  "retro surf logo",
		UserID: "user-42",
	})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, "user-42", repo.created[0].UserID)
}

func TestCreateDesignEnqueuesRenderJobs(t *testing.T) {
	queue := &fakeEnqueuer{}
	svc := newService(&fakeGenerator{design: testDesign(), name: "mock"}, &fakeRepo{}, queue)

	resp, err := svc.CreateDesign(context.Background(), model.GenerateDesignRequest{Brief: "retro surf logo"})
	require.NoError(t, err)

	require.Len(t, queue.tasks, 2)
	for i, task := range queue.tasks {
		assert.Equal(t, shared.TypeRenderPreview, task.Type())

		var payload model.RenderPreviewPayload
		require.NoError(t, json.Unmarshal(task.Payload(), &payload))
		assert.Equal(t, resp.DesignID, payload.DesignID)
		assert.Equal(t, i, payload.Index)
		assert.Contains(t, payload.Prompt, "retro surf logo")
	}
}

func TestCreateDesignEmptyBrief(t *testing.T) {
	gen := &fakeGenerator{design: testDesign(), name: "mock"}
	svc := newService(gen, &fakeRepo{}, &fakeEnqueuer{})

	_, err := svc.CreateDesign(context.Background(), model.GenerateDesignRequest{Brief: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrEmptyBrief))
	assert.Zero(t, gen.calls)
}

func TestCreateDesignGeneratorFailure(t *testing.T) {
	genErr := model.NewProviderFailedError(errors.New("boom"))
	repo := &fakeRepo{}
	queue := &fakeEnqueuer{}
	svc := newService(&fakeGenerator{err: genErr}, repo, queue)

	_, err := svc.CreateDesign(context.Background(), model.GenerateDesignRequest{Brief: "retro surf logo"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrProviderFailed))
	assert.Empty(t, repo.created)
	assert.Empty(t, queue.tasks)
}

func TestCreateDesignStoreFailureIsNonFatal(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New("db down")}
	queue := &fakeEnqueuer{}
	svc := newService(&fakeGenerator{design: testDesign(), name: "mock"}, repo, queue)

	resp, err := svc.CreateDesign(context.Background(), model.GenerateDesignRequest{Brief: "retro surf logo"})
	require.NoError(t, err)
	assert.Equal(t, "Sunset Rider", resp.Design.Title)

	// No record means render jobs would orphan; none are enqueued.
	assert.Empty(t, queue.tasks)
}

func TestCreateDesignEnqueueFailureIsNonFatal(t *testing.T) {
	queue := &fakeEnqueuer{err: errors.New("redis down")}
	svc := newService(&fakeGenerator{design: testDesign(), name: "mock"}, &fakeRepo{}, queue)

	resp, err := svc.CreateDesign(context.Background(), model.GenerateDesignRequest{Brief: "retro surf logo"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.DesignID)
}

// ================================================
// GET CONCEPT
// ================================================

func TestGetConceptReady(t *testing.T) {
	repo := &fakeRepo{records: map[string]*model.DesignRecord{
		"d1": {
			DesignID:   "d1",
			Design:     testDesign(),
			PreviewURL: "https://cdn/preview.png",
		},
	}}
	svc := newService(&fakeGenerator{}, repo, &fakeEnqueuer{})

	resp, err := svc.GetConcept(context.Background(), "d1")
	require.NoError(t, err)
	assert.True(t, resp.Ready)
	assert.Equal(t, "Sunset Rider", resp.Design.Title)
	assert.Equal(t, "https://cdn/preview.png", resp.PreviewURL)
}

func TestGetConceptPendingPreviews(t *testing.T) {
	repo := &fakeRepo{records: map[string]*model.DesignRecord{
		"d1": {DesignID: "d1", Design: testDesign()},
	}}
	svc := newService(&fakeGenerator{}, repo, &fakeEnqueuer{})

	resp, err := svc.GetConcept(context.Background(), "d1")
	require.NoError(t, err)
	assert.True(t, resp.Ready)
	assert.Empty(t, resp.PreviewURL)
}

func TestGetConceptNotFound(t *testing.T) {
	svc := newService(&fakeGenerator{}, &fakeRepo{}, &fakeEnqueuer{})

	_, err := svc.GetConcept(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrDesignNotFound))
}
