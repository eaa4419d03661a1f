package job

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"designlab-backend/internal/config"
	"designlab-backend/internal/domains/design/model"
)

// ================================================
// FAKES
// ================================================

type fakeImageGenerator struct {
	data []byte
	err  error
}

func (f *fakeImageGenerator) Generate(_ context.Context, _, _ string) ([]byte, string, error) {
	return f.data, "placeholder", f.err
}

type fakeStorage struct {
	uploads    map[string][]byte
	uploadErr  error
	presignErr error
	onPresign  func(key string)
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: map[string][]byte{}}
}

func (f *fakeStorage) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads[key] = data
	return "https://minio/" + key, nil
}

func (f *fakeStorage) PresignedGetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	if f.onPresign != nil {
		f.onPresign(key)
	}
	return "https://minio/presigned/" + key, nil
}

func (f *fakeStorage) PublicURL(key string) string {
	return "https://minio/public/" + key
}

type fakeJobRepo struct {
	appended  map[string][]model.PreviewEntry
	appendErr error
	listed    []*model.DesignRecord
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		appended: map[string][]model.PreviewEntry{},
	}
}

func (f *fakeJobRepo) Create(_ context.Context, _ *model.DesignRecord) error { return nil }

func (f *fakeJobRepo) GetByID(_ context.Context, _ string) (*model.DesignRecord, error) {
	return nil, model.ErrDesignNotFound
}

func (f *fakeJobRepo) record(designID string) *model.DesignRecord {
	for _, r := range f.listed {
		if r.DesignID == designID {
			return r
		}
	}
	return nil
}

func (f *fakeJobRepo) AppendPreview(_ context.Context, designID string, entry model.PreviewEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended[designID] = append(f.appended[designID], entry)
	if r := f.record(designID); r != nil {
		r.Previews = append(r.Previews, entry)
		if r.PreviewURL == "" {
			r.PreviewURL = entry.URL
		}
	}
	return nil
}

func (f *fakeJobRepo) RefreshPreviewURL(_ context.Context, designID, storageKey, url string) error {
	r := f.record(designID)
	if r == nil {
		return model.ErrDesignNotFound
	}
	for i := range r.Previews {
		if r.Previews[i].StorageKey != storageKey {
			continue
		}
		r.Previews[i].URL = url
		if i == 0 {
			r.PreviewURL = url
		}
	}
	return nil
}

func (f *fakeJobRepo) ListRecent(_ context.Context, _ time.Time, _ int) ([]*model.DesignRecord, error) {
	return f.listed, nil
}

// ================================================
// SETUP
// ================================================

func renderTask(t *testing.T, payload model.RenderPreviewPayload) *asynq.Task {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask("design:render_preview", raw)
}

func jobConfig() config.GenerationConfig {
	return config.GenerationConfig{PreviewTTLSeconds: 300}
}

// ================================================
// RENDER PREVIEW
// ================================================

func TestRenderPreviewSuccess(t *testing.T) {
	storage := newFakeStorage()
	repo := newFakeJobRepo()
	h := NewRenderPreviewHandler(jobConfig(), &fakeImageGenerator{data: []byte("png bytes")}, storage, repo)

	task := renderTask(t, model.RenderPreviewPayload{DesignID: "d1", Prompt: "surf logo", Index: 0})
	require.NoError(t, h.ProcessTask(context.Background(), task))

	key := PreviewStorageKey("d1", 0)
	assert.Equal(t, []byte("png bytes"), storage.uploads[key])

	require.Len(t, repo.appended["d1"], 1)
	entry := repo.appended["d1"][0]
	assert.Equal(t, key, entry.StorageKey)
	assert.Equal(t, "https://minio/presigned/"+key, entry.URL)
}

func TestRenderPreviewPoisonPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"undecodable", []byte("not json")},
		{"missing design id", mustJSON(model.RenderPreviewPayload{Prompt: "p"})},
		{"missing prompt", mustJSON(model.RenderPreviewPayload{DesignID: "d1"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newFakeStorage()
			repo := newFakeJobRepo()
			h := NewRenderPreviewHandler(jobConfig(), &fakeImageGenerator{data: []byte("x")}, storage, repo)

			// Poison drops: no error, so asynq never redelivers.
			err := h.ProcessTask(context.Background(), asynq.NewTask("design:render_preview", tt.payload))
			assert.NoError(t, err)
			assert.Empty(t, storage.uploads)
			assert.Empty(t, repo.appended)
		})
	}
}

func mustJSON(v interface{}) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}

func TestRenderPreviewGeneratorFailureIsRetryable(t *testing.T) {
	h := NewRenderPreviewHandler(jobConfig(), &fakeImageGenerator{err: errors.New("encode failed")}, newFakeStorage(), newFakeJobRepo())

	task := renderTask(t, model.RenderPreviewPayload{DesignID: "d1", Prompt: "p"})
	assert.Error(t, h.ProcessTask(context.Background(), task))
}

func TestRenderPreviewUploadFailureIsRetryable(t *testing.T) {
	storage := newFakeStorage()
	storage.uploadErr = errors.New("minio down")
	repo := newFakeJobRepo()
	h := NewRenderPreviewHandler(jobConfig(), &fakeImageGenerator{data: []byte("x")}, storage, repo)

	task := renderTask(t, model.RenderPreviewPayload{DesignID: "d1", Prompt: "p"})
	assert.Error(t, h.ProcessTask(context.Background(), task))
	assert.Empty(t, repo.appended)
}

func TestRenderPreviewPresignFallsBackToPublicURL(t *testing.T) {
	storage := newFakeStorage()
	storage.presignErr = errors.New("presign unavailable")
	repo := newFakeJobRepo()
	h := NewRenderPreviewHandler(jobConfig(), &fakeImageGenerator{data: []byte("x")}, storage, repo)

	task := renderTask(t, model.RenderPreviewPayload{DesignID: "d1", Prompt: "p"})
	require.NoError(t, h.ProcessTask(context.Background(), task))

	require.Len(t, repo.appended["d1"], 1)
	assert.Equal(t, "https://minio/public/"+PreviewStorageKey("d1", 0), repo.appended["d1"][0].URL)
}

func TestRenderPreviewMissingRecordIsDropped(t *testing.T) {
	repo := newFakeJobRepo()
	repo.appendErr = model.ErrDesignNotFound
	h := NewRenderPreviewHandler(jobConfig(), &fakeImageGenerator{data: []byte("x")}, newFakeStorage(), repo)

	task := renderTask(t, model.RenderPreviewPayload{DesignID: "gone", Prompt: "p"})
	assert.NoError(t, h.ProcessTask(context.Background(), task))
}

func TestRenderPreviewStoreFailureIsRetryable(t *testing.T) {
	repo := newFakeJobRepo()
	repo.appendErr = errors.New("db timeout")
	h := NewRenderPreviewHandler(jobConfig(), &fakeImageGenerator{data: []byte("x")}, newFakeStorage(), repo)

	task := renderTask(t, model.RenderPreviewPayload{DesignID: "d1", Prompt: "p"})
	assert.Error(t, h.ProcessTask(context.Background(), task))
}

// ================================================
// STORAGE KEY
// ================================================

func TestPreviewStorageKeyFormat(t *testing.T) {
	key := PreviewStorageKey("d1", 2)

	assert.True(t, strings.HasPrefix(key, "designs/d1/sketch-2-"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	hash := strings.TrimSuffix(strings.TrimPrefix(key, "designs/d1/sketch-2-"), ".png")
	assert.Len(t, hash, 12)
}

func TestPreviewStorageKeyDeterministic(t *testing.T) {
	assert.Equal(t, PreviewStorageKey("d1", 0), PreviewStorageKey("d1", 0))
	assert.NotEqual(t, PreviewStorageKey("d1", 0), PreviewStorageKey("d1", 1))
	assert.NotEqual(t, PreviewStorageKey("d1", 0), PreviewStorageKey("d2", 0))
}

// ================================================
// REFRESH PREVIEW URLS
// ================================================

func TestRefreshPreviewURLs(t *testing.T) {
	storage := newFakeStorage()
	presigned := 0
	storage.onPresign = func(string) { presigned++ }

	repo := newFakeJobRepo()
	repo.listed = []*model.DesignRecord{
		{
			DesignID:   "d1",
			PreviewURL: "stale",
			Previews: []model.PreviewEntry{
				{StorageKey: "designs/d1/sketch-0-abc.png", URL: "stale"},
				{StorageKey: "designs/d1/sketch-1-def.png", URL: "stale"},
			},
		},
		{DesignID: "empty", Previews: []model.PreviewEntry{}},
	}
	h := NewRefreshPreviewURLsHandler(jobConfig(), storage, repo)

	payload := mustJSON(model.RefreshPreviewURLsPayload{WindowHours: 24, Limit: 10})
	err := h.ProcessTask(context.Background(), asynq.NewTask("design:refresh_preview_urls", payload))
	require.NoError(t, err)

	record := repo.record("d1")
	require.Len(t, record.Previews, 2)
	assert.Equal(t, "https://minio/presigned/designs/d1/sketch-0-abc.png", record.Previews[0].URL)
	assert.Equal(t, "https://minio/presigned/designs/d1/sketch-1-def.png", record.Previews[1].URL)

	// The record URL follows the first entry's fresh URL.
	assert.Equal(t, "https://minio/presigned/designs/d1/sketch-0-abc.png", record.PreviewURL)

	// Records without previews are skipped outright.
	assert.Equal(t, 2, presigned)
}

func TestRefreshPreviewURLsKeepsConcurrentAppend(t *testing.T) {
	storage := newFakeStorage()
	repo := newFakeJobRepo()
	repo.listed = []*model.DesignRecord{
		{
			DesignID:   "d1",
			PreviewURL: "stale",
			Previews: []model.PreviewEntry{
				{StorageKey: "k0", URL: "stale"},
			},
		},
	}

	// A render worker appends between the refresh snapshot and the
	// per-entry rewrite. The rewrite keys on storage key, so the new
	// entry must survive untouched.
	storage.onPresign = func(string) {
		err := repo.AppendPreview(context.Background(), "d1", model.PreviewEntry{StorageKey: "k1", URL: "https://minio/presigned/k1"})
		require.NoError(t, err)
	}

	h := NewRefreshPreviewURLsHandler(jobConfig(), storage, repo)
	payload := mustJSON(model.RefreshPreviewURLsPayload{WindowHours: 24, Limit: 10})
	require.NoError(t, h.ProcessTask(context.Background(), asynq.NewTask("design:refresh_preview_urls", payload)))

	record := repo.record("d1")
	require.Len(t, record.Previews, 2)
	assert.Equal(t, "https://minio/presigned/k0", record.Previews[0].URL)
	assert.Equal(t, model.PreviewEntry{StorageKey: "k1", URL: "https://minio/presigned/k1"}, record.Previews[1])
}

func TestRefreshPreviewURLsUndecodablePayloadDropped(t *testing.T) {
	h := NewRefreshPreviewURLsHandler(jobConfig(), newFakeStorage(), newFakeJobRepo())

	err := h.ProcessTask(context.Background(), asynq.NewTask("design:refresh_preview_urls", []byte("junk")))
	assert.NoError(t, err)
}
