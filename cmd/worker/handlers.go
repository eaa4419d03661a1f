package main

import (
	"github.com/hibiken/asynq"

	designJob "designlab-backend/internal/domains/design/job"
	"designlab-backend/internal/shared"
	"designlab-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Render handlers
	renderPreview *designJob.RenderPreviewHandler

	// Maintenance handlers
	refreshPreviewURLs *designJob.RefreshPreviewURLsHandler
}

// initializeHandlers wires job handlers from the container
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		renderPreview:      c.RenderPreviewHandler,
		refreshPreviewURLs: c.RefreshPreviewURLsHandler,
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Render tasks
	mux.HandleFunc(shared.TypeRenderPreview, h.renderPreview.ProcessTask)

	// Maintenance tasks
	mux.HandleFunc(shared.TypeRefreshPreviewURLs, h.refreshPreviewURLs.ProcessTask)
}
