package service

import (
	"context"

	"designlab-backend/internal/domains/design/model"
)

// =====================================================
// DESIGN SERVICE INTERFACE
// =====================================================

type DesignService interface {
	// CreateDesign runs the synchronous generation path: prompt build,
	// text generation, persistence, render job fanout. The returned
	// response carries the design text; previews arrive asynchronously.
	CreateDesign(ctx context.Context, req model.GenerateDesignRequest) (*model.GenerateDesignResponse, error)

	// GetConcept reports polling status for a design id.
	GetConcept(ctx context.Context, designID string) (*model.ConceptStatusResponse, error)
}
