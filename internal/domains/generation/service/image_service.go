package service

import (
	"context"
	"fmt"

	"designlab-backend/internal/domains/generation/gateway"
	"designlab-backend/pkg/logger"
)

// =====================================================
// IMAGE GENERATION SERVICE
// =====================================================

// ImageService renders preview images through the configured provider
// and falls through to the local placeholder on any failure, so image
// generation never fails outward.
type ImageService struct {
	primary  gateway.ImageProvider
	fallback gateway.ImageProvider
}

// NewImageService wires the configured provider in front of the
// placeholder. Primary may be nil when the deployment is configured
// for placeholder-only rendering.
func NewImageService(primary, fallback gateway.ImageProvider) *ImageService {
	return &ImageService{
		primary:  primary,
		fallback: fallback,
	}
}

// Generate returns image bytes plus the name of the provider that
// produced them. The placeholder is local and deterministic, so the
// only error path left is placeholder encoding itself.
func (s *ImageService) Generate(ctx context.Context, prompt, designID string) ([]byte, string, error) {
	if s.primary != nil {
		img, err := s.primary.Generate(ctx, prompt, designID)
		if err == nil {
			return img, s.primary.Name(), nil
		}
		logger.Warn(fmt.Sprintf("image provider %s failed, using placeholder", s.primary.Name()), err)
	}

	img, err := s.fallback.Generate(ctx, prompt, designID)
	if err != nil {
		return nil, s.fallback.Name(), err
	}
	return img, s.fallback.Name(), nil
}
