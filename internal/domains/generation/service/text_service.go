package service

import (
	"context"
	"errors"
	"fmt"

	designModel "designlab-backend/internal/domains/design/model"
	"designlab-backend/internal/domains/generation/gateway"
	"designlab-backend/internal/domains/generation/prompt"
	"designlab-backend/pkg/logger"
)

// maxAttemptsPerProvider bounds the retry budget on the selected
// provider. The second attempt amends the prompt when the first one
// returned malformed JSON.
const maxAttemptsPerProvider = 2

// =====================================================
// TEXT GENERATION SERVICE
// =====================================================

// TextService selects a text provider by credential availability and
// runs the bounded generate/validate loop against it.
type TextService struct {
	providers []gateway.TextProvider
}

// NewTextService orders providers by preference. The first provider
// whose credential resolves serves the request; callers should put a
// credential-free provider (the mock) last so selection always
// succeeds in development.
func NewTextService(providers ...gateway.TextProvider) *TextService {
	return &TextService{providers: providers}
}

// Generate produces a validated design from p. It picks the first
// available provider and gives it maxAttemptsPerProvider attempts:
// malformed output triggers a retry with the strict-JSON amendment,
// a transport error triggers a plain retry. When the budget is
// exhausted the request fails with a provider error; the caller maps
// that to a gateway failure.
//
// Returns the design and the name of the provider that produced it.
func (s *TextService) Generate(ctx context.Context, p prompt.Prompt) (*designModel.Design, string, error) {
	provider := s.selectProvider(ctx)
	if provider == nil {
		return nil, "", designModel.NewProviderFailedError(designModel.ErrProviderUnavailable)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttemptsPerProvider; attempt++ {
		full := p.Full()
		if attempt > 1 && errors.Is(lastErr, designModel.ErrMalformedOutput) {
			full = p.System + "\n\n" + p.User + prompt.StrictJSONSuffix
		}

		raw, err := provider.Generate(ctx, full)
		if err != nil {
			lastErr = err
			logger.Error(fmt.Sprintf("text provider %s attempt %d failed", provider.Name(), attempt), err)
			continue
		}

		design, err := designModel.ParseDesign(raw)
		if err != nil {
			lastErr = err
			logger.Error(fmt.Sprintf("text provider %s attempt %d returned unusable output", provider.Name(), attempt), err)
			continue
		}

		return design, provider.Name(), nil
	}

	return nil, provider.Name(), designModel.NewProviderFailedError(lastErr)
}

// selectProvider returns the first provider with a resolvable
// credential, or nil when none is available.
func (s *TextService) selectProvider(ctx context.Context) gateway.TextProvider {
	for _, p := range s.providers {
		if p.Available(ctx) {
			return p
		}
	}
	return nil
}
