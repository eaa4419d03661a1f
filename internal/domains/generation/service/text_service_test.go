package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	designModel "designlab-backend/internal/domains/design/model"
	"designlab-backend/internal/domains/generation/gateway/mock"
	"designlab-backend/internal/domains/generation/prompt"
)

// fakeTextProvider scripts a sequence of (output, err) responses and
// records the prompts it was called with.
type fakeTextProvider struct {
	name      string
	available bool
	outputs   []string
	errs      []error
	prompts   []string
}

func (f *fakeTextProvider) Name() string                     { return f.name }
func (f *fakeTextProvider) Available(_ context.Context) bool { return f.available }

func (f *fakeTextProvider) Generate(_ context.Context, p string) (string, error) {
	call := len(f.prompts)
	f.prompts = append(f.prompts, p)
	var out string
	var err error
	if call < len(f.outputs) {
		out = f.outputs[call]
	}
	if call < len(f.errs) {
		err = f.errs[call]
	}
	return out, err
}

const validOutput = `{"title":"ok","placements":[],"palette":["#fff"]}`

func testPrompt() prompt.Prompt {
	p := prompt.Prompt{
		System: "system section",
		User:   "Brief: retro surf logo\n",
	}
	p.Hash = prompt.HashPrompt(p.Full())
	return p
}

func TestGenerateFirstAttemptSucceeds(t *testing.T) {
	provider := &fakeTextProvider{name: "gemini", available: true, outputs: []string{validOutput}}
	svc := NewTextService(provider)

	design, name, err := svc.Generate(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, "gemini", name)
	assert.Equal(t, "ok", design.Title)
	assert.Len(t, provider.prompts, 1)
}

func TestGenerateRetriesMalformedWithAmendedPrompt(t *testing.T) {
	provider := &fakeTextProvider{
		name:      "gemini",
		available: true,
		outputs:   []string{"sure! here is your design: {", validOutput},
	}
	svc := NewTextService(provider)

	design, _, err := svc.Generate(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, "ok", design.Title)

	require.Len(t, provider.prompts, 2)
	assert.NotContains(t, provider.prompts[0], prompt.StrictJSONSuffix)
	assert.True(t, strings.HasSuffix(provider.prompts[1], prompt.StrictJSONSuffix))
}

func TestGenerateRetriesTransportErrorWithoutAmendment(t *testing.T) {
	provider := &fakeTextProvider{
		name:      "gemini",
		available: true,
		outputs:   []string{"", validOutput},
		errs:      []error{errors.New("connection reset"), nil},
	}
	svc := NewTextService(provider)

	_, _, err := svc.Generate(context.Background(), testPrompt())
	require.NoError(t, err)

	require.Len(t, provider.prompts, 2)
	assert.NotContains(t, provider.prompts[1], prompt.StrictJSONSuffix)
}

func TestGenerateExhaustsBudgetAfterTwoAttempts(t *testing.T) {
	provider := &fakeTextProvider{
		name:      "gemini",
		available: true,
		outputs:   []string{"not json", "still not json"},
	}
	svc := NewTextService(provider)

	_, name, err := svc.Generate(context.Background(), testPrompt())
	require.Error(t, err)
	assert.Equal(t, "gemini", name)
	assert.True(t, errors.Is(err, designModel.ErrProviderFailed))
	assert.Len(t, provider.prompts, 2)
}

func TestGenerateSelectsFirstAvailableProvider(t *testing.T) {
	unavailable := &fakeTextProvider{name: "gemini", available: false}
	available := &fakeTextProvider{name: "openai", available: true, outputs: []string{validOutput}}
	svc := NewTextService(unavailable, available)

	_, name, err := svc.Generate(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, "openai", name)
	assert.Empty(t, unavailable.prompts)
}

func TestGenerateNoProviderAvailable(t *testing.T) {
	svc := NewTextService(&fakeTextProvider{name: "gemini", available: false})

	_, _, err := svc.Generate(context.Background(), testPrompt())
	require.Error(t, err)
	assert.True(t, errors.Is(err, designModel.ErrProviderFailed))
	assert.True(t, errors.Is(err, designModel.ErrProviderUnavailable))
}

func TestGenerateMockProviderRoundTrip(t *testing.T) {
	svc := NewTextService(mock.NewTextProvider())

	design, name, err := svc.Generate(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, "mock", name)
	assert.NotEmpty(t, design.Placements)
	assert.Contains(t, design.Placements[0].Content["text"], "retro surf logo")
}
