package gateway

import (
	"context"
)

// =====================================================
// PROVIDER INTERFACES
// =====================================================

// TextProvider generates raw design JSON from a prompt.
// A transport/HTTP failure or an unusable credential is returned as an
// error; interpreting the returned text (JSON parsing, retry on
// malformed output) is the caller's concern.
type TextProvider interface {
	// Name identifies the provider (recorded on the DesignRecord).
	Name() string

	// Available reports whether a credential for this provider is
	// resolvable right now. Selection is by credential availability,
	// never by request content.
	Available(ctx context.Context) bool

	// Generate calls the provider and returns its raw text output.
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageProvider renders a preview image for a prompt.
// Adapters return an error on any failure (bad credential, non-2xx,
// missing output field, poll timeout); the gateway chain falls through
// to the placeholder so image generation never fails outward.
type ImageProvider interface {
	Name() string

	// Generate returns encoded image bytes (PNG unless documented
	// otherwise by the adapter).
	Generate(ctx context.Context, prompt, designID string) ([]byte, error)
}
