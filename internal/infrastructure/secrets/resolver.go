package secrets

import (
	"context"
	"errors"
	"os"
)

// ErrNotFound is returned when no credential exists under the given name.
// Callers treat this as a normal condition, not a failure: provider
// selection falls through to the next adapter in the chain.
var ErrNotFound = errors.New("credential not found")

// CredentialResolver resolves provider API keys at call time.
// Keys are looked up per call rather than captured at startup so a
// rotated credential is picked up without a restart.
type CredentialResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// =====================================================
// ENV RESOLVER
// =====================================================

// EnvResolver reads credentials from environment variables.
type EnvResolver struct{}

func NewEnvResolver() *EnvResolver {
	return &EnvResolver{}
}

func (r *EnvResolver) Resolve(_ context.Context, name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// =====================================================
// STATIC RESOLVER (for tests)
// =====================================================

// StaticResolver serves credentials from a fixed map, enabling
// deterministic tests without environment mutation.
type StaticResolver struct {
	values map[string]string
}

func NewStaticResolver(values map[string]string) *StaticResolver {
	return &StaticResolver{values: values}
}

func (r *StaticResolver) Resolve(_ context.Context, name string) (string, error) {
	value, ok := r.values[name]
	if !ok || value == "" {
		return "", ErrNotFound
	}
	return value, nil
}
