package retrieval

import "context"

// Fact is one retrieved context snippet used to ground a prompt.
type Fact struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// FactRetriever fetches factual context for a brief. Implementations
// must be best-effort: a retrieval failure yields an empty slice, never
// an error that fails the originating request.
type FactRetriever interface {
	Retrieve(ctx context.Context, query string) []Fact
}

// Noop returns no facts. Used when no retrieval credential is configured.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Retrieve(_ context.Context, _ string) []Fact {
	return nil
}
