package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"designlab-backend/internal/infrastructure/secrets"
)

// =====================================================
// PERPLEXITY CLIENT
// =====================================================

// PerplexityClient retrieves fact snippets from a Perplexity-style
// search API. Every failure path returns an empty slice: retrieval is
// prompt enrichment, never a request dependency.
type PerplexityClient struct {
	apiURL     string
	keyName    string
	maxFacts   int
	resolver   secrets.CredentialResolver
	httpClient *http.Client
}

func NewPerplexityClient(apiURL, keyName string, maxFacts int, resolver secrets.CredentialResolver) *PerplexityClient {
	return &PerplexityClient{
		apiURL:   apiURL,
		keyName:  keyName,
		maxFacts: maxFacts,
		resolver: resolver,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *PerplexityClient) Retrieve(ctx context.Context, query string) []Fact {
	apiKey, err := c.resolver.Resolve(ctx, c.keyName)
	if err != nil {
		return nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"query": query,
		"limit": c.maxFacts,
	})
	if err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("Fact retrieval call failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("Fact retrieval returned non-200")
		return nil
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	// Normalize: expect results -> array of {text|snippet, source}
	var parsed struct {
		Results []struct {
			Text    string `json:"text"`
			Snippet string `json:"snippet"`
			Source  string `json:"source"`
		} `json:"results"`
	}
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil
	}

	facts := make([]Fact, 0, c.maxFacts)
	for _, r := range parsed.Results {
		if len(facts) >= c.maxFacts {
			break
		}
		text := r.Text
		if text == "" {
			text = r.Snippet
		}
		if text == "" {
			continue
		}
		facts = append(facts, Fact{Text: text, Source: r.Source})
	}

	return facts
}
