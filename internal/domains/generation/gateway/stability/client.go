package stability

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"designlab-backend/internal/infrastructure/secrets"
)

// Config for the Stability AI (SDXL) image adapter.
type Config struct {
	KeyName string
	Engine  string // e.g. stable-diffusion-xl-1024-v1-0
	BaseURL string // override for tests
}

const defaultBaseURL = "https://api.stability.ai"

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

func (c Config) engine() string {
	if c.Engine != "" {
		return c.Engine
	}
	return "stable-diffusion-xl-1024-v1-0"
}

// =====================================================
// STABILITY IMAGE CLIENT
// =====================================================

// Client calls the SDXL text-to-image endpoint. The response carries
// base64 artifacts.
type Client struct {
	config     Config
	resolver   secrets.CredentialResolver
	httpClient *http.Client
}

func NewClient(config Config, resolver secrets.CredentialResolver) *Client {
	return &Client{
		config:   config,
		resolver: resolver,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) Name() string {
	return "stability"
}

func (c *Client) Generate(ctx context.Context, prompt, _ string) ([]byte, error) {
	apiKey, err := c.resolver.Resolve(ctx, c.config.KeyName)
	if err != nil {
		return nil, fmt.Errorf("stability credential: %w", err)
	}

	requestBody := map[string]interface{}{
		"text_prompts": []map[string]interface{}{
			{"text": prompt, "weight": 1},
		},
		"cfg_scale":    7,
		"height":       1024,
		"width":        1024,
		"samples":      1,
		"steps":        30,
		"style_preset": "photographic",
	}

	bodyJSON, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/generation/%s/text-to-image", c.config.baseURL(), c.config.engine())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call Stability API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Stability API error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var respData struct {
		Artifacts []struct {
			Base64 string `json:"base64"`
		} `json:"artifacts"`
	}
	if err := json.Unmarshal(bodyBytes, &respData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(respData.Artifacts) == 0 || respData.Artifacts[0].Base64 == "" {
		return nil, fmt.Errorf("no image data in Stability response")
	}

	imageBytes, err := base64.StdEncoding.DecodeString(respData.Artifacts[0].Base64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}

	return imageBytes, nil
}
