package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"designlab-backend/internal/infrastructure/secrets"
)

// Config for the OpenAI text and image adapters.
type Config struct {
	KeyName    string // secret name resolved at call time
	TextModel  string // e.g. gpt-4o
	ImageModel string // e.g. dall-e-3
	BaseURL    string // override for tests
}

const defaultBaseURL = "https://api.openai.com"

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

func (c Config) textModel() string {
	if c.TextModel != "" {
		return c.TextModel
	}
	return "gpt-4o"
}

func (c Config) imageModel() string {
	if c.ImageModel != "" {
		return c.ImageModel
	}
	return "dall-e-3"
}

// =====================================================
// OPENAI TEXT CLIENT
// =====================================================

// TextClient calls the chat completions endpoint.
type TextClient struct {
	config     Config
	resolver   secrets.CredentialResolver
	httpClient *http.Client
}

func NewTextClient(config Config, resolver secrets.CredentialResolver) *TextClient {
	return &TextClient{
		config:   config,
		resolver: resolver,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *TextClient) Name() string {
	return "openai"
}

func (c *TextClient) Available(ctx context.Context) bool {
	_, err := c.resolver.Resolve(ctx, c.config.KeyName)
	return err == nil
}

func (c *TextClient) Generate(ctx context.Context, prompt string) (string, error) {
	apiKey, err := c.resolver.Resolve(ctx, c.config.KeyName)
	if err != nil {
		return "", fmt.Errorf("openai credential: %w", err)
	}

	requestBody := map[string]interface{}{
		"model": c.config.textModel(),
		"messages": []map[string]string{
			{"role": "system", "content": "You are a JSON-only design generator. Output only JSON."},
			{"role": "user", "content": prompt},
		},
		"max_tokens":  1200,
		"temperature": 0.7,
	}

	bodyJSON, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.config.baseURL() + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var respData struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(bodyBytes, &respData); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(respData.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}

	return respData.Choices[0].Message.Content, nil
}

// =====================================================
// DALL-E IMAGE CLIENT
// =====================================================

// ImageClient calls the images/generations endpoint, then downloads
// the generated image from the returned URL.
type ImageClient struct {
	config     Config
	resolver   secrets.CredentialResolver
	httpClient *http.Client
}

func NewImageClient(config Config, resolver secrets.CredentialResolver) *ImageClient {
	return &ImageClient{
		config:   config,
		resolver: resolver,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *ImageClient) Name() string {
	return "openai"
}

func (c *ImageClient) Generate(ctx context.Context, prompt, _ string) ([]byte, error) {
	apiKey, err := c.resolver.Resolve(ctx, c.config.KeyName)
	if err != nil {
		return nil, fmt.Errorf("openai credential: %w", err)
	}

	requestBody := map[string]interface{}{
		"model":   c.config.imageModel(),
		"prompt":  prompt,
		"n":       1,
		"size":    "1024x1024",
		"quality": "standard",
		"style":   "vivid",
	}

	bodyJSON, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.config.baseURL() + "/v1/images/generations"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var respData struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(bodyBytes, &respData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(respData.Data) == 0 || respData.Data[0].URL == "" {
		return nil, fmt.Errorf("no image URL in OpenAI response")
	}

	return c.download(ctx, respData.Data[0].URL)
}

func (c *ImageClient) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download generated image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download returned %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
