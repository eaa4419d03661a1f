package gemini

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

// =====================================================
// GEMINI TEXT CLIENT
// =====================================================

// TextClient calls the generateContent endpoint of the Generative
// Language API.
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
	return "gemini"
}

func (c *TextClient) Available(ctx context.Context) bool {
	_, err := c.resolver.Resolve(ctx, c.config.KeyName)
	return err == nil
}

func (c *TextClient) Generate(ctx context.Context, prompt string) (string, error) {
	apiKey, err := c.resolver.Resolve(ctx, c.config.KeyName)
	if err != nil {
		return "", fmt.Errorf("gemini credential: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/models/%s:generateContent?key=%s",
		c.config.baseURL(), c.config.textModel(), apiKey)

	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     0.7,
			"maxOutputTokens": 1200,
		},
	}

	bodyJSON, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call Gemini API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var respData struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(bodyBytes, &respData); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(respData.Candidates) == 0 || len(respData.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in Gemini response")
	}

	return respData.Candidates[0].Content.Parts[0].Text, nil
}

// =====================================================
// IMAGEN IMAGE CLIENT
// =====================================================

// ImageClient calls the Imagen generateImage endpoint.
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
	return "gemini"
}

func (c *ImageClient) Generate(ctx context.Context, prompt, _ string) ([]byte, error) {
	apiKey, err := c.resolver.Resolve(ctx, c.config.KeyName)
	if err != nil {
		return nil, fmt.Errorf("gemini credential: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateImage?key=%s",
		c.config.baseURL(), c.config.imageModel(), apiKey)

	requestBody := map[string]interface{}{
		"prompt": map[string]string{
			"text": prompt,
		},
		"config": map[string]interface{}{
			"number_of_images":    1,
			"aspect_ratio":        "3:4",
			"safety_filter_level": "block_some",
		},
	}

	bodyJSON, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call Imagen API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Imagen API error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var respData struct {
		GeneratedImages []struct {
			ImageBase64 string `json:"imageBase64"`
		} `json:"generatedImages"`
	}
	if err := json.Unmarshal(bodyBytes, &respData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(respData.GeneratedImages) == 0 || respData.GeneratedImages[0].ImageBase64 == "" {
		return nil, fmt.Errorf("no image data in Imagen response")
	}

	imageBytes, err := base64.StdEncoding.DecodeString(respData.GeneratedImages[0].ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}

	return imageBytes, nil
}
