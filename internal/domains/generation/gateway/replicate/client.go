package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"designlab-backend/internal/infrastructure/secrets"
)

// Config for the Replicate prediction adapter.
type Config struct {
	KeyName string
	// Model is "owner/name:version"; only the version part is sent.
	Model        string
	BaseURL      string        // override for tests
	PollInterval time.Duration // override for tests
}

const (
	defaultBaseURL = "https://api.replicate.com"
	defaultModel   = "stability-ai/sdxl:39ed52f2a78e934b3ba6e2a89f5b1c712de7dfea535525255b1aa35c5565e08b"

	// maxPollAttempts bounds the prediction long-poll. Exceeding it is
	// a provider failure, never an indefinite block.
	maxPollAttempts     = 30
	defaultPollInterval = 10 * time.Second
)

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

func (c Config) modelVersion() string {
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	if idx := strings.LastIndex(model, ":"); idx >= 0 {
		return model[idx+1:]
	}
	return model
}

func (c Config) pollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return defaultPollInterval
}

// =====================================================
// REPLICATE IMAGE CLIENT
// =====================================================

// Client starts a prediction and polls it to completion with a fixed
// attempt ceiling.
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
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Name() string {
	return "replicate"
}

func (c *Client) Generate(ctx context.Context, prompt, _ string) ([]byte, error) {
	apiKey, err := c.resolver.Resolve(ctx, c.config.KeyName)
	if err != nil {
		return nil, fmt.Errorf("replicate credential: %w", err)
	}

	predictionID, err := c.startPrediction(ctx, apiKey, prompt)
	if err != nil {
		return nil, err
	}

	outputURL, err := c.pollPrediction(ctx, apiKey, predictionID)
	if err != nil {
		return nil, err
	}

	return c.download(ctx, outputURL)
}

func (c *Client) startPrediction(ctx context.Context, apiKey, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"version": c.config.modelVersion(),
		"input": map[string]interface{}{
			"prompt":              prompt,
			"width":               1024,
			"height":              1024,
			"num_outputs":         1,
			"scheduler":           "K_EULER",
			"num_inference_steps": 20,
			"guidance_scale":      7.5,
		},
	}

	bodyJSON, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.config.baseURL() + "/v1/predictions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Token %s", apiKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call Replicate API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Replicate API error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var prediction struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(bodyBytes, &prediction); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if prediction.ID == "" {
		return "", fmt.Errorf("no prediction id in Replicate response")
	}

	return prediction.ID, nil
}

// pollPrediction waits for the prediction to succeed, bounded by
// maxPollAttempts at a fixed interval.
func (c *Client) pollPrediction(ctx context.Context, apiKey, predictionID string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/predictions/%s", c.config.baseURL(), predictionID)

	for attempt := 0; attempt < maxPollAttempts; attempt++ {
		select {
		case <-time.After(c.config.pollInterval()):
		case <-ctx.Done():
			return "", ctx.Err()
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return "", fmt.Errorf("failed to create HTTP request: %w", err)
		}
		httpReq.Header.Set("Authorization", fmt.Sprintf("Token %s", apiKey))

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return "", fmt.Errorf("failed to check prediction status: %w", err)
		}

		bodyBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("Replicate status error %d: %s", resp.StatusCode, string(bodyBytes))
		}

		var status struct {
			Status string   `json:"status"`
			Output []string `json:"output"`
			Error  string   `json:"error"`
		}
		if err := json.Unmarshal(bodyBytes, &status); err != nil {
			return "", fmt.Errorf("failed to unmarshal response: %w", err)
		}

		switch status.Status {
		case "succeeded":
			if len(status.Output) == 0 || status.Output[0] == "" {
				return "", fmt.Errorf("no output URL in prediction result")
			}
			return status.Output[0], nil
		case "failed", "canceled":
			return "", fmt.Errorf("prediction failed: %s", status.Error)
		}
	}

	return "", fmt.Errorf("prediction timed out after %d attempts", maxPollAttempts)
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
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
