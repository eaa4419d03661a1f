package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ================================================
// MOCK TEXT PROVIDER (no-credential environments)
// ================================================

// TextProvider is the terminal entry of the text fallback chain. It
// deterministically synthesizes a structurally valid design document
// from the prompt's Brief/Product/Style lines, so a development
// environment with no API keys stays fully functional end-to-end.
type TextProvider struct{}

func NewTextProvider() *TextProvider {
	return &TextProvider{}
}

func (p *TextProvider) Name() string {
	return "mock"
}

// Available is always true: the mock needs no credential.
func (p *TextProvider) Available(_ context.Context) bool {
	return true
}

func (p *TextProvider) Generate(_ context.Context, prompt string) (string, error) {
	brief := promptField(prompt, "Brief")
	product := promptField(prompt, "Product")
	style := promptField(prompt, "Style")

	if product == "" {
		product = "t-shirt"
	}
	if style == "" {
		style = "classic vintage"
	}

	headline := brief
	if len(headline) > 50 {
		headline = headline[:50] + "..."
	}

	design := map[string]interface{}{
		"title": fmt.Sprintf("%s Design - %s", titleCase(product), style),
		"placements": []map[string]interface{}{
			{
				"area": "front", "type": "text",
				"x": 120, "y": 200, "width": 360, "height": 120,
				"content": map[string]string{"text": headline},
			},
			{
				"area": "front", "type": "shape",
				"x": 100, "y": 360, "width": 400, "height": 8,
				"content": map[string]string{},
			},
		},
		"palette":          []string{"#D4AF37", "#000000", "#FFFFFF", "#C0C0C0"},
		"production_notes": fmt.Sprintf("Generated for %s in %s style", product, style),
	}

	out, err := json.Marshal(design)
	if err != nil {
		return "", fmt.Errorf("failed to marshal mock design: %w", err)
	}
	return string(out), nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// promptField extracts the value of a "Key: value" line from the
// prompt's user section.
func promptField(prompt, key string) string {
	prefix := key + ": "
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}
