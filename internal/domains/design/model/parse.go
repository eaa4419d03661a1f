package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ParseDesign strictly parses raw provider output and normalizes it
// into a canonical Design.
//
// The asymmetry is deliberate: shape defects (not JSON, not an object,
// placements missing or non-array) are hard failures that trigger the
// caller's retry, while field-level defects are coerced to documented
// defaults so nearly-right provider output is accepted.
func ParseDesign(raw string) (*Design, error) {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, NewMalformedOutputError(fmt.Sprintf("invalid JSON: %v", err))
	}
	if parsed == nil {
		return nil, NewMalformedOutputError("top-level value is not an object")
	}

	// Provider escape hatch: {"error": "..."} means generation was
	// infeasible for this brief.
	if msg, ok := parsed["error"].(string); ok && msg != "" {
		return nil, NewMalformedOutputError(fmt.Sprintf("provider declined: %s", msg))
	}

	rawPlacements, ok := parsed["placements"].([]interface{})
	if !ok {
		return nil, NewMalformedOutputError("placements is missing or not an array")
	}

	design := &Design{
		Title:      coerceString(parsed["title"], DefaultTitle),
		Placements: make([]Placement, 0, len(rawPlacements)),
		Palette:    coercePalette(parsed["palette"]),
	}

	for _, rp := range rawPlacements {
		pm, _ := rp.(map[string]interface{})
		design.Placements = append(design.Placements, coercePlacement(pm))
	}

	if fonts, ok := parsed["fonts"].([]interface{}); ok {
		design.Fonts = coerceFonts(fonts)
	}
	if notes, ok := parsed["production_notes"].(string); ok {
		design.ProductionNotes = notes
	}

	return design, nil
}

func coercePlacement(pm map[string]interface{}) Placement {
	p := Placement{
		Area:    coerceString(pm["area"], AreaFront),
		Type:    coercePlacementType(pm["type"]),
		X:       coerceFloat(pm["x"], 0),
		Y:       coerceFloat(pm["y"], 0),
		Width:   coerceFloat(pm["width"], DefaultPlacementWidth),
		Height:  coerceFloat(pm["height"], DefaultPlacementHeight),
		Content: map[string]interface{}{},
	}
	if content, ok := pm["content"].(map[string]interface{}); ok {
		p.Content = content
	}
	return p
}

// coercePlacementType keeps the type within {text, image, shape};
// anything else (including absence) normalizes to text.
func coercePlacementType(v interface{}) string {
	s, _ := v.(string)
	switch s {
	case PlacementTypeText, PlacementTypeImage, PlacementTypeShape:
		return s
	default:
		return PlacementTypeText
	}
}

func coercePalette(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok || len(raw) == 0 {
		return append([]string(nil), DefaultPalette...)
	}

	palette := make([]string, 0, len(raw))
	for _, entry := range raw {
		palette = append(palette, coerceString(entry, ""))
	}
	return palette
}

func coerceFonts(raw []interface{}) []Font {
	fonts := make([]Font, 0, len(raw))
	for _, rf := range raw {
		fm, ok := rf.(map[string]interface{})
		if !ok {
			continue
		}
		font := Font{
			Name:   coerceString(fm["name"], ""),
			Weight: coerceString(fm["weight"], ""),
		}
		if size, ok := fm["size_pt"].(float64); ok {
			font.SizePt = &size
		}
		fonts = append(fonts, font)
	}
	return fonts
}

func coerceString(v interface{}, def string) string {
	switch s := v.(type) {
	case string:
		if s == "" {
			return def
		}
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return def
	}
}

func coerceFloat(v interface{}, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
		return def
	default:
		return def
	}
}
