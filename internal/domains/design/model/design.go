package model

import (
	"time"
)

// =====================================================
// DESIGN DOCUMENT
// =====================================================

// Placement types
const (
	PlacementTypeText  = "text"
	PlacementTypeImage = "image"
	PlacementTypeShape = "shape"
)

// Conventional placement areas (free-form, these are the usual values)
const (
	AreaFront  = "front"
	AreaBack   = "back"
	AreaSleeve = "sleeve"
)

// Defaults applied by the response validator
var DefaultPalette = []string{"#D4AF37", "#0b0b0b", "#ffffff"}

const (
	DefaultTitle           = "Untitled"
	DefaultPlacementWidth  = 400.0
	DefaultPlacementHeight = 400.0
)

// Placement is one positioned element within a design's canvas.
type Placement struct {
	Area    string                 `json:"area"`
	Type    string                 `json:"type"` // text | image | shape
	X       float64                `json:"x"`
	Y       float64                `json:"y"`
	Width   float64                `json:"width"`
	Height  float64                `json:"height"`
	Content map[string]interface{} `json:"content"`
}

// Font descriptor, optional part of a design.
type Font struct {
	Name   string   `json:"name"`
	SizePt *float64 `json:"size_pt,omitempty"`
	Weight string   `json:"weight,omitempty"`
}

// Design is the canonical structured output of a generation.
// Placements is never nil (empty slice allowed); order is rendering
// z-order within an area.
type Design struct {
	Title           string      `json:"title"`
	Placements      []Placement `json:"placements"`
	Palette         []string    `json:"palette"`
	Fonts           []Font      `json:"fonts,omitempty"`
	ProductionNotes string      `json:"production_notes,omitempty"`
}

// =====================================================
// PERSISTED RECORD
// =====================================================

// PreviewEntry is one rendered preview asset appended by the worker.
type PreviewEntry struct {
	StorageKey string `json:"storage_key"`
	URL        string `json:"url"`
}

// DesignRecord is the persisted server-side representation of a design
// plus its generation metadata and previews.
//
// Previews is append-only; PreviewURL is set once by whichever preview
// append lands first and never overwritten afterwards.
type DesignRecord struct {
	DesignID   string         `json:"design_id"`
	UserID     string         `json:"user_id"`
	CreatedAt  time.Time      `json:"created_at"`
	PromptHash string         `json:"prompt_hash"` // audit only, never read back
	Model      string         `json:"model"`       // text provider that produced the design
	Design     *Design        `json:"design"`
	Previews   []PreviewEntry `json:"previews"`
	PreviewURL string         `json:"preview_url"`
}
