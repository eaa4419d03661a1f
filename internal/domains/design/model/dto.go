package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// =====================================================
// REQUEST DTOs
// =====================================================

// Canvas is the target print area in abstract canvas units.
type Canvas struct {
	W int `json:"w"`
	H int `json:"h"`
}

// DesignOptions are optional knobs on a generation request.
type DesignOptions struct {
	Product   string  `json:"product,omitempty"`
	Style     string  `json:"style,omitempty"`
	Canvas    *Canvas `json:"canvas,omitempty"`
	Retrieval bool    `json:"retrieval,omitempty"`
}

// GenerateDesignRequest is the body of POST /designs.
// Brief gets sanitized (control chars stripped, trimmed, truncated to
// 2000 units) before prompt construction; emptiness is checked on the
// sanitized value, so validation here only rejects the outright-missing
// case early.
type GenerateDesignRequest struct {
	Brief   string         `json:"brief"`
	UserID  string         `json:"userId,omitempty"`
	Options *DesignOptions `json:"options,omitempty"`
}

func (r GenerateDesignRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Brief, validation.Required),
		validation.Field(&r.UserID, validation.Length(0, 128)),
	)
}

// =====================================================
// RESPONSE DTOs
// =====================================================

// GenerateDesignResponse is the 200 body of POST /designs.
// PreviewURL is empty until the first render job completes; clients
// obtain it via polling.
type GenerateDesignResponse struct {
	DesignID   string  `json:"designId"`
	Design     *Design `json:"design"`
	PreviewURL string  `json:"previewUrl"`
}

// ConceptStatusResponse is the 200 body of GET /concepts/:id.
//
// Polling contract: clients poll on a fixed interval (2-3s) up to a
// fixed ceiling (~40 attempts). ready=true with an empty previewUrl is
// a valid intermediate state (design text ready, previews still
// rendering); exceeding the ceiling is a client-side timeout, not a
// terminal failure of the design.
type ConceptStatusResponse struct {
	Ready      bool    `json:"ready"`
	Design     *Design `json:"design,omitempty"`
	PreviewURL string  `json:"previewUrl,omitempty"`
}
