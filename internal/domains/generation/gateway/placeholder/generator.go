package placeholder

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ================================================
// PLACEHOLDER GENERATOR (universal image fallback)
// ================================================

// Width/height of the synthesized preview, matching the aspect of the
// default garment canvas.
const (
	imageWidth  = 1200
	imageHeight = 1400
)

// Generator synthesizes a deterministic preview locally: a solid
// background with a marked print region, colors derived from the
// design id. It has no network dependency, which is what guarantees
// the render worker always reaches its upload step regardless of
// provider outages.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Name() string {
	return "placeholder"
}

func (g *Generator) Generate(_ context.Context, _ string, designID string) ([]byte, error) {
	bg, accent := paletteFor(designID)

	canvas := imaging.New(imageWidth, imageHeight, bg)

	// Marked print region: centered block at roughly the garment's
	// front print area.
	region := imaging.New(imageWidth/2, imageHeight/2, accent)
	canvas = imaging.Paste(canvas, region, image.Pt(imageWidth/4, imageHeight/4))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode placeholder: %w", err)
	}

	return buf.Bytes(), nil
}

// paletteFor derives a stable background/accent pair from the design
// id so repeated renders of the same design are byte-identical.
func paletteFor(designID string) (color.NRGBA, color.NRGBA) {
	sum := sha1.Sum([]byte(designID))

	bg := color.NRGBA{R: sum[0] / 2, G: sum[1] / 2, B: sum[2] / 2, A: 255}
	accent := color.NRGBA{
		R: 128 + sum[3]/2,
		G: 128 + sum[4]/2,
		B: 128 + sum[5]/2,
		A: 255,
	}
	return bg, accent
}
