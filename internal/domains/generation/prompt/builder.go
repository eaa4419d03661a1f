package prompt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"designlab-backend/internal/config"
	designModel "designlab-backend/internal/domains/design/model"
	"designlab-backend/internal/infrastructure/retrieval"
)

// MaxBriefLength is the sanitized brief ceiling in code units.
const MaxBriefLength = 2000

// StrictJSONSuffix is appended to the user section when a provider's
// first attempt returned malformed JSON.
const StrictJSONSuffix = "\nReturn only JSON with no leading/trailing text. Strict JSON."

const systemPreamble = `You are DesignLab's AI designer. OUTPUT MUST BE A JSON OBJECT with keys:
"title", "placements" (array), "palette" (array of #HEX), "fonts" (optional), "production_notes" (string).
Each placement object: { area:"front|back|sleeve", type:"text|image|shape", x, y, width, height, content:{...} }.
Do NOT include explanatory text outside JSON. If you cannot produce a design, return {"error":"explain reason"}.`

// Prompt is a constructed provider prompt plus its content hash.
// Hash is the hex SHA-256 of the full prompt text, stored on the
// DesignRecord for auditability. It is not used to short-circuit
// generation.
type Prompt struct {
	System string
	User   string
	Hash   string
}

// Full joins the system and user sections into the provider payload.
func (p Prompt) Full() string {
	return p.System + "\n\n" + p.User
}

// =====================================================
// BUILDER
// =====================================================

// Builder turns a sanitized design request into a deterministic
// provider prompt.
type Builder struct {
	cfg       config.GenerationConfig
	retriever retrieval.FactRetriever
}

func NewBuilder(cfg config.GenerationConfig, retriever retrieval.FactRetriever) *Builder {
	return &Builder{
		cfg:       cfg,
		retriever: retriever,
	}
}

// Build constructs the prompt for req. Returns EmptyBrief when the
// brief sanitizes to nothing. Retrieval failures never fail the build:
// they yield an empty context block.
func (b *Builder) Build(ctx context.Context, req designModel.GenerateDesignRequest) (Prompt, error) {
	brief := SanitizeBrief(req.Brief)
	if brief == "" {
		return Prompt{}, designModel.NewEmptyBriefError()
	}

	product := b.cfg.DefaultProduct
	style := b.cfg.DefaultStyle
	canvasW, canvasH := b.cfg.CanvasWidth, b.cfg.CanvasHeight
	wantRetrieval := false

	if req.Options != nil {
		if req.Options.Product != "" {
			product = req.Options.Product
		}
		if req.Options.Style != "" {
			style = req.Options.Style
		}
		if req.Options.Canvas != nil && req.Options.Canvas.W > 0 && req.Options.Canvas.H > 0 {
			canvasW, canvasH = req.Options.Canvas.W, req.Options.Canvas.H
		}
		wantRetrieval = req.Options.Retrieval
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Brief: %s\n", brief)
	fmt.Fprintf(&user, "Product: %s\n", product)
	fmt.Fprintf(&user, "Canvas: {\"w\":%d,\"h\":%d}\n", canvasW, canvasH)
	fmt.Fprintf(&user, "Style: %s\n", style)

	if wantRetrieval {
		if block := b.retrievalContext(ctx, brief); block != "" {
			fmt.Fprintf(&user, "\nContext:\n%s\n", block)
		}
	}

	p := Prompt{
		System: systemPreamble,
		User:   user.String(),
	}
	p.Hash = HashPrompt(p.Full())

	return p, nil
}

// retrievalContext renders up to the configured number of retrieved
// facts. An empty result (including any retrieval failure) yields an
// empty block.
func (b *Builder) retrievalContext(ctx context.Context, brief string) string {
	facts := b.retriever.Retrieve(ctx, brief)
	if len(facts) == 0 {
		return ""
	}

	lines := make([]string, 0, len(facts))
	for _, f := range facts {
		lines = append(lines, fmt.Sprintf("Fact: %s (source: %s)", f.Text, f.Source))
	}
	return strings.Join(lines, "\n")
}

// SanitizeBrief strips ASCII control characters (0x00-0x1F, 0x7F),
// trims surrounding whitespace, and truncates to MaxBriefLength units.
// Sanitizing an already-sanitized brief is a no-op.
func SanitizeBrief(s string) string {
	if s == "" {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			sb.WriteRune(' ')
			continue
		}
		sb.WriteRune(r)
	}

	safe := strings.TrimSpace(sb.String())

	runes := []rune(safe)
	if len(runes) > MaxBriefLength {
		safe = string(runes[:MaxBriefLength])
	}

	return strings.TrimSpace(safe)
}

// HashPrompt returns the hex SHA-256 digest of text.
func HashPrompt(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
