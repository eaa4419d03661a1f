package gemini

// Config for the Gemini text and Imagen image adapters.
type Config struct {
	KeyName    string // secret name resolved at call time
	TextModel  string // e.g. gemini-1.5-flash
	ImageModel string // e.g. imagen-3.0-generate-001
	BaseURL    string // override for tests
}

const defaultBaseURL = "https://generativelanguage.googleapis.com"

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
	return "gemini-1.5-flash"
}

func (c Config) imageModel() string {
	if c.ImageModel != "" {
		return c.ImageModel
	}
	return "imagen-3.0-generate-001"
}
