package model

// RenderPreviewPayload is the body of a design:render_preview task.
// DesignID and Prompt are required; a payload missing either is a
// poison message (logged and dropped, never retried).
type RenderPreviewPayload struct {
	DesignID string `json:"design_id"`
	Prompt   string `json:"prompt"`
	Index    int    `json:"index"`
}

// RefreshPreviewURLsPayload is the body of the scheduled
// design:refresh_preview_urls task.
type RefreshPreviewURLsPayload struct {
	// WindowHours bounds how far back refreshed records may reach.
	WindowHours int `json:"window_hours"`
	// Limit caps records refreshed per run.
	Limit int `json:"limit"`
}
