package shared

// Task types processed by the worker
const (
	TypeRenderPreview      = "design:render_preview"
	TypeRefreshPreviewURLs = "design:refresh_preview_urls"
)

// Queue names (priorities configured in cmd/worker)
const (
	QueueRender      = "render"
	QueueMaintenance = "maintenance"
)

// AnonymousUserID is recorded when a request carries no user identifier.
const AnonymousUserID = "anon"
