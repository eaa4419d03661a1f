package job

// RenderState tracks a render task through its pipeline stages. The
// state reached when a task fails is logged with the failure, which is
// what distinguishes "provider never produced bytes" from "bytes
// uploaded but the record update lost" during incident triage.
type RenderState string

const (
	StateQueued        RenderState = "queued"
	StateGenerating    RenderState = "generating"
	StateUploaded      RenderState = "uploaded"
	StateRecordUpdated RenderState = "record_updated"
	StateFailed        RenderState = "failed"
)
