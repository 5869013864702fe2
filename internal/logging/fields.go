package logging

// Standardized structured log field names.
const (
	FieldComponent = "component"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	FieldImpact    = "impact"
	FieldRunID     = "run_id"
	FieldSceneID   = "scene_id"
	FieldQueryID   = "query_id"
	FieldProvider  = "provider"
	FieldStage     = "stage"
)
