package logging

// Standardized attribute keys. Keep these stable; log consumers filter on them.
const (
	FieldComponent     = "component"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint"
	FieldImpact        = "impact"
	FieldCorrelationID = "correlation_id"
	FieldTrigger       = "trigger"
	FieldGamertag      = "gamertag"
	FieldEntity        = "entity"
	FieldGame          = "game"
	FieldAlert         = "alert"
)
