package events

// EventType defines the type of event in the system
type EventType string

const (
	// Document events
	DocumentSaved      EventType = "document.saved"
	DocumentSaveFailed EventType = "document.save_failed"
	DocumentReloaded   EventType = "document.reloaded"

	// Project events
	ProjectCreated   EventType = "project.created"
	ProjectDeleted   EventType = "project.deleted"
	ProjectPublished EventType = "project.published"

	// Editor pointer events, scoped to one editor session bus
	PointerMove EventType = "editor.pointer_move"
	PointerUp   EventType = "editor.pointer_up"

	// Auth events
	SessionChanged EventType = "auth.session_changed"
)

// String returns the string representation of the event type
func (e EventType) String() string {
	return string(e)
}

// PointerPayload is carried by pointer events
type PointerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DocumentPayload is carried by document events
type DocumentPayload struct {
	ProjectID string `json:"projectId"`
	Screens   int    `json:"screens"`
	Databases int    `json:"databases"`
	Err       error  `json:"-"`
}
