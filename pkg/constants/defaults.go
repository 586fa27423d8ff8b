package constants

// Document defaults
const (
	DefaultScreenName      = "Home"
	DefaultBackgroundColor = "#ffffff"
	DefaultProjectTitle    = "Untitled Project"
	ConfigExportVersion    = "1.0"
	SelectionColor         = "#8B5CF6"
)

// Context keys and headers
const (
	ContextKeyUser      = "user"
	ContextKeyToken     = "token"
	HeaderAuthorization = "Authorization"
)

// Response keys
const (
	ResponseError         = "error"
	FieldMessage          = "message"
	ResponseNotifications = "notifications"
)

// Query directions
const (
	SortASC  = "ASC"
	SortDESC = "DESC"
)
