package constants

// Shared columns
const (
	FieldID               = "id"
	FieldName             = "name"
	FieldProjectID        = "project_id"
	FieldPosition         = "position"
	FieldCreatedDate      = "created_date"
	FieldLastModifiedDate = "last_modified_date"
)

// Users and sessions
const (
	FieldEmail        = "email"
	FieldPasswordHash = "password_hash"
	FieldIsAnonymous  = "is_anonymous"
	FieldUserID       = "user_id"
	FieldExpiresAt    = "expires_at"
	FieldIsRevoked    = "is_revoked"
	FieldLastActivity = "last_activity"
)

// Projects
const (
	FieldOwnerID     = "owner_id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPublishedID = "published_id"
	FieldPublishedAt = "published_at"
)

// Screens
const (
	FieldIsDefaultLoggedIn  = "is_default_logged_in"
	FieldIsDefaultLoggedOut = "is_default_logged_out"
	FieldIsHome             = "is_home"
	FieldBackgroundColor    = "background_color"
	FieldBackgroundImage    = "background_image"
)

// Components
const (
	FieldScreenID   = "screen_id"
	FieldType       = "type"
	FieldX          = "x"
	FieldY          = "y"
	FieldWidth      = "width"
	FieldHeight     = "height"
	FieldContent    = "content"
	FieldStyles     = "styles"
	FieldActions    = "actions"
	FieldConnection = "database_connection"
)

// Databases and records
const (
	FieldFields     = "fields"
	FieldDatabaseID = "database_id"
	FieldData       = "data"
)

// Published snapshots
const (
	FieldSnapshot = "snapshot"
)
