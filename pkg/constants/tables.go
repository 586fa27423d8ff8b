package constants

// Builder tables
const (
	TableUser      = "builder_users"
	TableSession   = "builder_sessions"
	TableProject   = "builder_projects"
	TableScreen    = "builder_screens"
	TableComponent = "builder_components"
	TableDatabase  = "builder_databases"
	TableRecord    = "builder_database_records"
	TablePublished = "builder_published"
)

// BuilderTables lists every table in creation order (parents first)
func BuilderTables() []string {
	return []string{
		TableUser,
		TableSession,
		TableProject,
		TableScreen,
		TableComponent,
		TableDatabase,
		TableRecord,
		TablePublished,
	}
}
