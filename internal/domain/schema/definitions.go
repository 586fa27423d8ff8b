package schema

// Logical column types. DDL generation maps them to each SQL dialect.
const (
	TypeID     = "id"
	TypeString = "string"
	TypeText   = "text"
	TypeJSON   = "json"
	TypeBool   = "bool"
	TypeInt    = "int"
	TypeMillis = "millis"
	TypeFloat  = "float"
)

// ColumnDefinition represents a single column in a table
type ColumnDefinition struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
	Unique     bool   `json:"unique,omitempty"`
	Nullable   bool   `json:"nullable,omitempty"`
	Default    string `json:"default,omitempty"`
}

// IndexDefinition represents an index on a table
type IndexDefinition struct {
	Name    string   `json:"name,omitempty"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
}

// ForeignKeyDefinition represents a foreign key constraint
type ForeignKeyDefinition struct {
	Column     string `json:"column"`
	References string `json:"references"` // format: "tableName(columnName)"
	OnDelete   string `json:"on_delete,omitempty"`
}

// TableDefinition represents a complete table schema
type TableDefinition struct {
	TableName   string                 `json:"table_name"`
	Description string                 `json:"description"`
	Columns     []ColumnDefinition     `json:"columns"`
	Indices     []IndexDefinition      `json:"indices,omitempty"`
	ForeignKeys []ForeignKeyDefinition `json:"foreign_keys,omitempty"`
}
