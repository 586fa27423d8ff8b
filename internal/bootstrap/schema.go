package bootstrap

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/appcanvas/builder/internal/domain/schema"
	"github.com/appcanvas/builder/internal/infrastructure/database"
	"github.com/appcanvas/builder/pkg/config"
	"github.com/appcanvas/builder/pkg/logutils"
)

//go:embed builder_tables.json
var builderTablesJSON []byte

// GetTableDefinitions returns the builder tables in creation order
func GetTableDefinitions() ([]schema.TableDefinition, error) {
	var definitions []schema.TableDefinition
	if err := json.Unmarshal(builderTablesJSON, &definitions); err != nil {
		return nil, fmt.Errorf("failed to parse builder_tables.json: %w", err)
	}
	return definitions, nil
}

// InitializeSchema creates every builder table and index that does not exist yet
func InitializeSchema(ctx context.Context, db *database.Connection) error {
	logutils.Log.Info("🔧 Initializing builder schema...")

	defs, err := GetTableDefinitions()
	if err != nil {
		return err
	}

	for _, def := range defs {
		for _, stmt := range CreateTableStatements(def, db.Driver()) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create %s: %w", def.TableName, err)
			}
		}
		logutils.Log.Debugf("   🧱 %s", def.TableName)
	}

	logutils.Log.Infof("✅ Schema ready (%d tables)", len(defs))
	return nil
}

// CreateTableStatements renders the CREATE TABLE statement followed by one
// CREATE INDEX statement per index. Both MySQL/TiDB and SQLite accept the output.
func CreateTableStatements(def schema.TableDefinition, driver string) []string {
	parts := make([]string, 0, len(def.Columns)+len(def.ForeignKeys))
	for _, col := range def.Columns {
		parts = append(parts, columnDDL(col, driver))
	}
	for _, fk := range def.ForeignKeys {
		parts = append(parts, foreignKeyDDL(fk))
	}

	stmts := []string{fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (\n  %s\n)", def.TableName, strings.Join(parts, ",\n  "))}
	for _, idx := range def.Indices {
		stmts = append(stmts, indexDDL(def.TableName, idx))
	}
	return stmts
}

// SQLType maps a logical column type to the dialect's column type
func SQLType(logical, driver string) string {
	switch logical {
	case schema.TypeID:
		return "VARCHAR(64)"
	case schema.TypeString:
		return "VARCHAR(255)"
	case schema.TypeText:
		return "TEXT"
	case schema.TypeJSON:
		if driver == config.DriverMySQL {
			return "LONGTEXT"
		}
		return "TEXT"
	case schema.TypeBool:
		return "TINYINT(1)"
	case schema.TypeInt:
		return "INT"
	case schema.TypeMillis:
		return "BIGINT"
	case schema.TypeFloat:
		return "DOUBLE"
	default:
		return "VARCHAR(255)"
	}
}

func columnDDL(col schema.ColumnDefinition, driver string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("`%s` %s", col.Name, SQLType(col.Type, driver)))

	if !col.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if col.Default != "" {
		sb.WriteString(fmt.Sprintf(" DEFAULT %s", col.Default))
	}
	if col.PrimaryKey {
		sb.WriteString(" PRIMARY KEY")
	}
	if col.Unique {
		sb.WriteString(" UNIQUE")
	}
	return sb.String()
}

func foreignKeyDDL(fk schema.ForeignKeyDefinition) string {
	ddl := fmt.Sprintf("FOREIGN KEY (`%s`) REFERENCES %s", fk.Column, fk.References)
	if fk.OnDelete != "" {
		ddl += fmt.Sprintf(" ON DELETE %s", fk.OnDelete)
	}
	return ddl
}

func indexDDL(tableName string, idx schema.IndexDefinition) string {
	name := idx.Name
	if name == "" {
		name = fmt.Sprintf("idx_%s_%s", tableName, strings.Join(idx.Columns, "_"))
	}
	kind := "INDEX"
	if idx.Unique {
		kind = "UNIQUE INDEX"
	}
	return fmt.Sprintf("CREATE %s IF NOT EXISTS `%s` ON `%s` (`%s`)",
		kind, name, tableName, strings.Join(idx.Columns, "`, `"))
}
