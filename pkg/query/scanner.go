package query

import (
	"database/sql"

	"github.com/appcanvas/builder/pkg/utils"
)

// Row is a single result row keyed by column name
type Row map[string]interface{}

// ScanRows scans SQL rows into a slice of column maps. []byte values are
// converted to strings so MySQL and SQLite rows look the same to callers.
func ScanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]Row, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(Row, len(columns))
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = val
			}
		}

		results = append(results, record)
	}

	return results, rows.Err()
}

// String returns the column as a string, "" when NULL or absent
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return ""
	}
}

// NullableString returns nil for NULL columns
func (r Row) NullableString(col string) *string {
	if r[col] == nil {
		return nil
	}
	s := r.String(col)
	return &s
}

// Float returns a numeric column as float64, 0 when NULL
func (r Row) Float(col string) float64 {
	f, _ := utils.ToFloat(r[col])
	return f
}

// Int64 returns an integer column, 0 when NULL
func (r Row) Int64(col string) int64 {
	return utils.ToInt64(r[col])
}

// Bool reads TINYINT(1) columns from MySQL or SQLite
func (r Row) Bool(col string) bool {
	return utils.ToBool(r[col])
}
