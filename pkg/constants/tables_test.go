package constants

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilderTablesArePrefixedAndUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, table := range BuilderTables() {
		assert.True(t, strings.HasPrefix(table, "builder_"), table)
		assert.False(t, seen[table], "duplicate table %s", table)
		seen[table] = true
	}
	assert.Len(t, seen, 8)
}
