package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Match(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name    string
		expr    string
		env     map[string]interface{}
		want    bool
		wantErr bool
	}{
		{"numeric comparison", "price > 10", map[string]interface{}{"price": 12.5}, true, false},
		{"string function", `UPPER(category) == "FOOD"`, map[string]interface{}{"category": "food"}, true, false},
		{"missing field is nil", "title == nil", map[string]interface{}{}, true, false},
		{"blank", "BLANK(title)", map[string]interface{}{"title": "  "}, true, false},
		{"length", "LEN(name) >= 3", map[string]interface{}{"name": "Al"}, false, false},
		{"non boolean result", "price + 1", map[string]interface{}{"price": 1}, false, true},
		{"syntax error", "price >", map[string]interface{}{"price": 1}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Match(tt.expr, tt.env)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_CachesPrograms(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Validate("a == 1"))
	require.NoError(t, e.Validate("a == 1"))
	assert.Len(t, e.programCache, 1)
}
