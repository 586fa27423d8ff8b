package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"hello", "hello"},
		{float64(40), "40"},
		{12.5, "12.5"},
		{int64(7), "7"},
		{true, "true"},
		{[]byte("raw"), "raw"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stringify(tt.in))
	}
}

func TestToBoolAcrossDrivers(t *testing.T) {
	assert.True(t, ToBool(int64(1)))
	assert.True(t, ToBool([]byte("1")))
	assert.True(t, ToBool(true))
	assert.False(t, ToBool(int64(0)))
	assert.False(t, ToBool(nil))
}

func TestGenerateIDIsUUID(t *testing.T) {
	id := GenerateID()
	assert.True(t, IsValidUUID(id))
	assert.NotEqual(t, id, GenerateID())
}
