package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"2125551234", "+12125551234"},
		{"(212) 555-1234", "+12125551234"},
		{"+1 212 555 1234", "+12125551234"},
		{"+442071234567", "+442071234567"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhoneNumber(tt.input), "input %q", tt.input)
	}
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, UniqueStrings([]string{"a", "b", "a", "c", "b"}))
	assert.Nil(t, UniqueStrings(nil))
}

func TestCalculateOffset(t *testing.T) {
	assert.Equal(t, 0, CalculateOffset(1, 20))
	assert.Equal(t, 20, CalculateOffset(2, 20))
	assert.Equal(t, 0, CalculateOffset(0, 20))
}

func TestCalculateTotalPages(t *testing.T) {
	assert.Equal(t, 1, CalculateTotalPages(20, 20))
	assert.Equal(t, 2, CalculateTotalPages(21, 20))
	assert.Equal(t, 0, CalculateTotalPages(0, 20))
}
