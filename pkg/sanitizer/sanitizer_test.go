package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "Kita Sonnenschein", Text("  Kita   Sonnenschein "))
	assert.Equal(t, "", Text("   "))
}

func TestCity_TrimOnly(t *testing.T) {
	// Matching compares cities literally, so case and interior
	// whitespace must survive.
	assert.Equal(t, "Berlin", City(" Berlin "))
	assert.Equal(t, "berlin", City("berlin"))
	assert.Equal(t, "Frankfurt am  Main", City("Frankfurt am  Main"))
}

func TestSlice(t *testing.T) {
	got := Slice([]string{" 0-2 ", "3-5", "0-2", "", "  "}, Tag)
	assert.Equal(t, []string{"0-2", "3-5"}, got)

	assert.Equal(t, []string{}, Slice(nil, Tag))
}

func TestPhone(t *testing.T) {
	assert.Equal(t, "+493012345678", Phone("030 12345678"))
	assert.Equal(t, "+493012345678", Phone("+49 30 12345678"))
	assert.Equal(t, "", Phone("  "))
	// Unparsable input passes through trimmed.
	assert.Equal(t, "not-a-number", Phone(" not-a-number "))
}
