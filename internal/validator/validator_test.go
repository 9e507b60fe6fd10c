package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@b.com"))
	assert.True(t, IsValidEmail("jane.citizen@rbceasyrent.com.au"))
	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("Jane <a@b.com>"))
}

func TestNumericWorkflowID(t *testing.T) {
	id, ok := NumericWorkflowID("2301")
	assert.True(t, ok)
	assert.Equal(t, 2301, id)

	_, ok = NumericWorkflowID("workflow-east")
	assert.False(t, ok)

	// Leading/trailing whitespace from copy-pasted settings is tolerated.
	id, ok = NumericWorkflowID(" 2301 ")
	assert.True(t, ok)
	assert.Equal(t, 2301, id)
}

func TestIsUsablePlaceholderEmail(t *testing.T) {
	assert.True(t, IsUsablePlaceholderEmail("signer@rbceasyrent.com.au"))
	assert.False(t, IsUsablePlaceholderEmail("PLACEHOLDER@example.com"))
	assert.False(t, IsUsablePlaceholderEmail("user@yourdomain.com"))
	assert.False(t, IsUsablePlaceholderEmail("broken@"))
	assert.False(t, IsUsablePlaceholderEmail(""))
}
