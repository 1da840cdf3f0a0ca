package entity

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChatContactDefaults(t *testing.T) {
	contact := NewChatContact("+525512345678", "")

	assert.Equal(t, "New - +525512345678", contact.Name)
	assert.Equal(t, "+525512345678@chat", contact.Email)
	assert.Equal(t, CategoryProspect, contact.Category)
	assert.Equal(t, SourceOther, contact.LeadSource)
	assert.ElementsMatch(t, []string{"chat", "auto-created"}, contact.Tags)
}

func TestAutoProvisionedContactPassesValidation(t *testing.T) {
	contact := NewChatContact("+525512345678", "Ana")

	// The synthesized placeholder email must satisfy the entity's own
	// validation rules.
	require.NoError(t, validator.New().Struct(contact))
}
