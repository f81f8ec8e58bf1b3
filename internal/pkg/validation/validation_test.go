package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("manager@example.com"))
	assert.True(t, IsValidEmail("verifier@nccr.gov.in"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("missing@domain"))
	assert.False(t, IsValidEmail("spaces in@example.com"))
	assert.False(t, IsValidEmail(""))
}

func TestIsValidPassword(t *testing.T) {
	assert.True(t, IsValidPassword("Password1!"))
	assert.True(t, IsValidPassword("a1!aaaaa"))
	assert.False(t, IsValidPassword("short1!"))
	assert.False(t, IsValidPassword("NoDigits!"))
	assert.False(t, IsValidPassword("NoSpecial1"))
	assert.False(t, IsValidPassword("12345678!"))
}

func TestIsValidFullname(t *testing.T) {
	assert.True(t, IsValidFullname("Asha Nair"))
	assert.True(t, IsValidFullname("Mary-Jane O'Brien"))
	assert.False(t, IsValidFullname(""))
	assert.False(t, IsValidFullname("root; DROP TABLE Users"))
	assert.False(t, IsValidFullname("user123"))
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "nccr.gov.in", EmailDomain("verifier@nccr.gov.in"))
	assert.Equal(t, "example.com", EmailDomain("a@b@example.com"))
	assert.Equal(t, "", EmailDomain("no-at-sign"))
}
