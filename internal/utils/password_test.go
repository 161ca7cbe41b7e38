package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestStrongPassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     bool
	}{
		{"all lowercase", "abcdefgh", false},
		{"accepted", "Abc123!x", true},
		{"too short", "Ab1!xyz", false},
		{"no uppercase", "abc123!x", false},
		{"no lowercase", "ABC123!X", false},
		{"no digit", "Abcdef!x", false},
		{"no symbol", "Abc123xx", false},
		{"empty", "", false},
		{"underscore counts as symbol", "Abc123_x", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StrongPassword(tc.password))
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Abcd123!", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, VerifyPassword(hash, "Abcd123!"))
	assert.False(t, VerifyPassword(hash, "Abcd123?"))
	assert.False(t, VerifyPassword("not-a-hash", "Abcd123!"))
}
