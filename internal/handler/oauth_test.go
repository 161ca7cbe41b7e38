package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeRedirect(t *testing.T) {
	u, ok := sanitizeRedirect("https://app.example.com/callback?state=xyz")
	require.True(t, ok)
	assert.Equal(t, "app.example.com", u.Host)

	cases := []string{
		"",
		"not a url",
		"/relative/path",
		"example.com/callback", // no scheme
		"https://",             // no host
	}
	for _, raw := range cases {
		_, ok := sanitizeRedirect(raw)
		assert.False(t, ok, "expected %q to be rejected", raw)
	}
}
