package utils

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQrDataURL(t *testing.T) {
	url, err := QrDataURL("2b1f6f0e-1f6a-4fd4-9d8e-0c2f7f1f2a3b")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw[:4])
}
