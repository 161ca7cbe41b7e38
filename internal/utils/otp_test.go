package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOtpCodeRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := NewOtpCode()
		require.NoError(t, err)
		require.Len(t, code, 5)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 10000)
		assert.LessOrEqual(t, n, 99999)
	}
}
