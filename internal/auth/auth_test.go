package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPasswordIsDeterministicHex(t *testing.T) {
	h := HashPassword("tigers-2026")
	require.Len(t, h, 64)
	require.Equal(t, h, HashPassword("tigers-2026"))

	// Known vector for the empty string.
	require.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		HashPassword(""))
}

func TestVerifyPassword(t *testing.T) {
	h := HashPassword("secret")
	require.True(t, VerifyPassword("secret", h))
	require.False(t, VerifyPassword("Secret", h))
	require.False(t, VerifyPassword("secret", HashPassword("other")))
}
