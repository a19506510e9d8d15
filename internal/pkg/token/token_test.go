package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateUniqueAndWellFormed(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		tok, err := Generate()
		require.NoError(t, err)
		require.True(t, WellFormed(tok), tok)
		require.NotContains(t, tok, "/")
		require.NotContains(t, tok, "+")
		_, dup := seen[tok]
		require.False(t, dup)
		seen[tok] = struct{}{}
	}
}

func TestWellFormedRejectsGarbage(t *testing.T) {
	require.False(t, WellFormed(""))
	require.False(t, WellFormed("short"))
	require.False(t, WellFormed("!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!"))
}

func TestFingerprintStable(t *testing.T) {
	require.Equal(t, Fingerprint("abc"), Fingerprint("abc"))
	require.NotEqual(t, Fingerprint("abc"), Fingerprint("abd"))
	require.Len(t, Fingerprint("abc"), 12)
}
