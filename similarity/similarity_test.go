package similarity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"John Smith", "Maria Garcia"},
		{"kitten", "sitting"},
		{"", "abc"},
		{"AB1234567", "ab1234567"},
	}
	for _, p := range pairs {
		require.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]),
			"similarity must be symmetric for %q / %q", p[0], p[1])
	}
}

func TestSimilarity_Identity(t *testing.T) {
	for _, s := range []string{"a", "John Smith", "1234 5678 9012", "ÀBCDÉ"} {
		require.Equal(t, 1.0, Similarity(s, s))
	}
}

func TestSimilarity_EmptyStrings(t *testing.T) {
	require.Equal(t, 1.0, Similarity("", ""))
	require.Equal(t, 0.0, Similarity("", "abcd"))
}

func TestSimilarity_CaseInsensitive(t *testing.T) {
	require.Equal(t, 1.0, Similarity("JOHN SMITH", "john smith"))
}

func TestSimilarity_KnownDistance(t *testing.T) {
	// kitten -> sitting: distance 3, maxLen 7
	require.InDelta(t, (7.0-3.0)/7.0, Similarity("kitten", "sitting"), 1e-9)
}

func TestSimilarity_MismatchedNamesBelowNameThreshold(t *testing.T) {
	require.Less(t, Similarity("John Smith", "Maria Garcia"), 0.6)
}

func TestNormalizeNumber(t *testing.T) {
	require.Equal(t, "123456789012", NormalizeNumber("1234 5678-9012"))
	require.Equal(t, "ab1234567", NormalizeNumber("AB 1234567"))
	require.Equal(t, "", NormalizeNumber("  -  "))
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "jose garcia", NormalizeName("  José   GARCÍA "))
	require.Equal(t, "john doe", NormalizeName("John\nDoe"))
}
