package jwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("s3cret", 42, "a@b.com", 24)
	require.NoError(t, err)

	claims, err := ParseAuth("Bearer "+tok, "s3cret")
	require.NoError(t, err)
	require.Equal(t, float64(42), claims["sub"])
	require.Equal(t, "a@b.com", claims["email"])
}

func TestParseAuth_WrongSecret(t *testing.T) {
	tok, err := Issue("s3cret", 1, "a@b.com", 1)
	require.NoError(t, err)

	_, err = ParseAuth("Bearer "+tok, "other")
	require.Error(t, err)
}

func TestParseAuth_MissingToken(t *testing.T) {
	_, err := ParseAuth("", "s3cret")
	require.Error(t, err)
}
