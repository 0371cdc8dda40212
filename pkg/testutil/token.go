package testutil

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// MintToken assembles an unsigned three-segment bearer credential from the
// given payload claims. The signature segment is junk on purpose: the client
// never verifies it, so tests should not pretend otherwise.
func MintToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	require.NoError(t, err, "failed to marshal token header")
	payload, err := json.Marshal(claims)
	require.NoError(t, err, "failed to marshal token claims")

	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "." + enc.EncodeToString([]byte("unsigned"))
}
