package server_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-dbgate/server"
)

func TestNewTokenCodecRequiresSecret(t *testing.T) {
	_, err := server.NewTokenCodec(nil)
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	codec, err := server.NewTokenCodec([]byte("test-signing-secret"))
	require.NoError(t, err)

	bearer, err := codec.Issue("session-token-1", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, bearer)

	sessionToken, err := codec.Parse(bearer)
	require.NoError(t, err)
	require.Equal(t, "session-token-1", sessionToken)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer, err := server.NewTokenCodec([]byte("secret-a"))
	require.NoError(t, err)
	verifier, err := server.NewTokenCodec([]byte("secret-b"))
	require.NoError(t, err)

	bearer, err := issuer.Issue("session-token-1", "admin")
	require.NoError(t, err)

	_, err = verifier.Parse(bearer)
	require.Error(t, err)
}

func TestTokenRejectsGarbage(t *testing.T) {
	codec, err := server.NewTokenCodec([]byte("test-signing-secret"))
	require.NoError(t, err)

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := codec.Parse(raw)
		require.Error(t, err, "raw %q", raw)
	}
}

func TestTokenExpires(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	originalNow := server.NowTimeFunc
	server.NowTimeFunc = func() time.Time { return now }
	defer func() { server.NowTimeFunc = originalNow }()

	codec, err := server.NewTokenCodec([]byte("test-signing-secret"))
	require.NoError(t, err)

	bearer, err := codec.Issue("session-token-1", "admin")
	require.NoError(t, err)

	_, err = codec.Parse(bearer)
	require.NoError(t, err)

	now = now.Add(25 * time.Hour)
	_, err = codec.Parse(bearer)
	require.Error(t, err)
}
