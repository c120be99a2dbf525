package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralSigner("kid-1")
	require.NoError(t, err)
	require.NoError(t, signer.Validate())

	keys := NewKeySet()
	keys.AddSigner(signer)
	verifier := NewVerifier(keys, "test-issuer")

	claims := NewAccessClaims("account-1", "session-1", "alice", "admin",
		time.Minute, "test-issuer", time.Now().UTC())

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	parsed, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "account-1", parsed.Subject)
	require.Equal(t, "session-1", parsed.SID)
	require.Equal(t, "alice", parsed.Handle)
	require.Equal(t, "admin", parsed.Role)
	require.NotEmpty(t, parsed.ID)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralSigner("kid-1")
	require.NoError(t, err)

	keys := NewKeySet()
	keys.AddSigner(signer)
	verifier := NewVerifier(keys, "expected-issuer")

	claims := NewAccessClaims("account-1", "session-1", "alice", "admin",
		time.Minute, "other-issuer", time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralSigner("kid-1")
	require.NoError(t, err)

	keys := NewKeySet()
	keys.AddSigner(signer)
	verifier := NewVerifier(keys, "test-issuer")

	claims := NewAccessClaims("account-1", "session-1", "alice", "admin",
		time.Minute, "test-issuer", time.Now().UTC().Add(-time.Hour))
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsUnknownKey(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralSigner("kid-1")
	require.NoError(t, err)
	other, err := NewEphemeralSigner("kid-2")
	require.NoError(t, err)

	keys := NewKeySet()
	keys.AddSigner(other)
	verifier := NewVerifier(keys, "test-issuer")

	claims := NewAccessClaims("account-1", "session-1", "alice", "admin",
		time.Minute, "test-issuer", time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestKeySetIsReady(t *testing.T) {
	t.Parallel()

	keys := NewKeySet()
	require.False(t, keys.IsReady())

	signer, err := NewEphemeralSigner("kid-1")
	require.NoError(t, err)
	keys.AddSigner(signer)
	require.True(t, keys.IsReady())

	_, err = keys.Get("missing")
	require.ErrorIs(t, err, ErrNoKey)
}
