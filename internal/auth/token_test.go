package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventure/internal/auth"
	"eventure/internal/errs"
)

func TestIssueAndVerify(t *testing.T) {
	svc := auth.NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue("64f0c2a8e4b0a1b2c3d4e5f6")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "64f0c2a8e4b0a1b2c3d4e5f6", claims.Subject)
	assert.NotEmpty(t, claims.ID, "jti should be set for identity caching")
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := auth.NewTokenService("test-secret", -time.Minute)

	token, err := svc.Issue("user1")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUnauthorized))
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := auth.NewTokenService("secret-a", time.Hour)
	verifier := auth.NewTokenService("secret-b", time.Hour)

	token, err := issuer.Issue("user1")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.True(t, errors.Is(err, errs.ErrUnauthorized))
}

func TestVerifyMalformedToken(t *testing.T) {
	svc := auth.NewTokenService("test-secret", time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Verify(raw)
		assert.True(t, errors.Is(err, errs.ErrUnauthorized), "token %q should not verify", raw)
	}
}
