package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuePairRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", 600*time.Minute, 24*time.Hour)

	pair, err := issuer.IssuePair(7)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	claims, err := issuer.Parse(pair.Access, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.WithinDuration(t, time.Now().Add(600*time.Minute), claims.ExpiresAt.Time, time.Minute)

	claims, err = issuer.Parse(pair.Refresh, RefreshToken)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestParseRejectsWrongType(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour, time.Hour)
	pair, err := issuer.IssuePair(1)
	require.NoError(t, err)

	_, err = issuer.Parse(pair.Refresh, AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
	_, err = issuer.Refresh(pair.Access)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestParseRejectsForeignSignatureAndExpiry(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour, time.Hour)
	other := NewTokenIssuer("other", time.Hour, time.Hour)
	pair, err := other.IssuePair(1)
	require.NoError(t, err)
	_, err = issuer.Parse(pair.Access, AccessToken)
	assert.Error(t, err)

	expired := NewTokenIssuer("secret", -time.Minute, time.Hour)
	pair, err = expired.IssuePair(1)
	require.NoError(t, err)
	_, err = issuer.Parse(pair.Access, AccessToken)
	assert.Error(t, err)
}

func TestRefreshIssuesAccessToken(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour, time.Hour)
	pair, err := issuer.IssuePair(3)
	require.NoError(t, err)

	access, err := issuer.Refresh(pair.Refresh)
	require.NoError(t, err)
	claims, err := issuer.Parse(access, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
}
