package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTServiceRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "supplynet", time.Hour)

	token, err := svc.GenerateToken("dist-a", "DIRECTOR", []string{"distributor"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "dist-a", claims.UserID)
	assert.Equal(t, "DIRECTOR", claims.Level)
	assert.Equal(t, "supplynet", claims.Issuer)
}

func TestJWTServiceRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-one", "supplynet", time.Hour)
	verifier := NewJWTService("secret-two", "supplynet", time.Hour)

	token, err := issuer.GenerateToken("dist-a", "NORMAL", nil)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTServiceRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", "supplynet", -time.Minute)

	token, err := svc.GenerateToken("dist-a", "NORMAL", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTServiceRejectsWrongIssuer(t *testing.T) {
	issuer := NewJWTService("test-secret", "someone-else", time.Hour)
	verifier := NewJWTService("test-secret", "supplynet", time.Hour)

	token, err := issuer.GenerateToken("dist-a", "NORMAL", nil)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestJWTServiceRejectsEmptyToken(t *testing.T) {
	svc := NewJWTService("test-secret", "supplynet", time.Hour)

	_, err := svc.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestClaimsContextRoundTrip(t *testing.T) {
	claims := &Claims{UserID: "dist-a"}
	ctx := SetClaimsInContext(context.Background(), claims)

	got, err := GetClaimsFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, claims, got)

	_, err = GetClaimsFromContext(context.Background())
	assert.Error(t, err)
}

func TestTokenBucketLimiterExhaustsAndRefills(t *testing.T) {
	limiter := NewTokenBucketLimiter(2, 50*time.Millisecond)
	defer limiter.Stop()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "client")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.False(t, allowed)

	time.Sleep(60 * time.Millisecond)
	allowed, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestTokenBucketLimiterIsolatesKeys(t *testing.T) {
	limiter := NewTokenBucketLimiter(1, time.Minute)
	defer limiter.Stop()

	ctx := context.Background()
	allowed, _ := limiter.Allow(ctx, "a")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "a")
	assert.False(t, allowed)

	allowed, _ = limiter.Allow(ctx, "b")
	assert.True(t, allowed)
}

func TestTokenBucketLimiterReset(t *testing.T) {
	limiter := NewTokenBucketLimiter(1, time.Minute)
	defer limiter.Stop()

	ctx := context.Background()
	_, _ = limiter.Allow(ctx, "a")
	require.NoError(t, limiter.Reset(ctx, "a"))

	allowed, _ := limiter.Allow(ctx, "a")
	assert.True(t, allowed)
}
