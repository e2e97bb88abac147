package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/municipal-helpdesk/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	identity := domain.Identity{UserID: 42, Username: "jdoe", Role: domain.RoleNormal, Area: "Sistemas"}

	session, err := tm.GenerateToken(identity)
	require.NoError(t, err)
	assert.NotEmpty(t, session.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)

	claims, err := tm.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.TokenID, claims.ID)
	assert.Equal(t, identity, *claims.Identity())
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	issuer := NewTokenManager("one", time.Hour)
	verifier := NewTokenManager("two", time.Hour)

	session, err := issuer.GenerateToken(domain.Identity{UserID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = verifier.ParseToken(session.Token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	session, err := tm.GenerateToken(domain.Identity{UserID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseToken(session.Token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestClaimsWithUnknownRoleCarryNoRole(t *testing.T) {
	claims := &Claims{UserID: 5, Username: "odd", Role: "SUPERVISOR"}
	identity := claims.Identity()
	assert.Equal(t, domain.Role(""), identity.Role)
	assert.False(t, identity.IsAdmin())
	assert.False(t, identity.IsNormal())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrPasswordMismatch)
}
