package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dkovalev/deskflow-server/internal/model"
)

func TestJWT_AccessToken_Roundtrip(t *testing.T) {
	j := NewJWT("secret", 0, 0)
	u := uuid.New()
	sid := uuid.New()

	access, err := j.GenerateAccessToken(u, model.RoleEmployee, sid)
	require.NoError(t, err)

	got, err := j.ParseAccessToken(access)
	require.NoError(t, err)
	require.Equal(t, u, got.SubjectID)
	require.Equal(t, model.RoleEmployee, got.Role)
	require.Equal(t, sid, got.SessionID)
}

func TestJWT_RefreshToken_Roundtrip(t *testing.T) {
	j := NewJWT("secret", 0, 0)
	u := uuid.New()
	sid := uuid.New()

	refresh, err := j.GenerateRefreshToken(u, sid, 7)
	require.NoError(t, err)

	got, err := j.ParseRefreshToken(refresh)
	require.NoError(t, err)
	require.Equal(t, u, got.SubjectID)
	require.Equal(t, sid, got.SessionID)
	require.EqualValues(t, 7, got.RotationCounter)
}

func TestJWT_LinkIntent_Roundtrip(t *testing.T) {
	j := NewJWT("secret", 0, 0)
	u := uuid.New()

	intent, jti, err := j.GenerateLinkIntent(u)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	got, err := j.ParseLinkIntent(intent)
	require.NoError(t, err)
	require.Equal(t, jti, got.JTI)
	require.Equal(t, u, got.ReturnUserID)
}

func TestJWT_TokenType_Mismatch(t *testing.T) {
	j := NewJWT("secret", 0, 0)
	u := uuid.New()

	access, err := j.GenerateAccessToken(u, model.RoleClient, uuid.New())
	require.NoError(t, err)

	_, err = j.ParseRefreshToken(access)
	require.ErrorIs(t, err, model.ErrTokenMalformed)

	_, err = j.ParseLinkIntent(access)
	require.ErrorIs(t, err, model.ErrTokenMalformed)
}

func TestJWT_WrongSecret(t *testing.T) {
	u := uuid.New()

	access, err := NewJWT("secret", 0, 0).GenerateAccessToken(u, model.RoleClient, uuid.New())
	require.NoError(t, err)

	_, err = NewJWT("other", 0, 0).ParseAccessToken(access)
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestJWT_Malformed(t *testing.T) {
	j := NewJWT("secret", 0, 0)

	_, err := j.ParseAccessToken("not-a-token")
	require.ErrorIs(t, err, model.ErrTokenMalformed)
}

func TestJWT_ExpiryBoundary(t *testing.T) {
	// Sign claims directly so expiry can sit in the past; the manager's
	// parse path must report ErrTokenExpired for a token verified at or
	// after its expiresAt instant.
	signExpiring := func(ttl time.Duration) string {
		now := time.Now()
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			},
			UserID:    uuid.New(),
			Role:      string(model.RoleClient),
			SessionID: uuid.New(),
			TokenType: typeAccess,
		})
		s, err := tok.SignedString([]byte("secret"))
		require.NoError(t, err)
		return s
	}

	j := NewJWT("secret", 0, 0)

	_, err := j.ParseAccessToken(signExpiring(-time.Second))
	require.ErrorIs(t, err, model.ErrTokenExpired)

	_, err = j.ParseAccessToken(signExpiring(time.Hour))
	require.NoError(t, err)
}
