package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newVerifier() *Verifier {
	return NewVerifier("test-secret", "idp", []string{"commentsy"})
}

func TestVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	v := newVerifier()
	id := Identity{UserID: uuid.New(), Name: "Alice"}

	tok, err := v.Issue(id, time.Hour, time.Now())
	require.NoError(t, err)

	got, err := v.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestVerify_EmptyNameFallsBack(t *testing.T) {
	t.Parallel()

	v := newVerifier()
	uid := uuid.New()

	tok, err := v.Issue(Identity{UserID: uid}, time.Hour, time.Now())
	require.NoError(t, err)

	got, err := v.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "user-"+uid.String()[:8], got.Name)
}

func TestVerify_Errors(t *testing.T) {
	t.Parallel()

	v := newVerifier()
	id := Identity{UserID: uuid.New(), Name: "Alice"}

	expired, err := v.Issue(id, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	otherSecret, err := NewVerifier("other", "idp", []string{"commentsy"}).Issue(id, time.Hour, time.Now())
	require.NoError(t, err)

	otherIssuer, err := NewVerifier("test-secret", "evil", []string{"commentsy"}).Issue(id, time.Hour, time.Now())
	require.NoError(t, err)

	otherAudience, err := NewVerifier("test-secret", "idp", []string{"admin"}).Issue(id, time.Hour, time.Now())
	require.NoError(t, err)

	badUID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		UserID: "not-a-uuid",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "idp",
			Audience:  jwt.ClaimStrings{"commentsy"},
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		UserID: id.UserID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   "idp",
			Audience: jwt.ClaimStrings{"commentsy"},
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", expired, ErrTokenExpired},
		{"wrong secret", otherSecret, ErrInvalidToken},
		{"wrong issuer", otherIssuer, ErrInvalidToken},
		{"wrong audience", otherAudience, ErrInvalidToken},
		{"bad uid", badUID, ErrInvalidToken},
		{"no exp", noExp, ErrInvalidToken},
		{"garbage", "abc.def.ghi", ErrInvalidToken},
		{"empty", "", ErrInvalidToken},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := v.Verify(tt.token)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
