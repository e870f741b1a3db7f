package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevVerifier(t *testing.T) {
	ctx := context.Background()
	v := NewDevVerifier("dev-secret")

	token, err := IssueDevToken("dev-secret", "u1", "doc@example.com", time.Hour)
	require.NoError(t, err)
	identity, err := v.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UID)
	assert.Equal(t, "doc@example.com", identity.Email)

	wrong, err := IssueDevToken("other-secret", "u1", "", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(ctx, wrong)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := IssueDevToken("dev-secret", "u1", "", -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(ctx, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = IssueDevToken("", "u1", "", time.Hour)
	assert.Error(t, err)
}

func TestDevVerifier_UserIDClaim(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "legacy"}).SignedString([]byte("s"))
	require.NoError(t, err)
	identity, err := NewDevVerifier("s").Verify(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "legacy", identity.UID)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "x@example.com"}).SignedString([]byte("s"))
	require.NoError(t, err)
	_, err = NewDevVerifier("s").Verify(context.Background(), noSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDevVerifier_RejectsOtherAlgorithms(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewDevVerifier("s").Verify(context.Background(), unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

type stubIDTokenVerifier struct {
	token *auth.Token
	err   error
}

func (s stubIDTokenVerifier) VerifyIDToken(context.Context, string) (*auth.Token, error) {
	return s.token, s.err
}

func TestFirebaseVerifier(t *testing.T) {
	ctx := context.Background()

	v := NewFirebaseVerifier(stubIDTokenVerifier{token: &auth.Token{UID: "fb-1", Claims: map[string]interface{}{"email": "a@example.com"}}})
	identity, err := v.Verify(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, "fb-1", identity.UID)
	assert.Equal(t, "a@example.com", identity.Email)

	_, err = v.Verify(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	v = NewFirebaseVerifier(stubIDTokenVerifier{err: errors.New("provider unreachable")})
	_, err = v.Verify(ctx, "id-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDisabledVerifier(t *testing.T) {
	_, err := NewDisabledVerifier().Verify(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
