package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	authdomain "focusmeet-backend/internal/auth/domain"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure. Callers only need to know the request
// is unauthenticated.
var ErrInvalidToken = errors.New("invalid or expired token")

// Verifier turns a bearer credential into a stable identity. One attempt, no retries, no
// side effects.
type Verifier interface {
	Verify(ctx context.Context, token string) (*authdomain.Identity, error)
	Name() string
}

// IDTokenVerifier is the part of the Firebase auth client the verifier uses
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type firebaseVerifier struct {
	client IDTokenVerifier
}

// NewFirebaseVerifier verifies Firebase ID tokens
func NewFirebaseVerifier(client IDTokenVerifier) Verifier {
	return &firebaseVerifier{client: client}
}

func (v *firebaseVerifier) Name() string { return "firebase" }

func (v *firebaseVerifier) Verify(ctx context.Context, token string) (*authdomain.Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil || decoded == nil || decoded.UID == "" {
		return nil, ErrInvalidToken
	}
	email, _ := decoded.Claims["email"].(string)
	return &authdomain.Identity{UID: decoded.UID, Email: email}, nil
}

type devVerifier struct {
	secret []byte
}

// NewDevVerifier accepts HS256 tokens signed with a shared secret. Development only.
func NewDevVerifier(secret string) Verifier {
	return &devVerifier{secret: []byte(secret)}
}

func (v *devVerifier) Name() string { return "dev-jwt" }

func (v *devVerifier) Verify(_ context.Context, tokenString string) (*authdomain.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	uid, _ := claims["sub"].(string)
	if uid == "" {
		uid, _ = claims["user_id"].(string)
	}
	if uid == "" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	return &authdomain.Identity{UID: uid, Email: email}, nil
}

// IssueDevToken signs a development token accepted by NewDevVerifier
func IssueDevToken(secret, uid, email string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("DEV_AUTH_SECRET is not set")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": uid,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if email != "" {
		claims["email"] = email
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign dev token: %w", err)
	}
	return signed, nil
}

type disabledVerifier struct{}

// NewDisabledVerifier rejects everything. Used when no identity provider is configured.
func NewDisabledVerifier() Verifier {
	return disabledVerifier{}
}

func (disabledVerifier) Name() string { return "disabled" }

func (disabledVerifier) Verify(context.Context, string) (*authdomain.Identity, error) {
	return nil, ErrInvalidToken
}
