package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"todo-api/domain"
)

var testSecret = []byte("test-secret")

func signClaims(t *testing.T, secret []byte, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestTokenRoundTrip(t *testing.T) {
	auth := NewAuth(testSecret, time.Hour)

	token, err := auth.GenerateToken("user-42")
	if err != nil {
		t.Fatal(err)
	}
	userID, err := auth.UserIDFromAuthHeader("Bearer " + token)
	if err != nil {
		t.Fatal(err)
	}
	if userID != "user-42" {
		t.Fatalf("expected user-42, got %q", userID)
	}
}

func TestExpiredToken(t *testing.T) {
	auth := NewAuth(testSecret, time.Hour)
	token := signClaims(t, testSecret, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})

	_, err := auth.UserIDFromAuthHeader("Bearer " + token)
	if !errors.Is(err, errTokenExpired) {
		t.Fatalf("expected errTokenExpired, got %v", err)
	}
	if got := authFailureMessage(err); got != "Token has expired. Please login again." {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestTokenWrongAudienceOrSecret(t *testing.T) {
	auth := NewAuth(testSecret, time.Hour)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	badAudience := signClaims(t, testSecret, jwt.RegisteredClaims{
		Subject: "user-1", Issuer: tokenIssuer,
		Audience: jwt.ClaimStrings{"someone-else"}, ExpiresAt: exp,
	})
	if _, err := auth.UserIDFromAuthHeader("Bearer " + badAudience); !errors.Is(err, errTokenInvalid) {
		t.Fatalf("expected errTokenInvalid for wrong audience, got %v", err)
	}

	badSecret := signClaims(t, []byte("other-secret"), jwt.RegisteredClaims{
		Subject: "user-1", Issuer: tokenIssuer,
		Audience: jwt.ClaimStrings{tokenAudience}, ExpiresAt: exp,
	})
	if _, err := auth.UserIDFromAuthHeader("Bearer " + badSecret); !errors.Is(err, errTokenInvalid) {
		t.Fatalf("expected errTokenInvalid for bad signature, got %v", err)
	}

	missingSub := signClaims(t, testSecret, jwt.RegisteredClaims{
		Issuer: tokenIssuer, Audience: jwt.ClaimStrings{tokenAudience}, ExpiresAt: exp,
	})
	if _, err := auth.UserIDFromAuthHeader("Bearer " + missingSub); !errors.Is(err, errTokenInvalid) {
		t.Fatalf("expected errTokenInvalid for missing sub, got %v", err)
	}
}

func TestBearerTokenFromHeader(t *testing.T) {
	if _, err := bearerTokenFromHeader(""); !errors.Is(err, errMissingAuthorization) {
		t.Fatalf("expected errMissingAuthorization, got %v", err)
	}
	for _, h := range []string{
		"Basic dXNlcjpwYXNz",
		"Bearer",
		"Bearer not.enough",
		"Bearer too.many.dots.here",
	} {
		if _, err := bearerTokenFromHeader(h); err == nil {
			t.Fatalf("expected error for header %q", h)
		}
	}
	token, err := bearerTokenFromHeader("Bearer aaa.bbb.ccc")
	if err != nil {
		t.Fatal(err)
	}
	if token != "aaa.bbb.ccc" {
		t.Fatalf("unexpected token %q", token)
	}
}

func TestResolveAccountStates(t *testing.T) {
	auth := NewAuth(testSecret, time.Hour)
	ctx := context.Background()

	store := &mockStore{users: []domain.User{
		{ID: "active", Email: "a@example.com", IsActive: true},
		{ID: "inactive", Email: "i@example.com", IsActive: false},
	}}

	header := func(id string) string {
		token, err := auth.GenerateToken(id)
		if err != nil {
			t.Fatal(err)
		}
		return "Bearer " + token
	}

	user, err := resolveAccount(ctx, store, auth, header("active"))
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != "active" {
		t.Fatalf("unexpected user %q", user.ID)
	}

	_, err = resolveAccount(ctx, store, auth, header("inactive"))
	var ae *authError
	if !errors.As(err, &ae) || ae.message != "Account is deactivated. Please contact support." {
		t.Fatalf("unexpected error for inactive account: %v", err)
	}

	_, err = resolveAccount(ctx, store, auth, header("ghost"))
	if !errors.As(err, &ae) || ae.message != "Token is not valid. User not found." {
		t.Fatalf("unexpected error for unknown account: %v", err)
	}
}
