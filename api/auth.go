package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"todo-api/domain"
)

const (
	tokenIssuer   = "todo-app"
	tokenAudience = "todo-app-users"

	// DefaultTokenTTL is the token lifetime used when none is configured.
	DefaultTokenTTL = 7 * 24 * time.Hour
)

var (
	errTokenExpired       = errors.New("token expired")
	errTokenInvalid       = errors.New("token invalid")
	errAccountNotFound    = errors.New("account not found")
	errAccountDeactivated = errors.New("account deactivated")
)

// authError wraps a credential failure with the message returned to clients.
type authError struct {
	cause   error
	message string
}

func (e *authError) Error() string { return e.cause.Error() }
func (e *authError) Unwrap() error { return e.cause }

// Auth issues and validates bearer tokens signed with a shared HS256 secret.
type Auth struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

// NewAuth creates an Auth instance. The secret must not be empty.
func NewAuth(secret []byte, ttl time.Duration) *Auth {
	if len(secret) == 0 {
		panic("api.NewAuth: empty signing secret")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Auth{
		secret: secret,
		ttl:    ttl,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
	}
}

// GenerateToken issues a signed token for the given user id.
func (a *Auth) GenerateToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// UserIDFromAuthHeader extracts the user identifier from an Authorization
// header value.
func (a *Auth) UserIDFromAuthHeader(h string) (string, error) {
	token, err := bearerTokenFromHeader(h)
	if err != nil {
		return "", err
	}
	return a.userIDFromToken(token)
}

func (a *Auth) userIDFromToken(token string) (string, error) {
	parsed, err := a.parser.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errTokenExpired
		}
		return "", fmt.Errorf("%w: %v", errTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errTokenInvalid
	}

	now := time.Now().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return "", errTokenExpired
	}
	if !claims.VerifyNotBefore(now, false) {
		return "", errTokenInvalid
	}
	if !claims.VerifyAudience(tokenAudience, true) {
		return "", errTokenInvalid
	}
	if !claims.VerifyIssuer(tokenIssuer, true) {
		return "", errTokenInvalid
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errTokenInvalid
	}
	return sub, nil
}

// resolveAccount validates the bearer credential and resolves it to an
// active account. Credential failures come back as *authError; anything else
// is a storage failure.
func resolveAccount(ctx context.Context, store Store, auth Authenticator, header string) (*domain.User, error) {
	userID, err := auth.UserIDFromAuthHeader(header)
	if err != nil {
		return nil, &authError{cause: err, message: authFailureMessage(err)}
	}
	user, err := store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &authError{
			cause:   errAccountNotFound,
			message: "Token is not valid. User not found.",
		}
	}
	if !user.IsActive {
		return nil, &authError{
			cause:   errAccountDeactivated,
			message: "Account is deactivated. Please contact support.",
		}
	}
	return user, nil
}

func authFailureMessage(err error) string {
	switch {
	case errors.Is(err, errMissingAuthorization), errors.Is(err, errBadAuthorization):
		return "Access denied. No token provided or invalid format."
	case errors.Is(err, errTokenExpired):
		return "Token has expired. Please login again."
	default:
		return "Invalid token. Please login again."
	}
}
