package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"memories/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer  = "memories-api"
	bearerPrefix = "Bearer "
)

var (
	ErrTokenMissing    = errors.New("no auth token provided")
	ErrMalformedBearer = errors.New("authorization header must use the Bearer scheme")
	ErrTokenInvalid    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
)

// Claims represents the JWT claims for our application
type Claims struct {
	UserID string      `json:"id"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the caller decoded from a verified token.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Name: c.Name, Role: c.Role}
}

// TokenManager issues and verifies HS256 bearer tokens with a shared secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %v", ttl)
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue creates a signed token for the given user
func (tm *TokenManager) Issue(user *models.User) (string, error) {
	now := tm.now()
	claims := &Claims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// Verify validates the provided token and returns its claims
func (tm *TokenManager) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			return tm.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// ExtractBearer pulls the token out of an Authorization header value. It is
// the only place a REST credential is read from.
func ExtractBearer(header string) (string, error) {
	if header == "" {
		return "", ErrTokenMissing
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrMalformedBearer
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", ErrMalformedBearer
	}
	return token, nil
}
