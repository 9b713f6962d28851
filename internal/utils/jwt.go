package utils

import (
	"errors" // Error values
	"time"   // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/google/uuid"       // Token identifiers
)

// Token types carried in the token_type claim
const (
	AccessToken  = "access"
	RefreshToken = "refresh"
)

// BearerPrefix is prepended to tokens handed out to clients
const BearerPrefix = "Bearer "

// ErrWrongTokenType is returned when a refresh token is used for access or vice versa
var ErrWrongTokenType = errors.New("wrong token type")

// JWT Claims
type Claims struct {
	UserID               uint   `json:"user_id"`    // Custom claim for user ID
	TokenType            string `json:"token_type"` // access or refresh
	jwt.RegisteredClaims        // Standard JWT claims
}

// TokenIssuer signs and verifies access and refresh tokens
type TokenIssuer struct {
	secret          []byte        // HMAC signing key
	accessLifetime  time.Duration // Access token lifetime
	refreshLifetime time.Duration // Refresh token lifetime
}

// TokenPair is an access token together with the refresh token it came from
type TokenPair struct {
	Access  string
	Refresh string
}

// NewTokenIssuer creates an issuer with the given secret and lifetimes
func NewTokenIssuer(secret string, accessLifetime, refreshLifetime time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:          []byte(secret),
		accessLifetime:  accessLifetime,
		refreshLifetime: refreshLifetime,
	}
}

// generate creates a signed token of the given type for a user ID
func (i *TokenIssuer) generate(userID uint, tokenType string, lifetime time.Duration) (string, error) {
	now := time.Now()
	// Set token claims
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),                      // Unique token id
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)), // Expiry
			IssuedAt:  jwt.NewNumericDate(now),               // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString(i.secret)                        // Sign the token with the secret
}

// IssuePair creates a refresh token and an access token for a user ID
func (i *TokenIssuer) IssuePair(userID uint) (TokenPair, error) {
	refresh, err := i.generate(userID, RefreshToken, i.refreshLifetime)
	if err != nil {
		return TokenPair{}, err
	}
	access, err := i.generate(userID, AccessToken, i.accessLifetime)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh validates a refresh token and issues a new access token for its user
func (i *TokenIssuer) Refresh(refreshToken string) (string, error) {
	claims, err := i.Parse(refreshToken, RefreshToken)
	if err != nil {
		return "", err
	}
	return i.generate(claims.UserID, AccessToken, i.accessLifetime)
}

// Parse parses and validates a token string of the expected type
func (i *TokenIssuer) Parse(tokenStr, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return i.secret, nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	// Check for parsing errors
	if err != nil {
		return nil, err
	}
	// Validate token and extract claims
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
