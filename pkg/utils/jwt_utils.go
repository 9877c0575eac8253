package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecretKey signs and verifies every token the backend issues. It is set
// once at startup from configuration via InitJWT.
var jwtSecretKey = []byte("customer-registry-dev-secret-do-not-use-in-prod")

const (
	AccessTokenTTL = 72 * time.Hour   // Session token for operators
	ActionTokenTTL = 15 * time.Minute // Anti-forgery token bound to one action
)

// InitJWT installs the signing secret. Call before serving requests.
func InitJWT(secret string) {
	if secret != "" {
		jwtSecretKey = []byte(secret)
	}
}

// Claims defines the JWT claims structure for operator sessions.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"` // User role for authorization
	jwt.RegisteredClaims
}

// ActionClaims defines the claims of an anti-forgery token. The token is only
// accepted by the route whose action name matches.
type ActionClaims struct {
	Action string `json:"action"`
	jwt.RegisteredClaims
}

// GenerateAccessToken creates a new JWT access token for a given user ID, username, and role.
func GenerateAccessToken(userID int64, username string, role string) (string, error) {
	expirationTime := time.Now().Add(AccessTokenTTL)
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "customer-registry-backend",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT access token string.
// It returns the claims if the token is valid, otherwise an error.
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// GenerateActionToken creates a short-lived anti-forgery token tied to one
// named write action.
func GenerateActionToken(action string) (string, error) {
	expirationTime := time.Now().Add(ActionTokenTTL)
	claims := &ActionClaims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "customer-registry-backend",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign action token: %w", err)
	}
	return tokenString, nil
}

// ValidateActionToken checks that tokenString is a valid anti-forgery token
// minted for exactly the given action.
func ValidateActionToken(tokenString, action string) error {
	claims := &ActionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecretKey, nil
	})
	if err != nil {
		return fmt.Errorf("action token validation failed: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("invalid action token")
	}
	if claims.Action != action {
		return fmt.Errorf("action token minted for %q, not %q", claims.Action, action)
	}
	return nil
}
