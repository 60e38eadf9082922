package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "user_id"

// Claims is the bearer token payload
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenAuth issues and verifies HS256 bearer tokens
type TokenAuth struct {
	secret []byte
}

// NewTokenAuth creates a token authority for secret
func NewTokenAuth(secret string) *TokenAuth {
	return &TokenAuth{secret: []byte(secret)}
}

// GenerateToken signs a token for userID valid for ttl
func (a *TokenAuth) GenerateToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ValidateToken verifies the signature and expiry and returns the claims
func (a *TokenAuth) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// caller's user ID in the gin context
func (a *TokenAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			abortWithMessage(c, http.StatusUnauthorized, "authorization header required")
			return
		}

		claims, err := a.ValidateToken(parts[1])
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token has expired"
			}
			abortWithMessage(c, http.StatusUnauthorized, msg)
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

func callerID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
