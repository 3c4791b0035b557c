package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity carried by the session JWT. Identity is issued by
// the external auth provider; this service only validates it.
type Claims struct {
	UserID string
	Email  string
	Name   string
}

// DisplayName returns the best human-readable name for the user.
func (c Claims) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Email
}

// TokenFromHeader extracts the bearer token from an Authorization header.
func TokenFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// ParseToken validates an HS256 session token and extracts the identity
// claims. The subject is required; email and name are optional.
func ParseToken(secret []byte, token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrInvalidToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{UserID: sub}
	claims.Email, _ = mapClaims["email"].(string)
	if name, ok := mapClaims["name"].(string); ok {
		claims.Name = name
	} else if name, ok := mapClaims["full_name"].(string); ok {
		claims.Name = name
	}
	return claims, nil
}

// AuthMiddleware validates the Authorization header and stores the caller's
// identity on the request context.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromHeader(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		claims, err := ParseToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userEmail", claims.Email)
		c.Set("userName", claims.DisplayName())
		c.Next()
	}
}
