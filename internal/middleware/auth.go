package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken is returned when a bearer token does not match
var ErrInvalidToken = errors.New("invalid token")

// TokenValidator is an interface for validating bearer tokens
type TokenValidator interface {
	ValidateToken(token string) error
}

// StaticTokenValidator accepts a single configured token. Only its bcrypt
// hash is kept in memory.
type StaticTokenValidator struct {
	hash []byte
}

// NewStaticTokenValidator hashes the configured token
func NewStaticTokenValidator(token string) (*StaticTokenValidator, error) {
	if token == "" {
		return nil, errors.New("token must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &StaticTokenValidator{hash: hash}, nil
}

// ValidateToken compares token against the stored hash
func (v *StaticTokenValidator) ValidateToken(token string) error {
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(token)); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// AuthMiddleware creates a middleware that validates bearer tokens.
// A nil validator lets every request through.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validator == nil {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		if err := validator.ValidateToken(parts[1]); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Next()
	}
}
