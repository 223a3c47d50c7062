package middleware

import (
	"net/http"
	"strings"

	"ucycle/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const AdminKey = "admin"

// AdminAuthorizer decides whether a presented credential grants admin access.
type AdminAuthorizer interface {
	Authorize(credential string) bool
}

// PinAuthorizer checks the shared admin PIN. Only its bcrypt hash is kept in
// memory after construction.
type PinAuthorizer struct {
	hash []byte
}

func NewPinAuthorizer(pin string) (*PinAuthorizer, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &PinAuthorizer{hash: hash}, nil
}

func (a *PinAuthorizer) Authorize(credential string) bool {
	if credential == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.hash, []byte(credential)) == nil
}

// TokenAuthorizer accepts session tokens issued by /admin/verify.
type TokenAuthorizer struct {
	jwtService *jwt.Service
}

func NewTokenAuthorizer(jwtService *jwt.Service) *TokenAuthorizer {
	return &TokenAuthorizer{jwtService: jwtService}
}

func (a *TokenAuthorizer) Authorize(credential string) bool {
	claims, err := a.jwtService.ValidateToken(credential)
	if err != nil {
		return false
	}
	return claims.Role == jwt.RoleAdmin
}

// AnyAuthorizer grants access when any of its members does.
type AnyAuthorizer []AdminAuthorizer

func (a AnyAuthorizer) Authorize(credential string) bool {
	for _, auth := range a {
		if auth.Authorize(credential) {
			return true
		}
	}
	return false
}

// AdminMiddleware reads the credential from the pin query parameter, the
// X-Admin-Pin header or a bearer token, in that order.
func AdminMiddleware(authorizer AdminAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := AdminCredential(c)
		if credential == "" || !authorizer.Authorize(credential) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid PIN"})
			c.Abort()
			return
		}

		c.Set(AdminKey, true)
		c.Next()
	}
}

func AdminCredential(c *gin.Context) string {
	if pin := c.Query("pin"); pin != "" {
		return pin
	}
	if pin := c.GetHeader("X-Admin-Pin"); pin != "" {
		return pin
	}
	authHeader := c.GetHeader("Authorization")
	if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
