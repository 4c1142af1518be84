// Package auth identifies the job-tracker user behind a request. The token
// is the user's id; this is account scoping for the extension, not a
// security boundary.
package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/linkedin-agent/internal/models"
	"github.com/justsurfingit/linkedin-agent/internal/services"
)

const userKey = "auth.user"

// UserLookup resolves a bearer token to a user. services.UserService
// satisfies it; unknown tokens come back as services.ErrNotFound.
type UserLookup interface {
	ByToken(ctx context.Context, token string) (*models.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Middleware rejects requests without a valid token and stores the user
// for CurrentUser.
func Middleware(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authentication credentials were not provided"})
			return
		}

		user, err := users.ByToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, services.ErrNotFound) {
				log.Printf("⚠️ Token lookup failed: %v", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user set by Middleware.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
