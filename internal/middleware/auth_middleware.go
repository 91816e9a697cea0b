package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rateworks/critica/internal/models"
	"github.com/rateworks/critica/internal/repository"
	"github.com/rateworks/critica/internal/utils"
)

const userKey = "current_user"

// Authenticate requires a valid bearer token and loads the user behind it.
// The token is stateless, so the user is reloaded from the database on
// every request; a deleted account fails here even with a live token.
func Authenticate(jwtSecret string, userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, jwtSecret, userRepo)
		if !ok {
			return
		}
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// OptionalAuthenticate resolves the caller's identity when a token is
// present and lets anonymous requests through. Public read routes use it
// so the policy layer can still see who is asking.
func OptionalAuthenticate(jwtSecret string, userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, jwtSecret, userRepo)
		if !ok {
			return
		}
		if user != nil {
			c.Set(userKey, user)
		}
		c.Next()
	}
}

// resolveUser returns (nil, true) for anonymous requests, (user, true) for
// valid tokens, and (nil, false) after writing a 401 for bad ones.
func resolveUser(c *gin.Context, jwtSecret string, userRepo *repository.UserRepository) (*models.User, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, true
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid authorization format. Use: Bearer <token>",
		})
		c.Abort()
		return nil, false
	}

	claims, err := utils.ValidateToken(tokenString, jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid or expired token",
		})
		c.Abort()
		return nil, false
	}

	user, err := userRepo.GetByID(claims.UserID)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid or expired token",
		})
		c.Abort()
		return nil, false
	}

	return user, true
}

// CurrentUser returns the authenticated user from the context, or nil for
// anonymous callers.
func CurrentUser(c *gin.Context) *models.User {
	val, exists := c.Get(userKey)
	if !exists {
		return nil
	}
	user, _ := val.(*models.User)
	return user
}
