package middleware

import (
	"net/http"
	"strings"

	"api/config"
	"api/database"
	"api/models"
	"api/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Constants for error messages
const (
	ErrNoTokenProvided = "No token provided"
	ErrInvalidToken    = "Invalid or expired token"
	ErrUserNotFound    = "User not found"
	ErrNoUserInContext = "No authenticated user in request context"
)

const userContextKey = "currentUser"

// AuthMiddleware resolves the caller's identity from an externally issued
// HS256 bearer token (subject = user id) and loads the user row into the
// request context. This service does not mint tokens or manage sessions;
// it only consumes identities.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrNoTokenProvided})
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			return []byte(config.JWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken})
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken})
			return
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", subject).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrUserNotFound})
			return
		}

		c.Set(userContextKey, &user)
		c.Next()
	}
}

// GetUserFromRequest returns the user resolved by AuthMiddleware. On
// failure it writes the error response itself; callers just return.
func GetUserFromRequest(c *gin.Context) (*models.User, error) {
	value, exists := c.Get(userContextKey)
	if !exists {
		response.Error(c, http.StatusUnauthorized, ErrNoUserInContext)
		return nil, jwt.ErrTokenRequiredClaimMissing
	}
	user, ok := value.(*models.User)
	if !ok {
		response.Error(c, http.StatusUnauthorized, ErrNoUserInContext)
		return nil, jwt.ErrTokenRequiredClaimMissing
	}
	return user, nil
}

// extractToken prefers the Authorization header, falling back to the
// auth_token cookie set by the web frontend.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}
