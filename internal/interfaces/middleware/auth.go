package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/appcanvas/builder/internal/domain/ports"
	"github.com/appcanvas/builder/pkg/constants"
)

// sessionToucher is implemented by identity backends that track activity
type sessionToucher interface {
	TouchSession(sessionID string)
}

// RequireAuth is a middleware that resolves the bearer token through the
// auth provider and stores the caller as *models.UserSession.
func RequireAuth(provider ports.AuthProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := BearerToken(c)
		if !ok {
			abortUnauthorized(c, "No authorization token provided")
			return
		}

		session, err := provider.GetSession(c.Request.Context(), tokenString)
		if err != nil {
			// 401 is safe for all session failures
			abortUnauthorized(c, err.Error())
			return
		}

		// Update last activity (Fire and forget)
		if t, ok := provider.(sessionToucher); ok {
			t.TouchSession(session.ID)
		}

		user := session.User
		c.Set(constants.ContextKeyUser, &user)
		c.Set(constants.ContextKeyToken, tokenString)

		c.Next()
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>"
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader(constants.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		constants.ResponseError: "Unauthorized",
		constants.FieldMessage:  message,
		"code":                  "UNAUTHORIZED",
		"data":                  nil,
	})
}
