package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/constants"
	"github.com/appcanvas/builder/pkg/errors"
	"github.com/appcanvas/builder/pkg/logutils"
)

// GetUserFromContext extracts the authenticated user set by RequireAuth
func GetUserFromContext(c *gin.Context) *models.UserSession {
	userInterface, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil
	}
	user, _ := userInterface.(*models.UserSession)
	return user
}

// RespondAppError sends a standardised JSON error response using pkg/errors
func RespondAppError(c *gin.Context, err error) {
	code := errors.GetHTTPStatus(err)
	resp := errors.ToResponse(err)

	if code >= 500 {
		logutils.Log.Errorf("❌ ERROR [%d] %s %s: %s", code, c.Request.Method, c.Request.URL.Path, resp.Message)
	}

	c.JSON(code, gin.H{
		constants.ResponseError: resp.Message, // Legacy
		constants.FieldMessage:  resp.Message,
		"code":                  resp.Code,
		"data":                  resp.Details,
	})
}

// BindJSON binds JSON and returns true if successful. If failed, it sends bad request error.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return false
	}
	return true
}

// requireUser returns the caller or answers 401
func requireUser(c *gin.Context) (*models.UserSession, bool) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondAppError(c, errors.NewUnauthorizedError("User not authenticated"))
		return nil, false
	}
	return user, true
}

// HandleGetEnvelope executes a read action and returns the result wrapped in a JSON key
// Response: { [key]: result }
func HandleGetEnvelope(c *gin.Context, key string, action func() (interface{}, error)) {
	result, err := action()
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{key: result})
}

// HandleDeleteEnvelope executes a delete action and returns a success message
// Response: { constants.FieldMessage: successMsg }
func HandleDeleteEnvelope(c *gin.Context, successMsg string, action func() error) {
	if err := action(); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.FieldMessage: successMsg})
}

// respondWithNotice wraps payload with a single transient notification
func respondWithNotice(c *gin.Context, status int, key string, payload interface{}, level models.NotificationLevel, message string) {
	c.JSON(status, gin.H{
		key:                             payload,
		constants.ResponseNotifications: []models.Notification{{Level: level, Message: message}},
	})
}
