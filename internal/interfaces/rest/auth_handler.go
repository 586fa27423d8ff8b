package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appcanvas/builder/internal/application/services"
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/internal/interfaces/middleware"
	"github.com/appcanvas/builder/pkg/errors"
)

type AuthHandler struct {
	svcMgr *services.ServiceManager
}

func NewAuthHandler(svcMgr *services.ServiceManager) *AuthHandler {
	return &AuthHandler{
		svcMgr: svcMgr,
	}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !BindJSON(c, &req) {
		return
	}

	session, err := h.svcMgr.Auth.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	respondWithNotice(c, http.StatusOK, "session", session, models.NotificationSuccess, "Logged in")
}

// Anonymous handles POST /api/auth/anonymous
func (h *AuthHandler) Anonymous(c *gin.Context) {
	session, err := h.svcMgr.Auth.SignInAnonymously(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	respondWithNotice(c, http.StatusOK, "session", session, models.NotificationSuccess, "Logged in")
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		RespondAppError(c, errors.NewUnauthorizedError("No authorization token provided"))
		return
	}
	if err := h.svcMgr.Auth.SignOut(c.Request.Context(), token); err != nil {
		RespondAppError(c, err)
		return
	}
	respondWithNotice(c, http.StatusOK, "success", true, models.NotificationSuccess, "Logged out")
}

// Session handles GET /api/auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
