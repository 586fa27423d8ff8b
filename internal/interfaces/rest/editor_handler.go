package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appcanvas/builder/internal/application/services"
	"github.com/appcanvas/builder/internal/domain/models"
)

// EditorHandler exposes the open document of a project
type EditorHandler struct {
	svcMgr *services.ServiceManager
}

func NewEditorHandler(svcMgr *services.ServiceManager) *EditorHandler {
	return &EditorHandler{svcMgr: svcMgr}
}

// PreviewClickRequest names the component clicked in preview mode
type PreviewClickRequest struct {
	ComponentID string `json:"componentId" binding:"required"`
}

// View handles GET /api/projects/:projectId/editor
func (h *EditorHandler) View(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	snap, err := h.svcMgr.Editor.View(c.Request.Context(), user, c.Param("projectId"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Apply handles POST /api/projects/:projectId/editor/operations
func (h *EditorHandler) Apply(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var op services.Operation
	if !BindJSON(c, &op) {
		return
	}
	snap, err := h.svcMgr.Editor.Apply(c.Request.Context(), user, c.Param("projectId"), op)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Operations handles GET /api/editor/operations
func (h *EditorHandler) Operations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"operations": services.OperationTypes()})
}

// Place handles POST /api/projects/:projectId/editor/place
func (h *EditorHandler) Place(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req services.PlaceRequest
	if !BindJSON(c, &req) {
		return
	}
	snap, err := h.svcMgr.Editor.Place(c.Request.Context(), user, c.Param("projectId"), req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// DragStart handles POST /api/projects/:projectId/editor/drag/start
func (h *EditorHandler) DragStart(c *gin.Context) {
	h.pointer(c, h.svcMgr.Editor.DragStart)
}

// DragMove handles POST /api/projects/:projectId/editor/drag/move
func (h *EditorHandler) DragMove(c *gin.Context) {
	h.pointer(c, h.svcMgr.Editor.DragMove)
}

// DragEnd handles POST /api/projects/:projectId/editor/drag/end
func (h *EditorHandler) DragEnd(c *gin.Context) {
	h.pointer(c, h.svcMgr.Editor.DragEnd)
}

type pointerFunc func(ctx context.Context, user *models.UserSession, projectID string, req services.PointerRequest) (*services.EditorSnapshot, error)

func (h *EditorHandler) pointer(c *gin.Context, fn pointerFunc) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req services.PointerRequest
	if !BindJSON(c, &req) {
		return
	}
	snap, err := fn(c.Request.Context(), user, c.Param("projectId"), req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Save handles POST /api/projects/:projectId/editor/save
func (h *EditorHandler) Save(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := h.svcMgr.Editor.Save(c.Request.Context(), user, c.Param("projectId"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	respondWithNotice(c, http.StatusOK, "result", result, models.NotificationSuccess, "Project saved")
}

// Reload handles POST /api/projects/:projectId/editor/reload
func (h *EditorHandler) Reload(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	snap, err := h.svcMgr.Editor.Reload(c.Request.Context(), user, c.Param("projectId"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Close handles DELETE /api/projects/:projectId/editor
func (h *EditorHandler) Close(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	HandleDeleteEnvelope(c, "Editor closed", func() error {
		if _, err := h.svcMgr.ProjectSvc.Get(c.Request.Context(), user, c.Param("projectId")); err != nil {
			return err
		}
		h.svcMgr.Editor.Close(c.Param("projectId"))
		return nil
	})
}

// PreviewClick handles POST /api/projects/:projectId/preview/click
func (h *EditorHandler) PreviewClick(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req PreviewClickRequest
	if !BindJSON(c, &req) {
		return
	}
	snap, err := h.svcMgr.Editor.PreviewClick(c.Request.Context(), user, c.Param("projectId"), req.ComponentID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
