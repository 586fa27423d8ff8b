package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appcanvas/builder/internal/application/services"
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/constants"
)

type ProjectHandler struct {
	svcMgr *services.ServiceManager
}

func NewProjectHandler(svcMgr *services.ServiceManager) *ProjectHandler {
	return &ProjectHandler{svcMgr: svcMgr}
}

// List handles GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	HandleGetEnvelope(c, "projects", func() (interface{}, error) {
		return h.svcMgr.ProjectSvc.List(c.Request.Context(), user)
	})
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req services.CreateProjectInput
	if !BindJSON(c, &req) {
		return
	}
	project, err := h.svcMgr.ProjectSvc.Create(c.Request.Context(), user, req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		constants.FieldMessage: "Project created",
		"project":              project,
	})
}

// Get handles GET /api/projects/:projectId
func (h *ProjectHandler) Get(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	HandleGetEnvelope(c, "project", func() (interface{}, error) {
		return h.svcMgr.ProjectSvc.Get(c.Request.Context(), user, c.Param("projectId"))
	})
}

// Update handles PATCH /api/projects/:projectId
func (h *ProjectHandler) Update(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var patch models.ProjectPatch
	if !BindJSON(c, &patch) {
		return
	}
	project, err := h.svcMgr.ProjectSvc.Update(c.Request.Context(), user, c.Param("projectId"), patch)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		constants.FieldMessage: "Project updated",
		"project":              project,
	})
}

// Delete handles DELETE /api/projects/:projectId
func (h *ProjectHandler) Delete(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	HandleDeleteEnvelope(c, "Project deleted", func() error {
		return h.svcMgr.ProjectSvc.Delete(c.Request.Context(), user, c.Param("projectId"))
	})
}

// Publish handles POST /api/projects/:projectId/publish
func (h *ProjectHandler) Publish(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := h.svcMgr.ProjectSvc.Publish(c.Request.Context(), user, c.Param("projectId"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	respondWithNotice(c, http.StatusOK, "published", result, models.NotificationSuccess, "App published")
}
