package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/appcanvas/builder/internal/application/render"
	"github.com/appcanvas/builder/internal/application/services"
	"github.com/appcanvas/builder/pkg/errors"
)

// Download file names
const (
	ExportHTMLFile   = "exported-app.html"
	ExportConfigFile = "app-config.json"
)

type ExportHandler struct {
	svcMgr *services.ServiceManager
}

func NewExportHandler(svcMgr *services.ServiceManager) *ExportHandler {
	return &ExportHandler{svcMgr: svcMgr}
}

// HTML handles GET /api/projects/:projectId/export/html?screen=<screenId>
func (h *ExportHandler) HTML(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	page, err := h.svcMgr.Export.HTML(c.Request.Context(), user, c.Param("projectId"), c.Query("screen"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	attachment(c, ExportHTMLFile)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// Config handles GET /api/projects/:projectId/export/config
func (h *ExportHandler) Config(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	cfg, err := h.svcMgr.Export.Config(c.Request.Context(), user, c.Param("projectId"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	body, err := cfg.JSON()
	if err != nil {
		RespondAppError(c, errors.NewInternalError("Failed to encode configuration", err))
		return
	}
	attachment(c, ExportConfigFile)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// SharePage handles GET /share?share=<publishedId>. Unknown ids get a
// readable 404 page instead of the JSON envelope.
func (h *ExportHandler) SharePage(c *gin.Context) {
	publishedID := strings.TrimSpace(c.Query("share"))
	if publishedID == "" {
		c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(render.RenderNotFound("No app was specified in this link.")))
		return
	}
	page, err := h.svcMgr.Export.SharePage(c.Request.Context(), publishedID)
	if err != nil {
		if errors.IsNotFound(err) {
			c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(render.RenderNotFound("This link does not point to a published app.")))
			return
		}
		RespondAppError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// Shared handles GET /api/share/:publishedId
func (h *ExportHandler) Shared(c *gin.Context) {
	HandleGetEnvelope(c, "snapshot", func() (interface{}, error) {
		return h.svcMgr.ProjectSvc.GetShared(c.Request.Context(), c.Param("publishedId"))
	})
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
}
